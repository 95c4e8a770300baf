package profile

import (
	"fmt"
	"sort"
	"strings"
)

// Recognized profile field names, as they appear in extraction responses and
// prompt payloads.
const (
	FieldAge         = "age"
	FieldState       = "state"
	FieldCategory    = "category"
	FieldIncome      = "income"
	FieldDisability  = "disability"
	FieldOccupation  = "occupation"
	FieldEducation   = "education"
	FieldGender      = "gender"
	FieldFamilySize  = "family_size"
	FieldLandHolding = "land_holding"
)

// Profile holds the self-reported facts about a user that are relevant for
// scheme eligibility. Zero values mean "unknown", never a hard non-match:
// a zero Age is an unset age, an empty State matches any scheme state.
type Profile struct {
	Age         int     `json:"age,omitempty" mapstructure:"age"`
	State       string  `json:"state,omitempty" mapstructure:"state"`
	Category    string  `json:"category,omitempty" mapstructure:"category"`
	Income      string  `json:"income,omitempty" mapstructure:"income"`
	Disability  string  `json:"disability,omitempty" mapstructure:"disability"`
	Occupation  string  `json:"occupation,omitempty" mapstructure:"occupation"`
	Education   string  `json:"education,omitempty" mapstructure:"education"`
	Gender      string  `json:"gender,omitempty" mapstructure:"gender"`
	FamilySize  int     `json:"family_size,omitempty" mapstructure:"family_size"`
	LandHolding float64 `json:"land_holding,omitempty" mapstructure:"land_holding"`
}

// New returns an empty profile.
func New() *Profile {
	return &Profile{}
}

// IsEmpty reports whether no field has been learned yet.
func (p *Profile) IsEmpty() bool {
	return p == nil || *p == Profile{}
}

// Clone returns a copy of the profile.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return New()
	}
	clone := *p
	return &clone
}

// Merge returns a copy of the profile with every set field of update
// overwriting the corresponding field. Zero values in update mean
// "not mentioned" and leave the existing value untouched; fields are only
// ever added or overwritten whole, never partially merged.
func (p *Profile) Merge(update *Profile) *Profile {
	merged := p.Clone()
	if update == nil {
		return merged
	}

	if update.Age != 0 {
		merged.Age = update.Age
	}
	if s := strings.TrimSpace(update.State); s != "" {
		merged.State = s
	}
	if s := strings.TrimSpace(update.Category); s != "" {
		merged.Category = s
	}
	if s := strings.TrimSpace(update.Income); s != "" {
		merged.Income = s
	}
	if s := strings.TrimSpace(update.Disability); s != "" {
		merged.Disability = s
	}
	if s := strings.TrimSpace(update.Occupation); s != "" {
		merged.Occupation = s
	}
	if s := strings.TrimSpace(update.Education); s != "" {
		merged.Education = s
	}
	if s := strings.TrimSpace(update.Gender); s != "" {
		merged.Gender = s
	}
	if update.FamilySize != 0 {
		merged.FamilySize = update.FamilySize
	}
	if update.LandHolding != 0 {
		merged.LandHolding = update.LandHolding
	}

	return merged
}

// HasDisability reports whether a disability has been mentioned at all. Any
// non-empty value counts; the field is free text ("yes", "40% locomotor").
func (p *Profile) HasDisability() bool {
	return p != nil && strings.TrimSpace(p.Disability) != ""
}

// Fields returns the set fields as a map keyed by the recognized field names.
// Unset fields are omitted so prompts stay compact.
func (p *Profile) Fields() map[string]any {
	fields := make(map[string]any)
	if p == nil {
		return fields
	}

	if p.Age != 0 {
		fields[FieldAge] = p.Age
	}
	if p.State != "" {
		fields[FieldState] = p.State
	}
	if p.Category != "" {
		fields[FieldCategory] = p.Category
	}
	if p.Income != "" {
		fields[FieldIncome] = p.Income
	}
	if p.Disability != "" {
		fields[FieldDisability] = p.Disability
	}
	if p.Occupation != "" {
		fields[FieldOccupation] = p.Occupation
	}
	if p.Education != "" {
		fields[FieldEducation] = p.Education
	}
	if p.Gender != "" {
		fields[FieldGender] = p.Gender
	}
	if p.FamilySize != 0 {
		fields[FieldFamilySize] = p.FamilySize
	}
	if p.LandHolding != 0 {
		fields[FieldLandHolding] = p.LandHolding
	}

	return fields
}

// String renders the known fields as "field: value" lines in stable order.
func (p *Profile) String() string {
	fields := p.Fields()
	if len(fields) == 0 {
		return "(empty profile)"
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var builder strings.Builder
	for i, name := range names {
		if i > 0 {
			builder.WriteString("\n")
		}
		fmt.Fprintf(&builder, "%s: %v", name, fields[name])
	}
	return builder.String()
}
