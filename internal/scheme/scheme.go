package scheme

import (
	"sort"
	"strings"
)

// Record is a single catalog entry for a government welfare scheme. Records are
// immutable within a session; the free-text tag bag and eligibility criteria
// are normalized once via Normalize instead of being re-parsed on every
// scoring call.
type Record struct {
	Name                string            `json:"scheme_name"`
	Category            string            `json:"category,omitempty"`
	State               string            `json:"state,omitempty"`
	Level               string            `json:"level,omitempty"`
	TargetBeneficiaries string            `json:"target_beneficiaries,omitempty"`
	Tags                string            `json:"tags,omitempty"`
	EligibilityCriteria string            `json:"eligibility_criteria,omitempty"`
	Benefits            string            `json:"benefits,omitempty"`
	DocumentsRequired   string            `json:"documents_required,omitempty"`
	Description         string            `json:"description,omitempty"`
	Links               map[string]string `json:"links,omitempty"`

	loweredTags        string
	loweredEligibility string
	loweredState       string
	tagList            []string
	normalized         bool
}

// Normalize precomputes the lower-cased text used by keyword matching and the
// trimmed tag list. Safe to call more than once.
func (r *Record) Normalize() {
	r.loweredTags = strings.ToLower(r.Tags)
	r.loweredEligibility = strings.ToLower(r.EligibilityCriteria)
	r.loweredState = strings.ToLower(strings.TrimSpace(r.State))

	r.tagList = r.tagList[:0]
	for _, tag := range strings.Split(r.loweredTags, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			r.tagList = append(r.tagList, tag)
		}
	}

	r.normalized = true
}

func (r *Record) ensureNormalized() {
	if !r.normalized {
		r.Normalize()
	}
}

// TagText returns the lower-cased tag bag as a single string.
func (r *Record) TagText() string {
	r.ensureNormalized()
	return r.loweredTags
}

// EligibilityText returns the lower-cased free-text eligibility criteria.
func (r *Record) EligibilityText() string {
	r.ensureNormalized()
	return r.loweredEligibility
}

// StateText returns the trimmed, lower-cased scheme state.
func (r *Record) StateText() string {
	r.ensureNormalized()
	return r.loweredState
}

// TagList returns the normalized tag set: lower-cased, split on commas, trimmed.
func (r *Record) TagList() []string {
	r.ensureNormalized()
	return r.tagList
}

// HasAnyTag reports whether the tag bag contains any of the provided keywords.
// Matching is by substring on the lower-cased bag, so "farmer" also matches a
// "farmers" tag.
func (r *Record) HasAnyTag(keywords ...string) bool {
	return containsAny(r.TagText(), keywords)
}

// HasAnyCriteria reports whether the tag bag or the eligibility criteria text
// contains any of the provided keywords.
func (r *Record) HasAnyCriteria(keywords ...string) bool {
	return containsAny(r.TagText(), keywords) || containsAny(r.EligibilityText(), keywords)
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if keyword == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

// Summary carries only the fields needed for eligibility reasoning, used to
// bound the size of reasoning-service requests.
type Summary struct {
	SchemeName          string `json:"scheme_name"`
	Category            string `json:"category,omitempty"`
	State               string `json:"state,omitempty"`
	TargetBeneficiaries string `json:"target_beneficiaries,omitempty"`
	Tags                string `json:"tags,omitempty"`
	Description         string `json:"description,omitempty"`
}

// Summarize reduces the record to the fields relevant for eligibility reasoning.
func (r *Record) Summarize() Summary {
	return Summary{
		SchemeName:          r.Name,
		Category:            r.Category,
		State:               r.State,
		TargetBeneficiaries: r.TargetBeneficiaries,
		Tags:                r.Tags,
		Description:         r.Description,
	}
}

// Schemes is the in-memory scheme catalog, loaded once per session and shared
// read-only across matching calls.
type Schemes struct {
	Items []*Record
}

func (s *Schemes) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Items)
}

// FindByName returns the first record with the exact provided name, or nil.
// Uniqueness of names is assumed but not enforced; first match wins.
func (s *Schemes) FindByName(name string) *Record {
	if s == nil {
		return nil
	}
	for _, record := range s.Items {
		if record.Name == name {
			return record
		}
	}
	return nil
}

// FindByNameFold is the case-insensitive lookup variant used by interactive
// search paths.
func (s *Schemes) FindByNameFold(name string) *Record {
	if s == nil {
		return nil
	}
	for _, record := range s.Items {
		if strings.EqualFold(record.Name, name) {
			return record
		}
	}
	return nil
}

// Filter returns the records satisfying the predicate, preserving catalog order.
func (s *Schemes) Filter(predicate func(*Record) bool) *Schemes {
	filtered := &Schemes{}
	if s == nil {
		return filtered
	}
	for _, record := range s.Items {
		if predicate(record) {
			filtered.Items = append(filtered.Items, record)
		}
	}
	return filtered
}

// FilterByCategory returns records with the given category, case-insensitively.
func (s *Schemes) FilterByCategory(category string) *Schemes {
	return s.Filter(func(record *Record) bool {
		return strings.EqualFold(strings.TrimSpace(record.Category), strings.TrimSpace(category))
	})
}

// Categories returns the sorted set of non-empty categories present in the catalog.
func (s *Schemes) Categories() []string {
	if s == nil {
		return nil
	}

	seen := make(map[string]struct{})
	categories := make([]string, 0)
	for _, record := range s.Items {
		category := strings.TrimSpace(record.Category)
		if category == "" {
			continue
		}
		if _, ok := seen[category]; ok {
			continue
		}
		seen[category] = struct{}{}
		categories = append(categories, category)
	}

	sort.Strings(categories)
	return categories
}

// Search returns records whose searchable text contains the query,
// case-insensitively. An empty query returns the full catalog.
func (s *Schemes) Search(query string) *Schemes {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		if s == nil {
			return &Schemes{}
		}
		return &Schemes{Items: s.Items}
	}

	return s.Filter(func(record *Record) bool {
		searchable := strings.ToLower(strings.Join([]string{
			record.Name,
			record.Description,
			record.Category,
			record.TargetBeneficiaries,
			record.Tags,
			record.EligibilityCriteria,
		}, " "))
		return strings.Contains(searchable, query)
	})
}

// Summaries returns at most max scheme summaries, preserving catalog order.
// A non-positive max returns summaries for the whole catalog.
func (s *Schemes) Summaries(max int) []Summary {
	if s == nil {
		return nil
	}

	count := len(s.Items)
	if max > 0 && count > max {
		count = max
	}

	summaries := make([]Summary, 0, count)
	for _, record := range s.Items[:count] {
		summaries = append(summaries, record.Summarize())
	}
	return summaries
}

// Names returns all scheme names in catalog order.
func (s *Schemes) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Items))
	for _, record := range s.Items {
		names = append(names, record.Name)
	}
	return names
}
