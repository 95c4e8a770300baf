package profile

import (
	"testing"
)

func TestMergeOverwritesOnlyMentionedFields(t *testing.T) {
	t.Parallel()

	current := &Profile{Age: 30, State: "Maharashtra", Occupation: "farmer"}
	update := &Profile{Age: 31, Category: "SC"}

	merged := current.Merge(update)

	if merged.Age != 31 {
		t.Fatalf("expected age overwritten, got %d", merged.Age)
	}
	if merged.State != "Maharashtra" {
		t.Fatalf("expected state preserved, got %q", merged.State)
	}
	if merged.Occupation != "farmer" {
		t.Fatalf("expected occupation preserved, got %q", merged.Occupation)
	}
	if merged.Category != "SC" {
		t.Fatalf("expected category added, got %q", merged.Category)
	}

	if current.Age != 30 || current.Category != "" {
		t.Fatal("expected the original profile to be untouched")
	}
}

func TestMergeTreatsZeroValuesAsNotMentioned(t *testing.T) {
	t.Parallel()

	current := &Profile{Age: 45, FamilySize: 4, LandHolding: 2.5, Income: "BPL"}
	update := &Profile{Age: 0, FamilySize: 0, LandHolding: 0, Income: ""}

	merged := current.Merge(update)

	if *merged != *current {
		t.Fatalf("expected zero-valued update to change nothing, got %+v", merged)
	}
}

func TestMergeNilUpdate(t *testing.T) {
	t.Parallel()

	current := &Profile{State: "Kerala"}
	merged := current.Merge(nil)

	if merged.State != "Kerala" {
		t.Fatalf("expected clone of current, got %+v", merged)
	}
}

func TestIsEmpty(t *testing.T) {
	t.Parallel()

	if !New().IsEmpty() {
		t.Fatal("expected fresh profile to be empty")
	}

	var nilProfile *Profile
	if !nilProfile.IsEmpty() {
		t.Fatal("expected nil profile to be empty")
	}

	if (&Profile{Gender: "female"}).IsEmpty() {
		t.Fatal("expected profile with a field set to be non-empty")
	}
}

func TestFieldsOmitsUnset(t *testing.T) {
	t.Parallel()

	p := &Profile{Age: 22, Occupation: "student"}
	fields := p.Fields()

	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %d: %v", len(fields), fields)
	}

	if fields[FieldAge] != 22 {
		t.Fatalf("unexpected age field: %v", fields[FieldAge])
	}

	if _, ok := fields[FieldState]; ok {
		t.Fatal("expected unset state to be omitted")
	}
}

func TestHasDisability(t *testing.T) {
	t.Parallel()

	if (&Profile{}).HasDisability() {
		t.Fatal("expected empty disability to be false")
	}

	if !(&Profile{Disability: "40% locomotor"}).HasDisability() {
		t.Fatal("expected non-empty disability to be true")
	}
}
