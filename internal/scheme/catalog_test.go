package scheme

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

const flatCatalog = `[
  {
    "scheme_name": "PM-KISAN",
    "category": "Agriculture",
    "state": "All India",
    "tags": "farmer, agriculture, income support",
    "eligibility_criteria": "Small and marginal farmers with cultivable land"
  },
  {
    "scheme_name": "Majhi Kanya Bhagyashree",
    "category": "Women Welfare",
    "state": "Maharashtra",
    "tags": "women, girl, bpl",
    "eligibility_criteria": "Girl child of BPL families in Maharashtra"
  }
]`

const nestedCatalog = `[
  [
    {
      "scheme_name": "PM-KISAN",
      "category": "Agriculture",
      "state": "All India",
      "tags": "farmer, agriculture, income support",
      "eligibility_criteria": "Small and marginal farmers with cultivable land"
    }
  ],
  [
    {
      "scheme_name": "Majhi Kanya Bhagyashree",
      "category": "Women Welfare",
      "state": "Maharashtra",
      "tags": "women, girl, bpl",
      "eligibility_criteria": "Girl child of BPL families in Maharashtra"
    }
  ]
]`

func TestLoadFlatList(t *testing.T) {
	t.Parallel()

	catalog, err := Load(strings.NewReader(flatCatalog))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if catalog.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", catalog.Len())
	}

	record := catalog.FindByName("PM-KISAN")
	if record == nil {
		t.Fatal("expected PM-KISAN to be present")
	}

	if record.State != "All India" {
		t.Fatalf("unexpected state: %q", record.State)
	}
}

func TestLoadFlatteningIdempotence(t *testing.T) {
	t.Parallel()

	flat, err := Load(strings.NewReader(flatCatalog))
	if err != nil {
		t.Fatalf("unexpected error loading flat list: %v", err)
	}

	nested, err := Load(strings.NewReader(nestedCatalog))
	if err != nil {
		t.Fatalf("unexpected error loading nested list: %v", err)
	}

	if !reflect.DeepEqual(flat.Names(), nested.Names()) {
		t.Fatalf("expected identical catalogs, got %v vs %v", flat.Names(), nested.Names())
	}
}

func TestLoadRejectsNonListSource(t *testing.T) {
	t.Parallel()

	catalog, err := Load(strings.NewReader(`{"scheme_name": "not a list"}`))
	if err == nil {
		t.Fatal("expected error for non-list source")
	}

	if catalog == nil || catalog.Len() != 0 {
		t.Fatalf("expected empty catalog on load error, got %v", catalog)
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	t.Parallel()

	catalog, err := Load(strings.NewReader(`[{"scheme_name": `))
	if err == nil {
		t.Fatal("expected error for malformed source")
	}

	if catalog.Len() != 0 {
		t.Fatalf("expected empty catalog, got %d records", catalog.Len())
	}
}

func TestLoadFileMissing(t *testing.T) {
	t.Parallel()

	catalog, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("expected error for missing catalog file")
	}

	if catalog.Len() != 0 {
		t.Fatalf("expected empty catalog, got %d records", catalog.Len())
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "schemes.json")
	if err := os.WriteFile(path, []byte(flatCatalog), 0o644); err != nil {
		t.Fatalf("writing catalog file: %v", err)
	}

	catalog, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if catalog.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", catalog.Len())
	}
}

func TestLoadCoercesLooseValues(t *testing.T) {
	t.Parallel()

	source := `[{"scheme_name": "Weird Types", "tags": "one, two", "level": 1}]`

	catalog, err := Load(strings.NewReader(source))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record := catalog.FindByName("Weird Types")
	if record == nil {
		t.Fatal("expected record to load")
	}

	if record.Level != "1" {
		t.Fatalf("expected numeric level coerced to string, got %q", record.Level)
	}
}
