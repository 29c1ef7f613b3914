package collections_test

import (
	"testing"

	"feeproposal/collections"
	"feeproposal/testhelpers"
)

func TestSeed_CreatesReferenceData(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	// Fee scale rows exist and first tier starts at cost 0
	scaleCol, _ := app.FindCollectionByNameOrId("design_fee_scale")
	scale, err := app.FindAllRecords(scaleCol)
	if err != nil {
		t.Fatalf("query design_fee_scale error: %v", err)
	}
	if len(scale) == 0 {
		t.Fatal("expected fee scale rows to be created")
	}
	foundZeroFloor := false
	for _, r := range scale {
		if r.GetFloat("construction_cost") == 0 {
			foundZeroFloor = true
			if r.GetFloat("prime_consultant_fee") <= 0 {
				t.Error("zero-floor tier has no prime consultant fee")
			}
		}
	}
	if !foundZeroFloor {
		t.Error("expected a fee scale tier with construction_cost = 0")
	}

	// Duplicate curve covers ordinals 1..10, first ordinal full rate
	dupCol, _ := app.FindCollectionByNameOrId("fee_duplicate_structures")
	dups, _ := app.FindAllRecords(dupCol)
	if len(dups) != 10 {
		t.Fatalf("expected 10 duplicate rate rows, got %d", len(dups))
	}
	rates := make(map[int]float64, len(dups))
	for _, r := range dups {
		rates[r.GetInt("ordinal")] = r.GetFloat("rate")
	}
	if rates[1] != 1.0 {
		t.Errorf("ordinal 1 rate = %v, want 1.0", rates[1])
	}
	if rates[2] != 0.9 {
		t.Errorf("ordinal 2 rate = %v, want 0.9", rates[2])
	}
	if rates[10] <= 0 {
		t.Error("ordinal 10 rate missing")
	}

	// Construction types
	typesCol, _ := app.FindCollectionByNameOrId("project_construction_types")
	types, _ := app.FindAllRecords(typesCol)
	if len(types) == 0 {
		t.Error("expected construction types to be created")
	}

	// Services cover every discipline in both phases
	servicesCol, _ := app.FindCollectionByNameOrId("engineering_services")
	services, _ := app.FindAllRecords(servicesCol)
	byDiscipline := make(map[string]map[string]bool)
	for _, r := range services {
		d := r.GetString("discipline")
		if byDiscipline[d] == nil {
			byDiscipline[d] = make(map[string]bool)
		}
		byDiscipline[d][r.GetString("phase")] = true
	}
	for _, d := range []string{"mechanical", "plumbing", "electrical", "structural"} {
		if !byDiscipline[d]["design"] {
			t.Errorf("discipline %q has no design-phase service", d)
		}
		if !byDiscipline[d]["construction"] {
			t.Errorf("discipline %q has no construction-phase service", d)
		}
	}

	// Every link references an existing service and item
	linksCol, _ := app.FindCollectionByNameOrId("engineering_service_links")
	links, _ := app.FindAllRecords(linksCol)
	if len(links) == 0 {
		t.Fatal("expected service links to be created")
	}
	for _, l := range links {
		if _, err := app.FindRecordById("engineering_services", l.GetString("engineering_service")); err != nil {
			t.Errorf("link %s references missing service", l.Id)
		}
		if _, err := app.FindRecordById("fee_additional_items", l.GetString("additional_item")); err != nil {
			t.Errorf("link %s references missing additional item", l.Id)
		}
	}
}

func TestSeed_Idempotent(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("first Seed() error: %v", err)
	}

	scaleCol, _ := app.FindCollectionByNameOrId("design_fee_scale")
	first, _ := app.FindAllRecords(scaleCol)

	if err := collections.Seed(app); err != nil {
		t.Fatalf("second Seed() error: %v", err)
	}

	second, _ := app.FindAllRecords(scaleCol)
	if len(second) != len(first) {
		t.Errorf("fee scale rows changed after idempotent seed: %d -> %d", len(first), len(second))
	}

	dupCol, _ := app.FindCollectionByNameOrId("fee_duplicate_structures")
	dups, _ := app.FindAllRecords(dupCol)
	if len(dups) != 10 {
		t.Errorf("expected 10 duplicate rate rows after idempotent seed, got %d", len(dups))
	}
}
