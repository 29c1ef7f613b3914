package services

import "testing"

func resolverFixtures() ([]StandardService, []AdditionalService, []ServiceLink) {
	standard := []StandardService{
		{ID: "svc-mech-d", Discipline: "mechanical", ServiceName: "HVAC Design", Phase: PhaseDesign, DefaultSetting: true},
		{ID: "svc-mech-c", Discipline: "mechanical", ServiceName: "HVAC Commissioning", Phase: PhaseConstruction, DefaultSetting: true},
		{ID: "svc-elec-d", Discipline: "electrical", ServiceName: "Power Design", Phase: PhaseDesign, DefaultSetting: true},
	}
	additional := []AdditionalService{
		{ID: "item-energy", Name: "Energy Model", Discipline: "mechanical", Phase: PhaseDesign, DefaultMinValue: 1500, IsActive: true},
		{ID: "item-tab", Name: "TAB Review", Discipline: "mechanical", Phase: PhaseConstruction, DefaultMinValue: 800, IsActive: true},
		{ID: "item-arc", Name: "Arc Flash Study", Discipline: "electrical", Phase: PhaseDesign, DefaultMinValue: 1200, IsActive: true},
		{ID: "item-retired", Name: "Retired Service", Discipline: "mechanical", Phase: PhaseDesign, DefaultMinValue: 999, IsActive: false},
	}
	links := []ServiceLink{
		{EngineeringServiceID: "svc-mech-d", AdditionalItemID: "item-energy"},
		{EngineeringServiceID: "svc-mech-d", AdditionalItemID: "item-tab"},     // phase mismatch against design
		{EngineeringServiceID: "svc-mech-d", AdditionalItemID: "item-retired"}, // inactive
		{EngineeringServiceID: "svc-mech-c", AdditionalItemID: "item-tab"},
		{EngineeringServiceID: "svc-elec-d", AdditionalItemID: "item-arc"},
	}
	return standard, additional, links
}

func testSpaceWithDisciplines(active ...string) *Space {
	sp := &Space{ID: newID(), Name: "Test Space"}
	on := map[string]bool{}
	for _, disc := range active {
		on[disc] = true
	}
	for _, disc := range DefaultDisciplines {
		sp.Fees = append(sp.Fees, &Fee{ID: newID(), Discipline: disc, IsActive: on[disc]})
	}
	return sp
}

func TestResolveAdditionalServices_MatchesActiveDisciplines(t *testing.T) {
	standard, additional, links := resolverFixtures()
	sp := testSpaceWithDisciplines("mechanical")

	items := ResolveAdditionalServices(sp, PhaseDesign, standard, additional, links)

	if len(items) != 1 {
		t.Fatalf("item count = %d, want 1", len(items))
	}
	got := items[0]
	if got.Name != "Energy Model" || got.Phase != PhaseDesign {
		t.Errorf("unexpected item: %+v", got)
	}
	if got.Type != FeeItemAdditionalService {
		t.Errorf("Type = %q, want %q", got.Type, FeeItemAdditionalService)
	}
	if got.ParentDiscipline != "mechanical" {
		t.Errorf("ParentDiscipline = %q, want mechanical", got.ParentDiscipline)
	}
	if got.DefaultMinValue != 1500 {
		t.Errorf("DefaultMinValue = %v, want 1500", got.DefaultMinValue)
	}
}

func TestResolveAdditionalServices_PhaseMismatchSkipped(t *testing.T) {
	standard, additional, links := resolverFixtures()
	sp := testSpaceWithDisciplines("mechanical")

	// svc-mech-d links item-tab, but that item is construction-phase:
	// it must not surface in the design section.
	for _, item := range ResolveAdditionalServices(sp, PhaseDesign, standard, additional, links) {
		if item.Name == "TAB Review" {
			t.Error("construction item attached to design section")
		}
	}

	construction := ResolveAdditionalServices(sp, PhaseConstruction, standard, additional, links)
	if len(construction) != 1 || construction[0].Name != "TAB Review" {
		t.Errorf("construction resolution = %+v, want TAB Review only", construction)
	}
}

func TestResolveAdditionalServices_InactiveItemsAndDisciplinesSkipped(t *testing.T) {
	standard, additional, links := resolverFixtures()
	sp := testSpaceWithDisciplines("mechanical")

	for _, item := range ResolveAdditionalServices(sp, PhaseDesign, standard, additional, links) {
		if item.Name == "Retired Service" {
			t.Error("inactive additional item attached")
		}
		if item.Name == "Arc Flash Study" {
			t.Error("electrical item attached while electrical fee inactive")
		}
	}
}

func TestResolveAdditionalServices_MultipleDisciplines(t *testing.T) {
	standard, additional, links := resolverFixtures()
	sp := testSpaceWithDisciplines("mechanical", "electrical")

	items := ResolveAdditionalServices(sp, PhaseDesign, standard, additional, links)
	if len(items) != 2 {
		t.Fatalf("item count = %d, want 2", len(items))
	}
}

func TestResolveAdditionalServices_EmptyReference(t *testing.T) {
	sp := testSpaceWithDisciplines("mechanical")
	if items := ResolveAdditionalServices(sp, PhaseDesign, nil, nil, nil); len(items) != 0 {
		t.Errorf("expected no items from empty reference data, got %d", len(items))
	}
	if items := ResolveAdditionalServices(nil, PhaseDesign, nil, nil, nil); items != nil {
		t.Error("nil space must resolve to nil")
	}
}

func TestResolveAdditionalServices_RepeatInvocationIsAdditive(t *testing.T) {
	standard, additional, links := resolverFixtures()
	sp := testSpaceWithDisciplines("mechanical")
	p := NewProposal("Additive")

	p.AttachFeeItems(ResolveAdditionalServices(sp, PhaseDesign, standard, additional, links))
	p.AttachFeeItems(ResolveAdditionalServices(sp, PhaseDesign, standard, additional, links))

	if len(p.FeeItems) != 2 {
		t.Errorf("FeeItems = %d, want 2 (resolution is additive, not deduplicated)", len(p.FeeItems))
	}
}
