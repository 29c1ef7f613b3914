package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// ── Definition structs ───────────────────────────────────────────────────

type scaleDef struct {
	constructionCost   float64
	primeConsultantFee float64
	fractionMechanical float64
	fractionPlumbing   float64
	fractionElectrical float64
	fractionStructural float64
}

type constructionTypeDef struct {
	projectType       string
	relativeCostIndex float64
}

type serviceDef struct {
	discipline     string
	serviceName    string
	phase          string
	defaultSetting bool
}

type additionalItemDef struct {
	name            string
	description     string
	discipline      string
	phase           string
	defaultMinValue float64
	isActive        bool
}

type serviceLinkDef struct {
	serviceName string
	itemName    string
}

// Seed populates the reference-data collections: the tiered design fee
// schedule, the duplicate-structure discount curve, construction types,
// the per-discipline engineering service catalog and the additional
// items linked to it. It is safe to call on every startup because it
// returns early if any fee scale rows already exist.
func Seed(app *pocketbase.PocketBase) error {
	// ── idempotency: skip if the fee scale is already populated ──────
	scaleCol, err := app.FindCollectionByNameOrId("design_fee_scale")
	if err != nil {
		return fmt.Errorf("seed: could not find design_fee_scale collection: %w", err)
	}
	existing, err := app.FindAllRecords(scaleCol)
	if err != nil {
		return fmt.Errorf("seed: could not query design_fee_scale: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	log.Println("seed: design_fee_scale is empty – inserting reference data …")

	dupCol, err := app.FindCollectionByNameOrId("fee_duplicate_structures")
	if err != nil {
		return fmt.Errorf("seed: could not find fee_duplicate_structures collection: %w", err)
	}
	typesCol, err := app.FindCollectionByNameOrId("project_construction_types")
	if err != nil {
		return fmt.Errorf("seed: could not find project_construction_types collection: %w", err)
	}
	servicesCol, err := app.FindCollectionByNameOrId("engineering_services")
	if err != nil {
		return fmt.Errorf("seed: could not find engineering_services collection: %w", err)
	}
	itemsCol, err := app.FindCollectionByNameOrId("fee_additional_items")
	if err != nil {
		return fmt.Errorf("seed: could not find fee_additional_items collection: %w", err)
	}
	linksCol, err := app.FindCollectionByNameOrId("engineering_service_links")
	if err != nil {
		return fmt.Errorf("seed: could not find engineering_service_links collection: %w", err)
	}

	// ── design fee scale (tier floors in construction cost) ──────────
	scale := []scaleDef{
		{0, 12.0, 50, 30, 40, 20},
		{100000, 11.0, 50, 30, 40, 20},
		{250000, 10.0, 48, 29, 39, 19},
		{500000, 9.0, 47, 29, 38, 19},
		{1000000, 8.0, 45, 28, 38, 18},
		{2500000, 7.0, 44, 27, 37, 18},
		{5000000, 6.5, 42, 26, 36, 17},
		{10000000, 6.0, 40, 25, 35, 16},
		{25000000, 5.5, 38, 24, 34, 15},
	}
	for _, d := range scale {
		r := core.NewRecord(scaleCol)
		r.Set("construction_cost", d.constructionCost)
		r.Set("prime_consultant_fee", d.primeConsultantFee)
		r.Set("fraction_mechanical", d.fractionMechanical)
		r.Set("fraction_plumbing", d.fractionPlumbing)
		r.Set("fraction_electrical", d.fractionElectrical)
		r.Set("fraction_structural", d.fractionStructural)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: save fee scale row (floor %.0f): %w", d.constructionCost, err)
		}
	}

	// ── duplicate structure discount curve (flattens at ordinal 10) ──
	dupRates := []float64{1.0, 0.9, 0.8, 0.75, 0.7, 0.65, 0.6, 0.55, 0.5, 0.5}
	for i, rate := range dupRates {
		r := core.NewRecord(dupCol)
		r.Set("ordinal", i+1)
		r.Set("rate", rate)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: save duplicate rate ordinal %d: %w", i+1, err)
		}
	}

	// ── construction types ───────────────────────────────────────────
	constructionTypes := []constructionTypeDef{
		{"New Construction", 1.0},
		{"Addition", 1.1},
		{"Renovation", 1.25},
		{"Tenant Improvement", 0.85},
		{"Shell Only", 0.6},
	}
	for _, d := range constructionTypes {
		r := core.NewRecord(typesCol)
		r.Set("project_type", d.projectType)
		r.Set("relative_cost_index", d.relativeCostIndex)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: save construction type %q: %w", d.projectType, err)
		}
	}

	// ── engineering service catalog ──────────────────────────────────
	services := []serviceDef{
		{"mechanical", "HVAC Design", "design", true},
		{"mechanical", "Energy Compliance", "design", true},
		{"mechanical", "HVAC Construction Support", "construction", true},
		{"plumbing", "Plumbing Design", "design", true},
		{"plumbing", "Plumbing Construction Support", "construction", true},
		{"electrical", "Power & Lighting Design", "design", true},
		{"electrical", "Lighting Compliance", "design", false},
		{"electrical", "Electrical Construction Support", "construction", true},
		{"structural", "Structural Design", "design", true},
		{"structural", "Structural Construction Support", "construction", true},
	}
	serviceIDs := make(map[string]string, len(services))
	for _, d := range services {
		r := core.NewRecord(servicesCol)
		r.Set("discipline", d.discipline)
		r.Set("service_name", d.serviceName)
		r.Set("phase", d.phase)
		r.Set("default_setting", d.defaultSetting)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: save engineering service %q: %w", d.serviceName, err)
		}
		serviceIDs[d.serviceName] = r.Id
	}

	// ── additional items ─────────────────────────────────────────────
	additionalItems := []additionalItemDef{
		{"REScheck Report", "Residential energy code compliance report", "mechanical", "design", 350, true},
		{"COMcheck Report", "Commercial energy code compliance report", "mechanical", "design", 500, true},
		{"Load Calculations", "Manual J/S equipment load calculations", "mechanical", "design", 450, true},
		{"Backflow Detail", "Backflow preventer detail sheet", "plumbing", "design", 250, true},
		{"Grease Interceptor Sizing", "Interceptor sizing calculation", "plumbing", "design", 300, false},
		{"Photometric Plan", "Site and interior photometric layout", "electrical", "design", 600, true},
		{"Arc Flash Study", "Arc flash hazard analysis", "electrical", "design", 1200, true},
		{"Special Inspections", "Structural special inspection schedule", "structural", "design", 400, true},
		{"Mechanical Site Visits", "Construction phase site observation", "mechanical", "construction", 900, true},
		{"Electrical Site Visits", "Construction phase site observation", "electrical", "construction", 900, true},
		{"Structural Site Visits", "Construction phase site observation", "structural", "construction", 900, true},
	}
	itemIDs := make(map[string]string, len(additionalItems))
	for _, d := range additionalItems {
		r := core.NewRecord(itemsCol)
		r.Set("name", d.name)
		r.Set("description", d.description)
		r.Set("discipline", d.discipline)
		r.Set("phase", d.phase)
		r.Set("default_min_value", d.defaultMinValue)
		r.Set("is_active", d.isActive)
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: save additional item %q: %w", d.name, err)
		}
		itemIDs[d.name] = r.Id
	}

	// ── service → item links ─────────────────────────────────────────
	links := []serviceLinkDef{
		{"Energy Compliance", "REScheck Report"},
		{"Energy Compliance", "COMcheck Report"},
		{"HVAC Design", "Load Calculations"},
		{"Plumbing Design", "Backflow Detail"},
		{"Plumbing Design", "Grease Interceptor Sizing"},
		{"Power & Lighting Design", "Photometric Plan"},
		{"Power & Lighting Design", "Arc Flash Study"},
		{"Structural Design", "Special Inspections"},
		{"HVAC Construction Support", "Mechanical Site Visits"},
		{"Electrical Construction Support", "Electrical Site Visits"},
		{"Structural Construction Support", "Structural Site Visits"},
	}
	for _, d := range links {
		r := core.NewRecord(linksCol)
		r.Set("engineering_service", serviceIDs[d.serviceName])
		r.Set("additional_item", itemIDs[d.itemName])
		if err := app.Save(r); err != nil {
			return fmt.Errorf("seed: link %q -> %q: %w", d.serviceName, d.itemName, err)
		}
	}

	log.Printf("seed: reference data inserted (%d scale rows, %d duplicate rates, %d construction types, %d services, %d items, %d links)",
		len(scale), len(dupRates), len(constructionTypes), len(services), len(additionalItems), len(links))
	return nil
}
