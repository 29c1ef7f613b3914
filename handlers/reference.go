package handlers

import (
	"log"

	"github.com/pocketbase/pocketbase"

	"feeproposal/services"
)

// LoadRateBook reads the design fee scale and duplicate discount curve.
// Missing reference data degrades to an empty book: scale lookups then
// return the zero row and duplicate rates default to 1.0, so fee math
// stays defined even on an unseeded database.
func LoadRateBook(app *pocketbase.PocketBase) *services.RateBook {
	book := &services.RateBook{}

	scaleCol, err := app.FindCollectionByNameOrId("design_fee_scale")
	if err != nil {
		log.Printf("load_rate_book: design_fee_scale collection missing: %v", err)
		return book
	}
	rows, err := app.FindRecordsByFilter(scaleCol, "id != ''", "construction_cost", 0, 0)
	if err != nil {
		log.Printf("load_rate_book: could not query design_fee_scale: %v", err)
		rows = nil
	}
	for _, r := range rows {
		book.Scale = append(book.Scale, services.FeeScaleRow{
			ConstructionCost:   r.GetFloat("construction_cost"),
			PrimeConsultantFee: r.GetFloat("prime_consultant_fee"),
			FractionMechanical: r.GetFloat("fraction_mechanical"),
			FractionPlumbing:   r.GetFloat("fraction_plumbing"),
			FractionElectrical: r.GetFloat("fraction_electrical"),
			FractionStructural: r.GetFloat("fraction_structural"),
		})
	}

	dupCol, err := app.FindCollectionByNameOrId("fee_duplicate_structures")
	if err != nil {
		log.Printf("load_rate_book: fee_duplicate_structures collection missing: %v", err)
		return book
	}
	dups, err := app.FindRecordsByFilter(dupCol, "id != ''", "ordinal", 0, 0)
	if err != nil {
		log.Printf("load_rate_book: could not query fee_duplicate_structures: %v", err)
		dups = nil
	}
	for _, r := range dups {
		book.DuplicateRates = append(book.DuplicateRates, services.DuplicateRateRow{
			Ordinal: r.GetInt("ordinal"),
			Rate:    r.GetFloat("rate"),
		})
	}

	return book
}

// LoadStandardServices reads the engineering service catalog. Failures are
// logged and yield an empty catalog, which simply resolves no services.
func LoadStandardServices(app *pocketbase.PocketBase) []services.StandardService {
	col, err := app.FindCollectionByNameOrId("engineering_services")
	if err != nil {
		log.Printf("load_services: engineering_services collection missing: %v", err)
		return nil
	}
	records, err := app.FindAllRecords(col)
	if err != nil {
		log.Printf("load_services: could not query engineering_services: %v", err)
		return nil
	}
	out := make([]services.StandardService, 0, len(records))
	for _, r := range records {
		out = append(out, services.StandardService{
			ID:             r.Id,
			Discipline:     r.GetString("discipline"),
			ServiceName:    r.GetString("service_name"),
			Phase:          r.GetString("phase"),
			DefaultSetting: r.GetBool("default_setting"),
		})
	}
	return out
}

// LoadAdditionalItems reads the additional-item catalog.
func LoadAdditionalItems(app *pocketbase.PocketBase) []services.AdditionalService {
	col, err := app.FindCollectionByNameOrId("fee_additional_items")
	if err != nil {
		log.Printf("load_items: fee_additional_items collection missing: %v", err)
		return nil
	}
	records, err := app.FindAllRecords(col)
	if err != nil {
		log.Printf("load_items: could not query fee_additional_items: %v", err)
		return nil
	}
	out := make([]services.AdditionalService, 0, len(records))
	for _, r := range records {
		out = append(out, services.AdditionalService{
			ID:              r.Id,
			Name:            r.GetString("name"),
			Description:     r.GetString("description"),
			Discipline:      r.GetString("discipline"),
			Phase:           r.GetString("phase"),
			DefaultMinValue: r.GetFloat("default_min_value"),
			IsActive:        r.GetBool("is_active"),
		})
	}
	return out
}

// LoadServiceLinks reads the service-to-item link table.
func LoadServiceLinks(app *pocketbase.PocketBase) []services.ServiceLink {
	col, err := app.FindCollectionByNameOrId("engineering_service_links")
	if err != nil {
		log.Printf("load_links: engineering_service_links collection missing: %v", err)
		return nil
	}
	records, err := app.FindAllRecords(col)
	if err != nil {
		log.Printf("load_links: could not query engineering_service_links: %v", err)
		return nil
	}
	out := make([]services.ServiceLink, 0, len(records))
	for _, r := range records {
		out = append(out, services.ServiceLink{
			EngineeringServiceID: r.GetString("engineering_service"),
			AdditionalItemID:     r.GetString("additional_item"),
		})
	}
	return out
}

// LoadConstructionTypes reads the construction type reference list.
func LoadConstructionTypes(app *pocketbase.PocketBase) []services.ConstructionType {
	col, err := app.FindCollectionByNameOrId("project_construction_types")
	if err != nil {
		log.Printf("load_types: project_construction_types collection missing: %v", err)
		return nil
	}
	records, err := app.FindRecordsByFilter(col, "id != ''", "project_type", 0, 0)
	if err != nil {
		log.Printf("load_types: could not query project_construction_types: %v", err)
		return nil
	}
	out := make([]services.ConstructionType, 0, len(records))
	for _, r := range records {
		out = append(out, services.ConstructionType{
			ID:                r.Id,
			ProjectType:       r.GetString("project_type"),
			RelativeCostIndex: r.GetFloat("relative_cost_index"),
		})
	}
	return out
}
