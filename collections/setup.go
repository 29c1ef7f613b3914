package collections

import (
	"fmt"
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// Setup programmatically creates/ensures the proposal, hierarchy and
// reference-data collections exist.
func Setup(app *pocketbase.PocketBase) {
	proposals := ensureCollection(app, "proposals", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "title", Required: true})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
	})

	structures := ensureCollection(app, "structures", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "proposal",
			Required:      true,
			CollectionId:  proposals.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		// Self-referencing: set for duplicates, empty for originals.
		// Stored as a plain id to avoid a relation onto an unsaved collection.
		c.Fields.Add(&core.TextField{Name: "parent_structure", Required: false})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: true})
		c.Fields.Add(&core.TextField{Name: "description", Required: true})
		c.Fields.Add(&core.TextField{Name: "construction_type", Required: false})
		c.Fields.Add(&core.NumberField{Name: "floor_area", Required: false})
		c.Fields.Add(&core.NumberField{Name: "design_fee_rate", Required: false})
		c.Fields.Add(&core.BoolField{Name: "construction_support_enabled"})
	})

	levels := ensureCollection(app, "levels", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "structure",
			Required:      true,
			CollectionId:  structures.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: true})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.NumberField{Name: "floor_area", Required: false})
	})

	spaces := ensureCollection(app, "spaces", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "level",
			Required:      true,
			CollectionId:  levels.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.NumberField{Name: "sort_order", Required: true})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.NumberField{Name: "floor_area", Required: false})
		c.Fields.Add(&core.TextField{Name: "building_type", Required: false})
		c.Fields.Add(&core.BoolField{Name: "split_fees"})
	})

	ensureCollection(app, "fees", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "space",
			Required:      true,
			CollectionId:  spaces.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "discipline", Required: true})
		c.Fields.Add(&core.NumberField{Name: "total_fee", Required: false})
		c.Fields.Add(&core.NumberField{Name: "cost_per_sqft", Required: false})
		c.Fields.Add(&core.BoolField{Name: "is_active"})
	})

	ensureCollection(app, "manual_fee_overrides", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "proposal",
			Required:      true,
			CollectionId:  proposals.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "structure_id", Required: true})
		c.Fields.Add(&core.TextField{Name: "discipline", Required: true})
		c.Fields.Add(&core.TextField{Name: "space_id", Required: false})
		// Stored as text so an empty value means "no override".
		c.Fields.Add(&core.TextField{Name: "design_fee", Required: false})
		c.Fields.Add(&core.TextField{Name: "construction_support_fee", Required: false})
	})

	ensureCollection(app, "fee_items", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "proposal",
			Required:      true,
			CollectionId:  proposals.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "description", Required: false})
		c.Fields.Add(&core.NumberField{Name: "default_min_value", Required: false})
		c.Fields.Add(&core.TextField{Name: "discipline", Required: false})
		c.Fields.Add(&core.TextField{Name: "parent_discipline", Required: false})
		c.Fields.Add(&core.SelectField{
			Name:      "type",
			Required:  true,
			Values:    []string{"rescheck", "nested", "multi", "discipline", "additional_service"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.SelectField{
			Name:      "phase",
			Required:  true,
			Values:    []string{"design", "construction"},
			MaxSelect: 1,
		})
	})

	ensureCollection(app, "design_fee_scale", func(c *core.Collection) {
		c.Fields.Add(&core.NumberField{Name: "construction_cost", Required: false})
		c.Fields.Add(&core.NumberField{Name: "prime_consultant_fee", Required: true})
		c.Fields.Add(&core.NumberField{Name: "fraction_mechanical", Required: false})
		c.Fields.Add(&core.NumberField{Name: "fraction_plumbing", Required: false})
		c.Fields.Add(&core.NumberField{Name: "fraction_electrical", Required: false})
		c.Fields.Add(&core.NumberField{Name: "fraction_structural", Required: false})
	})

	ensureCollection(app, "fee_duplicate_structures", func(c *core.Collection) {
		c.Fields.Add(&core.NumberField{Name: "ordinal", Required: true})
		c.Fields.Add(&core.NumberField{Name: "rate", Required: true})
	})

	ensureCollection(app, "project_construction_types", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "project_type", Required: true})
		c.Fields.Add(&core.NumberField{Name: "relative_cost_index", Required: false})
	})

	engineeringServices := ensureCollection(app, "engineering_services", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "discipline", Required: true})
		c.Fields.Add(&core.TextField{Name: "service_name", Required: true})
		c.Fields.Add(&core.SelectField{
			Name:      "phase",
			Required:  true,
			Values:    []string{"design", "construction"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.BoolField{Name: "default_setting"})
	})

	additionalItems := ensureCollection(app, "fee_additional_items", func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "name", Required: true})
		c.Fields.Add(&core.TextField{Name: "description", Required: false})
		c.Fields.Add(&core.TextField{Name: "discipline", Required: true})
		c.Fields.Add(&core.SelectField{
			Name:      "phase",
			Required:  true,
			Values:    []string{"design", "construction"},
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "default_min_value", Required: false})
		c.Fields.Add(&core.BoolField{Name: "is_active"})
	})

	ensureCollection(app, "engineering_service_links", func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "engineering_service",
			Required:      true,
			CollectionId:  engineeringServices.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.RelationField{
			Name:          "additional_item",
			Required:      true,
			CollectionId:  additionalItems.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
	})
}

// ensureCollection checks if a collection already exists by name. If it does,
// the existing collection is returned. Otherwise a new base collection is
// created, the addFields callback is invoked to populate its fields, and the
// collection is saved.
func ensureCollection(app *pocketbase.PocketBase, name string, addFields func(*core.Collection)) *core.Collection {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Printf("Collection %q already exists, skipping creation.\n", name)
		return existing
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		log.Fatalf("Failed to create collection %q: %v", name, err)
	}

	fmt.Printf("Created collection %q (id=%s)\n", name, collection.Id)
	return collection
}
