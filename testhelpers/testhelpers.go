// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"feeproposal/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// SeedReferenceData runs collections.Seed and fails the test on error.
func SeedReferenceData(t *testing.T, app *pocketbase.PocketBase) {
	t.Helper()

	if err := collections.Seed(app); err != nil {
		t.Fatalf("failed to seed reference data: %v", err)
	}
}

// CreateTestProposal creates a proposal record with the given title and returns it.
func CreateTestProposal(t *testing.T, app *pocketbase.PocketBase, title string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("proposals")
	if err != nil {
		t.Fatalf("failed to find proposals collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("title", title)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test proposal: %v", err)
	}

	return record
}

// CreateTestStructure creates an original structure record linked to a proposal.
func CreateTestStructure(t *testing.T, app *pocketbase.PocketBase, proposalID, description string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("structures")
	if err != nil {
		t.Fatalf("failed to find structures collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("proposal", proposalID)
	record.Set("description", description)
	record.Set("construction_type", "New Construction")
	record.Set("design_fee_rate", 80.0)
	record.Set("construction_support_enabled", true)
	record.Set("sort_order", 1)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test structure: %v", err)
	}

	return record
}

// CreateTestLevel creates a level record under a structure.
func CreateTestLevel(t *testing.T, app *pocketbase.PocketBase, structureID, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("levels")
	if err != nil {
		t.Fatalf("failed to find levels collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("structure", structureID)
	record.Set("name", name)
	record.Set("sort_order", 1)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test level: %v", err)
	}

	return record
}

// CreateTestSpace creates a space record under a level.
func CreateTestSpace(t *testing.T, app *pocketbase.PocketBase, levelID, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("spaces")
	if err != nil {
		t.Fatalf("failed to find spaces collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("level", levelID)
	record.Set("name", name)
	record.Set("floor_area", 1000.0)
	record.Set("sort_order", 1)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test space: %v", err)
	}

	return record
}

// CreateTestFee creates an active fee record for a space and discipline.
func CreateTestFee(t *testing.T, app *pocketbase.PocketBase, spaceID, discipline string, totalFee float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("fees")
	if err != nil {
		t.Fatalf("failed to find fees collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("space", spaceID)
	record.Set("discipline", discipline)
	record.Set("total_fee", totalFee)
	record.Set("is_active", true)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test fee: %v", err)
	}

	return record
}

// CreateTestFeeScaleRow inserts a single design_fee_scale tier.
func CreateTestFeeScaleRow(t *testing.T, app *pocketbase.PocketBase, constructionCost, primeFee float64) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("design_fee_scale")
	if err != nil {
		t.Fatalf("failed to find design_fee_scale collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("construction_cost", constructionCost)
	record.Set("prime_consultant_fee", primeFee)
	record.Set("fraction_mechanical", 50.0)
	record.Set("fraction_plumbing", 30.0)
	record.Set("fraction_electrical", 40.0)
	record.Set("fraction_structural", 20.0)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test fee scale row: %v", err)
	}

	return record
}
