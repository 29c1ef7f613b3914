package main

import (
	"log"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"feeproposal/collections"
	"feeproposal/handlers"
)

func main() {
	app := pocketbase.New()

	// Create collections and seed reference data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: reference data seed failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		registry := handlers.NewProposalRegistry()

		// ── Proposal CRUD ────────────────────────────────────────
		se.Router.GET("/proposals", handlers.HandleProposalList(app))
		se.Router.POST("/proposals", handlers.HandleProposalCreate(app, registry))
		se.Router.GET("/proposals/{id}", handlers.HandleProposalView(app, registry))
		se.Router.POST("/proposals/{id}/save", handlers.HandleProposalSave(app, registry))
		se.Router.POST("/proposals/{id}/rename", handlers.HandleProposalRename(app, registry))
		se.Router.DELETE("/proposals/{id}", handlers.HandleProposalDelete(app, registry))

		// ── Structures ───────────────────────────────────────────
		se.Router.POST("/proposals/{id}/structures", handlers.HandleStructureAdd(app, registry))
		se.Router.POST("/proposals/{id}/structures/{structureId}/duplicate", handlers.HandleStructureDuplicate(app, registry))
		se.Router.POST("/proposals/{id}/structures/{structureId}/copy", handlers.HandleStructureCopy(app, registry))
		se.Router.POST("/proposals/{id}/structures/{structureId}/rename", handlers.HandleStructureRename(app, registry))
		se.Router.PATCH("/proposals/{id}/structures/{structureId}/settings", handlers.HandleStructureSettings(app, registry))
		se.Router.DELETE("/proposals/{id}/structures/{structureId}", handlers.HandleStructureDelete(app, registry))

		// ── Levels ───────────────────────────────────────────────
		se.Router.POST("/proposals/{id}/structures/{structureId}/levels", handlers.HandleLevelAdd(app, registry))
		se.Router.POST("/proposals/{id}/structures/{structureId}/levels/{levelId}/duplicate", handlers.HandleLevelDuplicate(app, registry))
		se.Router.DELETE("/proposals/{id}/structures/{structureId}/levels/{levelId}", handlers.HandleLevelDelete(app, registry))

		// ── Spaces & fee toggles ─────────────────────────────────
		se.Router.POST("/proposals/{id}/structures/{structureId}/levels/{levelId}/spaces", handlers.HandleSpaceAdd(app, registry))
		se.Router.PATCH("/proposals/{id}/structures/{structureId}/spaces/{spaceId}", handlers.HandleSpaceUpdate(app, registry))
		se.Router.DELETE("/proposals/{id}/structures/{structureId}/spaces/{spaceId}", handlers.HandleSpaceDelete(app, registry))
		se.Router.POST("/proposals/{id}/structures/{structureId}/disciplines/{discipline}/toggle", handlers.HandleDisciplineToggle(app, registry))
		se.Router.POST("/proposals/{id}/fees/{feeId}/toggle", handlers.HandleSpaceFeeToggle(app, registry))

		// ── Manual overrides ─────────────────────────────────────
		se.Router.GET("/proposals/{id}/overrides", handlers.HandleOverrideList(app, registry))
		se.Router.POST("/proposals/{id}/overrides", handlers.HandleOverrideSet(app, registry))
		se.Router.DELETE("/proposals/{id}/overrides", handlers.HandleOverrideReset(app, registry))

		// ── Summary & exports ────────────────────────────────────
		se.Router.GET("/proposals/{id}/summary", handlers.HandleProposalSummary(app, registry))
		se.Router.GET("/proposals/{id}/export/excel", handlers.HandleExportExcel(app, registry))
		se.Router.GET("/proposals/{id}/export/pdf", handlers.HandleExportPDF(app, registry))

		// ── Reference options ────────────────────────────────────
		se.Router.GET("/options", handlers.HandleDropdownOptions(app))

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
