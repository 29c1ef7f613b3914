package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
)

// HandleStructureAdd creates a new original structure with the default
// "Level 1" and fee settings.
func HandleStructureAdd(app *pocketbase.PocketBase, reg *ProposalRegistry) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		proposalID, ok := requirePathValue(e, "id")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing proposal ID")
		}
		description := e.Request.FormValue("description")
		if description == "" {
			return apiError(e, http.StatusBadRequest, "Description is required")
		}
		constructionType := e.Request.FormValue("construction_type")

		p, err := openProposal(app, reg, proposalID)
		if err != nil {
			log.Printf("structure_add: %v", err)
			return apiError(e, http.StatusNotFound, "Proposal not found")
		}

		s := p.AddStructure(description, constructionType)
		return e.JSON(http.StatusCreated, structureJSON(p, s))
	}
}

// HandleStructureDuplicate creates a synchronized duplicate of an original
// structure. Duplicating a duplicate is rejected.
func HandleStructureDuplicate(app *pocketbase.PocketBase, reg *ProposalRegistry) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		proposalID, ok := requirePathValue(e, "id")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing proposal ID")
		}
		structureID, ok := requirePathValue(e, "structureId")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing structure ID")
		}

		p, err := openProposal(app, reg, proposalID)
		if err != nil {
			log.Printf("structure_duplicate: %v", err)
			return apiError(e, http.StatusNotFound, "Proposal not found")
		}

		src := p.StructureByID(structureID)
		if src == nil {
			return apiError(e, http.StatusNotFound, "Structure not found")
		}
		if src.IsDuplicate() {
			return apiError(e, http.StatusBadRequest, "Duplicates cannot be duplicated")
		}

		d := p.DuplicateStructure(structureID)
		if d == nil {
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		return e.JSON(http.StatusCreated, structureJSON(p, d))
	}
}

// HandleStructureCopy creates an independent copy with no duplicate link.
func HandleStructureCopy(app *pocketbase.PocketBase, reg *ProposalRegistry) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		proposalID, ok := requirePathValue(e, "id")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing proposal ID")
		}
		structureID, ok := requirePathValue(e, "structureId")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing structure ID")
		}

		p, err := openProposal(app, reg, proposalID)
		if err != nil {
			log.Printf("structure_copy: %v", err)
			return apiError(e, http.StatusNotFound, "Proposal not found")
		}

		c := p.CopyStructure(structureID)
		if c == nil {
			return apiError(e, http.StatusNotFound, "Structure not found")
		}
		return e.JSON(http.StatusCreated, structureJSON(p, c))
	}
}

// HandleStructureDelete removes a structure. Deleting an original cascades
// to its duplicates.
func HandleStructureDelete(app *pocketbase.PocketBase, reg *ProposalRegistry) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		proposalID, ok := requirePathValue(e, "id")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing proposal ID")
		}
		structureID, ok := requirePathValue(e, "structureId")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing structure ID")
		}

		p, err := openProposal(app, reg, proposalID)
		if err != nil {
			log.Printf("structure_delete: %v", err)
			return apiError(e, http.StatusNotFound, "Proposal not found")
		}
		if p.StructureByID(structureID) == nil {
			return apiError(e, http.StatusNotFound, "Structure not found")
		}

		p.DeleteStructure(structureID)
		return e.JSON(http.StatusOK, map[string]string{"status": "deleted"})
	}
}

// HandleStructureRename sets an original's description. Duplicate
// descriptions are re-derived from the original's.
func HandleStructureRename(app *pocketbase.PocketBase, reg *ProposalRegistry) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		proposalID, ok := requirePathValue(e, "id")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing proposal ID")
		}
		structureID, ok := requirePathValue(e, "structureId")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing structure ID")
		}
		description := e.Request.FormValue("description")
		if description == "" {
			return apiError(e, http.StatusBadRequest, "Description is required")
		}

		p, err := openProposal(app, reg, proposalID)
		if err != nil {
			log.Printf("structure_rename: %v", err)
			return apiError(e, http.StatusNotFound, "Proposal not found")
		}
		s := p.StructureByID(structureID)
		if s == nil {
			return apiError(e, http.StatusNotFound, "Structure not found")
		}
		if s.IsDuplicate() {
			return apiError(e, http.StatusBadRequest, "Duplicates cannot be renamed")
		}

		p.RenameStructure(structureID, description)
		return e.JSON(http.StatusOK, structureJSON(p, s))
	}
}

// HandleStructureSettings patches the fee settings of a structure: the
// design fee rate and the construction support flag. Changes on an
// original propagate to its duplicates.
func HandleStructureSettings(app *pocketbase.PocketBase, reg *ProposalRegistry) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		proposalID, ok := requirePathValue(e, "id")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing proposal ID")
		}
		structureID, ok := requirePathValue(e, "structureId")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing structure ID")
		}

		p, err := openProposal(app, reg, proposalID)
		if err != nil {
			log.Printf("structure_settings: %v", err)
			return apiError(e, http.StatusNotFound, "Proposal not found")
		}
		s := p.StructureByID(structureID)
		if s == nil {
			return apiError(e, http.StatusNotFound, "Structure not found")
		}
		if s.IsDuplicate() {
			return apiError(e, http.StatusBadRequest, "Duplicates cannot be edited directly")
		}

		if raw := e.Request.FormValue("design_fee_rate"); raw != "" {
			rate, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return apiError(e, http.StatusBadRequest, "Invalid design fee rate")
			}
			p.SetDesignFeeRate(structureID, rate)
		}
		if raw := e.Request.FormValue("construction_support_enabled"); raw != "" {
			enabled, err := strconv.ParseBool(raw)
			if err != nil {
				return apiError(e, http.StatusBadRequest, "Invalid construction support flag")
			}
			p.SetConstructionSupport(structureID, enabled)
		}

		return e.JSON(http.StatusOK, structureJSON(p, s))
	}
}
