package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"feeproposal/services"
)

type overrideResponse struct {
	StructureID            string   `json:"structureId"`
	Discipline             string   `json:"discipline"`
	SpaceID                string   `json:"spaceId,omitempty"`
	DesignFee              *float64 `json:"designFee,omitempty"`
	ConstructionSupportFee *float64 `json:"constructionSupportFee,omitempty"`
}

func overridesJSON(p *services.Proposal) []overrideResponse {
	out := make([]overrideResponse, 0, p.Overrides.Len())
	for _, ov := range p.Overrides.All() {
		out = append(out, overrideResponse{
			StructureID:            ov.StructureID,
			Discipline:             ov.Discipline,
			SpaceID:                ov.SpaceID,
			DesignFee:              ov.DesignFee,
			ConstructionSupportFee: ov.ConstructionSupportFee,
		})
	}
	return out
}

// parseOverrideValue turns a form value into an override amount. Empty or
// unparsable input clears the override for that field.
func parseOverrideValue(raw string) *float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// HandleOverrideList returns every override on the proposal.
func HandleOverrideList(app *pocketbase.PocketBase, reg *ProposalRegistry) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		proposalID, ok := requirePathValue(e, "id")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing proposal ID")
		}
		p, err := openProposal(app, reg, proposalID)
		if err != nil {
			log.Printf("override_list: %v", err)
			return apiError(e, http.StatusNotFound, "Proposal not found")
		}
		return e.JSON(http.StatusOK, overridesJSON(p))
	}
}

// HandleOverrideSet sets or clears the manual fee values for one
// structure/discipline/space cell. Overrides are space-scoped: the
// aggregate discipline rows always show calculated figures, so a
// space-less override would never surface anywhere. Fields absent from
// the form are left untouched.
func HandleOverrideSet(app *pocketbase.PocketBase, reg *ProposalRegistry) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		proposalID, ok := requirePathValue(e, "id")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing proposal ID")
		}
		structureID := e.Request.FormValue("structure_id")
		discipline := e.Request.FormValue("discipline")
		spaceID := e.Request.FormValue("space_id")
		if structureID == "" || discipline == "" || spaceID == "" {
			return apiError(e, http.StatusBadRequest, "Structure, discipline and space are required")
		}

		p, err := openProposal(app, reg, proposalID)
		if err != nil {
			log.Printf("override_set: %v", err)
			return apiError(e, http.StatusNotFound, "Proposal not found")
		}
		if p.StructureByID(structureID) == nil {
			return apiError(e, http.StatusNotFound, "Structure not found")
		}

		if _, present := e.Request.Form["design_fee"]; present {
			p.Overrides.Set(structureID, discipline, spaceID, services.OverrideDesign,
				parseOverrideValue(e.Request.FormValue("design_fee")))
		}
		if _, present := e.Request.Form["construction_support_fee"]; present {
			p.Overrides.Set(structureID, discipline, spaceID, services.OverrideConstruction,
				parseOverrideValue(e.Request.FormValue("construction_support_fee")))
		}

		return e.JSON(http.StatusOK, overridesJSON(p))
	}
}

// HandleOverrideReset removes both manual values for one cell, restoring
// the calculated fees.
func HandleOverrideReset(app *pocketbase.PocketBase, reg *ProposalRegistry) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		proposalID, ok := requirePathValue(e, "id")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing proposal ID")
		}
		structureID := e.Request.FormValue("structure_id")
		discipline := e.Request.FormValue("discipline")
		spaceID := e.Request.FormValue("space_id")
		if structureID == "" || discipline == "" || spaceID == "" {
			return apiError(e, http.StatusBadRequest, "Structure, discipline and space are required")
		}

		p, err := openProposal(app, reg, proposalID)
		if err != nil {
			log.Printf("override_reset: %v", err)
			return apiError(e, http.StatusNotFound, "Proposal not found")
		}

		p.Overrides.Reset(structureID, discipline, spaceID)
		return e.JSON(http.StatusOK, overridesJSON(p))
	}
}
