package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"feeproposal/services"
)

// parseSpaceInput reads the space form fields. Per-discipline costs come
// in as cost_mechanical, cost_plumbing and so on; unparsable numbers are
// treated as zero rather than failing the whole edit.
func parseSpaceInput(e *core.RequestEvent) services.SpaceInput {
	in := services.SpaceInput{
		Name:           e.Request.FormValue("name"),
		BuildingTypeID: e.Request.FormValue("building_type"),
		Costs:          map[string]float64{},
	}
	if v, err := strconv.ParseFloat(e.Request.FormValue("floor_area"), 64); err == nil {
		in.FloorArea = v
	}
	if v, err := strconv.ParseBool(e.Request.FormValue("split_fees")); err == nil {
		in.SplitFees = v
	}
	for _, disc := range services.DefaultDisciplines {
		raw := e.Request.FormValue("cost_" + disc)
		if raw == "" {
			continue
		}
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			in.Costs[disc] = v
		}
	}
	return in
}

// resolveServicesFor attaches the additional-service items triggered by a
// space's active disciplines, for both phases. Items already on the
// proposal (same name, parent discipline and phase) are not attached
// again, so repeated space edits do not pile up repeated line items.
// Same-named items under different disciplines stay distinct.
func resolveServicesFor(app *pocketbase.PocketBase, p *services.Proposal, sp *services.Space) {
	standard := LoadStandardServices(app)
	additional := LoadAdditionalItems(app)
	links := LoadServiceLinks(app)

	key := func(item *services.FeeItem) string {
		return item.Name + "\x00" + item.ParentDiscipline + "\x00" + item.Phase
	}
	attached := map[string]bool{}
	for _, item := range p.FeeItems {
		attached[key(item)] = true
	}
	for _, phase := range []string{services.PhaseDesign, services.PhaseConstruction} {
		var fresh []*services.FeeItem
		for _, item := range services.ResolveAdditionalServices(sp, phase, standard, additional, links) {
			if attached[key(item)] {
				continue
			}
			attached[key(item)] = true
			fresh = append(fresh, item)
		}
		p.AttachFeeItems(fresh)
	}
}

// HandleSpaceAdd creates a space on a level with one fee slot per
// discipline, then resolves the additional services its disciplines
// trigger.
func HandleSpaceAdd(app *pocketbase.PocketBase, reg *ProposalRegistry) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		proposalID, ok := requirePathValue(e, "id")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing proposal ID")
		}
		structureID, ok := requirePathValue(e, "structureId")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing structure ID")
		}
		levelID, ok := requirePathValue(e, "levelId")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing level ID")
		}
		in := parseSpaceInput(e)
		if in.Name == "" {
			return apiError(e, http.StatusBadRequest, "Name is required")
		}

		p, err := openProposal(app, reg, proposalID)
		if err != nil {
			log.Printf("space_add: %v", err)
			return apiError(e, http.StatusNotFound, "Proposal not found")
		}
		s, errResp := editableStructure(e, p, structureID)
		if errResp != nil {
			return errResp
		}

		sp := p.AddSpace(structureID, levelID, in)
		if sp == nil {
			return apiError(e, http.StatusNotFound, "Level not found")
		}
		resolveServicesFor(app, p, sp)

		return e.JSON(http.StatusCreated, structureJSON(p, s))
	}
}

// HandleSpaceUpdate edits a space's fields and costs, recomputing its fee
// bases and re-resolving additional services for any newly active
// disciplines.
func HandleSpaceUpdate(app *pocketbase.PocketBase, reg *ProposalRegistry) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		proposalID, ok := requirePathValue(e, "id")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing proposal ID")
		}
		structureID, ok := requirePathValue(e, "structureId")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing structure ID")
		}
		spaceID, ok := requirePathValue(e, "spaceId")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing space ID")
		}
		in := parseSpaceInput(e)
		if in.Name == "" {
			return apiError(e, http.StatusBadRequest, "Name is required")
		}

		p, err := openProposal(app, reg, proposalID)
		if err != nil {
			log.Printf("space_update: %v", err)
			return apiError(e, http.StatusNotFound, "Proposal not found")
		}
		s, errResp := editableStructure(e, p, structureID)
		if errResp != nil {
			return errResp
		}

		p.UpdateSpace(structureID, spaceID, in)

		for _, lvl := range s.Levels {
			for _, sp := range lvl.Spaces {
				if sp.ID == spaceID {
					resolveServicesFor(app, p, sp)
				}
			}
		}

		return e.JSON(http.StatusOK, structureJSON(p, s))
	}
}

// HandleSpaceDelete removes a space; overrides scoped to it are dropped.
func HandleSpaceDelete(app *pocketbase.PocketBase, reg *ProposalRegistry) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		proposalID, ok := requirePathValue(e, "id")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing proposal ID")
		}
		structureID, ok := requirePathValue(e, "structureId")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing structure ID")
		}
		spaceID, ok := requirePathValue(e, "spaceId")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing space ID")
		}

		p, err := openProposal(app, reg, proposalID)
		if err != nil {
			log.Printf("space_delete: %v", err)
			return apiError(e, http.StatusNotFound, "Proposal not found")
		}
		s, errResp := editableStructure(e, p, structureID)
		if errResp != nil {
			return errResp
		}

		p.DeleteSpace(structureID, spaceID)
		return e.JSON(http.StatusOK, structureJSON(p, s))
	}
}

// HandleDisciplineToggle switches every fee of one discipline across a
// structure on or off. Inactive fees keep their values and drop out of
// totals.
func HandleDisciplineToggle(app *pocketbase.PocketBase, reg *ProposalRegistry) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		proposalID, ok := requirePathValue(e, "id")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing proposal ID")
		}
		structureID, ok := requirePathValue(e, "structureId")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing structure ID")
		}
		discipline, ok := requirePathValue(e, "discipline")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing discipline")
		}
		active, err := strconv.ParseBool(e.Request.FormValue("active"))
		if err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid active flag")
		}

		p, err := openProposal(app, reg, proposalID)
		if err != nil {
			log.Printf("discipline_toggle: %v", err)
			return apiError(e, http.StatusNotFound, "Proposal not found")
		}
		s, errResp := editableStructure(e, p, structureID)
		if errResp != nil {
			return errResp
		}

		p.ToggleFee(structureID, discipline, active)
		return e.JSON(http.StatusOK, structureJSON(p, s))
	}
}

// HandleSpaceFeeToggle switches a single space-level fee on or off.
func HandleSpaceFeeToggle(app *pocketbase.PocketBase, reg *ProposalRegistry) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		proposalID, ok := requirePathValue(e, "id")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing proposal ID")
		}
		feeID, ok := requirePathValue(e, "feeId")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing fee ID")
		}
		active, err := strconv.ParseBool(e.Request.FormValue("active"))
		if err != nil {
			return apiError(e, http.StatusBadRequest, "Invalid active flag")
		}

		p, err := openProposal(app, reg, proposalID)
		if err != nil {
			log.Printf("space_fee_toggle: %v", err)
			return apiError(e, http.StatusNotFound, "Proposal not found")
		}

		p.ToggleSpaceFee(feeID, active)
		return e.JSON(http.StatusOK, proposalJSON(p))
	}
}
