package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"feeproposal/services"
)

// parseDirection maps the form value onto a level direction, defaulting
// to up.
func parseDirection(raw string) (services.Direction, bool) {
	switch raw {
	case "", string(services.DirectionUp):
		return services.DirectionUp, true
	case string(services.DirectionDown):
		return services.DirectionDown, true
	case string(services.DirectionSame):
		return services.DirectionSame, true
	}
	return "", false
}

// editableStructure resolves a structure that accepts direct edits.
func editableStructure(e *core.RequestEvent, p *services.Proposal, structureID string) (*services.Structure, error) {
	s := p.StructureByID(structureID)
	if s == nil {
		return nil, apiError(e, http.StatusNotFound, "Structure not found")
	}
	if s.IsDuplicate() {
		return nil, apiError(e, http.StatusBadRequest, "Duplicates cannot be edited directly")
	}
	return s, nil
}

// HandleLevelAdd appends one or more empty levels above or below the
// existing ones.
func HandleLevelAdd(app *pocketbase.PocketBase, reg *ProposalRegistry) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		proposalID, ok := requirePathValue(e, "id")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing proposal ID")
		}
		structureID, ok := requirePathValue(e, "structureId")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing structure ID")
		}
		direction, ok := parseDirection(e.Request.FormValue("direction"))
		if !ok || direction == services.DirectionSame {
			return apiError(e, http.StatusBadRequest, "Invalid direction")
		}
		count := 1
		if raw := e.Request.FormValue("count"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				return apiError(e, http.StatusBadRequest, "Invalid count")
			}
			count = n
		}

		p, err := openProposal(app, reg, proposalID)
		if err != nil {
			log.Printf("level_add: %v", err)
			return apiError(e, http.StatusNotFound, "Proposal not found")
		}
		s, errResp := editableStructure(e, p, structureID)
		if errResp != nil {
			return errResp
		}

		p.AddLevels(structureID, direction, count)
		return e.JSON(http.StatusCreated, structureJSON(p, s))
	}
}

// HandleLevelDuplicate clones a level with its spaces and fees. Direction
// same inserts the clone directly above the source and shifts higher
// levels up.
func HandleLevelDuplicate(app *pocketbase.PocketBase, reg *ProposalRegistry) func(*core.RequestEvent) error {
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
		direction, ok := parseDirection(e.Request.FormValue("direction"))
		if !ok {
			return apiError(e, http.StatusBadRequest, "Invalid direction")
		}

		p, err := openProposal(app, reg, proposalID)
		if err != nil {
			log.Printf("level_duplicate: %v", err)
			return apiError(e, http.StatusNotFound, "Proposal not found")
		}
		s, errResp := editableStructure(e, p, structureID)
		if errResp != nil {
			return errResp
		}

		p.DuplicateLevel(structureID, levelID, direction)
		return e.JSON(http.StatusCreated, structureJSON(p, s))
	}
}

// HandleLevelDelete removes a level and everything on it.
func HandleLevelDelete(app *pocketbase.PocketBase, reg *ProposalRegistry) func(*core.RequestEvent) error {
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

		p, err := openProposal(app, reg, proposalID)
		if err != nil {
			log.Printf("level_delete: %v", err)
			return apiError(e, http.StatusNotFound, "Proposal not found")
		}
		s, errResp := editableStructure(e, p, structureID)
		if errResp != nil {
			return errResp
		}

		p.DeleteLevel(structureID, levelID)
		return e.JSON(http.StatusOK, structureJSON(p, s))
	}
}
