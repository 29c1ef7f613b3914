package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"feeproposal/services"
)

// HandleDropdownOptions returns the option lists client forms need:
// disciplines, phases, level directions and the construction types from
// reference data.
func HandleDropdownOptions(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		type constructionTypeOption struct {
			ID                string  `json:"id"`
			ProjectType       string  `json:"projectType"`
			RelativeCostIndex float64 `json:"relativeCostIndex"`
		}

		types := LoadConstructionTypes(app)
		typeOptions := make([]constructionTypeOption, 0, len(types))
		for _, t := range types {
			typeOptions = append(typeOptions, constructionTypeOption{
				ID:                t.ID,
				ProjectType:       t.ProjectType,
				RelativeCostIndex: t.RelativeCostIndex,
			})
		}

		directions := make([]string, 0, len(services.LevelDirectionOptions))
		for _, d := range services.LevelDirectionOptions {
			directions = append(directions, string(d))
		}

		return e.JSON(http.StatusOK, map[string]any{
			"disciplines":       services.DisciplineOptions,
			"phases":            services.PhaseOptions,
			"levelDirections":   directions,
			"constructionTypes": typeOptions,
		})
	}
}
