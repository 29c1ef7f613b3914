package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"feeproposal/services"
)

// ── JSON response shapes ─────────────────────────────────────────────────

type feeResponse struct {
	ID          string  `json:"id"`
	Discipline  string  `json:"discipline"`
	TotalFee    float64 `json:"totalFee"`
	CostPerSqft float64 `json:"costPerSqft"`
	IsActive    bool    `json:"isActive"`
}

type spaceResponse struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	FloorArea      float64       `json:"floorArea"`
	BuildingTypeID string        `json:"buildingTypeId,omitempty"`
	SplitFees      bool          `json:"splitFees"`
	Fees           []feeResponse `json:"fees"`
}

type levelResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	FloorArea float64         `json:"floorArea"`
	Spaces    []spaceResponse `json:"spaces"`
}

type structureResponse struct {
	ID                         string          `json:"id"`
	ParentID                   string          `json:"parentId,omitempty"`
	Description                string          `json:"description"`
	ConstructionType           string          `json:"constructionType,omitempty"`
	DesignFeeRate              float64         `json:"designFeeRate"`
	ConstructionSupportEnabled bool            `json:"constructionSupportEnabled"`
	DuplicateNumber            int             `json:"duplicateNumber,omitempty"`
	Levels                     []levelResponse `json:"levels"`
}

type proposalResponse struct {
	ID         string              `json:"id"`
	Title      string              `json:"title"`
	Structures []structureResponse `json:"structures"`
	Overrides  int                 `json:"overrideCount"`
	FeeItems   int                 `json:"feeItemCount"`
}

func proposalJSON(p *services.Proposal) proposalResponse {
	resp := proposalResponse{
		ID:        p.ID,
		Title:     p.Title,
		Overrides: p.Overrides.Len(),
		FeeItems:  len(p.FeeItems),
	}
	for _, s := range p.Structures {
		resp.Structures = append(resp.Structures, structureJSON(p, s))
	}
	return resp
}

func structureJSON(p *services.Proposal, s *services.Structure) structureResponse {
	out := structureResponse{
		ID:                         s.ID,
		ParentID:                   s.ParentID,
		Description:                s.Description,
		ConstructionType:           s.ConstructionType,
		DesignFeeRate:              s.DesignFeeRate,
		ConstructionSupportEnabled: s.ConstructionSupportEnabled,
		DuplicateNumber:            p.DuplicateNumber(s),
	}
	for _, lvl := range s.Levels {
		lr := levelResponse{ID: lvl.ID, Name: lvl.Name, FloorArea: lvl.FloorArea}
		for _, sp := range lvl.Spaces {
			sr := spaceResponse{
				ID:             sp.ID,
				Name:           sp.Name,
				FloorArea:      sp.FloorArea,
				BuildingTypeID: sp.BuildingTypeID,
				SplitFees:      sp.SplitFees,
			}
			for _, f := range sp.Fees {
				sr.Fees = append(sr.Fees, feeResponse{
					ID:          f.ID,
					Discipline:  f.Discipline,
					TotalFee:    f.TotalFee,
					CostPerSqft: f.CostPerSqft,
					IsActive:    f.IsActive,
				})
			}
			lr.Spaces = append(lr.Spaces, sr)
		}
		out.Levels = append(out.Levels, lr)
	}
	return out
}

// openProposal returns the cached tree for a proposal, loading it from
// records on first access.
func openProposal(app *pocketbase.PocketBase, reg *ProposalRegistry, id string) (*services.Proposal, error) {
	if p := reg.Get(id); p != nil {
		return p, nil
	}
	p, err := loadProposalTree(app, id)
	if err != nil {
		return nil, err
	}
	reg.Put(p)
	return p, nil
}

// loadProposalTree rebuilds the in-memory aggregate from records.
// Structures are restored in sort order, which preserves creation order
// and therefore duplicate numbering.
func loadProposalTree(app *pocketbase.PocketBase, id string) (*services.Proposal, error) {
	record, err := app.FindRecordById("proposals", id)
	if err != nil {
		return nil, fmt.Errorf("proposal not found: %w", err)
	}

	p := services.NewProposal(record.GetString("title"))
	p.ID = record.Id

	structuresCol, err := app.FindCollectionByNameOrId("structures")
	if err != nil {
		return nil, fmt.Errorf("collection not found: %w", err)
	}
	levelsCol, err := app.FindCollectionByNameOrId("levels")
	if err != nil {
		return nil, fmt.Errorf("collection not found: %w", err)
	}
	spacesCol, err := app.FindCollectionByNameOrId("spaces")
	if err != nil {
		return nil, fmt.Errorf("collection not found: %w", err)
	}
	feesCol, err := app.FindCollectionByNameOrId("fees")
	if err != nil {
		return nil, fmt.Errorf("collection not found: %w", err)
	}

	structures, err := app.FindRecordsByFilter(structuresCol, "proposal = {:p}", "sort_order", 0, 0, map[string]any{"p": id})
	if err != nil {
		structures = nil
	}
	for _, sr := range structures {
		s := &services.Structure{
			ID:                         sr.Id,
			ParentID:                   sr.GetString("parent_structure"),
			ConstructionType:           sr.GetString("construction_type"),
			FloorArea:                  sr.GetFloat("floor_area"),
			Description:                sr.GetString("description"),
			DesignFeeRate:              sr.GetFloat("design_fee_rate"),
			ConstructionSupportEnabled: sr.GetBool("construction_support_enabled"),
		}

		levels, err := app.FindRecordsByFilter(levelsCol, "structure = {:s}", "sort_order", 0, 0, map[string]any{"s": sr.Id})
		if err != nil {
			levels = nil
		}
		for _, lr := range levels {
			lvl := &services.Level{
				ID:        lr.Id,
				Name:      lr.GetString("name"),
				FloorArea: lr.GetFloat("floor_area"),
			}

			spaces, err := app.FindRecordsByFilter(spacesCol, "level = {:l}", "sort_order", 0, 0, map[string]any{"l": lr.Id})
			if err != nil {
				spaces = nil
			}
			for _, spr := range spaces {
				sp := &services.Space{
					ID:             spr.Id,
					Name:           spr.GetString("name"),
					FloorArea:      spr.GetFloat("floor_area"),
					BuildingTypeID: spr.GetString("building_type"),
					SplitFees:      spr.GetBool("split_fees"),
				}

				fees, err := app.FindRecordsByFilter(feesCol, "space = {:sp}", "discipline", 0, 0, map[string]any{"sp": spr.Id})
				if err != nil {
					fees = nil
				}
				for _, fr := range fees {
					sp.Fees = append(sp.Fees, &services.Fee{
						ID:          fr.Id,
						Discipline:  fr.GetString("discipline"),
						TotalFee:    fr.GetFloat("total_fee"),
						CostPerSqft: fr.GetFloat("cost_per_sqft"),
						IsActive:    fr.GetBool("is_active"),
					})
				}
				lvl.Spaces = append(lvl.Spaces, sp)
			}
			s.Levels = append(s.Levels, lvl)
		}
		p.RestoreStructure(s)
	}

	// Overrides: values are stored as text; anything that does not parse
	// as a float means "no override" for that field.
	overridesCol, err := app.FindCollectionByNameOrId("manual_fee_overrides")
	if err != nil {
		return nil, fmt.Errorf("collection not found: %w", err)
	}
	overrides, err := app.FindRecordsByFilter(overridesCol, "proposal = {:p}", "", 0, 0, map[string]any{"p": id})
	if err != nil {
		overrides = nil
	}
	for _, or := range overrides {
		structureID := or.GetString("structure_id")
		discipline := or.GetString("discipline")
		spaceID := or.GetString("space_id")
		if v, err := strconv.ParseFloat(or.GetString("design_fee"), 64); err == nil {
			p.Overrides.Set(structureID, discipline, spaceID, services.OverrideDesign, &v)
		}
		if v, err := strconv.ParseFloat(or.GetString("construction_support_fee"), 64); err == nil {
			p.Overrides.Set(structureID, discipline, spaceID, services.OverrideConstruction, &v)
		}
	}

	itemsCol, err := app.FindCollectionByNameOrId("fee_items")
	if err != nil {
		return nil, fmt.Errorf("collection not found: %w", err)
	}
	items, err := app.FindRecordsByFilter(itemsCol, "proposal = {:p}", "", 0, 0, map[string]any{"p": id})
	if err != nil {
		items = nil
	}
	for _, ir := range items {
		p.FeeItems = append(p.FeeItems, &services.FeeItem{
			ID:               ir.Id,
			Name:             ir.GetString("name"),
			Description:      ir.GetString("description"),
			DefaultMinValue:  ir.GetFloat("default_min_value"),
			Discipline:       ir.GetString("discipline"),
			ParentDiscipline: ir.GetString("parent_discipline"),
			Type:             ir.GetString("type"),
			Phase:            ir.GetString("phase"),
		})
	}

	return p, nil
}

// saveProposalTree writes the aggregate back to records by deleting the
// proposal's children and rewriting them from the tree. Record ids are
// regenerated on every save; the returned reload keeps the registry's ids
// aligned with what is on disk.
func saveProposalTree(app *pocketbase.PocketBase, p *services.Proposal) error {
	record, err := app.FindRecordById("proposals", p.ID)
	if err != nil {
		return fmt.Errorf("proposal not found: %w", err)
	}
	record.Set("title", p.Title)
	if err := app.Save(record); err != nil {
		return fmt.Errorf("save proposal: %w", err)
	}

	structuresCol, err := app.FindCollectionByNameOrId("structures")
	if err != nil {
		return fmt.Errorf("collection not found: %w", err)
	}
	levelsCol, err := app.FindCollectionByNameOrId("levels")
	if err != nil {
		return fmt.Errorf("collection not found: %w", err)
	}
	spacesCol, err := app.FindCollectionByNameOrId("spaces")
	if err != nil {
		return fmt.Errorf("collection not found: %w", err)
	}
	feesCol, err := app.FindCollectionByNameOrId("fees")
	if err != nil {
		return fmt.Errorf("collection not found: %w", err)
	}
	overridesCol, err := app.FindCollectionByNameOrId("manual_fee_overrides")
	if err != nil {
		return fmt.Errorf("collection not found: %w", err)
	}
	itemsCol, err := app.FindCollectionByNameOrId("fee_items")
	if err != nil {
		return fmt.Errorf("collection not found: %w", err)
	}

	// Clear existing children. Structure deletion cascades levels, spaces
	// and fees.
	existing, err := app.FindRecordsByFilter(structuresCol, "proposal = {:p}", "", 0, 0, map[string]any{"p": p.ID})
	if err == nil {
		for _, r := range existing {
			if err := app.Delete(r); err != nil {
				return fmt.Errorf("clear structures: %w", err)
			}
		}
	}
	for _, col := range []*core.Collection{overridesCol, itemsCol} {
		old, err := app.FindRecordsByFilter(col, "proposal = {:p}", "", 0, 0, map[string]any{"p": p.ID})
		if err != nil {
			continue
		}
		for _, r := range old {
			if err := app.Delete(r); err != nil {
				return fmt.Errorf("clear %s: %w", col.Name, err)
			}
		}
	}

	// Rewrite the tree. Tree ids map to fresh record ids; overrides are
	// remapped through idMap so they keep pointing at the right rows.
	idMap := make(map[string]string)
	for i, s := range p.Structures {
		sr := core.NewRecord(structuresCol)
		sr.Set("proposal", p.ID)
		sr.Set("sort_order", i+1)
		sr.Set("description", s.Description)
		sr.Set("construction_type", s.ConstructionType)
		sr.Set("floor_area", s.FloorArea)
		sr.Set("design_fee_rate", s.DesignFeeRate)
		sr.Set("construction_support_enabled", s.ConstructionSupportEnabled)
		if s.ParentID != "" {
			sr.Set("parent_structure", idMap[s.ParentID])
		}
		if err := app.Save(sr); err != nil {
			return fmt.Errorf("save structure %q: %w", s.Description, err)
		}
		idMap[s.ID] = sr.Id

		for j, lvl := range s.Levels {
			lr := core.NewRecord(levelsCol)
			lr.Set("structure", sr.Id)
			lr.Set("sort_order", j+1)
			lr.Set("name", lvl.Name)
			lr.Set("floor_area", lvl.FloorArea)
			if err := app.Save(lr); err != nil {
				return fmt.Errorf("save level %q: %w", lvl.Name, err)
			}

			for k, sp := range lvl.Spaces {
				spr := core.NewRecord(spacesCol)
				spr.Set("level", lr.Id)
				spr.Set("sort_order", k+1)
				spr.Set("name", sp.Name)
				spr.Set("floor_area", sp.FloorArea)
				spr.Set("building_type", sp.BuildingTypeID)
				spr.Set("split_fees", sp.SplitFees)
				if err := app.Save(spr); err != nil {
					return fmt.Errorf("save space %q: %w", sp.Name, err)
				}
				idMap[sp.ID] = spr.Id

				for _, f := range sp.Fees {
					fr := core.NewRecord(feesCol)
					fr.Set("space", spr.Id)
					fr.Set("discipline", f.Discipline)
					fr.Set("total_fee", f.TotalFee)
					fr.Set("cost_per_sqft", f.CostPerSqft)
					fr.Set("is_active", f.IsActive)
					if err := app.Save(fr); err != nil {
						return fmt.Errorf("save fee %q: %w", f.Discipline, err)
					}
				}
			}
		}
	}

	for _, ov := range p.Overrides.All() {
		structureID, ok := idMap[ov.StructureID]
		if !ok {
			continue // stale override, drop on save
		}
		spaceID := ""
		if ov.SpaceID != "" {
			spaceID, ok = idMap[ov.SpaceID]
			if !ok {
				continue
			}
		}
		or := core.NewRecord(overridesCol)
		or.Set("proposal", p.ID)
		or.Set("structure_id", structureID)
		or.Set("discipline", ov.Discipline)
		or.Set("space_id", spaceID)
		if ov.DesignFee != nil {
			or.Set("design_fee", strconv.FormatFloat(*ov.DesignFee, 'f', -1, 64))
		}
		if ov.ConstructionSupportFee != nil {
			or.Set("construction_support_fee", strconv.FormatFloat(*ov.ConstructionSupportFee, 'f', -1, 64))
		}
		if err := app.Save(or); err != nil {
			return fmt.Errorf("save override: %w", err)
		}
	}

	for _, item := range p.FeeItems {
		ir := core.NewRecord(itemsCol)
		ir.Set("proposal", p.ID)
		ir.Set("name", item.Name)
		ir.Set("description", item.Description)
		ir.Set("default_min_value", item.DefaultMinValue)
		ir.Set("discipline", item.Discipline)
		ir.Set("parent_discipline", item.ParentDiscipline)
		ir.Set("type", item.Type)
		ir.Set("phase", item.Phase)
		if err := app.Save(ir); err != nil {
			return fmt.Errorf("save fee item %q: %w", item.Name, err)
		}
	}

	return nil
}

// ── Handlers ─────────────────────────────────────────────────────────────

// HandleProposalList returns all proposals, newest first.
func HandleProposalList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		col, err := app.FindCollectionByNameOrId("proposals")
		if err != nil {
			log.Printf("proposal_list: collection missing: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		records, err := app.FindRecordsByFilter(col, "id != ''", "-created", 0, 0)
		if err != nil {
			log.Printf("proposal_list: query failed: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		type listEntry struct {
			ID      string `json:"id"`
			Title   string `json:"title"`
			Created string `json:"created"`
			Updated string `json:"updated"`
		}
		out := make([]listEntry, 0, len(records))
		for _, r := range records {
			out = append(out, listEntry{
				ID:      r.Id,
				Title:   r.GetString("title"),
				Created: r.GetDateTime("created").String(),
				Updated: r.GetDateTime("updated").String(),
			})
		}
		return e.JSON(http.StatusOK, out)
	}
}

// HandleProposalCreate creates an empty proposal.
func HandleProposalCreate(app *pocketbase.PocketBase, reg *ProposalRegistry) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		title := e.Request.FormValue("title")
		if title == "" {
			return apiError(e, http.StatusBadRequest, "Title is required")
		}

		col, err := app.FindCollectionByNameOrId("proposals")
		if err != nil {
			log.Printf("proposal_create: collection missing: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		record := core.NewRecord(col)
		record.Set("title", title)
		if err := app.Save(record); err != nil {
			log.Printf("proposal_create: save failed: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		p := services.NewProposal(title)
		p.ID = record.Id
		reg.Put(p)

		return e.JSON(http.StatusCreated, proposalJSON(p))
	}
}

// HandleProposalView returns the full structure tree for a proposal.
func HandleProposalView(app *pocketbase.PocketBase, reg *ProposalRegistry) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id, ok := requirePathValue(e, "id")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing proposal ID")
		}
		p, err := openProposal(app, reg, id)
		if err != nil {
			log.Printf("proposal_view: %v", err)
			return apiError(e, http.StatusNotFound, "Proposal not found")
		}
		return e.JSON(http.StatusOK, proposalJSON(p))
	}
}

// HandleProposalSave persists the open tree back to records.
func HandleProposalSave(app *pocketbase.PocketBase, reg *ProposalRegistry) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id, ok := requirePathValue(e, "id")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing proposal ID")
		}
		p, err := openProposal(app, reg, id)
		if err != nil {
			log.Printf("proposal_save: %v", err)
			return apiError(e, http.StatusNotFound, "Proposal not found")
		}
		if err := saveProposalTree(app, p); err != nil {
			log.Printf("proposal_save: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		// Reload so in-memory ids match the rewritten records.
		reloaded, err := loadProposalTree(app, id)
		if err != nil {
			log.Printf("proposal_save: reload failed: %v", err)
			reg.Remove(id)
			return e.JSON(http.StatusOK, map[string]string{"status": "saved"})
		}
		reg.Put(reloaded)
		return e.JSON(http.StatusOK, proposalJSON(reloaded))
	}
}

// HandleProposalRename updates a proposal's title.
func HandleProposalRename(app *pocketbase.PocketBase, reg *ProposalRegistry) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id, ok := requirePathValue(e, "id")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing proposal ID")
		}
		title := e.Request.FormValue("title")
		if title == "" {
			return apiError(e, http.StatusBadRequest, "Title is required")
		}

		record, err := app.FindRecordById("proposals", id)
		if err != nil {
			log.Printf("proposal_rename: not found %s: %v", id, err)
			return apiError(e, http.StatusNotFound, "Proposal not found")
		}
		record.Set("title", title)
		if err := app.Save(record); err != nil {
			log.Printf("proposal_rename: save failed: %v", err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}

		if p := reg.Get(id); p != nil {
			p.Title = title
		}
		return e.JSON(http.StatusOK, map[string]string{"id": id, "title": title})
	}
}

// HandleProposalDelete removes a proposal; record cascade cleans children.
func HandleProposalDelete(app *pocketbase.PocketBase, reg *ProposalRegistry) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		id, ok := requirePathValue(e, "id")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing proposal ID")
		}
		record, err := app.FindRecordById("proposals", id)
		if err != nil {
			log.Printf("proposal_delete: not found %s: %v", id, err)
			return apiError(e, http.StatusNotFound, "Proposal not found")
		}
		if err := app.Delete(record); err != nil {
			log.Printf("proposal_delete: delete failed %s: %v", id, err)
			return apiError(e, http.StatusInternalServerError, "Something went wrong. Please try again.")
		}
		reg.Remove(id)
		return e.JSON(http.StatusOK, map[string]string{"status": "deleted"})
	}
}
