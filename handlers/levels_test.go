package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"feeproposal/services"
	"feeproposal/testhelpers"
)

func TestHandleLevelAdd_UpCount(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	reg := NewProposalRegistry()
	p := openTestProposal(t, app, reg, "Level Add")
	s := p.AddStructure("Tower", "")

	handler := HandleLevelAdd(app, reg)
	req := newFormRequest(http.MethodPost, "/proposals/"+p.ID+"/structures/"+s.ID+"/levels", url.Values{
		"direction": {"up"},
		"count":     {"2"},
	})
	req.SetPathValue("id", p.ID)
	req.SetPathValue("structureId", s.ID)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp structureResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(resp.Levels) != 3 {
		t.Fatalf("expected 3 levels, got %d", len(resp.Levels))
	}
	// Levels are kept sorted highest first
	if resp.Levels[0].Name != "Level 3" || resp.Levels[2].Name != "Level 1" {
		t.Errorf("unexpected ordering: %q .. %q", resp.Levels[0].Name, resp.Levels[2].Name)
	}
}

func TestHandleLevelAdd_DownGoesNegative(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	reg := NewProposalRegistry()
	p := openTestProposal(t, app, reg, "Basements")
	s := p.AddStructure("Tower", "")

	handler := HandleLevelAdd(app, reg)
	req := newFormRequest(http.MethodPost, "/proposals/"+p.ID+"/structures/"+s.ID+"/levels", url.Values{
		"direction": {"down"},
		"count":     {"2"},
	})
	req.SetPathValue("id", p.ID)
	req.SetPathValue("structureId", s.ID)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	var resp structureResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	last := resp.Levels[len(resp.Levels)-1]
	if last.Name != "Level -1" {
		t.Errorf("lowest level = %q, want Level -1", last.Name)
	}
}

func TestHandleLevelAdd_InvalidInput(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	reg := NewProposalRegistry()
	p := openTestProposal(t, app, reg, "Level Add Invalid")
	s := p.AddStructure("Tower", "")

	handler := HandleLevelAdd(app, reg)

	cases := []struct {
		name string
		form url.Values
	}{
		{"same direction", url.Values{"direction": {"same"}}},
		{"bad direction", url.Values{"direction": {"sideways"}}},
		{"zero count", url.Values{"direction": {"up"}, "count": {"0"}}},
		{"bad count", url.Values{"direction": {"up"}, "count": {"many"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := newFormRequest(http.MethodPost, "/proposals/"+p.ID+"/structures/"+s.ID+"/levels", tc.form)
			req.SetPathValue("id", p.ID)
			req.SetPathValue("structureId", s.ID)
			rec := httptest.NewRecorder()
			if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", rec.Code)
			}
		})
	}
	if len(s.Levels) != 1 {
		t.Errorf("levels changed on invalid input: %d", len(s.Levels))
	}
}

func TestHandleLevelDuplicate_MirrorsToDuplicates(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	reg := NewProposalRegistry()
	p := openTestProposal(t, app, reg, "Level Duplicate")
	s := p.AddStructure("Tower", "")
	d := p.DuplicateStructure(s.ID)
	lvl := s.Levels[0]
	p.AddSpace(s.ID, lvl.ID, services.SpaceInput{Name: "Lobby", FloorArea: 900})

	handler := HandleLevelDuplicate(app, reg)
	req := newFormRequest(http.MethodPost,
		"/proposals/"+p.ID+"/structures/"+s.ID+"/levels/"+lvl.ID+"/duplicate",
		url.Values{"direction": {"up"}})
	req.SetPathValue("id", p.ID)
	req.SetPathValue("structureId", s.ID)
	req.SetPathValue("levelId", lvl.ID)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	if len(s.Levels) != 2 {
		t.Fatalf("expected 2 levels on original, got %d", len(s.Levels))
	}
	if len(d.Levels) != 2 {
		t.Fatalf("expected 2 levels on duplicate, got %d", len(d.Levels))
	}
	// Cloned level carries the space
	if len(s.Levels[0].Spaces) != 1 || s.Levels[0].Spaces[0].Name != "Lobby" {
		t.Error("cloned level lost its space")
	}
}

func TestHandleLevelDelete(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	reg := NewProposalRegistry()
	p := openTestProposal(t, app, reg, "Level Delete")
	s := p.AddStructure("Tower", "")
	p.AddLevels(s.ID, services.DirectionUp, 1)
	top := s.Levels[0]

	handler := HandleLevelDelete(app, reg)
	req := httptest.NewRequest(http.MethodDelete,
		"/proposals/"+p.ID+"/structures/"+s.ID+"/levels/"+top.ID, nil)
	req.SetPathValue("id", p.ID)
	req.SetPathValue("structureId", s.ID)
	req.SetPathValue("levelId", top.ID)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(s.Levels) != 1 || s.Levels[0].Name != "Level 1" {
		t.Errorf("unexpected levels after delete: %+v", s.Levels)
	}
}

func TestHandleLevelAdd_DuplicateStructureRejected(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	reg := NewProposalRegistry()
	p := openTestProposal(t, app, reg, "Level Guard")
	s := p.AddStructure("Tower", "")
	d := p.DuplicateStructure(s.ID)

	handler := HandleLevelAdd(app, reg)
	req := newFormRequest(http.MethodPost, "/proposals/"+p.ID+"/structures/"+d.ID+"/levels", url.Values{
		"direction": {"up"},
	})
	req.SetPathValue("id", p.ID)
	req.SetPathValue("structureId", d.ID)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}
