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

func TestHandleProposalCreate_Success(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	reg := NewProposalRegistry()
	handler := HandleProposalCreate(app, reg)

	req := newFormRequest(http.MethodPost, "/proposals", url.Values{"title": {"Medical Office Fees"}})
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp proposalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.Title != "Medical Office Fees" {
		t.Errorf("title = %q, want %q", resp.Title, "Medical Office Fees")
	}

	// Record persisted and tree cached under the record id
	if _, err := app.FindRecordById("proposals", resp.ID); err != nil {
		t.Errorf("proposal record not saved: %v", err)
	}
	if reg.Get(resp.ID) == nil {
		t.Error("proposal not registered in memory")
	}
}

func TestHandleProposalCreate_MissingTitle(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	reg := NewProposalRegistry()
	handler := HandleProposalCreate(app, reg)

	req := newFormRequest(http.MethodPost, "/proposals", url.Values{})
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleProposalView_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	reg := NewProposalRegistry()
	handler := HandleProposalView(app, reg)

	req := httptest.NewRequest(http.MethodGet, "/proposals/nonexistent", nil)
	req.SetPathValue("id", "nonexistent")
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleProposalSave_RoundTrip(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	reg := NewProposalRegistry()
	p := openTestProposal(t, app, reg, "Round Trip")

	s := p.AddStructure("Clinic", "New Construction")
	examRoom := p.AddSpace(s.ID, s.Levels[0].ID, services.SpaceInput{
		Name:      "Exam Room",
		FloorArea: 400,
		SplitFees: true,
		Costs:     map[string]float64{"mechanical": 12, "electrical": 9},
	})
	p.DuplicateStructure(s.ID)
	v := 4321.0
	p.Overrides.Set(s.ID, "mechanical", examRoom.ID, services.OverrideDesign, &v)

	handler := HandleProposalSave(app, reg)
	req := httptest.NewRequest(http.MethodPost, "/proposals/"+p.ID+"/save", nil)
	req.SetPathValue("id", p.ID)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(app, req, rec)

	if err := handler(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	// Drop the cache and reload purely from records
	reg.Remove(p.ID)
	reloaded, err := loadProposalTree(app, p.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	if len(reloaded.Structures) != 2 {
		t.Fatalf("expected 2 structures after reload, got %d", len(reloaded.Structures))
	}
	original := reloaded.Structures[0]
	duplicate := reloaded.Structures[1]
	if original.Description != "Clinic" {
		t.Errorf("original description = %q", original.Description)
	}
	if duplicate.ParentID != original.ID {
		t.Error("duplicate lost its parent link across the round trip")
	}
	if duplicate.Description != "Clinic (Duplicate 1)" {
		t.Errorf("duplicate description = %q", duplicate.Description)
	}

	if len(original.Levels) != 1 || len(original.Levels[0].Spaces) != 1 {
		t.Fatal("hierarchy lost across the round trip")
	}
	sp := original.Levels[0].Spaces[0]
	if sp.Name != "Exam Room" || !sp.SplitFees {
		t.Errorf("space fields lost: name=%q splitFees=%v", sp.Name, sp.SplitFees)
	}
	if len(sp.Fees) != len(services.DefaultDisciplines) {
		t.Errorf("expected %d fees, got %d", len(services.DefaultDisciplines), len(sp.Fees))
	}
	for _, f := range sp.Fees {
		if f.Discipline == "mechanical" && f.TotalFee != 4800 {
			t.Errorf("mechanical cost basis = %v, want 4800", f.TotalFee)
		}
	}

	// Override survived with its structure and space ids remapped
	ov := reloaded.Overrides.Get(original.ID, "mechanical", sp.ID)
	if ov == nil || ov.DesignFee == nil {
		t.Fatal("override lost across the round trip")
	}
	if *ov.DesignFee != 4321 {
		t.Errorf("override value = %v, want 4321", *ov.DesignFee)
	}
}

func TestHandleProposalSave_SecondSaveReplaces(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	reg := NewProposalRegistry()
	p := openTestProposal(t, app, reg, "Double Save")
	p.AddStructure("Depot", "")

	handler := HandleProposalSave(app, reg)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/proposals/"+p.ID+"/save", nil)
		req.SetPathValue("id", p.ID)
		rec := httptest.NewRecorder()
		if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("save %d returned error: %v", i+1, err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("save %d: expected 200, got %d", i+1, rec.Code)
		}
		p = reg.Get(p.ID)
		if p == nil {
			t.Fatal("registry lost the proposal after save")
		}
	}

	structuresCol, _ := app.FindCollectionByNameOrId("structures")
	records, _ := app.FindAllRecords(structuresCol)
	if len(records) != 1 {
		t.Errorf("expected 1 structure record after re-save, got %d", len(records))
	}
}

func TestHandleProposalRename(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	reg := NewProposalRegistry()
	p := openTestProposal(t, app, reg, "Old Title")

	handler := HandleProposalRename(app, reg)
	req := newFormRequest(http.MethodPost, "/proposals/"+p.ID+"/rename", url.Values{"title": {"New Title"}})
	req.SetPathValue("id", p.ID)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	record, _ := app.FindRecordById("proposals", p.ID)
	if record.GetString("title") != "New Title" {
		t.Errorf("record title = %q", record.GetString("title"))
	}
	if p.Title != "New Title" {
		t.Errorf("in-memory title = %q", p.Title)
	}
}

func TestHandleProposalDelete_Cascades(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	reg := NewProposalRegistry()
	p := openTestProposal(t, app, reg, "Doomed")
	p.AddStructure("Doomed Building", "")

	// Persist so there are child records to cascade
	saveReq := httptest.NewRequest(http.MethodPost, "/proposals/"+p.ID+"/save", nil)
	saveReq.SetPathValue("id", p.ID)
	if err := HandleProposalSave(app, reg)(newTestRequestEvent(app, saveReq, httptest.NewRecorder())); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	handler := HandleProposalDelete(app, reg)
	req := httptest.NewRequest(http.MethodDelete, "/proposals/"+p.ID, nil)
	req.SetPathValue("id", p.ID)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if _, err := app.FindRecordById("proposals", p.ID); err == nil {
		t.Error("proposal record should be deleted")
	}
	structuresCol, _ := app.FindCollectionByNameOrId("structures")
	records, _ := app.FindAllRecords(structuresCol)
	if len(records) != 0 {
		t.Errorf("expected structures to cascade, %d remain", len(records))
	}
	if reg.Get(p.ID) != nil {
		t.Error("registry should forget deleted proposals")
	}
}
