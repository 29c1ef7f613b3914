package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"feeproposal/services"
	"feeproposal/testhelpers"
)

func exportTestProposal(t *testing.T, app *pocketbase.PocketBase, reg *ProposalRegistry) *services.Proposal {
	t.Helper()
	p := openTestProposal(t, app, reg, "Export: Test/Proposal")
	s := p.AddStructure("Clinic", "")
	p.AddSpace(s.ID, s.Levels[0].ID, services.SpaceInput{
		Name:      "Exam Room",
		FloorArea: 800,
		Costs:     map[string]float64{"mechanical": 12, "electrical": 8},
	})
	return p
}

func TestHandleExportExcel(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.SeedReferenceData(t, app)
	reg := NewProposalRegistry()
	p := exportTestProposal(t, app, reg)

	handler := HandleExportExcel(app, reg)
	req := httptest.NewRequest(http.MethodGet, "/proposals/"+p.ID+"/export/excel", nil)
	req.SetPathValue("id", p.ID)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("Content-Type = %q", ct)
	}
	cd := rec.Header().Get("Content-Disposition")
	if !strings.Contains(cd, `attachment; filename="Export- Test-Proposal.xlsx"`) {
		t.Errorf("Content-Disposition = %q", cd)
	}
	// xlsx files are zip archives.
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Error("body is not a zip archive")
	}
}

func TestHandleExportPDF(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.SeedReferenceData(t, app)
	reg := NewProposalRegistry()
	p := exportTestProposal(t, app, reg)

	handler := HandleExportPDF(app, reg)
	req := httptest.NewRequest(http.MethodGet, "/proposals/"+p.ID+"/export/pdf", nil)
	req.SetPathValue("id", p.ID)
	rec := httptest.NewRecorder()

	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), ".pdf") {
		t.Errorf("Content-Disposition = %q", rec.Header().Get("Content-Disposition"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("body is not a PDF document")
	}
}

func TestHandleExport_NotFound(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	reg := NewProposalRegistry()

	for name, handler := range map[string]func(*core.RequestEvent) error{
		"excel": HandleExportExcel(app, reg),
		"pdf":   HandleExportPDF(app, reg),
	} {
		req := httptest.NewRequest(http.MethodGet, "/proposals/missing/export/"+name, nil)
		req.SetPathValue("id", "missing")
		rec := httptest.NewRecorder()

		if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
			t.Fatalf("%s handler returned error: %v", name, err)
		}
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", name, rec.Code)
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := sanitizeFilename(`a/b\c:d`); got != "a-b-c-d" {
		t.Errorf("sanitizeFilename = %q", got)
	}
	if got := sanitizeFilename("   "); got != "fee-proposal" {
		t.Errorf("empty input = %q, want fallback", got)
	}
}
