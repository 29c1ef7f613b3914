package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"feeproposal/services"
	"feeproposal/testhelpers"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// newFormRequest builds a request carrying url-encoded form values.
func newFormRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// openTestProposal creates a proposal record and opens its (empty) tree
// through the registry, the way the handlers do.
func openTestProposal(t *testing.T, app *pocketbase.PocketBase, reg *ProposalRegistry, title string) *services.Proposal {
	t.Helper()

	record := testhelpers.CreateTestProposal(t, app, title)
	p, err := openProposal(app, reg, record.Id)
	if err != nil {
		t.Fatalf("failed to open test proposal: %v", err)
	}
	return p
}
