package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"feeproposal/services"
)

// buildSummary assembles the fee summary for a proposal against the
// current rate book.
func buildSummary(app *pocketbase.PocketBase, reg *ProposalRegistry, proposalID string) (services.ProposalSummary, error) {
	p, err := openProposal(app, reg, proposalID)
	if err != nil {
		return services.ProposalSummary{}, err
	}

	book := LoadRateBook(app)
	data := services.BuildProposalSummary(p, book)

	if record, err := app.FindRecordById("proposals", proposalID); err == nil {
		data.CreatedDate = record.GetDateTime("created").Time().Format("2006-01-02")
	} else {
		data.CreatedDate = time.Now().Format("2006-01-02")
	}
	return data, nil
}

// HandleProposalSummary returns the computed fee summary: per-structure
// discipline groups with effective (override-aware) fees, additional
// service sections and phase totals.
func HandleProposalSummary(app *pocketbase.PocketBase, reg *ProposalRegistry) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		proposalID, ok := requirePathValue(e, "id")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing proposal ID")
		}
		data, err := buildSummary(app, reg, proposalID)
		if err != nil {
			log.Printf("proposal_summary: %v", err)
			return apiError(e, http.StatusNotFound, "Proposal not found")
		}
		return e.JSON(http.StatusOK, data)
	}
}
