package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"feeproposal/services"
)

// sanitizeFilename replaces characters that break Content-Disposition
// filenames.
func sanitizeFilename(s string) string {
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-",
		"?", "-", "\"", "-", "<", "-", ">", "-", "|", "-",
	)
	out := strings.TrimSpace(replacer.Replace(s))
	if out == "" {
		out = "fee-proposal"
	}
	return out
}

// HandleExportExcel generates and downloads the fee summary workbook.
func HandleExportExcel(app *pocketbase.PocketBase, reg *ProposalRegistry) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		proposalID, ok := requirePathValue(e, "id")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing proposal ID")
		}

		data, err := buildSummary(app, reg, proposalID)
		if err != nil {
			log.Printf("export_excel: %v", err)
			return apiError(e, http.StatusNotFound, "Proposal not found")
		}

		xlsxBytes, err := services.GenerateFeeSummaryExcel(data)
		if err != nil {
			log.Printf("export_excel: failed to generate workbook: %v", err)
			return apiError(e, http.StatusInternalServerError, "Failed to generate Excel file")
		}

		filename := fmt.Sprintf("%s.xlsx", sanitizeFilename(data.Title))
		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandleExportPDF generates and downloads the fee proposal PDF.
func HandleExportPDF(app *pocketbase.PocketBase, reg *ProposalRegistry) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		proposalID, ok := requirePathValue(e, "id")
		if !ok {
			return apiError(e, http.StatusBadRequest, "Missing proposal ID")
		}

		data, err := buildSummary(app, reg, proposalID)
		if err != nil {
			log.Printf("export_pdf: %v", err)
			return apiError(e, http.StatusNotFound, "Proposal not found")
		}

		pdfBytes, err := services.GenerateProposalPDF(data)
		if err != nil {
			log.Printf("export_pdf: failed to generate PDF: %v", err)
			return apiError(e, http.StatusInternalServerError, "Failed to generate PDF")
		}

		filename := fmt.Sprintf("%s.pdf", sanitizeFilename(data.Title))
		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(pdfBytes)
		return nil
	}
}
