package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"takeoff/services"
)

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	return s
}

// HandleProjectExportExcel generates and downloads the project bill of
// quantities as an Excel workbook, one sheet per section plus a
// summary.
func HandleProjectExportExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")
		if projectID == "" {
			return respondError(e, http.StatusBadRequest, "Missing project ID")
		}

		data, err := services.BuildProjectExport(app, projectID)
		if err != nil {
			log.Printf("export_excel: %v", err)
			return respondError(e, http.StatusNotFound, "Project not found")
		}

		xlsxBytes, err := services.GenerateProjectExcel(data)
		if err != nil {
			log.Printf("export_excel: failed to generate: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to generate Excel file")
		}

		filename := fmt.Sprintf("BQ_%s_%d.xlsx", sanitizeFilename(data.ProjectName), time.Now().Year())

		e.Response.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(xlsxBytes)
		return nil
	}
}

// HandleProjectExportPDF generates and downloads the project bill of
// quantities as a PDF document.
func HandleProjectExportPDF(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		projectID := e.Request.PathValue("id")
		if projectID == "" {
			return respondError(e, http.StatusBadRequest, "Missing project ID")
		}

		data, err := services.BuildProjectExport(app, projectID)
		if err != nil {
			log.Printf("export_pdf: %v", err)
			return respondError(e, http.StatusNotFound, "Project not found")
		}

		pdfBytes, err := services.GenerateProjectPDF(data)
		if err != nil {
			log.Printf("export_pdf: failed to generate: %v", err)
			return respondError(e, http.StatusInternalServerError, "Failed to generate PDF file")
		}

		filename := fmt.Sprintf("BQ_%s_%d.pdf", sanitizeFilename(data.ProjectName), time.Now().Year())

		e.Response.Header().Set("Content-Type", "application/pdf")
		e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
		e.Response.Write(pdfBytes)
		return nil
	}
}
