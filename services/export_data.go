package services

import (
	"fmt"
	"log"
	"time"

	"github.com/pocketbase/pocketbase"
)

// ExportItem is a single BQ line in a project export.
type ExportItem struct {
	RulePath    string
	Description string
	Quantity    float64
	Unit        string
	Rate        float64
	HasRate     bool
	Amount      float64
}

// ExportSection groups the BQ items of one project section. Unsectioned
// items are collected into a pseudo-section named "General Items".
type ExportSection struct {
	Name     string
	Code     string
	ColorHex string
	Items    []ExportItem
	Total    float64
}

// ProjectExport holds everything the Excel and PDF writers need.
type ProjectExport struct {
	ProjectName string
	ProjectCode string
	ExportDate  string
	Sections    []ExportSection
	Total       float64
}

// BuildProjectExport assembles export data for a project from
// PocketBase records: sections in sort order, each section's BQ items
// in sort order with the rule path and content resolved, then an
// unsectioned bucket, then grand totals.
func BuildProjectExport(app *pocketbase.PocketBase, projectID string) (ProjectExport, error) {
	project, err := app.FindRecordById("projects", projectID)
	if err != nil {
		return ProjectExport{}, fmt.Errorf("export: project %s: %w", projectID, err)
	}

	data := ProjectExport{
		ProjectName: project.GetString("name"),
		ProjectCode: project.GetString("code"),
		ExportDate:  time.Now().Format("2006-01-02"),
	}

	sectionsCol, err := app.FindCollectionByNameOrId("project_sections")
	if err != nil {
		return ProjectExport{}, fmt.Errorf("export: project_sections collection: %w", err)
	}
	sections, err := app.FindRecordsByFilter(sectionsCol, "project = {:id}", "sort_order", 0, 0, map[string]any{"id": projectID})
	if err != nil {
		return ProjectExport{}, fmt.Errorf("export: query sections: %w", err)
	}

	for _, sec := range sections {
		items, err := buildSectionItems(app, projectID, sec.Id)
		if err != nil {
			return ProjectExport{}, err
		}
		if len(items) == 0 {
			continue
		}
		es := ExportSection{
			Name:     sec.GetString("name"),
			Code:     sec.GetString("code"),
			ColorHex: sec.GetString("color_hex"),
			Items:    items,
		}
		for _, it := range items {
			es.Total += it.Amount
		}
		data.Sections = append(data.Sections, es)
		data.Total += es.Total
	}

	unsectioned, err := buildSectionItems(app, projectID, "")
	if err != nil {
		return ProjectExport{}, err
	}
	if len(unsectioned) > 0 {
		es := ExportSection{Name: "General Items", Items: unsectioned}
		for _, it := range unsectioned {
			es.Total += it.Amount
		}
		data.Sections = append(data.Sections, es)
		data.Total += es.Total
	}

	if data.Total < 0 {
		log.Printf("export: project %s has a negative grand total (%.2f) -- check deduction rows", projectID, data.Total)
	}

	return data, nil
}

// buildSectionItems loads the BQ items of one section (empty sectionID
// means unsectioned) and resolves each item's rule path and text.
func buildSectionItems(app *pocketbase.PocketBase, projectID, sectionID string) ([]ExportItem, error) {
	itemsCol, err := app.FindCollectionByNameOrId("bq_items")
	if err != nil {
		return nil, fmt.Errorf("export: bq_items collection: %w", err)
	}

	filter := "project = {:project} && section = {:section}"
	records, err := app.FindRecordsByFilter(itemsCol, filter, "sort_order", 0, 0,
		map[string]any{"project": projectID, "section": sectionID})
	if err != nil {
		return nil, fmt.Errorf("export: query bq items: %w", err)
	}

	var items []ExportItem
	for _, rec := range records {
		item := ExportItem{
			Quantity: rec.GetFloat("quantity"),
			Unit:     rec.GetString("unit"),
		}

		description := rec.GetString("description_custom")
		if ruleID := rec.GetString("nrm_rule"); ruleID != "" {
			rule, err := app.FindRecordById("nrm_rules", ruleID)
			if err != nil {
				log.Printf("export: rule %s for item %s not found: %v", ruleID, rec.Id, err)
			} else {
				item.RulePath = rule.GetString("path")
				if description == "" {
					description = rule.GetString("content")
				}
			}
		}
		item.Description = description

		if rate := rec.GetFloat("rate"); rate != 0 {
			item.HasRate = true
			item.Rate = rate
			item.Amount = rec.GetFloat("amount")
		}

		items = append(items, item)
	}
	return items, nil
}
