// Package testhelpers provides utilities for testing PocketBase-based applications.
package testhelpers

import (
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"takeoff/collections"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	collections.Setup(app)

	return app
}

// CreateTestOrganization creates an organization record and returns it.
func CreateTestOrganization(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("organizations")
	if err != nil {
		t.Fatalf("failed to find organizations collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("name", name)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test organization: %v", err)
	}

	return record
}

// CreateTestProject creates a project record with the given name and returns it.
func CreateTestProject(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()

	org := CreateTestOrganization(t, app, name+" Org")

	col, err := app.FindCollectionByNameOrId("projects")
	if err != nil {
		t.Fatalf("failed to find projects collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("organization", org.Id)
	record.Set("name", name)
	record.Set("status", "active")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test project: %v", err)
	}

	return record
}

// CreateTestSection creates a project section and returns it.
func CreateTestSection(t *testing.T, app *pocketbase.PocketBase, projectID, name, sectionType string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("project_sections")
	if err != nil {
		t.Fatalf("failed to find project_sections collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("project", projectID)
	record.Set("name", name)
	record.Set("section_type", sectionType)
	record.Set("color_hex", "#3B82F6")
	record.Set("sort_order", 1)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test section: %v", err)
	}

	return record
}

// CreateTestNRMSection creates an NRM work section record and returns it.
func CreateTestNRMSection(t *testing.T, app *pocketbase.PocketBase, code, title string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("nrm_sections")
	if err != nil {
		t.Fatalf("failed to find nrm_sections collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("code", code)
	record.Set("title", title)
	record.Set("sort_order", 1)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test NRM section: %v", err)
	}

	return record
}

// CreateTestRule creates a measurement rule under an NRM section.
func CreateTestRule(t *testing.T, app *pocketbase.PocketBase, sectionID, path string, level int, parentPath, content string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("nrm_rules")
	if err != nil {
		t.Fatalf("failed to find nrm_rules collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("section", sectionID)
	record.Set("path", path)
	record.Set("level", level)
	record.Set("parent_path", parentPath)
	record.Set("content", content)
	record.Set("unit", "m3")

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test rule: %v", err)
	}

	return record
}

// CreateTestBQItem creates a bill-of-quantities item for a project.
func CreateTestBQItem(t *testing.T, app *pocketbase.PocketBase, projectID, sectionID, description string) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("bq_items")
	if err != nil {
		t.Fatalf("failed to find bq_items collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("project", projectID)
	record.Set("section", sectionID)
	record.Set("description_custom", description)
	record.Set("unit", "m3")
	record.Set("quantity", 0)
	record.Set("sort_order", 1)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test BQ item: %v", err)
	}

	return record
}

// CreateTestDimensionRow creates a dimension row under a BQ item.
func CreateTestDimensionRow(t *testing.T, app *pocketbase.PocketBase, bqItemID string, timesing, dimA, dimB, dimC float64, isDeduction bool) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId("dimension_rows")
	if err != nil {
		t.Fatalf("failed to find dimension_rows collection: %v", err)
	}

	record := core.NewRecord(col)
	record.Set("bq_item", bqItemID)
	record.Set("timesing", timesing)
	record.Set("dim_a", dimA)
	record.Set("dim_b", dimB)
	record.Set("dim_c", dimC)
	record.Set("waste", 0)
	record.Set("is_deduction", isDeduction)
	record.Set("sort_order", 1)

	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test dimension row: %v", err)
	}

	return record
}
