package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"takeoff/testhelpers"
)

func TestHandleCreateSection_ValidatesType(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Type Test")

	req := newJSONRequest(t, http.MethodPost, "/api/sections", map[string]any{
		"project":      proj.Id,
		"name":         "Substructure",
		"section_type": "landscaping",
	})
	rec := httptest.NewRecorder()
	if err := HandleCreateSection(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unknown section_type", rec.Code)
	}

	req = newJSONRequest(t, http.MethodPost, "/api/sections", map[string]any{
		"project":      proj.Id,
		"name":         "Substructure",
		"section_type": "main_work",
	})
	rec = httptest.NewRecorder()
	if err := HandleCreateSection(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleDeleteSection_ItemsBecomeUnsectioned(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Detach Test")
	section := testhelpers.CreateTestSection(t, app, proj.Id, "Demolition", "demolition")
	item := testhelpers.CreateTestBQItem(t, app, proj.Id, section.Id, "Take down wall")

	req := httptest.NewRequest(http.MethodDelete, "/api/sections/"+section.Id, nil)
	req.SetPathValue("id", section.Id)
	rec := httptest.NewRecorder()
	if err := HandleDeleteSection(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	reloaded, err := app.FindRecordById("bq_items", item.Id)
	if err != nil {
		t.Fatalf("item should survive its section's deletion: %v", err)
	}
	if s := reloaded.GetString("section"); s != "" {
		t.Errorf("item section = %q, want empty", s)
	}
}

func TestHandleSectionSummaries_Totals(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Summary Test")
	section := testhelpers.CreateTestSection(t, app, proj.Id, "Substructure", "main_work")

	sectioned := testhelpers.CreateTestBQItem(t, app, proj.Id, section.Id, "Excavation")
	sectioned.Set("amount", 786.25)
	if err := app.Save(sectioned); err != nil {
		t.Fatalf("failed to set amount: %v", err)
	}

	loose := testhelpers.CreateTestBQItem(t, app, proj.Id, "", "Allowance")
	loose.Set("amount", 100.0)
	if err := app.Save(loose); err != nil {
		t.Fatalf("failed to set amount: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/sections/summaries?projectId="+proj.Id, nil)
	rec := httptest.NewRecorder()
	if err := HandleSectionSummaries(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var got []sectionSummary
	decodeJSON(t, rec, &got)
	if len(got) != 2 {
		t.Fatalf("got %d summaries, want 2 (section + unsectioned)", len(got))
	}
	if got[0].SectionID != section.Id || got[0].Total != 786.25 || got[0].ItemCount != 1 {
		t.Errorf("section summary = %+v", got[0])
	}
	if got[1].Name != "General Items" || got[1].Total != 100 {
		t.Errorf("unsectioned bucket = %+v", got[1])
	}
}

func TestHandleSectionSummaries_NegativeTotalsReported(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	proj := testhelpers.CreateTestProject(t, app, "Negative Summary")
	section := testhelpers.CreateTestSection(t, app, proj.Id, "Demolition", "demolition")

	item := testhelpers.CreateTestBQItem(t, app, proj.Id, section.Id, "Over-deducted")
	item.Set("amount", -50.0)
	if err := app.Save(item); err != nil {
		t.Fatalf("failed to set amount: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/sections/summaries?projectId="+proj.Id, nil)
	rec := httptest.NewRecorder()
	if err := HandleSectionSummaries(app)(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var got []sectionSummary
	decodeJSON(t, rec, &got)
	if len(got) != 1 {
		t.Fatalf("got %d summaries, want 1", len(got))
	}
	if got[0].Total != -50 {
		t.Errorf("total = %v, want -50 (not clamped)", got[0].Total)
	}
}
