package services

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

func sampleProjectExport() ProjectExport {
	return ProjectExport{
		ProjectName: "Riverside Extension",
		ProjectCode: "RIV-001",
		ExportDate:  "2025-06-10",
		Sections: []ExportSection{
			{
				Name:     "Substructure",
				Code:     "main_work",
				ColorHex: "#3B82F6",
				Items: []ExportItem{
					{RulePath: "5.1.1", Description: "Excavation to reduce levels", Quantity: 42.5, Unit: "m3", Rate: 18.50, HasRate: true, Amount: 786.25},
					{RulePath: "5.1.2", Description: "Disposal off site", Quantity: 42.5, Unit: "m3"},
				},
				Total: 786.25,
			},
			{
				Name:     "Demolition",
				Code:     "demolition",
				ColorHex: "#EF4444",
				Items: []ExportItem{
					{RulePath: "3.1", Description: "Take down existing wall", Quantity: 12, Unit: "m2", Rate: 30, HasRate: true, Amount: 360},
				},
				Total: 360,
			},
		},
		Total: 1146.25,
	}
}

func TestGenerateProjectExcel_Basic(t *testing.T) {
	result, err := GenerateProjectExcel(sampleProjectExport())
	if err != nil {
		t.Fatalf("GenerateProjectExcel() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateProjectExcel() returned empty bytes")
	}

	// Verify it's a valid Excel file
	f, err := excelize.OpenReader(bytesReader(result))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 3 {
		t.Fatalf("expected 3 sheets, got %v", sheets)
	}

	found := map[string]bool{}
	for _, s := range sheets {
		found[s] = true
	}
	for _, want := range []string{"Project Summary", "Substructure", "Demolition"} {
		if !found[want] {
			t.Errorf("missing sheet %q in %v", want, sheets)
		}
	}
}

func TestGenerateProjectExcel_SectionSheetContent(t *testing.T) {
	result, err := GenerateProjectExcel(sampleProjectExport())
	if err != nil {
		t.Fatalf("GenerateProjectExcel() error = %v", err)
	}

	f, err := excelize.OpenReader(bytesReader(result))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	header, _ := f.GetCellValue("Substructure", "A1")
	if header != "Item" {
		t.Errorf("A1 = %q, want 'Item'", header)
	}
	path, _ := f.GetCellValue("Substructure", "A2")
	if path != "5.1.1" {
		t.Errorf("A2 = %q, want '5.1.1'", path)
	}
	desc, _ := f.GetCellValue("Substructure", "B2")
	if desc != "Excavation to reduce levels" {
		t.Errorf("B2 = %q, want excavation description", desc)
	}
	// Unpriced item leaves rate and amount cells blank.
	rate, _ := f.GetCellValue("Substructure", "E3")
	if rate != "" {
		t.Errorf("E3 = %q, want empty for unpriced item", rate)
	}
	// Total row follows the two item rows.
	label, _ := f.GetCellValue("Substructure", "B4")
	if label != "SECTION TOTAL" {
		t.Errorf("B4 = %q, want 'SECTION TOTAL'", label)
	}
}

func TestGenerateProjectExcel_SummarySheet(t *testing.T) {
	result, err := GenerateProjectExcel(sampleProjectExport())
	if err != nil {
		t.Fatalf("GenerateProjectExcel() error = %v", err)
	}

	f, err := excelize.OpenReader(bytesReader(result))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	name, _ := f.GetCellValue("Project Summary", "A1")
	if name != "Riverside Extension" {
		t.Errorf("summary A1 = %q, want project name", name)
	}
	code, _ := f.GetCellValue("Project Summary", "A2")
	if code != "Project Code: RIV-001" {
		t.Errorf("summary A2 = %q", code)
	}
	// Rows 6 and 7 are the two sections, row 8 the grand total.
	total, _ := f.GetCellValue("Project Summary", "A8")
	if total != "PROJECT TOTAL" {
		t.Errorf("summary A8 = %q, want 'PROJECT TOTAL'", total)
	}
}

func TestGenerateProjectExcel_NoSections(t *testing.T) {
	data := ProjectExport{
		ProjectName: "Empty Project",
		ExportDate:  "2025-06-10",
	}

	result, err := GenerateProjectExcel(data)
	if err != nil {
		t.Fatalf("GenerateProjectExcel() error = %v", err)
	}

	f, err := excelize.OpenReader(bytesReader(result))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "Project Summary" {
		t.Errorf("expected only summary sheet, got %v", sheets)
	}
	code, _ := f.GetCellValue("Project Summary", "A2")
	if code != "Project Code: N/A" {
		t.Errorf("summary A2 = %q, want N/A fallback", code)
	}
}

func TestSanitizeSheetName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Substructure", "Substructure"},
		{"forbidden chars", "A/B:C*D", "A_B_C_D"},
		{"empty", "", "Section"},
		{"too long", "This section name is definitely longer than thirty one characters", "This section name is definitely"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeSheetName(tt.input, map[string]bool{})
			if got != tt.want {
				t.Errorf("sanitizeSheetName(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if len(got) > 31 {
				t.Errorf("sheet name exceeds 31 chars: %d", len(got))
			}
		})
	}
}

func TestSanitizeSheetName_Duplicates(t *testing.T) {
	used := map[string]bool{}
	first := sanitizeSheetName("Demolition", used)
	second := sanitizeSheetName("Demolition", used)
	if first == second {
		t.Errorf("duplicate names not disambiguated: %q == %q", first, second)
	}
	if second != "Demolition 2" {
		t.Errorf("second name = %q, want 'Demolition 2'", second)
	}
}

func TestSanitizeExcelCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty string", "", ""},
		{"normal text", "Hello", "Hello"},
		{"starts with equals", "=SUM(A1:A10)", "'=SUM(A1:A10)"},
		{"starts with plus", "+1234", "'+1234"},
		{"starts with minus", "-100", "'-100"},
		{"starts with at", "@import", "'@import"},
		{"starts with tab", "\tdata", "'\tdata"},
		{"starts with pipe", "|command", "'|command"},
		{"starts with carriage return", "\rdata", "'\rdata"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitizeExcelCell(tt.input)
			if got != tt.want {
				t.Errorf("sanitizeExcelCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestThinBorders(t *testing.T) {
	borders := thinBorders()
	if len(borders) != 4 {
		t.Errorf("thinBorders() returned %d borders, want 4", len(borders))
	}

	sides := map[string]bool{"left": false, "top": false, "bottom": false, "right": false}
	for _, b := range borders {
		sides[b.Type] = true
		if b.Style != 1 {
			t.Errorf("border %s style = %d, want 1 (thin)", b.Type, b.Style)
		}
	}
	for side, found := range sides {
		if !found {
			t.Errorf("missing border side: %s", side)
		}
	}
}
