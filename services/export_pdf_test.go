package services

import (
	"testing"
)

func TestGenerateProjectPDF_Basic(t *testing.T) {
	result, err := GenerateProjectPDF(sampleProjectExport())
	if err != nil {
		t.Fatalf("GenerateProjectPDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateProjectPDF() returned empty bytes")
	}
	// PDF files start with %PDF
	if len(result) > 4 && string(result[:5]) != "%PDF-" {
		t.Errorf("result does not start with PDF header, got %q", string(result[:5]))
	}
}

func TestGenerateProjectPDF_NoSections(t *testing.T) {
	data := ProjectExport{
		ProjectName: "Empty Project",
		ExportDate:  "2025-06-10",
	}

	result, err := GenerateProjectPDF(data)
	if err != nil {
		t.Fatalf("GenerateProjectPDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateProjectPDF() returned empty bytes")
	}
}

func TestGenerateProjectPDF_UnpricedItems(t *testing.T) {
	data := ProjectExport{
		ProjectName: "Unpriced Project",
		ExportDate:  "2025-06-10",
		Sections: []ExportSection{
			{
				Name:     "Preliminaries",
				ColorHex: "#6B7280",
				Items: []ExportItem{
					{RulePath: "1.1", Description: "Site setup", Quantity: 1, Unit: "item"},
				},
			},
		},
	}

	result, err := GenerateProjectPDF(data)
	if err != nil {
		t.Fatalf("GenerateProjectPDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("GenerateProjectPDF() returned empty bytes")
	}
}

func TestHexToColor(t *testing.T) {
	tests := []struct {
		name                string
		input               string
		wantR, wantG, wantB int
	}{
		{"blue", "#3B82F6", 59, 130, 246},
		{"red", "#EF4444", 239, 68, 68},
		{"black", "#000000", 0, 0, 0},
		{"empty falls back", "", 71, 85, 105},
		{"missing hash falls back", "3B82F6", 71, 85, 105},
		{"garbage falls back", "#ZZZZZZ", 71, 85, 105},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := hexToColor(tt.input)
			if got.Red != tt.wantR || got.Green != tt.wantG || got.Blue != tt.wantB {
				t.Errorf("hexToColor(%q) = (%d,%d,%d), want (%d,%d,%d)",
					tt.input, got.Red, got.Green, got.Blue, tt.wantR, tt.wantG, tt.wantB)
			}
		})
	}
}
