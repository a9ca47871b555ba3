package services

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// GenerateProjectPDF creates a bill-of-quantities PDF from a project
// export using maroto/v2. Each section gets its own table followed by
// a section total, and the document closes with a project summary.
func GenerateProjectPDF(data ProjectExport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addProjectHeader(m, data)

	for _, sec := range data.Sections {
		addSectionHeading(m, sec)
		addItemsTableHeader(m)
		for _, item := range sec.Items {
			addItemRow(m, item)
		}
		addSectionTotal(m, sec)
	}

	addProjectSummary(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

// addProjectHeader adds the project title, code and export date.
func addProjectHeader(m core.Maroto, data ProjectExport) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(data.ProjectName, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	code := data.ProjectCode
	if code == "" {
		code = "N/A"
	}
	m.AddRows(
		row.New(8).Add(
			col.New(6).Add(
				text.New(fmt.Sprintf("Project Code: %s", code), props.Text{
					Size:  9,
					Align: align.Left,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
			col.New(6).Add(
				text.New(fmt.Sprintf("Exported: %s", data.ExportDate), props.Text{
					Size:  9,
					Align: align.Right,
					Color: &props.Color{Red: 80, Green: 80, Blue: 80},
				}),
			),
		),
	)

	m.AddRows(row.New(4))
}

// addSectionHeading adds a colored banner row with the section name.
func addSectionHeading(m core.Maroto, sec ExportSection) {
	bg := hexToColor(sec.ColorHex)
	m.AddRows(row.New(4))
	m.AddRows(
		row.New(9).Add(
			col.New(12).Add(
				text.New(sec.Name, props.Text{
					Size:  11,
					Style: fontstyle.Bold,
					Align: align.Left,
					Color: &props.Color{Red: 255, Green: 255, Blue: 255},
				}),
			).WithStyle(&props.Cell{BackgroundColor: bg}),
		),
	)
}

// addItemsTableHeader adds the column header row for a section's item table.
func addItemsTableHeader(m core.Maroto) {
	headerBg := &props.Color{Red: 33, Green: 37, Blue: 41}
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerTextLeft := headerText
	headerTextLeft.Align = align.Left

	headerCell := props.Cell{BackgroundColor: headerBg}

	m.AddRows(
		row.New(8).Add(
			col.New(2).Add(
				text.New("Item", headerTextLeft),
			).WithStyle(&headerCell),
			col.New(4).Add(
				text.New("Description", headerTextLeft),
			).WithStyle(&headerCell),
			col.New(2).Add(
				text.New("Quantity", headerText),
			).WithStyle(&headerCell),
			col.New(1).Add(
				text.New("Unit", headerText),
			).WithStyle(&headerCell),
			col.New(1).Add(
				text.New("Rate", headerText),
			).WithStyle(&headerCell),
			col.New(2).Add(
				text.New("Amount", headerText),
			).WithStyle(&headerCell),
		),
	)
}

// addItemRow adds a single BQ item row to the section table.
func addItemRow(m core.Maroto, item ExportItem) {
	baseText := props.Text{
		Size:  7,
		Align: align.Center,
	}
	leftText := baseText
	leftText.Align = align.Left
	rightText := baseText
	rightText.Align = align.Right

	rateStr := "-"
	amountStr := "-"
	if item.HasRate {
		rateStr = FormatGBP(item.Rate)
		amountStr = FormatGBP(item.Amount)
	}

	m.AddRows(
		row.New(7).Add(
			col.New(2).Add(text.New(item.RulePath, leftText)),
			col.New(4).Add(text.New(item.Description, leftText)),
			col.New(2).Add(text.New(FormatQuantity(item.Quantity), rightText)),
			col.New(1).Add(text.New(item.Unit, baseText)),
			col.New(1).Add(text.New(rateStr, rightText)),
			col.New(2).Add(text.New(amountStr, rightText)),
		),
	)
}

// addSectionTotal adds the shaded total row after a section's items.
func addSectionTotal(m core.Maroto, sec ExportSection) {
	totalBg := &props.Color{Red: 229, Green: 231, Blue: 235}
	totalCell := &props.Cell{BackgroundColor: totalBg}
	totalText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Right,
	}

	m.AddRows(
		row.New(8).Add(
			col.New(10).Add(
				text.New("Section Total", totalText),
			).WithStyle(totalCell),
			col.New(2).Add(
				text.New(FormatGBP(sec.Total), totalText),
			).WithStyle(totalCell),
		),
	)
}

// addProjectSummary adds the per-section totals and grand total.
func addProjectSummary(m core.Maroto, data ProjectExport) {
	m.AddRows(row.New(8))
	m.AddRows(
		row.New(10).Add(
			col.New(12).Add(
				text.New("Project Summary", props.Text{
					Size:  12,
					Style: fontstyle.Bold,
					Align: align.Left,
				}),
			),
		),
	)

	rowText := props.Text{
		Size:  9,
		Align: align.Left,
	}
	rowValue := rowText
	rowValue.Align = align.Right

	for _, sec := range data.Sections {
		m.AddRows(
			row.New(7).Add(
				col.New(8).Add(text.New(sec.Name, rowText)),
				col.New(4).Add(text.New(FormatGBP(sec.Total), rowValue)),
			),
		)
	}

	summaryBg := &props.Color{Red: 240, Green: 240, Blue: 240}
	summaryCell := &props.Cell{BackgroundColor: summaryBg}
	totalText := props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Align: align.Right,
	}

	m.AddRows(
		row.New(8).Add(
			col.New(8).Add(
				text.New("Project Total", totalText),
			).WithStyle(summaryCell),
			col.New(4).Add(
				text.New(FormatGBP(data.Total), totalText),
			).WithStyle(summaryCell),
		),
	)
}

// hexToColor converts a "#RRGGBB" hex string to a maroto color.
// Invalid or empty input falls back to a neutral slate.
func hexToColor(hex string) *props.Color {
	fallback := &props.Color{Red: 71, Green: 85, Blue: 105}
	if len(hex) != 7 || hex[0] != '#' {
		return fallback
	}
	var r, g, b int
	if _, err := fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return fallback
	}
	return &props.Color{Red: r, Green: g, Blue: b}
}
