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
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// GenerateProposalPDF creates a PDF fee summary document using maroto/v2.
// It returns the raw PDF bytes or an error.
func GenerateProposalPDF(data ProposalSummary) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
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

	addSummaryHeader(m, data)
	for _, sec := range data.Structures {
		addStructureSection(m, sec)
	}
	addItemsSection(m, "ADDITIONAL SERVICES — DESIGN", data.DesignItems)
	addItemsSection(m, "ADDITIONAL SERVICES — CONSTRUCTION", data.ConstructionItems)
	addSummaryTotals(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate proposal PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

// addSummaryHeader adds the proposal title and date.
func addSummaryHeader(m core.Maroto, data ProposalSummary) {
	m.AddRows(
		row.New(10).Add(
			col.New(6).Add(
				text.New(data.Title, props.Text{
					Size:  14,
					Style: fontstyle.Bold,
					Align: align.Left,
				}),
			),
			col.New(6).Add(
				text.New("FEE PROPOSAL", props.Text{
					Size:  14,
					Style: fontstyle.Bold,
					Align: align.Right,
					Color: &props.Color{Red: 33, Green: 37, Blue: 41},
				}),
			),
		),
	)

	if data.CreatedDate != "" {
		m.AddRows(
			row.New(6).Add(
				col.New(12).Add(
					text.New("Date: "+data.CreatedDate, props.Text{
						Size:  8,
						Align: align.Left,
					}),
				),
			),
		)
	}

	m.AddRows(row.New(3))
}

// addStructureSection adds one structure's fee table: section header,
// column headers, discipline and split-fee space rows, subtotal.
func addStructureSection(m core.Maroto, sec StructureSummary) {
	sectionBg := &props.Color{Red: 232, Green: 232, Blue: 232}
	sectionCell := &props.Cell{BackgroundColor: sectionBg}

	label := sec.Description
	if sec.DuplicateNumber > 0 && sec.DuplicateRate != 1.0 {
		label = fmt.Sprintf("%s  (rate x%.2f)", label, sec.DuplicateRate)
	}
	m.AddRows(
		row.New(8).Add(
			col.New(12).Add(text.New(label, props.Text{
				Size:  10,
				Style: fontstyle.Bold,
				Align: align.Left,
			})).WithStyle(sectionCell),
		),
	)

	headerBg := &props.Color{Red: 33, Green: 37, Blue: 41}
	headerText := props.Text{
		Size:  7,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerTextLeft := headerText
	headerTextLeft.Align = align.Left
	headerCell := props.Cell{BackgroundColor: headerBg}

	m.AddRows(
		row.New(8).Add(
			col.New(4).Add(text.New("Discipline / Space", headerTextLeft)).WithStyle(&headerCell),
			col.New(3).Add(text.New("Construction Cost", headerText)).WithStyle(&headerCell),
			col.New(1).Add(text.New("Rate", headerText)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Design Fee", headerText)).WithStyle(&headerCell),
			col.New(2).Add(text.New("Constr. Support", headerText)).WithStyle(&headerCell),
		),
	)

	altBg := &props.Color{Red: 248, Green: 249, Blue: 250}

	for i, line := range sec.Lines {
		bodyTextLeft := props.Text{Size: 7, Align: align.Left}
		bodyTextRight := props.Text{Size: 7, Align: align.Right}
		bodyText := props.Text{Size: 7, Align: align.Center}
		if line.Indent == 0 {
			bodyTextLeft.Style = fontstyle.Bold
		} else {
			bodyTextLeft.Left = 3
		}

		var cellStyle *props.Cell
		if i%2 == 1 {
			cellStyle = &props.Cell{BackgroundColor: altBg}
		}

		rateLabel := ""
		if line.Indent == 0 {
			rateLabel = FormatPercent(line.Rate)
		}

		colLabel := col.New(4).Add(text.New(line.Label, bodyTextLeft))
		colCost := col.New(3).Add(text.New(FormatUSD(line.Cost), bodyTextRight))
		colRate := col.New(1).Add(text.New(rateLabel, bodyText))
		colDesign := col.New(2).Add(text.New(FormatUSD(line.DesignFee), bodyTextRight))
		colSupport := col.New(2).Add(text.New(FormatUSD(line.SupportFee), bodyTextRight))

		if cellStyle != nil {
			colLabel = colLabel.WithStyle(cellStyle)
			colCost = colCost.WithStyle(cellStyle)
			colRate = colRate.WithStyle(cellStyle)
			colDesign = colDesign.WithStyle(cellStyle)
			colSupport = colSupport.WithStyle(cellStyle)
		}

		m.AddRows(row.New(7).Add(colLabel, colCost, colRate, colDesign, colSupport))
	}

	subtotalStyle := props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right}
	m.AddRows(
		row.New(7).Add(
			col.New(8).Add(text.New("Subtotal", subtotalStyle)),
			col.New(2).Add(text.New(FormatUSD(sec.DesignSubtotal), subtotalStyle)),
			col.New(2).Add(text.New(FormatUSD(sec.SupportSubtotal), subtotalStyle)),
		),
	)

	m.AddRows(row.New(3))
}

// addItemsSection adds one additional-services block; empty blocks are
// skipped.
func addItemsSection(m core.Maroto, title string, items []FeeItemLine) {
	if len(items) == 0 {
		return
	}

	sectionBg := &props.Color{Red: 232, Green: 232, Blue: 232}
	m.AddRows(
		row.New(8).Add(
			col.New(12).Add(text.New(title, props.Text{
				Size:  9,
				Style: fontstyle.Bold,
				Align: align.Left,
			})).WithStyle(&props.Cell{BackgroundColor: sectionBg}),
		),
	)

	for _, item := range items {
		label := item.Name
		if item.Discipline != "" {
			label = fmt.Sprintf("%s (%s)", item.Name, item.Discipline)
		}
		m.AddRows(
			row.New(6).Add(
				col.New(9).Add(text.New(label, props.Text{Size: 7, Align: align.Left})),
				col.New(3).Add(text.New(FormatUSD(item.Amount), props.Text{Size: 7, Align: align.Right})),
			),
		)
	}

	m.AddRows(row.New(3))
}

// addSummaryTotals adds right-aligned proposal totals.
func addSummaryTotals(m core.Maroto, data ProposalSummary) {
	summaryBg := &props.Color{Red: 245, Green: 245, Blue: 245}
	summaryCell := &props.Cell{BackgroundColor: summaryBg}

	labelStyle := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Right,
	}
	valueStyle := props.Text{
		Size:  8,
		Align: align.Right,
	}
	grandLabelStyle := props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Align: align.Right,
	}
	grandValueStyle := props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Align: align.Right,
	}

	m.AddRows(
		row.New(7).Add(
			col.New(9).Add(text.New("Total Design Fee", labelStyle)),
			col.New(3).Add(text.New(FormatUSD(data.TotalDesign), valueStyle)),
		),
		row.New(7).Add(
			col.New(9).Add(text.New("Total Construction Support", labelStyle)),
			col.New(3).Add(text.New(FormatUSD(data.TotalSupport), valueStyle)),
		),
		row.New(8).Add(
			col.New(9).Add(text.New("Grand Total", grandLabelStyle)).WithStyle(summaryCell),
			col.New(3).Add(text.New(FormatUSD(data.GrandTotal), grandValueStyle)).WithStyle(summaryCell),
		),
	)
}
