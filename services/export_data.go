package services

import "fmt"

// FeeSummaryLine is one row of a structure's fee table: a discipline
// aggregate (Indent 0) or a split-fee space row beneath it (Indent 1).
// Space rows carry override-blended values; aggregate rows always show the
// calculated group figure.
type FeeSummaryLine struct {
	Indent     int
	Label      string
	Cost       float64
	Rate       float64
	DesignFee  float64
	SupportFee float64
}

// StructureSummary is one structure's section of the proposal summary.
type StructureSummary struct {
	StructureID     string
	Description     string
	DuplicateNumber int
	DuplicateRate   float64
	Lines           []FeeSummaryLine
	DesignSubtotal  float64
	SupportSubtotal float64
}

// FeeItemLine is an additional service line attached to a phase section.
type FeeItemLine struct {
	Name       string
	Discipline string
	Amount     float64
}

// ProposalSummary holds everything the summary endpoint and the document
// exports render.
type ProposalSummary struct {
	Title             string
	CreatedDate       string
	Structures        []StructureSummary
	DesignItems       []FeeItemLine
	ConstructionItems []FeeItemLine
	TotalDesign       float64
	TotalSupport      float64
	GrandTotal        float64
}

// BuildProposalSummary assembles the complete fee summary for a proposal:
// per-structure discipline groups with split-fee space rows, the two
// additional-item sections, and phase totals.
func BuildProposalSummary(p *Proposal, book *RateBook) ProposalSummary {
	summary := ProposalSummary{Title: p.Title}

	for _, s := range p.Structures {
		sec := StructureSummary{
			StructureID:     s.ID,
			Description:     s.Description,
			DuplicateNumber: p.DuplicateNumber(s),
			DuplicateRate:   book.DuplicateRate(p.DuplicateOrdinal(s)),
		}
		for _, g := range p.StructureDisciplineGroups(book, s) {
			sec.Lines = append(sec.Lines, FeeSummaryLine{
				Indent:     0,
				Label:      titleCase(g.Discipline),
				Cost:       g.TotalCost,
				Rate:       g.Rate * 100,
				DesignFee:  g.DesignFee,
				SupportFee: g.SupportFee,
			})
			sec.DesignSubtotal += g.DesignFee
			sec.SupportSubtotal += g.SupportFee
			for _, line := range g.Spaces {
				if !line.SplitFees {
					continue
				}
				design := p.EffectiveFee(book, s.ID, g.Discipline, line.SpaceID, OverrideDesign)
				support := p.EffectiveFee(book, s.ID, g.Discipline, line.SpaceID, OverrideConstruction)
				sec.Lines = append(sec.Lines, FeeSummaryLine{
					Indent:     1,
					Label:      line.SpaceName,
					Cost:       line.Cost,
					DesignFee:  design,
					SupportFee: support,
				})
			}
		}
		summary.Structures = append(summary.Structures, sec)
		summary.TotalDesign += sec.DesignSubtotal
		summary.TotalSupport += sec.SupportSubtotal
	}

	for _, item := range p.FeeItems {
		line := FeeItemLine{Name: item.Name, Discipline: titleCase(item.ParentDiscipline), Amount: item.DefaultMinValue}
		switch item.Phase {
		case PhaseConstruction:
			summary.ConstructionItems = append(summary.ConstructionItems, line)
			summary.TotalSupport += item.DefaultMinValue
		default:
			summary.DesignItems = append(summary.DesignItems, line)
			summary.TotalDesign += item.DefaultMinValue
		}
	}

	summary.GrandTotal = summary.TotalDesign + summary.TotalSupport
	return summary
}

// titleCase uppercases the first letter of a discipline token for display.
func titleCase(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}

// StructureLabel renders a structure's display description, deriving the
// duplicate suffix when the structure has no description of its own.
func StructureLabel(p *Proposal, s *Structure) string {
	if s.Description != "" {
		return s.Description
	}
	if s.IsDuplicate() {
		if parent := p.StructureByID(s.ParentID); parent != nil {
			return fmt.Sprintf("%s (Duplicate %d)", parent.Description, p.DuplicateNumber(s))
		}
	}
	return "Structure"
}
