package services

// Additional-service resolution: given the active disciplines on a space,
// find the matching standard engineering services and attach their linked
// additional items to the proposal as fee line items.

const (
	PhaseDesign       = "design"
	PhaseConstruction = "construction"
)

// FeeItem types. Nested items roll up under ParentDiscipline's table
// section, multi items stand alone, discipline items are section headers.
const (
	FeeItemRescheck          = "rescheck"
	FeeItemNested            = "nested"
	FeeItemMulti             = "multi"
	FeeItemDiscipline        = "discipline"
	FeeItemAdditionalService = "additional_service"
)

// FeeItem is an additional or linked service line item attached to the
// proposal (proposal-global, not structure-scoped).
type FeeItem struct {
	ID               string
	Name             string
	Description      string
	DefaultMinValue  float64
	Discipline       string
	ParentDiscipline string
	Type             string
	Phase            string
}

// StandardService is a reference engineering service offered per
// discipline and phase.
type StandardService struct {
	ID             string
	Discipline     string
	ServiceName    string
	Phase          string
	DefaultSetting bool
}

// AdditionalService is a reference line item that standard services may
// link to.
type AdditionalService struct {
	ID              string
	Name            string
	Description     string
	Discipline      string
	Phase           string
	DefaultMinValue float64
	IsActive        bool
}

// ServiceLink connects a standard service to an additional item.
type ServiceLink struct {
	EngineeringServiceID string
	AdditionalItemID     string
}

// ActiveDisciplines returns the disciplines with an active fee on the
// space, in fee order.
func (sp *Space) ActiveDisciplines() []string {
	var out []string
	seen := map[string]bool{}
	for _, fee := range sp.Fees {
		if fee.IsActive && !seen[fee.Discipline] {
			seen[fee.Discipline] = true
			out = append(out, fee.Discipline)
		}
	}
	return out
}

// ResolveAdditionalServices finds every standard service matching one of
// the space's active disciplines in the target phase, follows its links,
// and returns the linked additional items as additional_service fee items
// under the matching discipline. Items whose own phase differs from the
// target phase are silently skipped. Inactive additional items are never
// attached. Resolution is additive: callers invoking it twice for the same
// space get the items twice.
func ResolveAdditionalServices(sp *Space, phase string, standard []StandardService, additional []AdditionalService, links []ServiceLink) []*FeeItem {
	if sp == nil {
		return nil
	}
	active := map[string]bool{}
	for _, disc := range sp.ActiveDisciplines() {
		active[disc] = true
	}

	itemsByID := map[string]AdditionalService{}
	for _, item := range additional {
		itemsByID[item.ID] = item
	}
	linksByService := map[string][]string{}
	for _, link := range links {
		linksByService[link.EngineeringServiceID] = append(linksByService[link.EngineeringServiceID], link.AdditionalItemID)
	}

	var out []*FeeItem
	for _, svc := range standard {
		if !active[svc.Discipline] || svc.Phase != phase {
			continue
		}
		for _, itemID := range linksByService[svc.ID] {
			item, ok := itemsByID[itemID]
			if !ok || !item.IsActive {
				continue
			}
			if item.Phase != phase {
				// Phase mismatch between the item and the target
				// table section: skip silently.
				continue
			}
			out = append(out, &FeeItem{
				ID:               newID(),
				Name:             item.Name,
				Description:      item.Description,
				DefaultMinValue:  item.DefaultMinValue,
				Discipline:       item.Discipline,
				ParentDiscipline: svc.Discipline,
				Type:             FeeItemAdditionalService,
				Phase:            item.Phase,
			})
		}
	}
	return out
}

// AttachFeeItems appends resolved items to the proposal.
func (p *Proposal) AttachFeeItems(items []*FeeItem) {
	p.FeeItems = append(p.FeeItems, items...)
}
