package entity

// Category names one ordered list of the knowledge base.
type Category string

const (
	CategoryGoals       Category = "goals"
	CategoryRoles       Category = "roles"
	CategoryInputs      Category = "inputs"
	CategoryOutputs     Category = "outputs"
	CategorySLA         Category = "sla"
	CategoryKPI         Category = "kpi"
	CategoryRisks       Category = "risks"
	CategoryControls    Category = "controls"
	CategoryAssumptions Category = "assumptions"
)

// Categories lists every named category in canonical order.
var Categories = []Category{
	CategoryGoals,
	CategoryRoles,
	CategoryInputs,
	CategoryOutputs,
	CategorySLA,
	CategoryKPI,
	CategoryRisks,
	CategoryControls,
	CategoryAssumptions,
}

// KnowledgeBase accumulates facts about the business process being described
// over the whole session.
type KnowledgeBase struct {
	Goals       []string `json:"goals"`
	Roles       []string `json:"roles"`
	Inputs      []string `json:"inputs"`
	Outputs     []string `json:"outputs"`
	SLA         []string `json:"sla"`
	KPI         []string `json:"kpi"`
	Risks       []string `json:"risks"`
	Controls    []string `json:"controls"`
	Assumptions []string `json:"assumptions"`
	Facts       []string `json:"facts"`
}

func (kb *KnowledgeBase) Items(c Category) []string {
	if p := kb.slot(c); p != nil {
		return *p
	}
	return nil
}

func (kb *KnowledgeBase) SetItems(c Category, items []string) {
	if p := kb.slot(c); p != nil {
		*p = items
	}
}

// IsEmpty reports whether no named category holds an item. Loose facts are not counted.
func (kb *KnowledgeBase) IsEmpty() bool {
	for _, c := range Categories {
		if len(kb.Items(c)) > 0 {
			return false
		}
	}
	return true
}

func (kb *KnowledgeBase) slot(c Category) *[]string {
	switch c {
	case CategoryGoals:
		return &kb.Goals
	case CategoryRoles:
		return &kb.Roles
	case CategoryInputs:
		return &kb.Inputs
	case CategoryOutputs:
		return &kb.Outputs
	case CategorySLA:
		return &kb.SLA
	case CategoryKPI:
		return &kb.KPI
	case CategoryRisks:
		return &kb.Risks
	case CategoryControls:
		return &kb.Controls
	case CategoryAssumptions:
		return &kb.Assumptions
	default:
		return nil
	}
}
