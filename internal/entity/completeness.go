package entity

type Decision string

const (
	DecisionComplete          Decision = "complete"
	DecisionNeedsContinuation Decision = "needs_continuation"
	DecisionNeedsMoreData     Decision = "needs_more_data"
)

// SectionStatus is the presence of one required section in a document.
type SectionStatus struct {
	Name    string `json:"name"`
	Present bool   `json:"present"`
}

// CompletenessReport summarizes the structural checks over a draft.
type CompletenessReport struct {
	Sections       []SectionStatus `json:"sections"`
	PresentCount   int             `json:"present_count"`
	DiagramCount   int             `json:"diagram_count"`
	BadTableRatio  float64         `json:"bad_table_ratio"`
	FencesBalanced bool            `json:"fences_balanced"`
	Truncated      bool            `json:"truncated"`
	Placeholders   bool            `json:"placeholders"`
	Decision       Decision        `json:"decision"`
}
