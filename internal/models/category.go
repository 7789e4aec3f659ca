package models

// CategorySpec is the authored definition of a category: which audits it
// contains, in display order.
type CategorySpec struct {
	ID          string              `json:"id" yaml:"id"`
	Name        string              `json:"name" yaml:"name"`
	Description string              `json:"description,omitempty" yaml:"description,omitempty"`
	Audits      []CategoryAuditSpec `json:"audits" yaml:"audits"`
}

// CategoryAuditSpec references one audit from a category.
type CategoryAuditSpec struct {
	ID     string  `json:"id" yaml:"id"`
	Weight float64 `json:"weight" yaml:"weight"`
	// Group overrides the audit's own group when set.
	Group Group `json:"group,omitempty" yaml:"group,omitempty"`
}

// Category is a CategorySpec joined with the results of a run.
type Category struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Score       float64    `json:"score"`
	Audits      []AuditRef `json:"audits"`
}

// AuditRef pairs a result with its placement in a category.
type AuditRef struct {
	ID     string  `json:"id"`
	Result *Result `json:"result"`
	Group  Group   `json:"group,omitempty"`
	Weight float64 `json:"weight"`
}
