package models

import "time"

// Report is the complete record of one audit run against a page.
type Report struct {
	URL              string                 `json:"url"`
	FinalURL         string                 `json:"finalUrl"`
	FetchTime        time.Time              `json:"fetchTime"`
	GeneratedBy      string                 `json:"generatedBy"`
	UserAgent        string                 `json:"userAgent,omitempty"`
	Audits           map[string]*Result     `json:"audits"`
	ReportCategories []Category             `json:"reportCategories"`
	ReportGroups     map[string]ReportGroup `json:"reportGroups"`
	RuntimeErrors    []RuntimeError         `json:"runtimeErrors,omitempty"`
	Timing           Timing                 `json:"timing"`
}

// RuntimeError records an audit that failed and was replaced by an error
// result.
type RuntimeError struct {
	Audit   string `json:"audit"`
	Message string `json:"message"`
}

type Timing struct {
	TotalMs int64 `json:"total"`
}

// Category returns the category with the given id, or nil.
func (r *Report) Category(id string) *Category {
	for i := range r.ReportCategories {
		if r.ReportCategories[i].ID == id {
			return &r.ReportCategories[i]
		}
	}
	return nil
}
