package models

// Artifact names, as listed in AuditMeta.RequiredArtifacts.
const (
	ArtifactURL                    = "URL"
	ArtifactMetrics                = "Metrics"
	ArtifactNetworkRecords         = "NetworkRecords"
	ArtifactTagsBlockingFirstPaint = "TagsBlockingFirstPaint"
	ArtifactDOMStats               = "DOMStats"
	ArtifactConsoleMessages        = "ConsoleMessages"
	ArtifactDocumentWriteCalls     = "DocumentWriteCalls"
)

// Artifacts is everything the external gatherer measured for one page.
// A nil field means the gatherer did not collect that artifact; an empty,
// non-nil slice means it was collected and nothing was found.
type Artifacts struct {
	URL                    string          `json:"url" yaml:"url"`
	FinalURL               string          `json:"finalUrl,omitempty" yaml:"finalUrl,omitempty"`
	UserAgent              string          `json:"userAgent,omitempty" yaml:"userAgent,omitempty"`
	Metrics                *Metrics        `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	NetworkRecords         []NetworkRecord `json:"networkRecords,omitempty" yaml:"networkRecords,omitempty"`
	TagsBlockingFirstPaint []BlockingTag   `json:"tagsBlockingFirstPaint,omitempty" yaml:"tagsBlockingFirstPaint,omitempty"`
	DOMStats               *DOMStats       `json:"domStats,omitempty" yaml:"domStats,omitempty"`
	ConsoleMessages        []ConsoleEntry  `json:"consoleMessages,omitempty" yaml:"consoleMessages,omitempty"`
	DocumentWriteCalls     []CallSite      `json:"documentWriteCalls,omitempty" yaml:"documentWriteCalls,omitempty"`
}

// Has reports whether the named artifact was gathered.
func (a *Artifacts) Has(name string) bool {
	if a == nil {
		return false
	}
	switch name {
	case ArtifactURL:
		return a.URL != ""
	case ArtifactMetrics:
		return a.Metrics != nil
	case ArtifactNetworkRecords:
		return a.NetworkRecords != nil
	case ArtifactTagsBlockingFirstPaint:
		return a.TagsBlockingFirstPaint != nil
	case ArtifactDOMStats:
		return a.DOMStats != nil
	case ArtifactConsoleMessages:
		return a.ConsoleMessages != nil
	case ArtifactDocumentWriteCalls:
		return a.DocumentWriteCalls != nil
	}
	return false
}

// PageURL returns the final URL after redirects, falling back to the
// requested one.
func (a *Artifacts) PageURL() string {
	if a.FinalURL != "" {
		return a.FinalURL
	}
	return a.URL
}

// Metrics holds page-load timings in milliseconds. Nil fields were not
// observed.
type Metrics struct {
	FirstMeaningfulPaint *float64 `json:"firstMeaningfulPaint,omitempty" yaml:"firstMeaningfulPaint,omitempty"`
	Interactive          *float64 `json:"interactive,omitempty" yaml:"interactive,omitempty"`
	SpeedIndex           *float64 `json:"speedIndex,omitempty" yaml:"speedIndex,omitempty"`
}

// NetworkRecord is a single request made while loading the page.
type NetworkRecord struct {
	URL          string  `json:"url" yaml:"url"`
	Protocol     string  `json:"protocol,omitempty" yaml:"protocol,omitempty"`
	MimeType     string  `json:"mimeType,omitempty" yaml:"mimeType,omitempty"`
	ResourceType string  `json:"resourceType,omitempty" yaml:"resourceType,omitempty"`
	StatusCode   int     `json:"statusCode,omitempty" yaml:"statusCode,omitempty"`
	TransferSize float64 `json:"transferSize" yaml:"transferSize"`
	ResourceSize float64 `json:"resourceSize,omitempty" yaml:"resourceSize,omitempty"`
	FromCache    bool    `json:"fromCache,omitempty" yaml:"fromCache,omitempty"`
	// CacheTTLSeconds is the freshness lifetime from the response headers.
	CacheTTLSeconds float64 `json:"cacheTtlSeconds,omitempty" yaml:"cacheTtlSeconds,omitempty"`
}

// BlockingTag is a <link> or <script> that delayed the first paint.
// Times are milliseconds from navigation start.
type BlockingTag struct {
	URL          string  `json:"url" yaml:"url"`
	TagName      string  `json:"tagName" yaml:"tagName"`
	TransferSize float64 `json:"transferSize" yaml:"transferSize"`
	StartTime    float64 `json:"startTime" yaml:"startTime"`
	EndTime      float64 `json:"endTime" yaml:"endTime"`
}

// DOMStats summarizes the document tree.
type DOMStats struct {
	TotalNodes int `json:"totalNodes" yaml:"totalNodes"`
	Depth      int `json:"depth" yaml:"depth"`
	MaxWidth   int `json:"maxWidth,omitempty" yaml:"maxWidth,omitempty"`
}

// ConsoleEntry is one message logged to the page console.
type ConsoleEntry struct {
	Level  string `json:"level" yaml:"level"`
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
	Text   string `json:"text" yaml:"text"`
	URL    string `json:"url,omitempty" yaml:"url,omitempty"`
}

// CallSite locates a script call.
type CallSite struct {
	URL  string `json:"url" yaml:"url"`
	Line int    `json:"line" yaml:"line"`
	Col  int    `json:"col" yaml:"col"`
}
