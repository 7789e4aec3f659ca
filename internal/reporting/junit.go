package reporting

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/beacon-audit/beacon/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr,omitempty"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Skipped    int              `xml:"skipped,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one report category.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one audit within a category.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure represents an audit that scored below 1.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError represents an audit that could not produce a result.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitSkipped marks an audit that is not auto-scored.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit converts a report to JUnit XML format, one test suite per
// category.
func ConvertToJUnit(rep *models.Report) *JUnitTestSuites {
	suites := &JUnitTestSuites{
		Name:       rep.FinalURL,
		Time:       float64(rep.Timing.TotalMs) / 1000.0,
		TestSuites: []JUnitTestSuite{},
	}

	for _, cat := range rep.ReportCategories {
		suite := JUnitTestSuite{
			Name:      cat.Name,
			Timestamp: rep.FetchTime.Format(time.RFC3339),
			Properties: []JUnitProperty{
				{Name: "category", Value: cat.ID},
				{Name: "url", Value: rep.FinalURL},
				{Name: "score", Value: fmt.Sprintf("%.2f", cat.Score)},
			},
		}

		for _, ref := range cat.Audits {
			tc := convertAuditRef(cat.ID, ref)
			switch {
			case tc.Error != nil:
				suite.Errors++
			case tc.Failure != nil:
				suite.Failures++
			case tc.Skipped != nil:
				suite.Skipped++
			}
			suite.TestCases = append(suite.TestCases, tc)
		}
		suite.Tests = len(suite.TestCases)

		suites.Tests += suite.Tests
		suites.Failures += suite.Failures
		suites.Errors += suite.Errors
		suites.Skipped += suite.Skipped
		suites.TestSuites = append(suites.TestSuites, suite)
	}

	return suites
}

func convertAuditRef(categoryID string, ref models.AuditRef) JUnitTestCase {
	tc := JUnitTestCase{
		Name:      ref.ID,
		Classname: categoryID,
	}

	r := ref.Result
	if r == nil {
		tc.Error = &JUnitError{Message: "no result", Type: "AuditError"}
		return tc
	}

	switch {
	case r.Error:
		msg := r.DebugString
		if msg == "" {
			msg = "audit error"
		}
		tc.Error = &JUnitError{Message: msg, Type: "AuditError"}
	case r.Manual:
		tc.Skipped = &JUnitSkipped{Message: "manual check"}
	case r.NotApplicable:
		tc.Skipped = &JUnitSkipped{Message: "not applicable"}
	case r.Score < 1:
		tc.Failure = buildFailure(r)
	}

	return tc
}

func buildFailure(r *models.Result) *JUnitFailure {
	var body strings.Builder
	body.WriteString(r.Description)
	if r.DisplayValue != "" {
		fmt.Fprintf(&body, "\n%s", r.DisplayValue)
	}
	if links := HelpLinks(r.HelpText); len(links) > 0 {
		fmt.Fprintf(&body, "\nLearn more: %s", links[0])
	}

	return &JUnitFailure{
		Message: fmt.Sprintf("%s: score=%.2f", r.Name, r.Score),
		Type:    "AuditFailure",
		Body:    body.String(),
	}
}

// WriteJUnit writes the report as JUnit XML to w.
func WriteJUnit(w io.Writer, rep *models.Report) error {
	data, err := xml.MarshalIndent(ConvertToJUnit(rep), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(rep *models.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteJUnit(f, rep); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
