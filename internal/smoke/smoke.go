// Package smoke compares a finished report against a file of expected audit
// values, for end-to-end checks against known pages.
package smoke

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"sort"
	"strconv"

	"github.com/beacon-audit/beacon/internal/models"
	"gopkg.in/yaml.v3"
)

// Expectation lists the audit values expected for one page.
type Expectation struct {
	InitialURL string         `json:"initialUrl" yaml:"initialUrl"`
	URL        string         `json:"url" yaml:"url"`
	Audits     map[string]any `json:"audits" yaml:"audits"`
}

// LoadExpectations reads a YAML or JSON list of expectations.
func LoadExpectations(path string) ([]Expectation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading expectations: %w", err)
	}

	var expectations []Expectation
	if err := yaml.Unmarshal(data, &expectations); err != nil {
		return nil, fmt.Errorf("parsing expectations %s: %w", path, err)
	}
	if len(expectations) == 0 {
		return nil, fmt.Errorf("%s contains no expectations", path)
	}
	return expectations, nil
}

// Find returns the expectation whose initialUrl or url matches rawURL.
func Find(expectations []Expectation, rawURL string) (Expectation, bool) {
	for _, e := range expectations {
		if e.InitialURL == rawURL || e.URL == rawURL {
			return e, true
		}
	}
	return Expectation{}, false
}

// Mismatch is one expected value the report did not satisfy.
type Mismatch struct {
	Path     string
	Expected any
	Actual   any
}

func (m Mismatch) Error() string {
	return fmt.Sprintf("%s: expected %v, found %v", m.Path, m.Expected, m.Actual)
}

// Err joins mismatches into a single error, or returns nil for none.
func Err(mismatches []Mismatch) error {
	errs := make([]error, 0, len(mismatches))
	for _, m := range mismatches {
		errs = append(errs, m)
	}
	return errors.Join(errs...)
}

// Compare checks the report against an expectation. Expected values are
// matched against the report's JSON form: literals by equality, strings
// like ">N", "<N", ">=N" and "<=N" numerically, and "length" keys against
// the length of an array.
func Compare(expected Expectation, rep *models.Report) ([]Mismatch, error) {
	var mismatches []Mismatch
	if expected.URL != "" && expected.URL != rep.FinalURL {
		mismatches = append(mismatches, Mismatch{Path: "url", Expected: expected.URL, Actual: rep.FinalURL})
	}

	data, err := json.Marshal(rep.Audits)
	if err != nil {
		return nil, fmt.Errorf("encoding report audits: %w", err)
	}
	var actual map[string]any
	if err := json.Unmarshal(data, &actual); err != nil {
		return nil, fmt.Errorf("decoding report audits: %w", err)
	}

	names := make([]string, 0, len(expected.Audits))
	for name := range expected.Audits {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		got, ok := actual[name]
		if !ok {
			mismatches = append(mismatches, Mismatch{Path: "audits." + name, Expected: "a result", Actual: "no result"})
			continue
		}
		mismatches = compareValue("audits."+name, expected.Audits[name], got, mismatches)
	}
	return mismatches, nil
}

func compareValue(path string, expected, actual any, mismatches []Mismatch) []Mismatch {
	switch exp := expected.(type) {
	case map[string]any:
		return compareObject(path, exp, actual, mismatches)
	case string:
		if op, n, ok := parseComparison(exp); ok {
			got, isNum := toFloat(actual)
			if !isNum || !op(got, n) {
				return append(mismatches, Mismatch{Path: path, Expected: exp, Actual: actual})
			}
			return mismatches
		}
	}

	if want, ok := toFloat(expected); ok {
		got, isNum := toFloat(actual)
		if !isNum || got != want {
			return append(mismatches, Mismatch{Path: path, Expected: expected, Actual: actual})
		}
		return mismatches
	}

	if !reflect.DeepEqual(expected, actual) {
		mismatches = append(mismatches, Mismatch{Path: path, Expected: expected, Actual: actual})
	}
	return mismatches
}

func compareObject(path string, expected map[string]any, actual any, mismatches []Mismatch) []Mismatch {
	keys := make([]string, 0, len(expected))
	for k := range expected {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	switch act := actual.(type) {
	case map[string]any:
		for _, k := range keys {
			mismatches = compareValue(path+"."+k, expected[k], act[k], mismatches)
		}
	case []any:
		for _, k := range keys {
			if k != "length" {
				mismatches = append(mismatches, Mismatch{Path: path + "." + k, Expected: expected[k], Actual: "an array"})
				continue
			}
			mismatches = compareValue(path+".length", expected[k], float64(len(act)), mismatches)
		}
	default:
		mismatches = append(mismatches, Mismatch{Path: path, Expected: "an object", Actual: actual})
	}
	return mismatches
}

var comparisonPattern = regexp.MustCompile(`^\s*(<=|>=|<|>)\s*(-?[0-9]*\.?[0-9]+)\s*$`)

func parseComparison(s string) (func(got, want float64) bool, float64, bool) {
	m := comparisonPattern.FindStringSubmatch(s)
	if m == nil {
		return nil, 0, false
	}
	n, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return nil, 0, false
	}

	switch m[1] {
	case "<":
		return func(got, want float64) bool { return got < want }, n, true
	case "<=":
		return func(got, want float64) bool { return got <= want }, n, true
	case ">":
		return func(got, want float64) bool { return got > want }, n, true
	default:
		return func(got, want float64) bool { return got >= want }, n, true
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
