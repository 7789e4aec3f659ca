package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/beacon-audit/beacon/schemas"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

var printer = message.NewPrinter(language.English)

// Document is an embedded JSON Schema paired with the name used for the
// documents it checks.
type Document struct {
	Name   string
	schema *jsonschema.Schema
}

// The documents beacon reads.
var (
	ArtifactsDocument = mustDocument("artifacts", "artifacts.schema.json", schemas.ArtifactsSchemaJSON)
	ConfigDocument    = mustDocument(".beacon.yaml", "config.schema.json", schemas.ConfigSchemaJSON)
)

func mustDocument(name, resource, raw string) *Document {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("parsing embedded %s: %v", resource, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(resource, schemaDoc); err != nil {
		panic(fmt.Sprintf("adding %s: %v", resource, err))
	}
	sch, err := compiler.Compile(resource)
	if err != nil {
		panic(fmt.Sprintf("compiling %s: %v", resource, err))
	}
	return &Document{Name: name, schema: sch}
}

// Problem is one schema violation, located by JSON pointer.
type Problem struct {
	Location string
	Message  string
}

func (p Problem) String() string {
	return p.Location + ": " + p.Message
}

// SchemaError reports every schema violation found in a document.
type SchemaError struct {
	Document string
	Problems []Problem
}

func (e *SchemaError) Error() string {
	lines := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		lines[i] = p.String()
	}
	return fmt.Sprintf("%s does not match its schema:\n  %s", e.Document, strings.Join(lines, "\n  "))
}

// Validate checks data, JSON or YAML, against the document's schema. It
// returns a *SchemaError listing every violation, ordered by location.
// An empty input is an empty object.
func (d *Document) Validate(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing %s: %w", d.Name, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}

	err := d.schema.Validate(jsonValue(doc))
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return fmt.Errorf("validating %s: %w", d.Name, err)
	}

	schemaErr := &SchemaError{Document: d.Name}
	collectProblems(ve, &schemaErr.Problems)
	sort.SliceStable(schemaErr.Problems, func(i, j int) bool {
		return schemaErr.Problems[i].Location < schemaErr.Problems[j].Location
	})
	return schemaErr
}

// collectProblems flattens the leaves of a validation error tree.
func collectProblems(ve *jsonschema.ValidationError, out *[]Problem) {
	if len(ve.Causes) == 0 {
		*out = append(*out, Problem{
			Location: "/" + strings.Join(ve.InstanceLocation, "/"),
			Message:  ve.ErrorKind.LocalizedString(printer),
		})
		return
	}
	for _, c := range ve.Causes {
		collectProblems(c, out)
	}
}

// jsonValue rewrites a YAML-decoded value into the shapes the schema
// validator accepts. Non-string map keys are stringified.
func jsonValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = jsonValue(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = jsonValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = jsonValue(item)
		}
		return out
	}
	return v
}
