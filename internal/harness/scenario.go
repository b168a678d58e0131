package harness

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSrc string

// Scenario defines one conformance scenario: a module to refine and the
// expected pipeline outcome.
type Scenario struct {
	// Name uniquely identifies this scenario; it is also the golden file
	// name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Module is the textual IR file path, relative to the scenario file.
	Module string `yaml:"module"`

	// EnableAssertions toggles shape-assertion checking. Nil means true.
	EnableAssertions *bool `yaml:"enable_assertions,omitempty"`

	// Expect specifies the expected outcome.
	Expect ExpectClause `yaml:"expect"`
}

// ExpectClause is the expected pipeline outcome.
type ExpectClause struct {
	// Outcome is "ok" or "fail".
	Outcome string `yaml:"outcome"`

	// Category names the expected failure category (fail only).
	Category string `yaml:"category,omitempty"`

	// Contains lists substrings the diagnostic report must include.
	Contains []string `yaml:"contains,omitempty"`
}

// AssertionsEnabled resolves the enable_assertions default (true).
func (s *Scenario) AssertionsEnabled() bool {
	return s.EnableAssertions == nil || *s.EnableAssertions
}

var (
	schemaOnce  sync.Once
	schemaValue cue.Value
)

func scenarioSchema() cue.Value {
	schemaOnce.Do(func() {
		ctx := cuecontext.New()
		schemaValue = ctx.CompileString(schemaSrc, cue.Filename("schema.cue"))
	})
	return schemaValue
}

// LoadScenario reads, schema-validates, and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// CUE schema validation catches wrong field names and value shapes with
	// positions, before the strict YAML decode.
	schema := scenarioSchema()
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("internal: compiling scenario schema: %w", err)
	}
	if err := cueyaml.Validate(data, schema); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}

	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}
	return &sc, nil
}

// validateScenario checks cross-field rules the schema cannot express.
func validateScenario(s *Scenario) error {
	switch s.Expect.Outcome {
	case "ok":
		if s.Expect.Category != "" {
			return fmt.Errorf("expect.category must be empty when outcome is ok")
		}
	case "fail":
		if s.Expect.Category == "" {
			return fmt.Errorf("expect.category is required when outcome is fail")
		}
	default:
		return fmt.Errorf("expect.outcome must be ok or fail")
	}
	return nil
}
