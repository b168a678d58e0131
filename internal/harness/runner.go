package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arrayir/shapecheck/internal/diag"
	"github.com/arrayir/shapecheck/internal/pipeline"
)

// Outcome is the rendered result of running one scenario.
type Outcome struct {
	Scenario    string
	Status      string // "ok" | "fail"
	Stage       string // failing stage tag, empty on success
	Category    string // failure category name, empty on success
	Report      string // concatenated diagnostic text
	Fingerprint string // refined-module fingerprint, empty on failure
}

// Run executes a scenario. Module paths resolve relative to baseDir. The run
// ID is fixed to the scenario name so rendered outcomes and golden files are
// deterministic.
func Run(sc *Scenario, baseDir string) (*Outcome, error) {
	modPath := sc.Module
	if !filepath.IsAbs(modPath) {
		modPath = filepath.Join(baseDir, modPath)
	}
	src, err := os.ReadFile(modPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read module file: %w", err)
	}

	opts := pipeline.Options{
		EnableShapeAssertions: sc.AssertionsEnabled(),
		RunIDs:                diag.NewFixedGenerator("run-" + sc.Name),
	}

	var bc bytes.Buffer
	res, rerr := pipeline.RefineText(src, filepath.Base(modPath), &bc, opts)

	out := &Outcome{Scenario: sc.Name, Status: "ok", Fingerprint: res.Fingerprint}
	if rerr != nil {
		var f *pipeline.Failure
		if !errors.As(rerr, &f) {
			return nil, fmt.Errorf("pipeline returned a non-Failure error: %w", rerr)
		}
		out.Status = "fail"
		out.Stage = f.Stage
		out.Category = f.Category.String()
		out.Report = f.Report.Text()
		out.Fingerprint = ""
	}
	return out, nil
}

// Check verifies the outcome against the scenario's expectations.
func (o *Outcome) Check(sc *Scenario) error {
	if o.Status != sc.Expect.Outcome {
		return fmt.Errorf("expected outcome %q, got %q (report:\n%s)", sc.Expect.Outcome, o.Status, o.Report)
	}
	if sc.Expect.Category != "" && o.Category != sc.Expect.Category {
		return fmt.Errorf("expected category %q, got %q (report:\n%s)", sc.Expect.Category, o.Category, o.Report)
	}
	for _, want := range sc.Expect.Contains {
		if !strings.Contains(o.Report, want) {
			return fmt.Errorf("report does not contain %q:\n%s", want, o.Report)
		}
	}
	return nil
}

// Render produces the canonical text form compared against golden files.
func (o *Outcome) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", o.Scenario)
	fmt.Fprintf(&b, "outcome: %s\n", o.Status)
	if o.Status == "fail" {
		fmt.Fprintf(&b, "stage: %s\n", o.Stage)
		fmt.Fprintf(&b, "category: %s\n", o.Category)
		b.WriteString("report:\n")
		for _, line := range strings.Split(o.Report, "\n") {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}
	return b.String()
}
