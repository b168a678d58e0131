package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario, checks its expectations, and compares
// the rendered outcome against the golden file testdata/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, sc *Scenario, baseDir string) *Outcome {
	t.Helper()

	out, err := Run(sc, baseDir)
	if err != nil {
		t.Fatalf("scenario %s: %v", sc.Name, err)
	}
	if err := out.Check(sc); err != nil {
		t.Errorf("scenario %s: %v", sc.Name, err)
	}

	g := goldie.New(t)
	g.Assert(t, sc.Name, []byte(out.Render()))
	return out
}
