// Package passes contains the refinement stages and the shape-assertion
// verification pass.
//
// Every stage conforms to the single Pass capability: run over a module,
// record diagnostics through the scoped handler, report success or failure.
// The pipeline holds stages as a flat list of Pass values; there is no pass
// hierarchy.
package passes

import (
	"github.com/arrayir/shapecheck/internal/diag"
	"github.com/arrayir/shapecheck/internal/ir"
)

// Pass runs over a module, mutating it in place. A non-nil error means the
// stage failed; any explanation belongs in the handler as diagnostics.
type Pass interface {
	Name() string
	Run(m *ir.Module, h *diag.Handler) error
}
