// Package preprocess is the black-box module-transform seam of
// spec.md §6: the driver may run an arbitrary sequence of
// module-to-module rewrites (constant propagation, inlining, loop
// simplification, dead-code elimination, whatever the embedder
// supplies) before handing the result to the call-hierarchy analyser
// and the converter. The core ships none of these itself — they are
// an external capability — but fixes the seam so a driver can wire
// any number of them in, logging what each one did.
package preprocess

import (
	"github.com/sirupsen/logrus"

	"llir2itrs/internal/llir"
)

// Transform is one module-to-module rewrite (spec.md §6). Apply
// reports whether it changed the module, mirroring the teacher's
// OptimizationPass.Apply contract.
type Transform interface {
	Name() string
	Apply(m *llir.Module) bool
}

// Pipeline runs an ordered sequence of Transforms, logging each one's
// effect, generalizing the teacher's OptimizationPipeline from a
// fixed, built-in pass list to an externally supplied one — this
// core never decides what the preprocessing passes are, only how they
// compose.
type Pipeline struct {
	transforms []Transform
	log        *logrus.Entry
}

// NewPipeline builds an empty pipeline. log may be nil, in which case
// a package-level default logger is used.
func NewPipeline(log *logrus.Entry) *Pipeline {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Pipeline{log: log}
}

// Add appends t to the pipeline.
func (p *Pipeline) Add(t Transform) *Pipeline {
	p.transforms = append(p.transforms, t)
	return p
}

// Run applies every transform in order, repeating none, and returns
// the number that reported a change.
func (p *Pipeline) Run(m *llir.Module) int {
	applied := 0
	for _, t := range p.transforms {
		changed := t.Apply(m)
		p.log.WithFields(logrus.Fields{
			"transform": t.Name(),
			"changed":   changed,
		}).Debug("preprocess transform applied")
		if changed {
			applied++
		}
	}
	return applied
}

// NopTransform is a Transform that never changes the module; useful in
// tests and as a pipeline placeholder.
type NopTransform struct{ TransformName string }

func (n NopTransform) Name() string             { return n.TransformName }
func (n NopTransform) Apply(*llir.Module) bool { return false }
