package render

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dvloznov/statement-pdf/internal/document"
)

// Recorder is a Renderer that keeps every definition it receives and writes a
// short placeholder instead of a real PDF. Set Err to simulate engine failures.
type Recorder struct {
	Err error

	mu   sync.Mutex
	defs []*document.Definition
}

// Placeholder is the body Recorder writes for each render.
const Placeholder = "%PDF-1.3\n%recorded\n"

// Render implements Renderer.
func (r *Recorder) Render(ctx context.Context, def *document.Definition, w io.Writer) error {
	if r.Err != nil {
		return fmt.Errorf("%w: %v", ErrRender, r.Err)
	}
	r.mu.Lock()
	r.defs = append(r.defs, def)
	r.mu.Unlock()
	if _, err := io.WriteString(w, Placeholder); err != nil {
		return fmt.Errorf("%w: %v", ErrRender, err)
	}
	return nil
}

// Last returns the most recently rendered definition, or nil.
func (r *Recorder) Last() *document.Definition {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.defs) == 0 {
		return nil
	}
	return r.defs[len(r.defs)-1]
}

// Calls returns how many definitions were rendered.
func (r *Recorder) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.defs)
}

var _ Renderer = (*Recorder)(nil)
