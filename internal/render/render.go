// Package render turns a document.Definition into PDF bytes.
package render

import (
	"context"
	"errors"
	"io"

	"github.com/dvloznov/statement-pdf/internal/document"
)

// ErrRender marks any failure inside the rendering engine: unreadable fonts or
// images, a malformed definition, or a failed write of the output.
var ErrRender = errors.New("render failed")

// Renderer writes a rendered document to w.
type Renderer interface {
	Render(ctx context.Context, def *document.Definition, w io.Writer) error
}
