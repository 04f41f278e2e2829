package statement

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/statement-pdf/internal/document"
	"github.com/dvloznov/statement-pdf/internal/domain"
	"github.com/dvloznov/statement-pdf/internal/ledger"
	"github.com/dvloznov/statement-pdf/internal/logger"
	"github.com/dvloznov/statement-pdf/internal/metrics"
	"github.com/dvloznov/statement-pdf/internal/render"
)

// Output is one rendered statement.
type Output struct {
	PDF        []byte
	Definition *document.Definition
	Ledger     *ledger.Ledger
}

// Service builds and renders statements.
type Service struct {
	builder  *Builder
	renderer render.Renderer
}

// NewService creates a statement service.
func NewService(builder *Builder, renderer render.Renderer) *Service {
	return &Service{
		builder:  builder,
		renderer: renderer,
	}
}

// Builder returns the document builder used by the service.
func (s *Service) Builder() *Builder {
	return s.builder
}

// Generate validates req, assembles the document and renders it fully into
// memory, so a render failure never leaves a half-written response behind.
func (s *Service) Generate(ctx context.Context, req *domain.StatementRequest) (*Output, error) {
	log := logger.FromContext(ctx)

	def, l, err := s.builder.Build(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var buf bytes.Buffer
	if err := s.renderer.Render(ctx, def, &buf); err != nil {
		return nil, fmt.Errorf("Generate: %w", err)
	}
	elapsed := time.Since(start)

	metrics.RenderDuration.Observe(elapsed.Seconds())
	metrics.StatementRows.Add(float64(len(l.Rows)))

	log.Debug().
		Int("rows", len(l.Rows)).
		Int("bytes", buf.Len()).
		Dur("render_duration", elapsed).
		Str("layout", string(s.builder.Options().Layout)).
		Msg("Statement rendered")

	return &Output{
		PDF:        buf.Bytes(),
		Definition: def,
		Ledger:     l,
	}, nil
}
