// Package delivery hands a rendered statement back to the client, either
// by persisting it and returning a download URL or by streaming it.
package delivery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dvloznov/statement-pdf/internal/api/middleware"
	"github.com/dvloznov/statement-pdf/internal/domain"
	"github.com/dvloznov/statement-pdf/internal/store"
)

// Mode selects how a statement reaches the client.
type Mode string

const (
	// ModePersist stores the file and answers with its download URL.
	ModePersist Mode = "persist"
	// ModeStream writes the PDF bytes as the response body.
	ModeStream Mode = "stream"
)

// FilesPath is the URL prefix persisted statements are served under.
const FilesPath = "/generated_pdfs/"

// StreamFileName is the attachment name used in stream mode.
const StreamFileName = "transactions.pdf"

// ParseMode maps a config value to a Mode. Empty means persist.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModePersist:
		return ModePersist, nil
	case ModeStream:
		return ModeStream, nil
	default:
		return "", fmt.Errorf("unknown delivery mode %q", s)
	}
}

// Receipt describes a completed delivery.
type Receipt struct {
	Mode        Mode   `json:"mode"`
	FileName    string `json:"file_name,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
	Bytes       int    `json:"bytes"`
}

// ErrResponseWritten marks failures that happen after the status line
// has been sent. The caller can only log them.
var ErrResponseWritten = errors.New("response already written")

// Strategy delivers a rendered PDF as the response to r.
// Unless the error wraps ErrResponseWritten, nothing has been written to w.
type Strategy interface {
	Mode() Mode
	Deliver(w http.ResponseWriter, r *http.Request, person domain.Person, pdf []byte) (Receipt, error)
}

// Stream writes the PDF directly in the response.
type Stream struct{}

// Mode implements Strategy.
func (Stream) Mode() Mode { return ModeStream }

// Deliver implements Strategy.
func (Stream) Deliver(w http.ResponseWriter, r *http.Request, person domain.Person, pdf []byte) (Receipt, error) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+StreamFileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)

	n, err := w.Write(pdf)
	if err != nil {
		return Receipt{Mode: ModeStream, Bytes: n}, fmt.Errorf("Deliver: %w: %w", ErrResponseWritten, err)
	}
	return Receipt{Mode: ModeStream, Bytes: n}, nil
}

// Persist saves the PDF to a store and answers with a download URL.
type Persist struct {
	Store store.Store

	// BaseURL prefixes download URLs. When empty, the URL is derived
	// from the incoming request, or left relative for background jobs.
	BaseURL string
}

// NewPersist returns a Persist strategy over s.
func NewPersist(s store.Store, baseURL string) *Persist {
	return &Persist{Store: s, BaseURL: strings.TrimRight(baseURL, "/")}
}

// Mode implements Strategy.
func (p *Persist) Mode() Mode { return ModePersist }

// Save stores pdf under the person's statement file name.
// Same-name requests overwrite each other.
func (p *Persist) Save(ctx context.Context, person domain.Person, pdf []byte) (Receipt, error) {
	name := store.StatementFileName(person.Name)
	if err := p.Store.Save(ctx, name, bytes.NewReader(pdf)); err != nil {
		return Receipt{}, fmt.Errorf("Save: %w", err)
	}
	return Receipt{
		Mode:        ModePersist,
		FileName:    name,
		DownloadURL: DownloadURL(p.BaseURL, name),
		Bytes:       len(pdf),
	}, nil
}

// Deliver implements Strategy.
func (p *Persist) Deliver(w http.ResponseWriter, r *http.Request, person domain.Person, pdf []byte) (Receipt, error) {
	receipt, err := p.Save(r.Context(), person, pdf)
	if err != nil {
		return Receipt{}, fmt.Errorf("Deliver: %w", err)
	}
	if p.BaseURL == "" {
		receipt.DownloadURL = DownloadURL(RequestBaseURL(r), receipt.FileName)
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"downloadUrl": receipt.DownloadURL,
	})
	return receipt, nil
}

// New builds the strategy for mode.
func New(mode Mode, s store.Store, baseURL string) (Strategy, error) {
	switch mode {
	case ModeStream:
		return Stream{}, nil
	case ModePersist, "":
		if s == nil {
			return nil, fmt.Errorf("New: persist mode requires a store")
		}
		return NewPersist(s, baseURL), nil
	default:
		return nil, fmt.Errorf("New: unknown delivery mode %q", mode)
	}
}

// DownloadURL joins base and the files path for name. The name is
// escaped as a single path segment.
func DownloadURL(base, name string) string {
	return strings.TrimRight(base, "/") + FilesPath + url.PathEscape(name)
}

// RequestBaseURL reconstructs scheme://host for r.
func RequestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

var (
	_ Strategy = Stream{}
	_ Strategy = (*Persist)(nil)
)
