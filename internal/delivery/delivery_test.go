package delivery

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dvloznov/statement-pdf/internal/domain"
	"github.com/dvloznov/statement-pdf/internal/store"
)

var testPDF = []byte("%PDF-1.3\ntest\n")

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModePersist, false},
		{"persist", ModePersist, false},
		{" Stream ", ModeStream, false},
		{"email", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStream_Deliver(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate-pdf", nil)

	receipt, err := Stream{}.Deliver(rec, req, domain.Person{Name: "John Doe"}, testPDF)
	if err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="transactions.pdf"` {
		t.Errorf("Content-Disposition = %q", got)
	}
	if rec.Body.String() != string(testPDF) {
		t.Errorf("body = %q", rec.Body.String())
	}
	if receipt.Bytes != len(testPDF) || receipt.Mode != ModeStream {
		t.Errorf("unexpected receipt: %+v", receipt)
	}
}

func TestPersist_Deliver(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		host    string
		wantURL string
	}{
		{"configured base", "https://files.example.com/", "ignored:3000", "https://files.example.com/generated_pdfs/John_Doe_transactions.pdf"},
		{"request host", "", "localhost:3000", "http://localhost:3000/generated_pdfs/John_Doe_transactions.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := store.NewMemory()
			p := NewPersist(mem, tt.baseURL)

			req := httptest.NewRequest(http.MethodPost, "/generate-pdf", nil)
			req.Host = tt.host
			rec := httptest.NewRecorder()

			receipt, err := p.Deliver(rec, req, domain.Person{Name: "John  Doe"}, testPDF)
			if err != nil {
				t.Fatalf("Deliver failed: %v", err)
			}

			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON response: %v", err)
			}
			if body["downloadUrl"] != tt.wantURL {
				t.Errorf("downloadUrl = %q, want %q", body["downloadUrl"], tt.wantURL)
			}
			if receipt.FileName != "John_Doe_transactions.pdf" {
				t.Errorf("FileName = %q", receipt.FileName)
			}

			rc, err := mem.Open(req.Context(), receipt.FileName)
			if err != nil {
				t.Fatalf("stored file missing: %v", err)
			}
			data, _ := io.ReadAll(rc)
			if string(data) != string(testPDF) {
				t.Errorf("stored bytes = %q", data)
			}
		})
	}
}

func TestPersist_DeliverStoreFailure(t *testing.T) {
	mem := store.NewMemory()
	mem.Err = errors.New("bucket unavailable")
	p := NewPersist(mem, "")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/generate-pdf", nil)

	_, err := p.Deliver(rec, req, domain.Person{Name: "Jane"}, testPDF)
	if !errors.Is(err, store.ErrStorage) {
		t.Fatalf("error = %v, want ErrStorage", err)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected nothing written on failure, got %q", rec.Body.String())
	}
}

func TestPersist_SaveRelativeURL(t *testing.T) {
	p := NewPersist(store.NewMemory(), "")
	receipt, err := p.Save(httptest.NewRequest("GET", "/", nil).Context(), domain.Person{Name: "Jane"}, testPDF)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if receipt.DownloadURL != "/generated_pdfs/Jane_transactions.pdf" {
		t.Errorf("DownloadURL = %q", receipt.DownloadURL)
	}
}

func TestNew(t *testing.T) {
	if s, err := New(ModeStream, nil, ""); err != nil || s.Mode() != ModeStream {
		t.Errorf("New(stream) = %v, %v", s, err)
	}
	if s, err := New(ModePersist, store.NewMemory(), ""); err != nil || s.Mode() != ModePersist {
		t.Errorf("New(persist) = %v, %v", s, err)
	}
	if _, err := New(ModePersist, nil, ""); err == nil {
		t.Error("expected error for persist without store")
	}
	if _, err := New("fax", nil, ""); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestRequestBaseURL(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "statements.example.com"
	req.Header.Set("X-Forwarded-Proto", "https")

	if got := RequestBaseURL(req); got != "https://statements.example.com" {
		t.Errorf("RequestBaseURL = %q", got)
	}
}

func TestDownloadURL(t *testing.T) {
	tests := []struct {
		base string
		name string
		want string
	}{
		{"http://host", "John_Doe_transactions.pdf", "http://host/generated_pdfs/John_Doe_transactions.pdf"},
		{"http://host/", "Jane?Doe_transactions.pdf", "http://host/generated_pdfs/Jane%3FDoe_transactions.pdf"},
		{"", "A#B_transactions.pdf", "/generated_pdfs/A%23B_transactions.pdf"},
		{"", "50%_Off_transactions.pdf", "/generated_pdfs/50%25_Off_transactions.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DownloadURL(tt.base, tt.name); got != tt.want {
				t.Errorf("DownloadURL(%q, %q) = %q, want %q", tt.base, tt.name, got, tt.want)
			}
		})
	}
}
