package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestStatementFileName(t *testing.T) {
	tests := []struct {
		name   string
		person string
		want   string
	}{
		{"single space", "John Doe", "John_Doe_transactions.pdf"},
		{"whitespace run", "John  \t Doe", "John_Doe_transactions.pdf"},
		{"no-break space", "John\u00a0Doe", "John_Doe_transactions.pdf"},
		{"mixed unicode spaces", "John\u2003\u00a0 \u3000Doe", "John_Doe_transactions.pdf"},
		{"vertical tab and line separator", "John\v\u2028Doe", "John_Doe_transactions.pdf"},
		{"no whitespace", "Jane", "Jane_transactions.pdf"},
		{"empty", "", "_transactions.pdf"},
		{"separators", "../etc/passwd", ".._etc_passwd_transactions.pdf"},
		{"backslash", `a\b`, "a_b_transactions.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StatementFileName(tt.person)
			if got != tt.want {
				t.Errorf("StatementFileName(%q) = %q, want %q", tt.person, got, tt.want)
			}
			if !ValidName(got) {
				t.Errorf("StatementFileName(%q) produced invalid name %q", tt.person, got)
			}
		})
	}
}

func TestValidName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"John_Doe_transactions.pdf", true},
		{"", false},
		{".", false},
		{"..", false},
		{"../secret", false},
		{"dir/file.pdf", false},
		{`dir\file.pdf`, false},
		{"nul\x00.pdf", false},
	}

	for _, tt := range tests {
		if got := ValidName(tt.name); got != tt.want {
			t.Errorf("ValidName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLocal_SaveAndOpen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "generated_pdfs")
	l, err := NewLocal(dir)
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("expected directory to be created: %v", err)
	}

	ctx := context.Background()
	if err := l.Save(ctx, "a.pdf", bytes.NewReader([]byte("first"))); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := l.Save(ctx, "a.pdf", bytes.NewReader([]byte("second"))); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	rc, err := l.Open(ctx, "a.pdf")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "second" {
		t.Errorf("content = %q, want %q", data, "second")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected 1 file in store dir, found %d", len(entries))
	}
}

func TestLocal_OpenMissing(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}

	for _, name := range []string{"missing.pdf", "../missing.pdf", ".."} {
		if _, err := l.Open(context.Background(), name); !errors.Is(err, ErrNotFound) {
			t.Errorf("Open(%q) error = %v, want ErrNotFound", name, err)
		}
	}
}

func TestLocal_SaveRejectsTraversal(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}
	err = l.Save(context.Background(), "../escape.pdf", bytes.NewReader(nil))
	if !errors.Is(err, ErrInvalidName) {
		t.Errorf("Save error = %v, want ErrInvalidName", err)
	}
}

func TestLocal_SaveCancelled(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = l.Save(ctx, "a.pdf", bytes.NewReader([]byte("x")))
	if !errors.Is(err, ErrStorage) {
		t.Errorf("Save error = %v, want ErrStorage", err)
	}
}

func TestNewLocal_EmptyDir(t *testing.T) {
	if _, err := NewLocal(""); err == nil {
		t.Error("expected error for empty directory")
	}
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Save(ctx, "a.pdf", bytes.NewReader([]byte("pdf"))); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}

	rc, err := m.Open(ctx, "a.pdf")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	data, _ := io.ReadAll(rc)
	if string(data) != "pdf" {
		t.Errorf("content = %q", data)
	}

	if _, err := m.Open(ctx, "b.pdf"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Open missing error = %v, want ErrNotFound", err)
	}

	m.Err = errors.New("disk full")
	if err := m.Save(ctx, "c.pdf", bytes.NewReader(nil)); !errors.Is(err, ErrStorage) {
		t.Errorf("Save error = %v, want ErrStorage", err)
	}
}

func TestGCS_ObjectName(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"", "a.pdf"},
		{"generated_pdfs", "generated_pdfs/a.pdf"},
		{"statements/2024/", "statements/2024/a.pdf"},
	}

	for _, tt := range tests {
		g := &GCS{bucket: "b", prefix: tt.prefix}
		if got := g.ObjectName("a.pdf"); got != tt.want {
			t.Errorf("ObjectName with prefix %q = %q, want %q", tt.prefix, got, tt.want)
		}
	}
}

func TestNewGCS_RequiresBucket(t *testing.T) {
	if _, err := NewGCS(context.Background(), "", ""); err == nil {
		t.Error("expected error for empty bucket")
	}
}
