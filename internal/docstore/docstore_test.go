package docstore_test

import (
	"bytes"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"signline/internal/docstore"
)

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	raw := []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0xff, 0x10}
	meta, err := docstore.Save(base64.StdEncoding.EncodeToString(raw), "contract.pdf", dir)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if meta.Name != "contract.pdf" {
		t.Fatalf("name: %s", meta.Name)
	}
	if meta.MimeType != "application/pdf" {
		t.Fatalf("mime: %s", meta.MimeType)
	}
	if meta.FullPath != filepath.Join(dir, "contract.pdf") {
		t.Fatalf("path: %s", meta.FullPath)
	}
	if meta.Size != int64(len(raw)) {
		t.Fatalf("size %d, want %d", meta.Size, len(raw))
	}
	if meta.Error != 0 {
		t.Fatalf("error code: %d", meta.Error)
	}
	written, err := os.ReadFile(meta.FullPath)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Equal(written, raw) {
		t.Fatal("written bytes differ from original")
	}
}

func TestSaveDefaultFileName(t *testing.T) {
	dir := t.TempDir()
	meta, err := docstore.Save(base64.StdEncoding.EncodeToString([]byte("x")), "", dir)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasSuffix(meta.Name, ".pdf") {
		t.Fatalf("derived name %s must end in .pdf", meta.Name)
	}
	if _, err := os.Stat(meta.FullPath); err != nil {
		t.Fatalf("file missing: %v", err)
	}
}

func TestSaveCreatesOutputDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	meta, err := docstore.Save(base64.StdEncoding.EncodeToString([]byte("x")), "a.txt", dir)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if meta.MimeType != "text/plain" {
		t.Fatalf("mime: %s", meta.MimeType)
	}
	if _, err := os.Stat(meta.FullPath); err != nil {
		t.Fatalf("file missing: %v", err)
	}
}

func TestSaveInvalidBase64(t *testing.T) {
	_, err := docstore.Save("not//valid**base64!!", "bad.pdf", t.TempDir())
	var ioErr *docstore.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected IOError, got %v", err)
	}
	if ioErr.Op != "decode" {
		t.Fatalf("op: %s", ioErr.Op)
	}
}
