// Package docstore persists returned document payloads to the configured
// output location.
package docstore

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// IOError reports a document decode or write failure. Writes are a single
// attempt; no retry.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("document %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Metadata describes a stored document.
type Metadata struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	FullPath string `json:"full_path"`
	Size     int64  `json:"size"`
	Error    int    `json:"error"`
}

// Save decodes a base64 document payload and writes it under outDir,
// creating the directory when absent. An empty fileName derives one from
// the current timestamp with a .pdf extension. Writes to distinct names
// are independent; concurrent writes to the same name are the caller's to
// avoid.
func Save(b64 string, fileName string, outDir string) (Metadata, error) {
	if fileName == "" {
		fileName = fmt.Sprintf("%d.pdf", time.Now().Unix())
	}
	path := filepath.Join(outDir, fileName)
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return Metadata{}, &IOError{Op: "decode", Path: path, Err: err}
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return Metadata{}, &IOError{Op: "mkdir", Path: outDir, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Metadata{}, &IOError{Op: "write", Path: path, Err: err}
	}
	return Metadata{
		Name:     fileName,
		MimeType: mimeFor(fileName),
		FullPath: path,
		Size:     int64(len(data)),
	}, nil
}

func mimeFor(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
