package extract

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const minimalDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph</w:t></w:r></w:p>
  </w:body>
</w:document>`

func writeDocx(t *testing.T, documentXML string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.docx")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)

	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatal(err)
	}

	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTextFromDocx(t *testing.T) {
	path := writeDocx(t, minimalDocumentXML)

	got, err := textFromDocx(path)
	if err != nil {
		t.Fatalf("textFromDocx() error = %v", err)
	}

	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), got)
	}
	if lines[0] != "First paragraph" {
		t.Errorf("line 1 = %q", lines[0])
	}
	if lines[1] != "Second paragraph" {
		t.Errorf("runs within a paragraph not joined: %q", lines[1])
	}
}

func TestTextFromDocxMissingDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	_ = zw.Close()
	_ = f.Close()

	if _, err := textFromDocx(path); err == nil {
		t.Fatal("expected error for docx without document.xml")
	}
}

func TestTextFromDocxNotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.docx")
	if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := textFromDocx(path); err == nil {
		t.Fatal("expected error for non-zip docx")
	}
}
