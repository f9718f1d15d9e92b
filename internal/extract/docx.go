package extract

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// textFromDocx extracts the paragraph text of a DOCX file. A DOCX is a zip
// archive; the document body lives in word/document.xml as WordprocessingML.
// Only text runs (<w:t>) are collected, one line per paragraph (<w:p>).
func textFromDocx(path string) (string, error) {
	archive, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("extract: open docx %s: %w", path, err)
	}
	defer func() { _ = archive.Close() }()

	var doc *zip.File
	for _, f := range archive.File {
		if f.Name == "word/document.xml" {
			doc = f
			break
		}
	}
	if doc == nil {
		return "", fmt.Errorf("extract: %s has no word/document.xml", path)
	}

	r, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("extract: open document.xml: %w", err)
	}
	defer func() { _ = r.Close() }()

	text, err := wordprocessingText(r)
	if err != nil {
		return "", fmt.Errorf("extract: parse %s: %w", path, err)
	}
	return truncate(text), nil
}

// wordprocessingText walks WordprocessingML and collects run text.
func wordprocessingText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var sb strings.Builder
	inText := false

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				sb.Write(t)
			}
		}
	}

	return strings.TrimRight(sb.String(), "\n"), nil
}
