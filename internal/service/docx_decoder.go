package service

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const docxBodyPart = "word/document.xml"

// extractDOCXText returns the raw text of a word-processing package, one
// line per paragraph.
func extractDOCXText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}

	body, err := readZipFile(zr, docxBodyPart)
	if err != nil {
		return "", fmt.Errorf("invalid docx (missing %s): %w", docxBodyPart, err)
	}

	dec := xml.NewDecoder(bytes.NewReader(body))
	var sb strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("invalid docx body: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
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
	return strings.TrimSpace(sb.String()), nil
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	// Try exact match first.
	for _, f := range zr.File {
		if f.Name == name {
			return readZipEntry(f)
		}
	}
	// Then case-insensitive match.
	lower := strings.ToLower(name)
	for _, f := range zr.File {
		if strings.ToLower(f.Name) == lower {
			return readZipEntry(f)
		}
	}
	return nil, fmt.Errorf("file not found: %s", name)
}

func readZipEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
