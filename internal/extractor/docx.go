package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// maxZipEntryBytes bounds how much of a single archive entry is decompressed.
const maxZipEntryBytes = 64 * MaxSnippetBytes

type coreProperties struct {
	Created  string `xml:"created"`
	Modified string `xml:"modified"`
}

func extractDOCX(data []byte) (string, error) {
	xmlData, err := readZipEntry(data, "word/document.xml")
	if err != nil {
		return "", err
	}

	extractedText, err := wordText(bytes.NewReader(xmlData))
	if err != nil {
		return "", err
	}
	extractedText = strings.TrimSpace(extractedText)
	if extractedText == "" {
		return "", fmt.Errorf("no text could be extracted from DOCX")
	}

	return extractedText, nil
}

// wordText streams w:t runs in document order, one line per w:p. A document cut
// short by maxZipEntryBytes keeps the text read so far.
func wordText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)
	var textBuilder strings.Builder
	inText := false

	for textBuilder.Len() <= MaxSnippetBytes {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			if textBuilder.Len() > 0 {
				break
			}
			return "", fmt.Errorf("failed to parse document.xml: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Space != wordNamespace {
				continue
			}
			switch el.Name.Local {
			case "t":
				inText = true
			case "tab":
				textBuilder.WriteString("\t")
			}
		case xml.EndElement:
			if el.Name.Space != wordNamespace {
				continue
			}
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				textBuilder.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				textBuilder.Write(el)
			}
		}
	}

	return textBuilder.String(), nil
}

// docxCreated reads dcterms:created (falling back to modified) from docProps/core.xml.
func docxCreated(data []byte) (string, error) {
	xmlData, err := readZipEntry(data, "docProps/core.xml")
	if err != nil {
		return "", err
	}

	var props coreProperties
	if err := xml.Unmarshal(xmlData, &props); err != nil {
		return "", fmt.Errorf("failed to parse core.xml: %w", err)
	}
	if props.Created != "" {
		return props.Created, nil
	}
	return props.Modified, nil
}

func readZipEntry(data []byte, name string) ([]byte, error) {
	zipReader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to read DOCX as ZIP: %w", err)
	}

	for _, file := range zipReader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", name, err)
		}
		defer rc.Close()

		content, err := io.ReadAll(io.LimitReader(rc, maxZipEntryBytes))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		return content, nil
	}

	return nil, fmt.Errorf("%s not found in DOCX", name)
}
