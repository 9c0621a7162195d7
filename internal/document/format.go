package document

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"unicode/utf8"
)

// Format is a detected document format.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
	FormatHTML     Format = "html"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatText     Format = "text"
	FormatUnknown  Format = "unknown"
)

// ErrUnsupportedFormat is returned when neither the URL extension nor the
// content signature identifies a format we can extract.
var ErrUnsupportedFormat = errors.New("unsupported document format")

var pdfMagic = []byte("%PDF-")
var zipMagic = []byte("PK\x03\x04")

// Detect determines the document format from the URL extension first, falling
// back to content signatures (magic bytes, HTML tag sniff, printable-text
// check) when the extension is absent or unrecognized.
func Detect(rawURL string, data []byte) Format {
	if f := byExtension(rawURL); f != FormatUnknown {
		return f
	}
	return bySignature(data)
}

func byExtension(rawURL string) Format {
	u, err := url.Parse(rawURL)
	if err != nil {
		return FormatUnknown
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".pdf":
		return FormatPDF
	case ".docx":
		return FormatDOCX
	case ".html", ".htm":
		return FormatHTML
	case ".md", ".markdown":
		return FormatMarkdown
	case ".csv":
		return FormatCSV
	case ".txt":
		return FormatText
	}
	return FormatUnknown
}

func bySignature(data []byte) Format {
	if bytes.HasPrefix(data, pdfMagic) {
		return FormatPDF
	}
	if bytes.HasPrefix(data, zipMagic) {
		// A DOCX is a zip archive whose central directory names word/ entries.
		if bytes.Contains(data, []byte("word/document.xml")) || bytes.Contains(data, []byte("word/_rels")) {
			return FormatDOCX
		}
		return FormatUnknown
	}

	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	lowered := strings.ToLower(string(head))
	if strings.Contains(lowered, "<!doctype html") || strings.Contains(lowered, "<html") {
		return FormatHTML
	}

	if utf8.Valid(data) {
		return FormatText
	}
	return FormatUnknown
}

// Extractor converts raw document bytes into plain text.
type Extractor interface {
	Extract(data []byte) (string, error)
}

// ForFormat returns the extractor for a detected format.
func ForFormat(f Format) (Extractor, error) {
	switch f {
	case FormatPDF:
		return &PDFExtractor{}, nil
	case FormatDOCX:
		return &DOCXExtractor{}, nil
	case FormatHTML:
		return &HTMLExtractor{}, nil
	case FormatMarkdown:
		return &MarkdownExtractor{}, nil
	case FormatCSV:
		return &CSVExtractor{}, nil
	case FormatText:
		return &TextExtractor{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f)
	}
}
