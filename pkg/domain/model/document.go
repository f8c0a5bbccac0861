package model

import (
	"bytes"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DocumentSeparator joins ingested documents before chunking
const DocumentSeparator = "\n\n---\n\n"

// Document is one raw ingest input. Name is used as its source tag.
type Document struct {
	Name    string
	Content []byte
}

// Text decodes the document as UTF-8 text. Binary content (NUL bytes) yields
// an empty string; invalid sequences are replaced.
func (d Document) Text() string {
	b := bytes.TrimPrefix(d.Content, utf8BOM)
	if bytes.IndexByte(b, 0) >= 0 {
		return ""
	}
	return strings.ToValidUTF8(string(b), "�")
}
