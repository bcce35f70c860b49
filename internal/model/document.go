package model

import (
	"bytes"
	"encoding/json"
)

// TextField is the top-level key holding the preformatted plain-text
// rendering of the report.
const TextField = "text"

// Document is an account data report as returned by the account service.
// It is kept as raw JSON so that every field the service sends is preserved
// byte-for-byte in the cache, including fields this tool does not know about.
//
// Only the top-level "text" member is interpreted; everything else is opaque.
type Document []byte

// NewDocument copies b into a new Document.
func NewDocument(b []byte) Document {
	doc := make(Document, len(b))
	copy(doc, b)
	return doc
}

// IsObject reports whether the document is a syntactically valid JSON object.
func (d Document) IsObject() bool {
	trimmed := bytes.TrimSpace(d)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	return json.Valid(trimmed)
}

// ReportID returns the "reportId" member if it is present and a string.
// It is a best-effort accessor used for display only.
func (d Document) ReportID() string {
	var head struct {
		ReportID string `json:"reportId"`
	}
	if err := json.Unmarshal(d, &head); err != nil {
		return ""
	}
	return head.ReportID
}

// ReportTimestamp returns the "reportTimestamp" member if it is a string.
func (d Document) ReportTimestamp() string {
	var head struct {
		ReportTimestamp string `json:"reportTimestamp"`
	}
	if err := json.Unmarshal(d, &head); err != nil {
		return ""
	}
	return head.ReportTimestamp
}

// TopLevelKeys returns the member names of the top-level object in the order
// they appear. It returns nil if the document is not a JSON object.
func (d Document) TopLevelKeys() []string {
	dec := json.NewDecoder(bytes.NewReader(d))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil
		}
		keys = append(keys, key)
	}
	return keys
}
