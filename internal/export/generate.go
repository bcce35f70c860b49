package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/nao1215/acctexport/internal/model"
)

// Generate builds an artifact from doc in the requested format.
func Generate(doc model.Document, format model.ExportFormat) (*model.Artifact, error) {
	if len(doc) == 0 {
		return nil, ErrNoReportAvailable
	}

	switch format {
	case model.ExportFormatText:
		text, err := ExtractText(doc)
		if err != nil {
			return nil, err
		}
		return model.NewArtifact([]byte(text), format), nil
	case model.ExportFormatJSON:
		data, err := StripText(doc)
		if err != nil {
			return nil, err
		}
		return model.NewArtifact(data, format), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %v", format)
	}
}

// member is one top-level name/value pair of the report object.
type member struct {
	name  string
	value json.RawMessage
}

// members splits doc into its top-level members, in document order.
func members(doc model.Document) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(doc))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedReport, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: top-level value is not an object", ErrMalformedReport)
	}

	var out []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedReport, err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected token %v", ErrMalformedReport, tok)
		}

		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("%w: member %q: %w", ErrMalformedReport, name, err)
		}
		out = append(out, member{name: name, value: value})
	}

	// Closing brace
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedReport, err)
	}
	// Nothing but whitespace may follow the object
	if tok, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, fmt.Errorf("%w: trailing data after report object: %w", ErrMalformedReport, err)
		}
		return nil, fmt.Errorf("%w: trailing data after report object: %v", ErrMalformedReport, tok)
	}

	return out, nil
}

// ExtractText returns the string value of the top-level "text" member.
func ExtractText(doc model.Document) (string, error) {
	ms, err := members(doc)
	if err != nil {
		return "", err
	}

	for _, m := range ms {
		if m.name != model.TextField {
			continue
		}
		var text string
		if err := json.Unmarshal(m.value, &text); err != nil {
			return "", fmt.Errorf("%w: %q member is not a string", ErrMalformedReport, model.TextField)
		}
		return text, nil
	}

	return "", fmt.Errorf("%w: %q member is missing", ErrMalformedReport, model.TextField)
}

// StripText returns doc with every top-level "text" member removed,
// serialized as compact JSON. The other members keep their order and
// nesting.
func StripText(doc model.Document) ([]byte, error) {
	ms, err := members(doc)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, m := range ms {
		if m.name == model.TextField {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false

		if err := writeName(&buf, m.name); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedReport, err)
		}
		buf.WriteByte(':')
		if err := json.Compact(&buf, m.value); err != nil {
			return nil, fmt.Errorf("%w: member %q: %w", ErrMalformedReport, m.name, err)
		}
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// writeName writes name as a JSON string without HTML escaping, so member
// names containing '<', '>' or '&' are emitted as the service sent them.
func writeName(buf *bytes.Buffer, name string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(name); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(tmp.Bytes(), []byte("\n")))
	return nil
}
