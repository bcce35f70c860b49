package export

import "github.com/nao1215/acctexport/internal/model"

// Field describes one top-level member of a report.
type Field struct {
	// Name is the member name.
	Name string `json:"name"`

	// Size is the length of the member's raw JSON value in bytes.
	Size int `json:"size"`
}

// Outline lists the top-level members of doc in document order.
func Outline(doc model.Document) ([]Field, error) {
	ms, err := members(doc)
	if err != nil {
		return nil, err
	}
	fields := make([]Field, len(ms))
	for i, m := range ms {
		fields[i] = Field{Name: m.name, Size: len(m.value)}
	}
	return fields, nil
}
