// Package models defines the records, members and datasets served by the
// plasmid data endpoint.
package models

import (
	"encoding/json"
	"strconv"
)

// Field names used by the data endpoint.
const (
	FieldPlasmidName        = "Plasmid_Name"
	FieldPlasmidInformation = "Plasmid_Information"
	FieldAntibiotics        = "Antibiotics"
	FieldDescriptions       = "Descriptions"
	FieldBoxLocation        = "Box_(Location)"
	FieldBenchling          = "Benchling"

	FieldMemberID   = "memberId"
	FieldMemberName = "memberName"
	FieldWorksheet  = "worksheet"
)

// DisplayFields are the free-text fields shown in the table and matched by
// search, in display order. The link column follows them.
var DisplayFields = []string{
	FieldPlasmidName,
	FieldPlasmidInformation,
	FieldAntibiotics,
	FieldDescriptions,
	FieldBoxLocation,
}

// Column describes one table column.
type Column struct {
	Key   string
	Label string
}

// Columns lists the browsable columns in display order.
var Columns = []Column{
	{Key: FieldPlasmidName, Label: "Plasmid"},
	{Key: FieldPlasmidInformation, Label: "Info"},
	{Key: FieldAntibiotics, Label: "Abx"},
	{Key: FieldDescriptions, Label: "Description"},
	{Key: FieldBoxLocation, Label: "Box"},
	{Key: FieldBenchling, Label: "Benchling"},
}

// ColumnLabel returns the label for a column key, or the key itself.
func ColumnLabel(key string) string {
	for _, col := range Columns {
		if col.Key == key {
			return col.Label
		}
	}
	return key
}

// Record is one row of the dataset.
type Record struct {
	// Fields holds every decoded field except the link.
	Fields map[string]any

	// Link is the normalized Benchling link.
	Link Link
}

// Value returns a field coerced to a string. Missing and null values are
// empty; the link field yields its url-or-text.
func (r Record) Value(field string) string {
	if field == FieldBenchling {
		return r.Link.SearchText()
	}
	return stringify(r.Fields[field])
}

// MemberID returns the row's owning member id.
func (r Record) MemberID() string { return r.Value(FieldMemberID) }

// MemberName returns the row's owning member name.
func (r Record) MemberName() string { return r.Value(FieldMemberName) }

// Worksheet returns the worksheet the row belongs to.
func (r Record) Worksheet() string { return r.Value(FieldWorksheet) }

// Owner returns the member id, falling back to the member name.
func (r Record) Owner() string {
	if id := r.MemberID(); id != "" {
		return id
	}
	return r.MemberName()
}

// BelongsTo reports whether the row's member id or name equals member.
func (r Record) BelongsTo(member string) bool {
	return r.MemberID() == member || r.MemberName() == member
}

// MarshalJSON writes the record back in the endpoint's shape with the link
// in its canonical form.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		out[k] = v
	}
	out[FieldBenchling] = r.Link
	return json.Marshal(out)
}

// UnmarshalJSON decodes a raw endpoint row and normalizes its link.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fields := make(map[string]any, len(raw))
	for key, value := range raw {
		if key == FieldBenchling {
			continue
		}
		decoded, err := decodeValue(value)
		if err != nil {
			return err
		}
		fields[key] = decoded
	}
	r.Fields = fields
	r.Link = NormalizeLink(raw[FieldBenchling])
	return nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
