package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// Member is an owner of rows and worksheets.
type Member struct {
	MemberID   string   `json:"memberId,omitempty"`
	Name       string   `json:"name,omitempty"`
	Worksheets []string `json:"worksheets"`
}

// UnmarshalJSON reads a member leniently: numeric ids and worksheet names
// are stringified, and entries of any other shape decode as an empty member
// instead of failing the dataset.
func (m *Member) UnmarshalJSON(data []byte) error {
	*m = Member{}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil
	}
	m.MemberID = scalarText(raw["memberId"])
	m.Name = scalarText(raw["name"])

	var sheets []json.RawMessage
	if err := json.Unmarshal(raw["worksheets"], &sheets); err == nil {
		for _, sheet := range sheets {
			if name := scalarText(sheet); name != "" {
				m.Worksheets = append(m.Worksheets, name)
			}
		}
	}
	return nil
}

// Identity returns the member id, falling back to the name.
func (m Member) Identity() string {
	if m.MemberID != "" {
		return m.MemberID
	}
	return m.Name
}

// Is reports whether the member's id or name equals key.
func (m Member) Is(key string) bool {
	return key != "" && (m.MemberID == key || m.Name == key)
}

// Dataset is one complete snapshot produced by a single fetch.
type Dataset struct {
	Members   []Member   `json:"members"`
	Rows      []Record   `json:"rows"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

// FindMember returns the first member whose id or name equals key.
func (d Dataset) FindMember(key string) (Member, bool) {
	for _, m := range d.Members {
		if m.Is(key) {
			return m, true
		}
	}
	return Member{}, false
}

// IsEmpty reports whether the dataset has neither rows nor members.
func (d Dataset) IsEmpty() bool {
	return len(d.Rows) == 0 && len(d.Members) == 0
}

// scalarText stringifies a JSON string or number. Anything else is "".
func scalarText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	v, err := decodeValue(raw)
	if err != nil {
		return ""
	}
	switch v.(type) {
	case string, json.Number:
		return stringify(v)
	default:
		return ""
	}
}

func decodeValue(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
