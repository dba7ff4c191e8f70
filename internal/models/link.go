package models

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"
)

// LinkKind tags the shape a link arrived in.
type LinkKind int

const (
	// LinkNone means the row has no usable link.
	LinkNone LinkKind = iota
	// LinkURL is a bare URL string.
	LinkURL
	// LinkStructured is an object carrying a url and/or display text.
	LinkStructured
)

// Link is the normalized form of the polymorphic Benchling field.
type Link struct {
	Kind LinkKind
	URL  string
	Text string
}

// NoLink is the zero link.
var NoLink = Link{}

// NormalizeLink resolves a raw link field into a Link. Falsy values, numbers,
// arrays and objects without a url or text degrade to NoLink.
func NormalizeLink(raw json.RawMessage) Link {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return NoLink
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil || s == "" {
			return NoLink
		}
		return Link{Kind: LinkURL, URL: s}
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return NoLink
		}
		link := Link{
			Kind: LinkStructured,
			URL:  stringMember(obj, "url"),
			Text: stringMember(obj, "text"),
		}
		if link.URL == "" && link.Text == "" {
			return NoLink
		}
		return link
	default:
		return NoLink
	}
}

func stringMember(obj map[string]json.RawMessage, key string) string {
	raw, ok := obj[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// IsZero reports whether the link is absent.
func (l Link) IsZero() bool { return l.Kind == LinkNone }

// Href is the link target. An empty Href means nothing is rendered.
func (l Link) Href() string { return l.URL }

// Label is the display text: explicit text, else the shortened URL.
func (l Link) Label() string {
	if l.Kind == LinkStructured && l.Text != "" {
		return l.Text
	}
	return ShortURL(l.URL)
}

// SearchText is the url, falling back to the text.
func (l Link) SearchText() string {
	if l.URL != "" {
		return l.URL
	}
	return l.Text
}

// MarshalJSON writes null, the bare url, or {url,text}.
func (l Link) MarshalJSON() ([]byte, error) {
	switch l.Kind {
	case LinkURL:
		return json.Marshal(l.URL)
	case LinkStructured:
		out := map[string]string{}
		if l.URL != "" {
			out["url"] = l.URL
		}
		if l.Text != "" {
			out["text"] = l.Text
		}
		return json.Marshal(out)
	default:
		return []byte("null"), nil
	}
}

// ShortURL renders an absolute URL as host+path without a leading "www."
// and without a trailing slash. Anything else is returned unchanged.
func ShortURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	return host + strings.TrimSuffix(u.EscapedPath(), "/")
}
