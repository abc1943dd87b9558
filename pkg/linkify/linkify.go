// Package linkify splits chat text into plain-text and link segments so
// renderers never have to interpret message content as markup.
package linkify

import (
	"regexp"
	"strings"
)

// SegmentType distinguishes plain text from links.
type SegmentType string

const (
	SegmentText SegmentType = "text"
	SegmentLink SegmentType = "link"
)

// Segment is one piece of rendered message text.
type Segment struct {
	Type  SegmentType `json:"type"`
	Value string      `json:"value,omitempty"`
	Href  string      `json:"href,omitempty"`
	Label string      `json:"label,omitempty"`
}

// Text returns the characters of the original input this segment covers.
func (s Segment) Text() string {
	if s.Type == SegmentLink {
		return s.Label
	}
	return s.Value
}

// A URL runs until whitespace (Unicode separators included), a control
// character or a closing parenthesis and must end on a word character, so
// trailing punctuation stays in the surrounding text.
var urlPattern = regexp.MustCompile(`https?://[^\s\p{Z}\p{Cc}\x{FEFF})]+\b`)

// Split returns the ordered segments of text. When nothing matches, the
// result is a single text segment equal to the input.
func Split(text string) []Segment {
	matches := urlPattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return []Segment{{Type: SegmentText, Value: text}}
	}

	segments := make([]Segment, 0, len(matches)*2+1)
	last := 0
	for _, m := range matches {
		if m[0] > last {
			segments = append(segments, Segment{Type: SegmentText, Value: text[last:m[0]]})
		}
		url := text[m[0]:m[1]]
		segments = append(segments, Segment{Type: SegmentLink, Href: url, Label: url})
		last = m[1]
	}
	if last < len(text) {
		segments = append(segments, Segment{Type: SegmentText, Value: text[last:]})
	}
	return segments
}

// Join concatenates the text covered by segments.
func Join(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text())
	}
	return b.String()
}

// Links returns only the link segments.
func Links(segments []Segment) []Segment {
	var out []Segment
	for _, s := range segments {
		if s.Type == SegmentLink {
			out = append(out, s)
		}
	}
	return out
}
