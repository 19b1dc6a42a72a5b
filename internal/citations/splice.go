package citations

import (
	"fmt"
	"regexp"
	"sort"
)

// Citation ties a span of an assistant message back to a source note.
// Position is a byte offset into the original message text; MatchText is the
// exact substring the backend matched there.
type Citation struct {
	NoteID    string `json:"note_id"`
	Title     string `json:"title"`
	Position  int    `json:"position"`
	MatchText string `json:"match_text"`
}

// Source is a raw retrieval snippet returned alongside citations.
type Source struct {
	NoteID     string  `json:"note_id"`
	Title      string  `json:"title"`
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
	CreatedAt  string  `json:"created_at,omitempty"`
}

// Segment is one piece of a spliced message: either plain text or a
// citation marker a UI renders as a clickable jump-to-source control.
type Segment struct {
	Text     string
	Citation *Citation
}

// IsCitation reports whether the segment is a marker rather than prose.
func (s Segment) IsCitation() bool {
	return s.Citation != nil
}

// Spliced is a message whose citation spans have been replaced with
// placeholder tokens, with the lookup table mapping each token back to its
// citation.
type Spliced struct {
	Text   string
	lookup map[string]Citation
}

var placeholderPattern = regexp.MustCompile(`\[CITE:\d+\]`)

// Splice rewrites the message: each citation's matched span is replaced at
// its offset-adjusted position with a unique placeholder, accumulating the
// length delta so later offsets stay correct against the mutated string.
//
// Citation positions are expected ascending and non-overlapping relative to
// the original message, but the backend contract does not promise it, so
// citations are sorted by position first and any entry whose span falls
// outside the current string, or whose match text is not actually at that
// position, is skipped rather than splicing blindly.
func Splice(message string, citationList []Citation) Spliced {
	spliced := Spliced{Text: message, lookup: make(map[string]Citation)}
	if len(citationList) == 0 {
		return spliced
	}

	ordered := append([]Citation(nil), citationList...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	offset := 0
	for index, citation := range ordered {
		if citation.MatchText == "" {
			continue
		}
		position := citation.Position + offset
		end := position + len(citation.MatchText)
		if position < 0 || end > len(spliced.Text) {
			continue
		}
		if spliced.Text[position:end] != citation.MatchText {
			continue
		}

		placeholder := fmt.Sprintf("[CITE:%d]", index)
		spliced.Text = spliced.Text[:position] + placeholder + spliced.Text[end:]
		offset += len(placeholder) - len(citation.MatchText)
		spliced.lookup[placeholder] = citation
	}
	return spliced
}

// Segments splits the spliced text into prose runs and citation markers, in
// order. Placeholders with no lookup entry are dropped.
func (s Spliced) Segments() []Segment {
	var segments []Segment
	rest := s.Text
	for {
		location := placeholderPattern.FindStringIndex(rest)
		if location == nil {
			break
		}
		if location[0] > 0 {
			segments = append(segments, Segment{Text: rest[:location[0]]})
		}
		token := rest[location[0]:location[1]]
		if citation, ok := s.lookup[token]; ok {
			bound := citation
			segments = append(segments, Segment{Citation: &bound})
		}
		rest = rest[location[1]:]
	}
	if rest != "" {
		segments = append(segments, Segment{Text: rest})
	}
	return segments
}

// PlainText reconstructs the prose with citation markers stripped.
func (s Spliced) PlainText() string {
	plain := ""
	for _, segment := range s.Segments() {
		if !segment.IsCitation() {
			plain += segment.Text
		}
	}
	return plain
}
