// Package segment detects multi-clause enumerations — numbered items or
// semicolon-joined clauses — and splits them into independently
// translatable segments that reassemble losslessly in ordinal order.
package segment

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Kind identifies the enumeration style detected in the input.
type Kind string

const (
	Numbered  Kind = "numbered"
	Semicolon Kind = "semicolon"
)

// Style records how the input was split so Join can reassemble it the same
// way.
type Style struct {
	Kind Kind
}

// Segment is one independently translatable clause. Ordinal fixes its slot
// in the reassembled output regardless of translation completion order.
type Segment struct {
	Ordinal int
	Text    string
}

// numberedMarkerRe matches an ordinal marker: ASCII or CJK numeral followed
// by an enumeration delimiter. Bare "N." is handled separately so decimals
// like "3.5" are not mistaken for markers.
var numberedMarkerRe = regexp.MustCompile(`(?:\d{1,3}|[一二三四五六七八九十]{1,3})[、．)）]|\d{1,3}\.`)

// Split detects an enumeration and returns its segments plus the style
// needed to reassemble them. A nil style means no enumeration was found and
// the text should be translated single-shot. Detection order: numbered
// markers first, then semicolon-joined clauses.
func Split(text string) ([]Segment, *Style) {
	if segs := splitNumbered(text); len(segs) >= 2 {
		return segs, &Style{Kind: Numbered}
	}
	if segs := splitSemicolon(text); len(segs) >= 2 {
		return segs, &Style{Kind: Semicolon}
	}
	return nil, nil
}

func splitNumbered(text string) []Segment {
	starts := markerStarts(text)
	if len(starts) < 2 {
		return nil
	}

	var segs []Segment
	add := func(s string) {
		if strings.TrimSpace(s) != "" {
			segs = append(segs, Segment{Ordinal: len(segs), Text: strings.TrimSpace(s)})
		}
	}

	// Text before the first marker becomes its own leading segment.
	add(text[:starts[0]])
	for i, start := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		add(text[start:end])
	}
	return segs
}

// markerStarts returns the byte offsets of genuine ordinal markers: a match
// must sit at the start of the text or follow a non-alphanumeric rune, and
// a bare "N." must not be followed by a digit.
func markerStarts(text string) []int {
	var starts []int
	for _, loc := range numberedMarkerRe.FindAllStringIndex(text, -1) {
		if loc[0] > 0 {
			prev, _ := lastRune(text[:loc[0]])
			if unicode.IsLetter(prev) || unicode.IsDigit(prev) {
				continue
			}
		}
		if text[loc[1]-1] == '.' && loc[1] < len(text) && text[loc[1]] >= '0' && text[loc[1]] <= '9' {
			continue
		}
		starts = append(starts, loc[0])
	}
	return starts
}

func lastRune(s string) (rune, int) {
	r := rune(0)
	size := 0
	for _, c := range s {
		r = c
	}
	if r != 0 {
		size = len(string(r))
	}
	return r, size
}

func splitSemicolon(text string) []Segment {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ';' || r == '；'
	})

	var segs []Segment
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			segs = append(segs, Segment{Ordinal: len(segs), Text: strings.TrimSpace(p)})
		}
	}
	return segs
}

// Join reassembles segments in ordinal order. Numbered segments keep their
// own markers and are joined with a single space; semicolon clauses are
// rejoined with "; ". Join never drops a segment.
func Join(segs []Segment, style *Style) string {
	ordered := make([]Segment, len(segs))
	copy(ordered, segs)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Ordinal < ordered[j].Ordinal })

	texts := make([]string, len(ordered))
	for i, s := range ordered {
		texts[i] = strings.TrimSpace(s.Text)
	}

	sep := " "
	if style != nil && style.Kind == Semicolon {
		sep = "; "
	}
	return strings.Join(texts, sep)
}
