// Package terminology enforces a user-supplied glossary on text headed for
// a translation backend. Depending on the engine's capability it either
// substitutes approved target terms in place, or hides source terms behind
// numbered markers ([PH0], [PH1], …) the backend is instructed to keep
// verbatim, restoring them after translation.
package terminology

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/termtran/termtran/internal/engine"
	"github.com/termtran/termtran/internal/pipeline"
)

// markerPrefixes tried in order until one does not occur in the input, so a
// generated marker can never collide with natural text.
var markerPrefixes = []string{"PH", "TT", "QQ"}

// RestoreMap carries the transient marker→target mapping for one call. It
// is created by Prepare and discarded after Restore.
type RestoreMap struct {
	prefix  string
	targets []string
}

// Len returns the number of markers issued.
func (m *RestoreMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.targets)
}

// Rules returns the per-marker instruction pairs for the prompt.
func (m *RestoreMap) Rules() []engine.MarkerRule {
	if m == nil {
		return nil
	}
	rules := make([]engine.MarkerRule, len(m.targets))
	for i, target := range m.targets {
		rules[i] = engine.MarkerRule{Marker: m.marker(i), Target: target}
	}
	return rules
}

func (m *RestoreMap) marker(i int) string {
	return fmt.Sprintf("[%s%d]", m.prefix, i)
}

// Prepare applies the glossary to text for the given capability mode.
// DirectReplace substitutes target terms in place and returns a nil
// RestoreMap; PlaceholderProtect replaces each term occurrence with a
// collision-free marker and returns the map needed to restore them.
//
// Matching is longest-source-first and boundary-aware, and substitution is
// idempotent: target terms already present in the text are frozen before
// matching so a second pass produces no further changes.
func Prepare(text string, glossary []pipeline.GlossaryEntry, mode engine.Capability) (string, *RestoreMap) {
	entries := clean(glossary)
	if len(entries) == 0 {
		return text, nil
	}

	var restore *RestoreMap
	if mode == engine.PlaceholderProtect {
		restore = &RestoreMap{prefix: pickPrefix(text)}
	}

	runes := []rune(text)
	frozen := freezeTargets(runes, entries)

	var sb strings.Builder
	sb.Grow(len(text))

	for i := 0; i < len(runes); {
		if frozen[i] {
			sb.WriteRune(runes[i])
			i++
			continue
		}

		matched := false
		for _, e := range entries {
			term := []rune(e.Source)
			if !matchesAt(runes, i, term, frozen) {
				continue
			}
			if !boundaryOK(runes, i, i+len(term)) {
				continue
			}
			if restore != nil {
				sb.WriteString(restore.marker(len(restore.targets)))
				restore.targets = append(restore.targets, e.Target)
			} else {
				sb.WriteString(e.Target)
			}
			i += len(term)
			matched = true
			break
		}
		if !matched {
			sb.WriteRune(runes[i])
			i++
		}
	}

	if restore != nil && len(restore.targets) == 0 {
		restore = nil
	}
	return sb.String(), restore
}

// clean drops entries with empty or whitespace-only source terms and orders
// the rest longest-source-first so overlapping entries resolve to the
// longest match.
func clean(glossary []pipeline.GlossaryEntry) []pipeline.GlossaryEntry {
	entries := make([]pipeline.GlossaryEntry, 0, len(glossary))
	for _, e := range glossary {
		if strings.TrimSpace(e.Source) == "" {
			continue
		}
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return len([]rune(entries[i].Source)) > len([]rune(entries[j].Source))
	})
	return entries
}

// freezeTargets marks rune spans occupied by target terms already present
// in the text, so re-running substitution cannot double-substitute a source
// term that happens to be a substring of an applied target term.
func freezeTargets(runes []rune, entries []pipeline.GlossaryEntry) []bool {
	frozen := make([]bool, len(runes)+1)
	for _, e := range entries {
		target := []rune(e.Target)
		if len(target) == 0 || e.Target == e.Source {
			continue
		}
		for i := 0; i+len(target) <= len(runes); i++ {
			if !equalAt(runes, i, target) {
				continue
			}
			for j := i; j < i+len(target); j++ {
				frozen[j] = true
			}
		}
	}
	return frozen
}

func equalAt(runes []rune, at int, term []rune) bool {
	for k, r := range term {
		if runes[at+k] != r {
			return false
		}
	}
	return true
}

// matchesAt reports whether term occurs at position at without touching a
// frozen rune.
func matchesAt(runes []rune, at int, term []rune, frozen []bool) bool {
	if at+len(term) > len(runes) {
		return false
	}
	for k, r := range term {
		if frozen[at+k] || runes[at+k] != r {
			return false
		}
	}
	return true
}

// boundaryOK rejects a match whose alphanumeric edge touches another
// alphanumeric character, so a term that is a substring of unrelated text
// is never mangled. Ideographic and other unsegmented scripts (Han, kana,
// Hangul) carry no word boundaries and are always accepted.
func boundaryOK(runes []rune, start, end int) bool {
	if start > 0 && blocking(runes[start]) && blocking(runes[start-1]) {
		return false
	}
	if end < len(runes) && blocking(runes[end-1]) && blocking(runes[end]) {
		return false
	}
	return true
}

func blocking(r rune) bool {
	if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
		return false
	}
	if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r) {
		return false
	}
	return true
}

// pickPrefix returns the first marker prefix whose bracketed form does not
// occur in the input, falling back to lengthening the last candidate.
func pickPrefix(text string) string {
	for _, p := range markerPrefixes {
		if !strings.Contains(text, "["+p) {
			return p
		}
	}
	p := markerPrefixes[len(markerPrefixes)-1]
	for strings.Contains(text, "["+p) {
		p += "X"
	}
	return p
}

// Restore maps markers in translated text back to their target terms. The
// first pass replaces exact markers; a second pass tolerates case and
// whitespace drift; a final positional pass assigns still-unresolved
// targets to mangled marker-like tokens in document order. It returns the
// restored text and the indices of markers that could not be recovered.
func (m *RestoreMap) Restore(text string) (string, []int) {
	if m.Len() == 0 {
		return text, nil
	}

	resolved := make([]bool, len(m.targets))

	// Pass 1: exact markers.
	for i, target := range m.targets {
		marker := m.marker(i)
		if strings.Contains(text, marker) {
			text = strings.ReplaceAll(text, marker, target)
			resolved[i] = true
		}
	}

	// Pass 2: case or whitespace drift ("[ ph0 ]", "[Ph 0]").
	if missing(resolved) {
		drifted := regexp.MustCompile(`(?i)[\[【]\s*` + regexp.QuoteMeta(m.prefix) + `\s*(\d+)\s*[\]】]`)
		text = drifted.ReplaceAllStringFunc(text, func(match string) string {
			sub := drifted.FindStringSubmatch(match)
			idx := 0
			fmt.Sscanf(sub[1], "%d", &idx)
			if idx < 0 || idx >= len(m.targets) || resolved[idx] {
				return match
			}
			resolved[idx] = true
			return m.targets[idx]
		})
	}

	// Pass 3: positional recovery for tokens whose index was lost.
	if missing(resolved) {
		mangled := regexp.MustCompile(`(?i)[\[【]\s*` + regexp.QuoteMeta(m.prefix) + `\s*\d*\s*[\]】]`)
		text = mangled.ReplaceAllStringFunc(text, func(match string) string {
			for i := range m.targets {
				if !resolved[i] {
					resolved[i] = true
					return m.targets[i]
				}
			}
			return match
		})
	}

	var unresolved []int
	for i, ok := range resolved {
		if !ok {
			unresolved = append(unresolved, i)
		}
	}
	return text, unresolved
}

func missing(resolved []bool) bool {
	for _, ok := range resolved {
		if !ok {
			return true
		}
	}
	return false
}
