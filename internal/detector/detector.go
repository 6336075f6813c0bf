// Package detector answers two questions about a piece of text: which
// language it is probably written in (lingua-go), and which writing system
// dominates its characters. The orchestrator uses the former to validate
// results; the normalizer uses the latter for candidate scoring and the
// source-untranslated check.
package detector

import (
	"unicode"

	lingua "github.com/pemistahl/lingua-go"

	"github.com/termtran/termtran/internal/pipeline"
)

type Detector struct {
	detector lingua.LanguageDetector
}

func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		Build()

	return &Detector{detector: detector}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if text == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

// DetectISO returns the ISO 639-1 code of the detected language.
func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return lang.IsoCode639_1().String(), true
}

// Script is a coarse writing-system class.
type Script string

const (
	ScriptLatin    Script = "latin"
	ScriptHan      Script = "han"
	ScriptKana     Script = "kana"
	ScriptHangul   Script = "hangul"
	ScriptCyrillic Script = "cyrillic"
	ScriptArabic   Script = "arabic"
	ScriptNone     Script = "none"
)

// ScriptFor maps a pipeline language to its dominant writing system.
func ScriptFor(lang pipeline.Lang) Script {
	switch lang {
	case pipeline.Zh:
		return ScriptHan
	case pipeline.Ja:
		return ScriptKana
	case pipeline.Ko:
		return ScriptHangul
	case pipeline.Ru, pipeline.Uk:
		return ScriptCyrillic
	case pipeline.Ar:
		return ScriptArabic
	default:
		return ScriptLatin
	}
}

func scriptOf(r rune) Script {
	switch {
	case unicode.Is(unicode.Han, r):
		return ScriptHan
	case unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r):
		return ScriptKana
	case unicode.Is(unicode.Hangul, r):
		return ScriptHangul
	case unicode.Is(unicode.Cyrillic, r):
		return ScriptCyrillic
	case unicode.Is(unicode.Arabic, r):
		return ScriptArabic
	case unicode.Is(unicode.Latin, r):
		return ScriptLatin
	default:
		return ScriptNone
	}
}

// countScripts tallies letters per writing system; digits, punctuation and
// whitespace are not counted.
func countScripts(text string) map[Script]int {
	counts := make(map[Script]int)
	for _, r := range text {
		if s := scriptOf(r); s != ScriptNone {
			counts[s]++
		}
	}
	return counts
}

// Japanese text mixes kana with Han characters, so Han counts toward kana
// when deciding dominance for a kana-script target.
func scriptCount(counts map[Script]int, s Script) int {
	n := counts[s]
	if s == ScriptKana {
		n += counts[ScriptHan]
	}
	return n
}

// DominantScript returns the writing system with the most letters, or
// ScriptNone for text without letters.
func DominantScript(text string) Script {
	counts := countScripts(text)
	best, bestN := ScriptNone, 0
	for s, n := range counts {
		if n > bestN {
			best, bestN = s, n
		}
	}
	return best
}

// ScriptShare returns the fraction of letters in text belonging to the
// given script, in [0, 1]. Text without letters yields 0.
func ScriptShare(text string, s Script) float64 {
	counts := countScripts(text)
	total := 0
	for _, n := range counts {
		total += n
	}
	if total == 0 {
		return 0
	}
	return float64(scriptCount(counts, s)) / float64(total)
}
