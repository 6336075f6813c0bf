// Package pipeline defines the value types exchanged between the
// orchestrator, the terminology engine, the normalizer and callers.
package pipeline

import (
	"fmt"
	"strings"
)

// Lang is a supported language code. The set is closed: adapters advertise
// language support against it and the prompt templates name languages by it.
type Lang string

const (
	Zh Lang = "zh"
	En Lang = "en"
	Ja Lang = "ja"
	Ko Lang = "ko"
	Ru Lang = "ru"
	Fr Lang = "fr"
	De Lang = "de"
	Es Lang = "es"
	Pt Lang = "pt"
	It Lang = "it"
	Ar Lang = "ar"
	Uk Lang = "uk"
)

var langNames = map[Lang]string{
	Zh: "Chinese",
	En: "English",
	Ja: "Japanese",
	Ko: "Korean",
	Ru: "Russian",
	Fr: "French",
	De: "German",
	Es: "Spanish",
	Pt: "Portuguese",
	It: "Italian",
	Ar: "Arabic",
	Uk: "Ukrainian",
}

// ParseLang validates a language code against the closed set.
func ParseLang(code string) (Lang, error) {
	l := Lang(strings.ToLower(strings.TrimSpace(code)))
	if _, ok := langNames[l]; !ok {
		return "", fmt.Errorf("unsupported language code: %q", code)
	}
	return l, nil
}

// Name returns the English name of the language for use in prompts.
func (l Lang) Name() string {
	if name, ok := langNames[l]; ok {
		return name
	}
	return string(l)
}

// QualityFlag is an advisory annotation on a successful result indicating a
// suspected translation defect. Flags never turn a result into an error.
type QualityFlag string

const (
	// LeftoverPlaceholder marks protection markers left unresolved after
	// every recovery pass.
	LeftoverPlaceholder QualityFlag = "leftover_placeholder"

	// LengthAnomaly marks output shorter than 0.3× or longer than 3× the input.
	LengthAnomaly QualityFlag = "length_anomaly"

	// SourceUntranslated marks output still dominated by the source script.
	SourceUntranslated QualityFlag = "source_untranslated"

	// NumericLoss marks a numeric/unit token present in the source but
	// missing from the output.
	NumericLoss QualityFlag = "numeric_loss"

	// SegmentUntranslated marks a clause whose translation failed; its slot
	// carries the original-language text.
	SegmentUntranslated QualityFlag = "segment_untranslated"
)

// TranslationRequest is a single translate call. It is created per call and
// consumed once; the orchestrator never mutates it.
type TranslationRequest struct {
	Text        string
	SourceLang  Lang
	TargetLang  Lang
	Terminology []GlossaryEntry
	StyleHint   string

	// Engine pins a specific adapter by ID; empty means priority order.
	Engine string
}

// GlossaryEntry maps a source term to the approved target-language term.
type GlossaryEntry struct {
	Source string
	Target string
}

// Validate rejects requests the pipeline cannot act on.
func (r TranslationRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("empty text")
	}
	if _, err := ParseLang(string(r.SourceLang)); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if _, err := ParseLang(string(r.TargetLang)); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	return nil
}

// TranslationResult is the immutable outcome of a translate call.
type TranslationResult struct {
	Text         string
	EngineUsed   string
	QualityFlags []QualityFlag
}

// HasFlag reports whether the result carries the given flag.
func (r *TranslationResult) HasFlag(f QualityFlag) bool {
	for _, have := range r.QualityFlags {
		if have == f {
			return true
		}
	}
	return false
}

// AddFlags appends flags, dropping duplicates.
func (r *TranslationResult) AddFlags(flags ...QualityFlag) {
	for _, f := range flags {
		if !r.HasFlag(f) {
			r.QualityFlags = append(r.QualityFlags, f)
		}
	}
}
