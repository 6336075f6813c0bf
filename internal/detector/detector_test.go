package detector_test

import (
	"testing"

	"github.com/termtran/termtran/internal/detector"
	"github.com/termtran/termtran/internal/pipeline"
)

func TestDominantScript(t *testing.T) {
	cases := map[string]detector.Script{
		"量产效率突破新高":          detector.ScriptHan,
		"The yield improved": detector.ScriptLatin,
		"Якість понад усе":   detector.ScriptCyrillic,
		"품질 제일":              detector.ScriptHangul,
		"123 456":            detector.ScriptNone,
	}

	for text, want := range cases {
		if got := detector.DominantScript(text); got != want {
			t.Errorf("DominantScript(%q) = %q, want %q", text, got, want)
		}
	}
}

func TestScriptShare(t *testing.T) {
	// Six Han letters and two Latin letters.
	share := detector.ScriptShare("质量控制要求 ok", detector.ScriptHan)
	if share < 0.74 || share > 0.76 {
		t.Errorf("unexpected Han share: %f", share)
	}

	if got := detector.ScriptShare("", detector.ScriptLatin); got != 0 {
		t.Errorf("empty text share = %f, want 0", got)
	}
}

func TestScriptShare_HanCountsTowardKana(t *testing.T) {
	// Japanese mixes kana with Han characters.
	share := detector.ScriptShare("品質管理が大切です", detector.ScriptKana)
	if share != 1 {
		t.Errorf("expected full kana share for Japanese text, got %f", share)
	}
}

func TestScriptFor(t *testing.T) {
	cases := map[pipeline.Lang]detector.Script{
		pipeline.Zh: detector.ScriptHan,
		pipeline.Ja: detector.ScriptKana,
		pipeline.Ko: detector.ScriptHangul,
		pipeline.Uk: detector.ScriptCyrillic,
		pipeline.Ar: detector.ScriptArabic,
		pipeline.En: detector.ScriptLatin,
		pipeline.De: detector.ScriptLatin,
	}

	for lang, want := range cases {
		if got := detector.ScriptFor(lang); got != want {
			t.Errorf("ScriptFor(%q) = %q, want %q", lang, got, want)
		}
	}
}

func TestDetectISO(t *testing.T) {
	d := detector.New()

	iso, ok := d.DetectISO("The quality of the translated output is validated against the source language.")
	if !ok {
		t.Fatal("expected a detection")
	}
	if iso != "EN" {
		t.Errorf("unexpected language: %q", iso)
	}

	if _, ok := d.Detect(""); ok {
		t.Error("empty text must not detect")
	}
}
