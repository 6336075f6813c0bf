package normalize_test

import (
	"strings"
	"testing"

	"github.com/termtran/termtran/internal/normalize"
	"github.com/termtran/termtran/internal/pipeline"
)

func zhEn(source string) normalize.Request {
	return normalize.Request{Source: source, SourceLang: pipeline.Zh, TargetLang: pipeline.En}
}

func TestClean_ReasoningBlock(t *testing.T) {
	raw := "<think>用户需要技术翻译，注意术语。</think>High-efficiency module"

	got := normalize.Clean(raw)

	if got != "High-efficiency module" {
		t.Errorf("reasoning block not stripped: %q", got)
	}
}

func TestClean_KeepsOnlyContentAfterLastBlock(t *testing.T) {
	raw := "Draft attempt<think>reconsidering</think>Second draft<think>final check</think>High-efficiency module"

	got := normalize.Clean(raw)

	if got != "High-efficiency module" {
		t.Errorf("content before the last reasoning block must be dropped: %q", got)
	}
}

func TestClean_TruncatedReasoning(t *testing.T) {
	raw := "Partial answer here\n<thinking>the model was cut off mid"

	got := normalize.Clean(raw)

	if got != "Partial answer here" {
		t.Errorf("truncated reasoning not stripped: %q", got)
	}
}

func TestClean_BoilerplatePrefixes(t *testing.T) {
	cases := map[string]string{
		"Here is the translation:\nHello world":  "Hello world",
		"译文：量产效率突破新高":                           "量产效率突破新高",
		"翻译结果：The yield improved":               "The yield improved",
		"The translated text: Quality first":     "Quality first",
		"Sure, here is the translation: Bonjour": "Bonjour",
	}

	for raw, want := range cases {
		if got := normalize.Clean(raw); got != want {
			t.Errorf("Clean(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestClean_QuoteWrapping(t *testing.T) {
	cases := map[string]string{
		`"Hello world"`: "Hello world",
		"「你好，世界」":       "你好，世界",
		"«Привіт»":      "Привіт",
	}

	for raw, want := range cases {
		if got := normalize.Clean(raw); got != want {
			t.Errorf("Clean(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestCleanOutput_NeverEmpty(t *testing.T) {
	// Cleaning would reduce this to nothing; the raw text must survive.
	raw := "<think>only an unterminated thought"

	got := normalize.CleanOutput(raw, zhEn("一些文字"))

	if strings.TrimSpace(got) == "" {
		t.Error("cleaning reduced non-empty input to nothing")
	}
}

func TestCleanOutput_DuplicateCandidates(t *testing.T) {
	raw := "The quality is good.\nTHE QUALITY IS GOOD"

	got := normalize.CleanOutput(raw, zhEn("质量很好"))

	if got != "The quality is good." {
		t.Errorf("expected best duplicate kept, got %q", got)
	}
}

func TestCleanOutput_PrefersTargetScriptCandidate(t *testing.T) {
	raw := "质量很好\nThe quality is good.\nthe quality is good"

	got := normalize.CleanOutput(raw, zhEn("质量很好"))

	if got != "The quality is good." {
		t.Errorf("expected target-script candidate, got %q", got)
	}
}

func TestCleanOutput_MultilineWithoutDuplicationUntouched(t *testing.T) {
	raw := "First paragraph stands alone.\nSecond paragraph differs."

	got := normalize.CleanOutput(raw, zhEn("两段不同的文字"))

	if got != raw {
		t.Errorf("distinct lines must pass through, got %q", got)
	}
}

func TestRunChecks_LeftoverMarker(t *testing.T) {
	flags := normalize.RunChecks(zhEn("发电玻璃是新型建材"), "The [PH0] is a new material")

	if !hasFlag(flags, pipeline.LeftoverPlaceholder) {
		t.Errorf("expected leftover_placeholder, got %v", flags)
	}
}

func TestRunChecks_MarkerDriftStillFlagged(t *testing.T) {
	flags := normalize.RunChecks(zhEn("发电玻璃"), "The 【 tt0 】 is here and more words follow")

	if !hasFlag(flags, pipeline.LeftoverPlaceholder) {
		t.Errorf("expected leftover_placeholder for drifted marker, got %v", flags)
	}
}

func TestRunChecks_LengthAnomaly(t *testing.T) {
	flags := normalize.RunChecks(zhEn("铸锭单晶技术的工艺流程说明"), "a")

	if !hasFlag(flags, pipeline.LengthAnomaly) {
		t.Errorf("expected length_anomaly, got %v", flags)
	}
}

func TestRunChecks_SourceUntranslated(t *testing.T) {
	flags := normalize.RunChecks(zhEn("质量控制要求"), "质量控制要求 ok")

	if !hasFlag(flags, pipeline.SourceUntranslated) {
		t.Errorf("expected source_untranslated, got %v", flags)
	}
}

func TestRunChecks_TranslatedOutputCarriesNoScriptFlag(t *testing.T) {
	flags := normalize.RunChecks(zhEn("质量控制要求"), "Quality control requirements")

	if hasFlag(flags, pipeline.SourceUntranslated) {
		t.Errorf("unexpected source_untranslated: %v", flags)
	}
}

func TestRunChecks_NumericPreservedAcrossWidthForms(t *testing.T) {
	flags := normalize.RunChecks(zhEn("少子寿命5＜x＞20μs"), "minority carrier lifetime 5<x>20μs")

	if hasFlag(flags, pipeline.NumericLoss) {
		t.Errorf("width-normalized numerics should compare equal: %v", flags)
	}
}

func TestRunChecks_NumericLoss(t *testing.T) {
	flags := normalize.RunChecks(zhEn("少子寿命5＜x＞20μs"), "minority carrier lifetime 5<x>20")

	if !hasFlag(flags, pipeline.NumericLoss) {
		t.Errorf("expected numeric_loss, got %v", flags)
	}
}

func hasFlag(flags []pipeline.QualityFlag, want pipeline.QualityFlag) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}
