package engine

import (
	"strings"
	"testing"

	"github.com/termtran/termtran/internal/pipeline"
)

func TestBuildSystemPrompt_MarkerRules(t *testing.T) {
	req := Request{
		SourceLang: pipeline.Zh,
		TargetLang: pipeline.En,
		MarkerRules: []MarkerRule{
			{Marker: "[PH0]", Target: "power-generating glass"},
		},
	}

	got := BuildSystemPrompt(PlaceholderProtect, req)

	if !strings.Contains(got, "[PH0] => power-generating glass") {
		t.Errorf("marker rule missing from prompt:\n%s", got)
	}
	if !strings.Contains(got, "Chinese") || !strings.Contains(got, "English") {
		t.Errorf("language names missing from prompt:\n%s", got)
	}
}

func TestBuildSystemPrompt_DirectGlossary(t *testing.T) {
	req := Request{
		SourceLang: pipeline.Zh,
		TargetLang: pipeline.En,
		Glossary:   []pipeline.GlossaryEntry{{Source: "硅片", Target: "silicon wafer"}},
	}

	got := BuildSystemPrompt(DirectReplace, req)

	if !strings.Contains(got, "already contains approved English terminology") {
		t.Errorf("direct terminology rule missing:\n%s", got)
	}
}

func TestBuildSystemPrompt_StyleHint(t *testing.T) {
	req := Request{
		SourceLang: pipeline.Zh,
		TargetLang: pipeline.En,
		StyleHint:  "formal technical register",
	}

	got := BuildSystemPrompt(DirectReplace, req)

	if !strings.Contains(got, "formal technical register") {
		t.Errorf("style hint missing:\n%s", got)
	}
}

func TestBuildMessages_FewShotOnlyForZhEn(t *testing.T) {
	zhEn := Request{Text: "文本", SourceLang: pipeline.Zh, TargetLang: pipeline.En}
	msgs := BuildMessages(DirectReplace, zhEn)
	if len(msgs) != 2+2*len(fewShot) {
		t.Errorf("expected few-shot pairs for zh->en, got %d messages", len(msgs))
	}
	if msgs[0].Role != "system" {
		t.Errorf("first message must be system, got %q", msgs[0].Role)
	}
	if last := msgs[len(msgs)-1]; last.Role != "user" || last.Content != "文本" {
		t.Errorf("last message must be the user text, got %+v", last)
	}

	enFr := Request{Text: "text", SourceLang: pipeline.En, TargetLang: pipeline.Fr}
	if msgs := BuildMessages(DirectReplace, enFr); len(msgs) != 2 {
		t.Errorf("expected no few-shot for en->fr, got %d messages", len(msgs))
	}
}
