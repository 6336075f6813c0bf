package engine

import (
	"fmt"
	"strings"

	"github.com/termtran/termtran/internal/pipeline"
)

// promptKey selects a prompt variant. Variants are a lookup table rather
// than nested conditionals so adding one cannot disturb the others.
type promptKey struct {
	mode        Capability
	hasGlossary bool
	hasStyle    bool
}

// promptVariant holds the instruction fragments appended after the base
// system prompt for a given key.
type promptVariant struct {
	terminology string
	style       string
}

const (
	directTermsRule = "The text already contains approved %s terminology. Keep those terms exactly as written and translate only the surrounding text."
	markerRule      = "The text contains protection markers. Render each marker as its assigned term, exactly and only once:"
	styleRule       = "Style guidance: %s"
)

var promptTable = map[promptKey]promptVariant{
	{DirectReplace, true, false}:       {terminology: directTermsRule},
	{DirectReplace, true, true}:        {terminology: directTermsRule, style: styleRule},
	{DirectReplace, false, true}:       {style: styleRule},
	{DirectReplace, false, false}:      {},
	{PlaceholderProtect, true, false}:  {terminology: markerRule},
	{PlaceholderProtect, true, true}:   {terminology: markerRule, style: styleRule},
	{PlaceholderProtect, false, true}:  {style: styleRule},
	{PlaceholderProtect, false, false}: {},
}

// fewShot demonstrates multi-clause completeness: models that truncate
// enumerations tend to stop doing so once shown a complete example pair.
var fewShot = []struct{ user, assistant string }{
	{
		user:      "1、设备每日点检；2、记录异常情况；3、及时上报。",
		assistant: "1. Inspect the equipment daily; 2. Record any abnormal conditions; 3. Report them promptly.",
	},
	{
		user:      "电阻率≥0.5Ω·cm；少子寿命＞2μs",
		assistant: "Resistivity ≥0.5Ω·cm; minority carrier lifetime ＞2μs",
	},
}

// BuildSystemPrompt assembles the uniform system instruction for a request:
// output-only behavior, the terminology rule matching the capability mode,
// and optional style guidance.
func BuildSystemPrompt(mode Capability, req Request) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("You are a professional translator. Translate the user's text from %s to %s.\n", req.SourceLang.Name(), req.TargetLang.Name()))
	sb.WriteString("Respond with the translation only. No explanations, no notes, no quotes. Translate every clause; never omit numbered items.")

	v := promptTable[promptKey{
		mode:        mode,
		hasGlossary: len(req.Glossary) > 0 || len(req.MarkerRules) > 0,
		hasStyle:    strings.TrimSpace(req.StyleHint) != "",
	}]

	if v.terminology != "" {
		sb.WriteString("\n\n")
		switch mode {
		case DirectReplace:
			sb.WriteString(fmt.Sprintf(v.terminology, req.TargetLang.Name()))
		case PlaceholderProtect:
			sb.WriteString(v.terminology)
			for _, rule := range req.MarkerRules {
				sb.WriteString(fmt.Sprintf("\n  %s => %s", rule.Marker, rule.Target))
			}
		}
	}

	if v.style != "" {
		sb.WriteString("\n\n")
		sb.WriteString(fmt.Sprintf(v.style, strings.TrimSpace(req.StyleHint)))
	}

	return sb.String()
}

// chatMessage is the common role/content shape shared by every
// chat-completions style backend.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// BuildMessages produces the system instruction, the few-shot example pairs
// and the user text in chat-completions order.
func BuildMessages(mode Capability, req Request) []chatMessage {
	msgs := []chatMessage{{Role: "system", Content: BuildSystemPrompt(mode, req)}}
	if req.SourceLang == pipeline.Zh && req.TargetLang == pipeline.En {
		for _, ex := range fewShot {
			msgs = append(msgs,
				chatMessage{Role: "user", Content: ex.user},
				chatMessage{Role: "assistant", Content: ex.assistant},
			)
		}
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: req.Text})
	return msgs
}
