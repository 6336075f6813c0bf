// Package normalize turns raw generative-model output into a clean
// translation. It strips reasoning traces and boilerplate, picks the best
// candidate when the model emits near-duplicate lines, and runs advisory
// quality checks against the source text. Cleaning never reduces non-empty
// input to nothing: when it would, the unfiltered raw text is returned.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/termtran/termtran/internal/detector"
	"github.com/termtran/termtran/internal/pipeline"
)

// Request carries the context a normalization pass needs: the source text
// and the language pair of the translation being cleaned.
type Request struct {
	Source     string
	SourceLang pipeline.Lang
	TargetLang pipeline.Lang
}

// Normalize cleans raw model output and returns the best candidate text
// plus advisory quality flags. The returned flags never indicate failure;
// callers attach them to an otherwise successful result.
func Normalize(raw string, req Request) (string, []pipeline.QualityFlag) {
	clean := CleanOutput(raw, req)
	return clean, RunChecks(req, clean)
}

// CleanOutput cleans raw output and picks the best candidate without
// running quality checks, for callers that still need to restore
// terminology markers before checking.
func CleanOutput(raw string, req Request) string {
	clean := Clean(raw)
	clean = selectCandidate(clean, req)

	// Never drop content to silence.
	if strings.TrimSpace(clean) == "" && strings.TrimSpace(raw) != "" {
		clean = strings.TrimSpace(raw)
	}
	return clean
}

// Clean removes model artifacts in three phases: reasoning blocks,
// boilerplate prefixes, and quote wrapping.
func Clean(text string) string {
	text = removeReasoningBlocks(text)
	text = removeBoilerplate(text)
	text = removeQuoteWrapping(text)
	return strings.TrimSpace(text)
}

// reasoningBlockRe matches complete <think>…</think> style blocks. Each tag
// variant is listed explicitly because RE2 has no backreferences.
var reasoningBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// truncatedReasoningRe matches an opened reasoning tag whose closing tag is
// missing (the model was cut off mid-thought).
var truncatedReasoningRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

// removeReasoningBlocks keeps only the content after the last delimited
// reasoning block; anything before or between blocks is part of the
// model's thinking, not the answer.
func removeReasoningBlocks(text string) string {
	if locs := reasoningBlockRe.FindAllStringIndex(text, -1); len(locs) > 0 {
		text = text[locs[len(locs)-1][1]:]
	}
	text = truncatedReasoningRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// boilerplatePatterns match introductory phrases models prepend even when
// instructed not to, in English and Chinese. Anchored to line starts.
var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the)? (?:full |complete |translated )?(?:translation|text)\s*[:：]?`),
	regexp.MustCompile(`(?i)^(?:the )?(?:translation|translated text)\s*[:：]`),
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.]? here(?:'s| is)(?: the)? translation\s*[:：]?`),
	regexp.MustCompile(`^(?:译文|翻译结果|翻译|以下是翻译内容?|翻译如下)\s*[:：]?`),
}

// removeBoilerplate strips boilerplate prefixes per line and drops lines
// that were nothing but boilerplate.
func removeBoilerplate(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		for _, re := range boilerplatePatterns {
			if loc := re.FindStringIndex(trimmed); loc != nil && loc[0] == 0 {
				trimmed = strings.TrimSpace(trimmed[loc[1]:])
			}
		}
		if trimmed == "" && strings.TrimSpace(line) != "" {
			continue // the line was boilerplate only
		}
		out = append(out, trimmed)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// removeQuoteWrapping strips a matching pair of outer quotes when the
// entire text is wrapped in them. Supported pairs: "…" '…' «…» “…” ‘…’ 「…」
func removeQuoteWrapping(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	first, last := runes[0], runes[n-1]
	if (first == '"' && last == '"') ||
		(first == '\'' && last == '\'') ||
		(first == '«' && last == '»') ||
		(first == '“' && last == '”') ||
		(first == '‘' && last == '’') ||
		(first == '「' && last == '」') {
		return strings.TrimSpace(string(runes[1 : n-1]))
	}
	return text
}

// labelRe matches leftover labeling markers a candidate should not carry.
var labelRe = regexp.MustCompile(`(?i)^(?:translation|option|version|candidate|译文|翻译)\s*\d*\s*[:：]`)

// selectCandidate keeps the highest-scoring line when the cleaned output
// contains near-duplicate lines (the same content repeated with case or
// punctuation drift). Output without duplication passes through unchanged;
// ties keep the first occurrence.
func selectCandidate(text string, req Request) string {
	lines := strings.Split(text, "\n")
	var cands []string
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			cands = append(cands, trimmed)
		}
	}
	if len(cands) < 2 {
		return text
	}

	seen := make(map[string]bool)
	duplicated := false
	var unique []string
	for _, c := range cands {
		key := dedupeKey(c)
		if seen[key] {
			duplicated = true
			continue
		}
		seen[key] = true
		unique = append(unique, c)
	}
	if !duplicated {
		return text
	}

	best, bestScore := unique[0], -1
	for _, c := range unique {
		if score := scoreCandidate(c, req); score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}

// dedupeKey lowercases and strips punctuation and whitespace so
// near-duplicates collapse to one key.
func dedupeKey(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func scoreCandidate(c string, req Request) int {
	score := 0

	srcLen := len([]rune(req.Source))
	cLen := len([]rune(c))
	if srcLen > 0 && float64(cLen) >= 0.3*float64(srcLen) && float64(cLen) <= 3*float64(srcLen) {
		score += 2
	}

	if detector.ScriptShare(c, detector.ScriptFor(req.TargetLang)) >= 0.5 {
		score += 2
	}

	if !labelRe.MatchString(c) {
		score++
	}

	if strings.ContainsAny(string([]rune(c)[cLen-1]), ".!?。！？;；") {
		score++
	}

	return score
}
