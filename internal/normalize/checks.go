package normalize

import (
	"regexp"
	"strings"

	"github.com/termtran/termtran/internal/detector"
	"github.com/termtran/termtran/internal/pipeline"
)

// Check inspects one aspect of a finished translation and returns zero or
// one advisory flags. Checks are independent; adding one never touches the
// others.
type Check func(req Request, output string) (pipeline.QualityFlag, bool)

var defaultChecks = []Check{
	checkLeftoverMarkers,
	checkLengthRatio,
	checkSourceUntranslated,
	checkNumericLoss,
}

// RunChecks runs the full check pipeline against a finished translation.
func RunChecks(req Request, output string) []pipeline.QualityFlag {
	var flags []pipeline.QualityFlag
	for _, check := range defaultChecks {
		if flag, hit := check(req, output); hit {
			flags = append(flags, flag)
		}
	}
	return flags
}

// markerRe matches protection markers of any prefix the terminology engine
// issues, including bracket or whitespace drift.
var markerRe = regexp.MustCompile(`(?i)[\[【]\s*(?:PH|TT|QQ)X*\s*\d*\s*[\]】]`)

func checkLeftoverMarkers(_ Request, output string) (pipeline.QualityFlag, bool) {
	return pipeline.LeftoverPlaceholder, markerRe.MatchString(output)
}

func checkLengthRatio(req Request, output string) (pipeline.QualityFlag, bool) {
	srcLen := len([]rune(strings.TrimSpace(req.Source)))
	outLen := len([]rune(strings.TrimSpace(output)))
	if srcLen == 0 || outLen == 0 {
		return pipeline.LengthAnomaly, false
	}
	ratio := float64(outLen) / float64(srcLen)
	return pipeline.LengthAnomaly, ratio < 0.3 || ratio > 3.0
}

// checkSourceUntranslated flags output still dominated by the source
// writing system when a script change was expected. Advisory only: forcing
// a retry on it would loop forever on genuinely untranslatable tokens.
func checkSourceUntranslated(req Request, output string) (pipeline.QualityFlag, bool) {
	srcScript := detector.ScriptFor(req.SourceLang)
	tgtScript := detector.ScriptFor(req.TargetLang)
	if srcScript == tgtScript {
		return pipeline.SourceUntranslated, false
	}
	return pipeline.SourceUntranslated, detector.ScriptShare(output, srcScript) > 0.5
}

// numericTokenRe matches measurement expressions worth preserving exactly:
// an optional comparison operator, a number, and a unit or trailing
// comparison. Full-width operators are normalized before matching.
var numericTokenRe = regexp.MustCompile(
	`[<>≤≥]?\d+(?:\.\d+)?(?:\s*[a-zA-Zμ°ΩΩ℃%][a-zA-Zμ°ΩΩ℃%·/0-9]*|\s*[<>≤≥])`,
)

var widthNormalizer = strings.NewReplacer(
	"＜", "<", "＞", ">", "≦", "≤", "≧", "≥",
	"０", "0", "１", "1", "２", "2", "３", "3", "４", "4",
	"５", "5", "６", "6", "７", "7", "８", "8", "９", "9",
	"．", ".",
)

// checkNumericLoss flags a source measurement token missing from the
// output. Both sides are width-normalized and whitespace-stripped first so
// "5＜x＞20μs" and "5<x>20μs" compare equal.
func checkNumericLoss(req Request, output string) (pipeline.QualityFlag, bool) {
	src := squash(widthNormalizer.Replace(req.Source))
	out := squash(widthNormalizer.Replace(output))

	for _, token := range numericTokenRe.FindAllString(src, -1) {
		if !strings.Contains(out, token) {
			return pipeline.NumericLoss, true
		}
	}
	return pipeline.NumericLoss, false
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), "")
}
