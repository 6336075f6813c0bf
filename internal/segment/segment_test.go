package segment_test

import (
	"testing"

	"github.com/termtran/termtran/internal/segment"
)

func TestSplit_NumberedChinese(t *testing.T) {
	segs, style := segment.Split("1、设备每日点检；2、记录异常情况；")

	if style == nil || style.Kind != segment.Numbered {
		t.Fatalf("expected numbered style, got %+v", style)
	}
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(segs), segs)
	}
	if segs[0].Text != "1、设备每日点检；" || segs[1].Text != "2、记录异常情况；" {
		t.Errorf("unexpected segments: %+v", segs)
	}
	if segs[0].Ordinal != 0 || segs[1].Ordinal != 1 {
		t.Errorf("ordinals not sequential: %+v", segs)
	}
}

func TestSplit_NumberedWithPreamble(t *testing.T) {
	segs, style := segment.Split("要求如下：1、安装设备；2、调试参数")

	if style == nil || style.Kind != segment.Numbered {
		t.Fatalf("expected numbered style, got %+v", style)
	}
	if len(segs) != 3 {
		t.Fatalf("expected preamble plus 2 items, got %d: %+v", len(segs), segs)
	}
	if segs[0].Text != "要求如下：" {
		t.Errorf("preamble not kept as leading segment: %+v", segs[0])
	}
}

func TestSplit_NumberedASCII(t *testing.T) {
	segs, style := segment.Split("1. Inspect daily. 2. Record anomalies.")

	if style == nil || style.Kind != segment.Numbered {
		t.Fatalf("expected numbered style, got %+v", style)
	}
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(segs), segs)
	}
}

func TestSplit_DecimalsAreNotMarkers(t *testing.T) {
	segs, style := segment.Split("The measured value 3.5 exceeds the 2.1 limit")

	if segs != nil || style != nil {
		t.Errorf("decimals misread as enumeration: %+v", segs)
	}
}

func TestSplit_Semicolon(t *testing.T) {
	segs, style := segment.Split("电阻率≥0.5Ω·cm；少子寿命＞2μs")

	if style == nil || style.Kind != segment.Semicolon {
		t.Fatalf("expected semicolon style, got %+v", style)
	}
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d: %+v", len(segs), segs)
	}
	if segs[0].Text != "电阻率≥0.5Ω·cm" || segs[1].Text != "少子寿命＞2μs" {
		t.Errorf("unexpected segments: %+v", segs)
	}
}

func TestSplit_SingleClause(t *testing.T) {
	segs, style := segment.Split("这是一句完整的话。")

	if segs != nil || style != nil {
		t.Errorf("single clause should not split: %+v", segs)
	}
}

func TestJoin_OrdinalOrder(t *testing.T) {
	segs := []segment.Segment{
		{Ordinal: 1, Text: "2、记录异常"},
		{Ordinal: 0, Text: "1、每日点检"},
	}

	got := segment.Join(segs, &segment.Style{Kind: segment.Numbered})

	if got != "1、每日点检 2、记录异常" {
		t.Errorf("unexpected join: %q", got)
	}
}

func TestJoin_Semicolon(t *testing.T) {
	segs := []segment.Segment{
		{Ordinal: 0, Text: "Resistivity ≥0.5Ω·cm"},
		{Ordinal: 1, Text: "minority carrier lifetime ＞2μs"},
	}

	got := segment.Join(segs, &segment.Style{Kind: segment.Semicolon})

	if got != "Resistivity ≥0.5Ω·cm; minority carrier lifetime ＞2μs" {
		t.Errorf("unexpected join: %q", got)
	}
}

func TestSplitJoin_NeverDropsClauses(t *testing.T) {
	input := "1、质量第一；2、安全第二；3、效率第三。"

	segs, style := segment.Split(input)
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d: %+v", len(segs), segs)
	}

	joined := segment.Join(segs, style)
	for _, want := range []string{"质量第一", "安全第二", "效率第三"} {
		if !contains(joined, want) {
			t.Errorf("clause %q missing from %q", want, joined)
		}
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
