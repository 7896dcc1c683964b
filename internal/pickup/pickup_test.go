package pickup

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

func color(c string) *string { return &c }

// ignoreTimestamp 比较标注时忽略提取时间
var ignoreTimestamp = cmpopts.IgnoreFields(Annotation{}, "Timestamp")

func TestScanBrackets_Example(t *testing.T) {
	pickups := ScanBrackets("He said [hello] to her", fixedClock)
	require.Len(t, pickups, 1)

	assert.Equal(t, 1, pickups[0].ID)
	assert.Equal(t, "hello", pickups[0].HighlightedText)
	assert.Equal(t, TypeBracket, pickups[0].AnnotationType)
	assert.Equal(t, SubtypeSquareBrackets, pickups[0].AnnotationSubtype)
	assert.Equal(t, "He said [hello] to her", pickups[0].Context)
	assert.Equal(t, fixedTime, pickups[0].Timestamp)
}

func TestScanBrackets_DenseIDs(t *testing.T) {
	text := "[one] filler [two] more [three]"
	pickups := ScanBrackets(text, fixedClock)
	require.Len(t, pickups, 3)

	for i, want := range []string{"one", "two", "three"} {
		assert.Equal(t, i+1, pickups[i].ID)
		assert.Equal(t, want, pickups[i].HighlightedText)
	}
}

func TestScanBrackets_EmptyCapturesSkipped(t *testing.T) {
	pickups := ScanBrackets("[] a [   ] b [real] c [\t]", fixedClock)
	require.Len(t, pickups, 1)
	assert.Equal(t, 1, pickups[0].ID, "empty captures must not consume an id")
	assert.Equal(t, "real", pickups[0].HighlightedText)
}

func TestScanBrackets_TrimsCapture(t *testing.T) {
	pickups := ScanBrackets("x [  padded text  ] y", fixedClock)
	require.Len(t, pickups, 1)
	assert.Equal(t, "padded text", pickups[0].HighlightedText)
}

func TestScanBrackets_NonGreedy(t *testing.T) {
	pickups := ScanBrackets("[a] and [b]", fixedClock)
	require.Len(t, pickups, 2)
	assert.Equal(t, "a", pickups[0].HighlightedText)
	assert.Equal(t, "b", pickups[1].HighlightedText)

	// 嵌套括号不做特殊处理：从第一个开括号到最近的闭括号
	nested := ScanBrackets("[outer [inner] tail]", fixedClock)
	require.Len(t, nested, 1)
	assert.Equal(t, "outer [inner", nested[0].HighlightedText)
}

func TestScanBrackets_DoesNotCrossLines(t *testing.T) {
	pickups := ScanBrackets("[open\nclose] [ok]", fixedClock)
	require.Len(t, pickups, 1)
	assert.Equal(t, "ok", pickups[0].HighlightedText)

	for _, sep := range []string{"\r", "\r\n", "\u2028", "\u2029"} {
		pickups = ScanBrackets("[first"+sep+"second] [ok]", fixedClock)
		require.Len(t, pickups, 1, "%q", sep)
		assert.Equal(t, 1, pickups[0].ID)
		assert.Equal(t, "ok", pickups[0].HighlightedText)
	}
}

func TestScanBrackets_TrimsLikeScriptTrim(t *testing.T) {
	pickups := ScanBrackets("[\ufeff] [\u00a0x\u3000] [\u0085]", fixedClock)
	require.Len(t, pickups, 2)
	assert.Equal(t, "x", pickups[0].HighlightedText)
	assert.Equal(t, "\u0085", pickups[1].HighlightedText)
}

func TestScanBrackets_ContextWindow(t *testing.T) {
	before := strings.Repeat("a", 150)
	after := strings.Repeat("b", 150)
	text := before + "[mid]" + after

	pickups := ScanBrackets(text, fixedClock)
	require.Len(t, pickups, 1)

	want := strings.Repeat("a", 100) + "[mid]" + strings.Repeat("b", 100)
	assert.Equal(t, want, pickups[0].Context)
}

func TestScanBrackets_ContextClampedAtEdges(t *testing.T) {
	text := "[start]" + strings.Repeat("x", 20) + "[end]"
	pickups := ScanBrackets(text, fixedClock)
	require.Len(t, pickups, 2)

	for _, p := range pickups {
		assert.Equal(t, text, p.Context)
		assert.LessOrEqual(t, len(p.Context), len(text))
	}
}

func TestScanBrackets_ContextTrimmed(t *testing.T) {
	text := "   \n[word]\n   "
	pickups := ScanBrackets(text, fixedClock)
	require.Len(t, pickups, 1)
	assert.Equal(t, "[word]", pickups[0].Context)
}

func TestScanBrackets_UTF16Offsets(t *testing.T) {
	// 每个表情符号占两个UTF-16码元，窗口按码元计算
	emoji := strings.Repeat("😀", 60)
	text := emoji + "[hi]" + emoji

	pickups := ScanBrackets(text, fixedClock)
	require.Len(t, pickups, 1)

	want := strings.Repeat("😀", 50) + "[hi]" + strings.Repeat("😀", 50)
	assert.Equal(t, want, pickups[0].Context)
}

func TestClassify_Priority(t *testing.T) {
	cases := []struct {
		name    string
		seg     Segment
		ok      bool
		typ     AnnotationType
		subtype AnnotationSubtype
	}{
		{"bold", Segment{IsBold: true}, true, TypeBold, SubtypeBoldText},
		{"underline", Segment{IsUnderline: true}, true, TypeUnderline, SubtypeUnderlineText},
		{"highlight", Segment{BackgroundColor: color("#ffff00")}, true, TypeHighlight, SubtypeBackgroundColor},
		{"any color", Segment{BackgroundColor: color("red")}, true, TypeHighlight, SubtypeBackgroundColor},
		{"bold beats highlight", Segment{IsBold: true, BackgroundColor: color("#ffff00")}, true, TypeBold, SubtypeBoldText},
		{"bold beats underline", Segment{IsBold: true, IsUnderline: true}, true, TypeBold, SubtypeBoldText},
		{"underline beats highlight", Segment{IsUnderline: true, BackgroundColor: color("#00ff00")}, true, TypeUnderline, SubtypeUnderlineText},
		{"empty color", Segment{BackgroundColor: color("")}, false, "", ""},
		{"no flags", Segment{}, false, "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rule, ok := Classify(tc.seg)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.typ, rule.Type)
			assert.Equal(t, tc.subtype, rule.Subtype)
		})
	}
}

func TestClassifySegments_Example(t *testing.T) {
	pickups, skipped := ClassifySegments("Great job today", []Segment{
		{Text: "Great", StartIndex: 0, EndIndex: 5, IsBold: true},
	}, fixedClock)

	assert.Zero(t, skipped)
	require.Len(t, pickups, 1)
	assert.Equal(t, 1, pickups[0].ID)
	assert.Equal(t, "Great", pickups[0].HighlightedText)
	assert.Equal(t, TypeBold, pickups[0].AnnotationType)
	assert.Equal(t, "Great job today", pickups[0].Context)
}

func TestClassifySegments_SkipsUnflaggedWithoutConsumingID(t *testing.T) {
	text := "alpha beta gamma"
	pickups, skipped := ClassifySegments(text, []Segment{
		{Text: "alpha", StartIndex: 0, EndIndex: 5},
		{Text: "beta", StartIndex: 6, EndIndex: 10, IsUnderline: true},
		{Text: "gamma", StartIndex: 11, EndIndex: 16, BackgroundColor: color("#ff0")},
	}, fixedClock)

	assert.Zero(t, skipped)
	require.Len(t, pickups, 2)
	assert.Equal(t, 1, pickups[0].ID)
	assert.Equal(t, "beta", pickups[0].HighlightedText)
	assert.Equal(t, 2, pickups[1].ID)
	assert.Equal(t, "gamma", pickups[1].HighlightedText)
}

func TestClassifySegments_MalformedSegments(t *testing.T) {
	text := "short text"
	pickups, skipped := ClassifySegments(text, []Segment{
		{Text: "   ", StartIndex: 0, EndIndex: 3, IsBold: true},
		{Text: "short", StartIndex: -50, EndIndex: 5000, IsBold: true},
		{Text: "text", StartIndex: 9, EndIndex: 2, IsUnderline: true},
	}, fixedClock)

	assert.Equal(t, 1, skipped)
	require.Len(t, pickups, 2)
	assert.Equal(t, 1, pickups[0].ID)
	assert.Equal(t, "short text", pickups[0].Context)
	assert.Equal(t, 2, pickups[1].ID)
	assert.Equal(t, "short text", pickups[1].Context)
}

func TestClassifySegments_KeepsNextLine(t *testing.T) {
	pickups, skipped := ClassifySegments("\u0085A", []Segment{
		{Text: "\ufeff", StartIndex: 0, EndIndex: 1, IsBold: true},
		{Text: "\u0085A", StartIndex: 0, EndIndex: 2, IsBold: true},
	}, fixedClock)

	assert.Equal(t, 1, skipped)
	require.Len(t, pickups, 1)
	assert.Equal(t, "\u0085A", pickups[0].HighlightedText)
}

func TestSegment_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		data string
		want Segment
	}{
		{
			name: "well formed",
			data: `{"text":"a","startIndex":1,"endIndex":2,"isBold":true,"backgroundColor":"#fff"}`,
			want: Segment{Text: "a", StartIndex: 1, EndIndex: 2, IsBold: true, BackgroundColor: color("#fff")},
		},
		{
			name: "truthy flags",
			data: `{"text":"a","startIndex":0,"endIndex":1,"isBold":1,"isUnderline":"yes"}`,
			want: Segment{Text: "a", EndIndex: 1, IsBold: true, IsUnderline: true},
		},
		{
			name: "falsy flags",
			data: `{"text":"a","isBold":0,"isUnderline":"","backgroundColor":null}`,
			want: Segment{Text: "a"},
		},
		{
			name: "empty color is not a highlight",
			data: `{"text":"a","backgroundColor":""}`,
			want: Segment{Text: "a"},
		},
		{
			name: "fractional offsets truncate",
			data: `{"text":"a","startIndex":1.9,"endIndex":3.2}`,
			want: Segment{Text: "a", StartIndex: 1, EndIndex: 3},
		},
		{
			name: "string offset",
			data: `{"text":"a","startIndex":"x","endIndex":1,"isBold":true}`,
			want: Segment{Text: "a", EndIndex: 1, IsBold: true, Malformed: true},
		},
		{
			name: "numeric text",
			data: `{"text":5,"isBold":true}`,
			want: Segment{IsBold: true, Malformed: true},
		},
		{
			name: "not an object",
			data: `"bold"`,
			want: Segment{Malformed: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seg Segment
			require.NoError(t, json.Unmarshal([]byte(tt.data), &seg))
			assert.Equal(t, tt.want, seg)
		})
	}
}

func TestExtractor_SkipsWrongTypedSegment(t *testing.T) {
	var segments []Segment
	require.NoError(t, json.Unmarshal([]byte(`[
		{"text":"Loud","startIndex":0,"endIndex":4,"isBold":true},
		{"text":"line","startIndex":"x","endIndex":9,"isBold":true},
		null
	]`), &segments))
	require.Len(t, segments, 3)

	result, err := NewExtractor(WithClock(fixedClock)).Extract(Document{PlainText: "Loud line", FormattedText: segments})
	require.NoError(t, err)
	require.Len(t, result.Pickups, 1)
	assert.Equal(t, "Loud", result.Pickups[0].HighlightedText)
	assert.Equal(t, 2, result.Stats.SkippedSegments)
}

func TestSegment_Normalize(t *testing.T) {
	seg := Segment{StartIndex: -3, EndIndex: 99}.Normalize(10)
	assert.Equal(t, 0, seg.StartIndex)
	assert.Equal(t, 10, seg.EndIndex)

	seg = Segment{StartIndex: 8, EndIndex: 4}.Normalize(10)
	assert.Equal(t, 8, seg.StartIndex)
	assert.Equal(t, 8, seg.EndIndex)
}

func TestMerge_BracketFirstDedup(t *testing.T) {
	brackets := []Annotation{
		{ID: 1, HighlightedText: "shared", AnnotationType: TypeBracket},
	}
	formatted := []Annotation{
		{ID: 1, HighlightedText: "shared", AnnotationType: TypeBold},
		{ID: 2, HighlightedText: "Shared", AnnotationType: TypeUnderline},
	}

	merged, dropped := Merge(brackets, formatted)
	assert.Equal(t, 1, dropped)
	require.Len(t, merged, 2)
	assert.Equal(t, TypeBracket, merged[0].AnnotationType)
	assert.Equal(t, "Shared", merged[1].HighlightedText, "dedup is case-sensitive")
	assert.Equal(t, 2, merged[1].ID, "merge does not renumber")
}

func TestMerge_Empty(t *testing.T) {
	merged, dropped := Merge(nil, nil)
	assert.NotNil(t, merged)
	assert.Empty(t, merged)
	assert.Zero(t, dropped)
}

func TestExtractor_DuplicateBrackets(t *testing.T) {
	e := NewExtractor(WithClock(fixedClock))
	result, err := e.Extract(Document{PlainText: "[yes] and [yes]", FormattedText: []Segment{}})
	require.NoError(t, err)

	require.Len(t, result.Pickups, 1)
	assert.Equal(t, "yes", result.Pickups[0].HighlightedText)
	assert.Equal(t, 1, result.Pickups[0].ID)
	assert.Equal(t, 2, result.Stats.BracketCount)
	assert.Equal(t, 1, result.Stats.DuplicateCount)
}

func TestExtractor_BracketAndBoldCollapse(t *testing.T) {
	e := NewExtractor(WithClock(fixedClock))
	text := "Please re-read [the line] here. the line"
	result, err := e.Extract(Document{
		DocumentName:  "script.docx",
		TalentName:    "Alex",
		PlainText:     text,
		FormattedText: []Segment{{Text: "the line", StartIndex: 32, EndIndex: 40, IsBold: true}},
	})
	require.NoError(t, err)

	want := []Annotation{{
		ID:                1,
		HighlightedText:   "the line",
		Context:           text,
		AnnotationType:    TypeBracket,
		AnnotationSubtype: SubtypeSquareBrackets,
	}}
	if diff := cmp.Diff(want, result.Pickups, ignoreTimestamp); diff != "" {
		t.Errorf("unexpected pickups (-want +got):\n%s", diff)
	}
	assert.Equal(t, "script.docx", result.DocumentName)
	assert.Equal(t, "Alex", result.TalentName)
}

func TestExtractor_OrderBracketsBeforeFormatted(t *testing.T) {
	e := NewExtractor(WithClock(fixedClock))
	text := "Bold first then [bracket later]"
	result, err := e.Extract(Document{
		PlainText:     text,
		FormattedText: []Segment{{Text: "Bold", StartIndex: 0, EndIndex: 4, IsBold: true}},
	})
	require.NoError(t, err)

	require.Len(t, result.Pickups, 2)
	assert.Equal(t, TypeBracket, result.Pickups[0].AnnotationType)
	assert.Equal(t, TypeBold, result.Pickups[1].AnnotationType)
	assert.Equal(t, 1, result.Pickups[0].ID)
	assert.Equal(t, 1, result.Pickups[1].ID, "id spaces are independent")
	assert.Equal(t, map[AnnotationType]int{TypeBracket: 1, TypeBold: 1}, result.CountByType())
}

func TestExtractor_MissingContent(t *testing.T) {
	e := NewExtractor()

	_, err := e.Extract(Document{FormattedText: []Segment{}})
	assert.ErrorIs(t, err, ErrMissingContent)

	_, err = e.Extract(Document{PlainText: "text"})
	assert.ErrorIs(t, err, ErrMissingContent)

	_, err = e.Extract(Document{PlainText: "text", FormattedText: []Segment{}})
	assert.NoError(t, err, "an empty segment list is present")
}

func TestExtractor_PanicBecomesExtractionError(t *testing.T) {
	e := NewExtractor(WithClock(func() time.Time { panic("clock broken") }))

	_, err := e.Extract(Document{PlainText: "[x]", FormattedText: []Segment{}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExtractionFailed)

	var extErr *ExtractionError
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, "clock broken", extErr.Detail)
}

func TestExtractor_ContextRadius(t *testing.T) {
	e := NewExtractor(WithClock(fixedClock), WithContextRadius(3))
	result, err := e.Extract(Document{PlainText: "abcdef[x]ghijkl", FormattedText: []Segment{}})
	require.NoError(t, err)
	require.Len(t, result.Pickups, 1)
	assert.Equal(t, "def[x]ghi", result.Pickups[0].Context)
}

func TestExtractor_Idempotent(t *testing.T) {
	doc := Document{
		PlainText: "Intro [first] middle [second] and more text with Emphasis and Marked words",
		FormattedText: []Segment{
			{Text: "Emphasis", StartIndex: 49, EndIndex: 57, IsBold: true},
			{Text: "Marked", StartIndex: 62, EndIndex: 68, BackgroundColor: color("#ffff00")},
			{Text: "first", StartIndex: 7, EndIndex: 12, IsUnderline: true},
		},
	}

	first, err := NewExtractor().Extract(doc)
	require.NoError(t, err)
	second, err := NewExtractor().Extract(doc)
	require.NoError(t, err)

	if diff := cmp.Diff(first.Pickups, second.Pickups, ignoreTimestamp); diff != "" {
		t.Errorf("re-running extraction changed the result (-first +second):\n%s", diff)
	}
	assert.Len(t, first.Pickups, 4)
}

func TestExtractor_ConcurrentUse(t *testing.T) {
	e := NewExtractor(WithClock(fixedClock))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text := fmt.Sprintf("[a%d] [b%d]", i, i)
			result, err := e.Extract(Document{PlainText: text, FormattedText: []Segment{}})
			assert.NoError(t, err)
			if assert.Len(t, result.Pickups, 2) {
				assert.Equal(t, 1, result.Pickups[0].ID)
				assert.Equal(t, 2, result.Pickups[1].ID)
			}
		}(i)
	}
	wg.Wait()
}
