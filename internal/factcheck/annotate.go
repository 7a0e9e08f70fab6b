package factcheck

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/mysticvn/boitoan/internal/wiki"
)

// Verification levels shown to the user.
const (
	LevelHigh    = "Cao"
	LevelMedium  = "Trung bình"
	LevelLow     = "Thấp"
	LevelUnknown = "Không xác định"
)

// ScoreUnknown is the literal score value when no computation is possible.
const ScoreUnknown = "Không xác định"

// minTokenOverlap is how many significant extract tokens must appear in the
// AI text before a reference counts as used when its title does not.
const minTokenOverlap = 3

type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Used  bool   `json:"used"`
}

type Verification struct {
	// Score is a numeric percentage, or the string "Không xác định".
	Score   any    `json:"score"`
	Level   string `json:"level"`
	Details string `json:"details,omitempty"`
}

type Citations struct {
	Sources       []Source `json:"sources"`
	CitationCount int      `json:"citationCount"`
}

type Result struct {
	EnhancedContent string
	Verification    Verification
	Citations       Citations
}

// anchor marks the byte span in the original text where a citation for
// reference refIdx will be inserted. cited spans are already wrapped in a
// marker and are counted without being rewrapped, so annotating twice is a
// no-op.
type anchor struct {
	refIdx     int
	start, end int
	cited      bool
}

// Annotate cross-references the AI text against the retrieved extracts,
// inserts inline citation markers of the form [phrase](source:URL), and
// produces the verification summary. The matching is plain substring and
// token overlap; identical inputs always yield identical output.
func Annotate(aiText string, refs []*wiki.Reference) Result {
	var anchors []anchor
	used := make([]bool, len(refs))

	for i, ref := range refs {
		if ref == nil {
			continue
		}
		start, end := indexFold(aiText, ref.Title)
		if start < 0 {
			start, end = overlapAnchor(aiText, ref.Extract)
		}
		if start < 0 {
			continue
		}
		cited := start > 0 && aiText[start-1] == '[' && strings.HasPrefix(aiText[end:], "](source:")
		anchors = append(anchors, anchor{refIdx: i, start: start, end: end, cited: cited})
		used[i] = true
	}

	// Earlier references win overlapping spans; one citation per used source.
	sort.SliceStable(anchors, func(a, b int) bool { return anchors[a].start < anchors[b].start })
	kept := anchors[:0]
	lastEnd := -1
	for _, a := range anchors {
		if a.start < lastEnd {
			used[a.refIdx] = false
			continue
		}
		kept = append(kept, a)
		lastEnd = a.end
	}

	var b strings.Builder
	pos := 0
	for _, a := range kept {
		b.WriteString(aiText[pos:a.start])
		if a.cited {
			b.WriteString(aiText[a.start:a.end])
		} else {
			fmt.Fprintf(&b, "[%s](source:%s)", aiText[a.start:a.end], refs[a.refIdx].URL)
		}
		pos = a.end
	}
	b.WriteString(aiText[pos:])

	sources := make([]Source, 0, len(refs))
	usedCount := 0
	for i, ref := range refs {
		if ref == nil {
			continue
		}
		sources = append(sources, Source{Title: ref.Title, URL: ref.URL, Used: used[i]})
		if used[i] {
			usedCount++
		}
	}

	return Result{
		EnhancedContent: b.String(),
		Verification:    verify(usedCount, len(sources)),
		Citations: Citations{
			Sources:       sources,
			CitationCount: len(kept),
		},
	}
}

func verify(usedCount, total int) Verification {
	if total == 0 {
		return Verification{
			Score:   ScoreUnknown,
			Level:   LevelUnknown,
			Details: "Không có nguồn tham khảo khả dụng để đối chiếu.",
		}
	}

	score := usedCount * 100 / total
	level := LevelLow
	switch {
	case score >= 70:
		level = LevelHigh
	case score >= 40:
		level = LevelMedium
	}

	return Verification{
		Score:   score,
		Level:   level,
		Details: fmt.Sprintf("Đã đối chiếu %d/%d nguồn tham khảo.", usedCount, total),
	}
}

// overlapAnchor counts significant extract tokens present in the text and, if
// enough overlap exists, anchors the citation at the earliest matched token.
func overlapAnchor(text, extract string) (int, int) {
	matched := 0
	bestStart, bestEnd := -1, -1
	for _, token := range significantTokens(extract) {
		start, end := indexFold(text, token)
		if start < 0 {
			continue
		}
		matched++
		if bestStart < 0 || start < bestStart {
			bestStart, bestEnd = start, end
		}
	}
	if matched < minTokenOverlap {
		return -1, -1
	}
	return bestStart, bestEnd
}

// significantTokens returns the unique lowercase words of at least five runes,
// in first-seen order.
func significantTokens(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(fields))
	var tokens []string
	for _, f := range fields {
		if len([]rune(f)) < 5 {
			continue
		}
		lower := strings.ToLower(f)
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		tokens = append(tokens, lower)
	}
	return tokens
}

// indexFold finds the first case-insensitive occurrence of needle in haystack
// and returns its byte span, or (-1, -1). The search is rune-based so that
// Vietnamese case folding cannot skew byte offsets.
func indexFold(haystack, needle string) (int, int) {
	if needle == "" {
		return -1, -1
	}
	hRunes := []rune(haystack)
	nRunes := []rune(strings.ToLower(needle))

	// Byte offset of each rune, plus the terminal offset.
	offsets := make([]int, len(hRunes)+1)
	off := 0
	for i, r := range hRunes {
		offsets[i] = off
		off += len(string(r))
	}
	offsets[len(hRunes)] = off

	for i := 0; i+len(nRunes) <= len(hRunes); i++ {
		match := true
		for j, nr := range nRunes {
			if unicode.ToLower(hRunes[i+j]) != nr {
				match = false
				break
			}
		}
		if match {
			return offsets[i], offsets[i+len(nRunes)]
		}
	}
	return -1, -1
}
