package oracle

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mysticvn/boitoan/internal/divination"
	"github.com/mysticvn/boitoan/internal/wiki"
)

type mockLLM struct {
	Response string
	Err      error
	Prompts  []string
}

func (m *mockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

type stubFetcher struct {
	Refs  map[string]*wiki.Reference
	Terms [][]string
}

func (s *stubFetcher) FetchMany(ctx context.Context, terms []string) []*wiki.Reference {
	s.Terms = append(s.Terms, terms)
	refs := make([]*wiki.Reference, len(terms))
	for i, term := range terms {
		refs[i] = s.Refs[term]
	}
	return refs
}

func fixedNow() time.Time {
	return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
}

func TestAstrologyEnrichesPromptAndAnnotates(t *testing.T) {
	llm := &mockLLM{Response: "Người cung Bạch Dương thường thẳng thắn và quyết đoán."}
	fetcher := &stubFetcher{Refs: map[string]*wiki.Reference{
		"Bạch Dương": {
			Title:   "Bạch Dương",
			Extract: "Bạch Dương là cung đầu tiên của hoàng đạo.",
			URL:     "https://vi.wikipedia.org/wiki/B%E1%BA%A1ch_D%C6%B0%C6%A1ng",
		},
	}}

	o := New(llm, fetcher)
	o.Now = fixedNow

	reading, err := o.Astrology(context.Background(), "general", divination.UserContext{
		Name:      "Lan",
		BirthDate: "1990-03-21",
	})
	require.NoError(t, err)

	// The retrieved extract is embedded into the prompt the model saw.
	require.Len(t, llm.Prompts, 1)
	assert.Contains(t, llm.Prompts[0], "THÔNG TIN THAM KHẢO TỪ WIKIPEDIA:")
	assert.Contains(t, llm.Prompts[0], "Bạch Dương là cung đầu tiên của hoàng đạo.")

	// The answer mentions the title, so the citation lands inline.
	assert.Contains(t, reading.Text, "[Bạch Dương](source:https://vi.wikipedia.org/wiki/B%E1%BA%A1ch_D%C6%B0%C6%A1ng)")
	assert.Contains(t, reading.Text, "**Nguồn tham khảo:**")

	require.NotNil(t, reading.FactCheck)
	assert.Equal(t, 1, reading.FactCheck.CitationCount)
	require.Len(t, reading.FactCheck.Sources, 1)
	assert.True(t, reading.FactCheck.Sources[0].Used)
}

func TestReadingWithoutReferencesSkipsFactCheck(t *testing.T) {
	llm := &mockLLM{Response: "Một luận giải không nguồn."}
	fetcher := &stubFetcher{}

	o := New(llm, fetcher)
	reading, err := o.Numerology(context.Background(), divination.UserContext{Name: "Lan", BirthDate: "1990-05-14"})
	require.NoError(t, err)

	assert.Equal(t, "Một luận giải không nguồn.", reading.Text)
	assert.Nil(t, reading.FactCheck)
}

func TestBreakupOrdering(t *testing.T) {
	llm := &mockLLM{Response: "Lá The Tower báo hiệu thay đổi."}
	fetcher := &stubFetcher{Refs: map[string]*wiki.Reference{
		"The Tower": {Title: "The Tower", Extract: "Lá bài số 16.", URL: "https://example.org/tower"},
	}}

	o := New(llm, fetcher)
	o.Now = fixedNow

	uc := divination.UserContext{
		Name:        "Lan",
		IsInBreakup: true,
		PartnerName: "Minh",
		Breakup:     &divination.BreakupInfo{PartnerName: "Minh", BreakupDate: "2026-08-20"},
	}

	reading, err := o.Tarot(context.Background(), "question", "Tôi nên làm gì?", []string{"The Tower"}, uc)
	require.NoError(t, err)

	// The model saw the breakup framing with the day count from the fixed clock.
	require.Len(t, llm.Prompts, 1)
	assert.Contains(t, llm.Prompts[0], "LƯU Ý QUAN TRỌNG")
	assert.Contains(t, llm.Prompts[0], "cách đây 10 ngày")

	comfort := divination.ComfortingMessage(divination.ServiceTarot)
	assert.Equal(t, 1, strings.Count(reading.Text, comfort))

	// The comforting message is appended before annotation, so the source
	// block still lands at the very end.
	assert.Less(t, strings.Index(reading.Text, comfort), strings.Index(reading.Text, "**Nguồn tham khảo:**"))
	assert.Contains(t, reading.Text, "[The Tower](source:https://example.org/tower)")
}

type slowLLM struct {
	sawDeadline bool
}

func (s *slowLLM) Generate(ctx context.Context, prompt string) (string, error) {
	_, s.sawDeadline = ctx.Deadline()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(2 * time.Second):
		return "quá muộn", nil
	}
}

func TestCompletionTimeoutBoundsTheCall(t *testing.T) {
	llm := &slowLLM{}
	o := New(llm, &stubFetcher{})
	o.Timeout = 10 * time.Millisecond

	start := time.Now()
	_, err := o.Chat(context.Background(), "xin chào", divination.UserContext{}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, llm.sawDeadline)
	assert.Less(t, time.Since(start), time.Second)
}

func TestNoTimeoutLeavesContextUnbounded(t *testing.T) {
	llm := &mockLLM{Response: "ok"}
	o := New(llm, &stubFetcher{})

	_, err := o.Chat(context.Background(), "xin chào", divination.UserContext{}, nil)
	require.NoError(t, err)
}

func TestAIFailureIsFatal(t *testing.T) {
	llm := &mockLLM{Err: errors.New("model unavailable")}
	o := New(llm, &stubFetcher{})

	_, err := o.Fortune(context.Background(), "daily", "2026-08-30", divination.UserContext{BirthDate: "1990-06-15"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ai completion failed")
}

func TestChatSkipsReferenceFetch(t *testing.T) {
	llm := &mockLLM{Response: "Chào bạn!"}
	fetcher := &stubFetcher{}
	o := New(llm, fetcher)

	history := []divination.ChatTurn{{Role: "user", Content: "Xin chào"}}
	out, err := o.Chat(context.Background(), "Hôm nay thế nào?", divination.UserContext{}, history)
	require.NoError(t, err)

	assert.Equal(t, "Chào bạn!", out)
	assert.Empty(t, fetcher.Terms)
	require.Len(t, llm.Prompts, 1)
	assert.Contains(t, llm.Prompts[0], "[user] Xin chào")
}

func TestChatAppendsComfortInBreakup(t *testing.T) {
	llm := &mockLLM{Response: "Mình hiểu mà."}
	o := New(llm, &stubFetcher{})
	o.Now = fixedNow

	uc := divination.UserContext{IsInBreakup: true, PartnerName: "Minh"}
	out, err := o.Chat(context.Background(), "Buồn quá", uc, nil)
	require.NoError(t, err)

	comfort := divination.ComfortingMessage(divination.ServiceChat)
	assert.True(t, strings.HasSuffix(out, comfort))
	assert.Contains(t, llm.Prompts[0], "LƯU Ý QUAN TRỌNG")
}
