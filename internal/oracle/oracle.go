package oracle

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mysticvn/boitoan/internal/divination"
	"github.com/mysticvn/boitoan/internal/factcheck"
	"github.com/mysticvn/boitoan/internal/llm"
	"github.com/mysticvn/boitoan/internal/wiki"
)

// ReferenceFetcher is the content-source collaborator. The concrete
// implementation is the Wikipedia client; tests substitute a stub.
type ReferenceFetcher interface {
	FetchMany(ctx context.Context, terms []string) []*wiki.Reference
}

// FactCheck is the verification envelope attached to enriched readings.
type FactCheck struct {
	Verification  factcheck.Verification `json:"verification"`
	Sources       []factcheck.Source     `json:"sources"`
	CitationCount int                    `json:"citationCount"`
}

// Reading is the assembled output of one pipeline run.
type Reading struct {
	Text      string
	FactCheck *FactCheck
}

// Oracle runs the prompt-assembly and fact-annotation pipeline: derive search
// terms, fetch references concurrently, compose the prompt, call the
// completion model, then annotate the answer against the references.
type Oracle struct {
	LLM  llm.Client
	Wiki ReferenceFetcher
	// Now is injectable so tests control breakup day counts.
	Now func() time.Time
	// Timeout bounds each completion call. Zero means no deadline beyond the
	// caller's context.
	Timeout time.Duration
}

func New(llmClient llm.Client, fetcher ReferenceFetcher) *Oracle {
	return &Oracle{
		LLM:  llmClient,
		Wiki: fetcher,
		Now:  time.Now,
	}
}

func (o *Oracle) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

func (o *Oracle) generate(ctx context.Context, prompt string) (string, error) {
	if o.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
		defer cancel()
	}
	return o.LLM.Generate(ctx, prompt)
}

// reading executes the shared pipeline. Reference gathering is best-effort:
// a failed lookup shrinks the context but never fails the request. Only the
// completion call itself is fatal.
func (o *Oracle) reading(ctx context.Context, service divination.Service, terms []string, compose func(refContext string) string, uc divination.UserContext) (Reading, error) {
	refs := wiki.Compact(o.Wiki.FetchMany(ctx, terms))
	logrus.WithFields(logrus.Fields{
		"service":    service,
		"terms":      len(terms),
		"references": len(refs),
	}).Debug("gathered reference content")

	prompt := compose(wiki.BuildContext(refs))
	if uc.IsInBreakup {
		prompt = divination.AddBreakupContext(prompt, uc, o.now())
	}

	text, err := o.generate(ctx, prompt)
	if err != nil {
		return Reading{}, fmt.Errorf("ai completion failed: %w", err)
	}

	// Ordering is load-bearing: the comforting message is appended before
	// annotation so it is part of the text the citations are placed in.
	if uc.IsInBreakup {
		text += "\n\n" + divination.ComfortingMessage(service)
	}

	if len(refs) == 0 {
		return Reading{Text: text}, nil
	}

	result := factcheck.Annotate(text, refs)
	text = result.EnhancedContent
	if srcBlock := factcheck.SourceReferences(result.Citations.Sources); srcBlock != "" {
		text += "\n\n" + srcBlock
	}

	return Reading{
		Text: text,
		FactCheck: &FactCheck{
			Verification:  result.Verification,
			Sources:       result.Citations.Sources,
			CitationCount: result.Citations.CitationCount,
		},
	}, nil
}

func (o *Oracle) Astrology(ctx context.Context, mode string, uc divination.UserContext) (Reading, error) {
	terms := divination.ExtractSearchTerms(uc, divination.ServiceAstrology, nil)
	return o.reading(ctx, divination.ServiceAstrology, terms, func(refContext string) string {
		return divination.AstrologyPrompt(mode, uc, refContext)
	}, uc)
}

func (o *Oracle) Fortune(ctx context.Context, mode, selectedDate string, uc divination.UserContext) (Reading, error) {
	terms := divination.ExtractSearchTerms(uc, divination.ServiceFortune, nil)
	return o.reading(ctx, divination.ServiceFortune, terms, func(refContext string) string {
		return divination.FortunePrompt(mode, uc, selectedDate, refContext)
	}, uc)
}

func (o *Oracle) Numerology(ctx context.Context, uc divination.UserContext) (Reading, error) {
	terms := divination.ExtractSearchTerms(uc, divination.ServiceNumerology, nil)
	return o.reading(ctx, divination.ServiceNumerology, terms, func(refContext string) string {
		return divination.NumerologyPrompt(uc, refContext)
	}, uc)
}

func (o *Oracle) Tarot(ctx context.Context, mode, question string, cardsDrawn []string, uc divination.UserContext) (Reading, error) {
	terms := divination.ExtractSearchTerms(uc, divination.ServiceTarot, cardsDrawn)
	return o.reading(ctx, divination.ServiceTarot, terms, func(refContext string) string {
		return divination.TarotPrompt(mode, question, cardsDrawn, uc, refContext)
	}, uc)
}

// Chat is the one pipeline without reference enrichment: history in, text out.
func (o *Oracle) Chat(ctx context.Context, message string, uc divination.UserContext, history []divination.ChatTurn) (string, error) {
	prompt := divination.ChatPrompt(message, uc, history)
	if uc.IsInBreakup {
		prompt = divination.AddBreakupContext(prompt, uc, o.now())
	}

	text, err := o.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("ai completion failed: %w", err)
	}

	if uc.IsInBreakup {
		text += "\n\n" + divination.ComfortingMessage(divination.ServiceChat)
	}
	return text, nil
}
