package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"rag-api-explorer-be/internal/pkg/logger"
	"rag-api-explorer-be/pkg/apperror"
	"rag-api-explorer-be/pkg/llm"
	"rag-api-explorer-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type stubEmbedder struct {
	err   error
	calls int
}

func (s *stubEmbedder) Generate(_ context.Context, _ string) ([]float32, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

// stubSearcher answers by threshold and records every threshold it saw.
type stubSearcher struct {
	mu         sync.Mutex
	thresholds []float64
	results    map[float64][]store.Document
	err        error
}

func (s *stubSearcher) Search(_ context.Context, _ []float32, limit int, threshold float64) ([]store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.thresholds = append(s.thresholds, threshold)
	if s.err != nil {
		return nil, s.err
	}
	docs := s.results[threshold]
	if len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

type stubLLM struct {
	prompt      string
	temperature float64
	options     *llm.Options
	answer      string
	err         error
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return s.Generate(ctx, history[len(history)-1].Content, options...)
}

func (s *stubLLM) Generate(_ context.Context, prompt string, options ...llm.Option) (string, error) {
	s.prompt = prompt
	s.options = llm.ApplyOptions(0.7, options...)
	s.temperature = s.options.Temperature
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func newTestRAG(searcher *stubSearcher, model *stubLLM) (*RAGPipeline, *stubEmbedder) {
	emb := &stubEmbedder{}
	return NewRAGPipeline(emb, searcher, model, DefaultRetrievalConfig(), logger.NewNopLogger(), nil), emb
}

func doc(text, title, author, date string, score float64) store.Document {
	return store.Document{Text: text, Title: title, Author: author, Date: date, Score: score}
}

func TestGreetingShortCircuits(t *testing.T) {
	searcher := &stubSearcher{}
	p, emb := newTestRAG(searcher, &stubLLM{})

	res, err := p.ProcessQuestion(context.Background(), "  Bonjour ")
	require.NoError(t, err)

	assert.True(t, res.Found)
	assert.Empty(t, res.Sources)
	assert.NotNil(t, res.Sources)
	assert.Equal(t, GreetingAnswer, res.Answer)
	assert.Zero(t, emb.calls)
	assert.Empty(t, searcher.thresholds)
}

func TestAdaptiveThresholdBuckets(t *testing.T) {
	cfg := DefaultRetrievalConfig()

	assert.Equal(t, 0.75, cfg.AdaptiveThreshold("qui est Hugo"))
	assert.Equal(t, 0.80, cfg.AdaptiveThreshold("qui a écrit les misérables"))
	assert.Equal(t, 0.85, cfg.AdaptiveThreshold("quelle est la date de publication de ce roman"))
}

func TestPropertyThresholdFollowsWordCount(t *testing.T) {
	cfg := DefaultRetrievalConfig()
	rapid.Check(t, func(t *rapid.T) {
		words := rapid.SliceOfN(rapid.StringMatching(`[a-zé]{1,8}`), 1, 15).Draw(t, "words")
		question := strings.Join(words, " ")

		got := cfg.AdaptiveThreshold(question)
		switch n := len(words); {
		case n <= 3:
			assert.Equal(t, 0.75, got)
		case n <= 6:
			assert.Equal(t, 0.80, got)
		default:
			assert.Equal(t, 0.85, got)
		}
	})
}

func TestSearchUsesAdaptiveThresholdAndLimit(t *testing.T) {
	searcher := &stubSearcher{results: map[float64][]store.Document{
		0.80: {
			doc("a", "T1", "A1", "2020", 0.9),
			doc("b", "T2", "A2", "2021", 0.85),
			doc("c", "T3", "A3", "2022", 0.82),
			doc("d", "T4", "A4", "2023", 0.81),
		},
	}}
	model := &stubLLM{answer: " Réponse "}
	p, _ := newTestRAG(searcher, model)

	res, err := p.ProcessQuestion(context.Background(), "qui a écrit les misérables")
	require.NoError(t, err)

	assert.Equal(t, []float64{0.80}, searcher.thresholds)
	assert.True(t, res.Found)
	assert.Equal(t, "Réponse", res.Answer)
	assert.Len(t, res.Sources, 3)
	assert.Equal(t, 0.3, model.temperature)
	assert.Contains(t, model.prompt, "a\n---\nb\n---\nc")
	assert.Contains(t, model.prompt, "Question : qui a écrit les misérables")
	assert.Contains(t, model.prompt, "N'invente pas d'informations")
}

func TestCompletionOptionsFromConfig(t *testing.T) {
	searcher := &stubSearcher{results: map[float64][]store.Document{
		0.75: {doc("a", "T1", "A1", "2020", 0.9)},
	}}
	model := &stubLLM{answer: "ok"}

	cfg := DefaultRetrievalConfig()
	cfg.MaxTokens = 256
	cfg.Model = "gpt-4o-mini"
	p := NewRAGPipeline(&stubEmbedder{}, searcher, model, cfg, logger.NewNopLogger(), nil)

	_, err := p.ProcessQuestion(context.Background(), "auteur du roman")
	require.NoError(t, err)

	require.NotNil(t, model.options)
	assert.Equal(t, 256, model.options.MaxTokens)
	assert.Equal(t, "gpt-4o-mini", model.options.Model)
	assert.Equal(t, 0.3, model.options.Temperature)
}

func TestRelaxesOnceToFloor(t *testing.T) {
	searcher := &stubSearcher{results: map[float64][]store.Document{
		0.70: {doc("passage", "T", "A", "2020", 0.72)},
	}}
	p, _ := newTestRAG(searcher, &stubLLM{answer: "ok"})

	res, err := p.ProcessQuestion(context.Background(), "victor hugo")
	require.NoError(t, err)

	assert.Equal(t, []float64{0.75, 0.70}, searcher.thresholds)
	assert.True(t, res.Found)
	require.Len(t, res.Sources, 1)
	assert.Equal(t, 72, res.Sources[0].Score)
}

func TestNotFoundAfterSingleRetry(t *testing.T) {
	searcher := &stubSearcher{}
	model := &stubLLM{}
	p, _ := newTestRAG(searcher, model)

	res, err := p.ProcessQuestion(context.Background(), "une question sans aucune réponse connue ici")
	require.NoError(t, err)

	assert.Equal(t, []float64{0.85, 0.70}, searcher.thresholds)
	assert.False(t, res.Found)
	assert.Empty(t, res.Sources)
	assert.Equal(t, NotFoundAnswer, res.Answer)
	assert.Empty(t, res.Suggestion)
	assert.Empty(t, model.prompt)
}

func TestNoRetryWhenThresholdAtFloor(t *testing.T) {
	cfg := DefaultRetrievalConfig()
	cfg.ShortThreshold = cfg.FloorThreshold
	searcher := &stubSearcher{}
	p := NewRAGPipeline(&stubEmbedder{}, searcher, &stubLLM{}, cfg, logger.NewNopLogger(), nil)

	res, err := p.ProcessQuestion(context.Background(), "hugo")
	require.NoError(t, err)
	assert.Len(t, searcher.thresholds, 1)
	assert.False(t, res.Found)
}

func TestNotFoundHintsAtAPIExploration(t *testing.T) {
	p, _ := newTestRAG(&stubSearcher{}, &stubLLM{})

	res, err := p.ProcessQuestion(context.Background(), "comment utiliser une api rest")
	require.NoError(t, err)

	assert.False(t, res.Found)
	assert.True(t, strings.HasPrefix(res.Answer, NotFoundAnswer))
	assert.Contains(t, res.Answer, "Explore https://jsonplaceholder.typicode.com")
	assert.Equal(t, SuggestionAPIExploration, res.Suggestion)
}

func TestCollaboratorFailuresAreTagged(t *testing.T) {
	t.Run("embedding", func(t *testing.T) {
		p, emb := newTestRAG(&stubSearcher{}, &stubLLM{})
		emb.err = errors.New("quota exceeded")

		_, err := p.ProcessQuestion(context.Background(), "qui est hugo")
		assert.ErrorIs(t, err, apperror.ErrEmbedding)
	})

	t.Run("search", func(t *testing.T) {
		p, _ := newTestRAG(&stubSearcher{err: errors.New("db down")}, &stubLLM{})

		_, err := p.ProcessQuestion(context.Background(), "qui est hugo")
		assert.ErrorIs(t, err, apperror.ErrVectorSearch)
	})

	t.Run("completion", func(t *testing.T) {
		searcher := &stubSearcher{results: map[float64][]store.Document{0.75: {doc("x", "T", "A", "D", 0.9)}}}
		p, _ := newTestRAG(searcher, &stubLLM{err: errors.New("timeout")})

		_, err := p.ProcessQuestion(context.Background(), "qui est hugo")
		assert.ErrorIs(t, err, apperror.ErrCompletion)
		assert.True(t, apperror.IsCollaborator(err))
	})
}

func TestFormatSourcesDedupesAndDropsIncomplete(t *testing.T) {
	docs := []store.Document{
		doc("one", "Les Misérables", "Hugo", "1862", 0.912),
		doc("two", "Les Misérables", "Hugo", "1900", 0.99),
		doc("three", "Notre-Dame", "Hugo", "", 0.8),
		doc("four", "Germinal", "Zola", "1885", 0.776),
	}

	sources := FormatSources(docs)

	assert.Equal(t, []store.Source{
		{Title: "Les Misérables", Author: "Hugo", Date: "1862", Score: 91},
		{Title: "Germinal", Author: "Zola", Date: "1885", Score: 78},
	}, sources)
}

func TestPropertySourcesAreUnique(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		docs := rapid.SliceOf(rapid.Custom(func(t *rapid.T) store.Document {
			return store.Document{
				Text:   rapid.String().Draw(t, "text"),
				Title:  rapid.SampledFrom([]string{"", "A", "B", "C"}).Draw(t, "title"),
				Author: rapid.SampledFrom([]string{"", "X", "Y"}).Draw(t, "author"),
				Date:   rapid.SampledFrom([]string{"", "2020"}).Draw(t, "date"),
				Score:  rapid.Float64Range(0, 1).Draw(t, "score"),
			}
		})).Draw(t, "docs")

		sources := FormatSources(docs)

		seen := map[[2]string]bool{}
		for _, s := range sources {
			key := [2]string{s.Title, s.Author}
			if seen[key] {
				t.Fatalf("duplicate source %v", key)
			}
			seen[key] = true
			if s.Title == "" || s.Author == "" || s.Date == "" {
				t.Fatalf("incomplete source kept: %+v", s)
			}
			if s.Score < 0 || s.Score > 100 {
				t.Fatalf("score out of range: %d", s.Score)
			}
		}
		assert.LessOrEqual(t, len(sources), len(docs))
	})
}
