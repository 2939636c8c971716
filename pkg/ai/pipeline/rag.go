package pipeline

import (
	"context"
	"fmt"
	"math"
	"strings"

	"rag-api-explorer-be/internal/pkg/logger"
	"rag-api-explorer-be/pkg/ai/intent"
	"rag-api-explorer-be/pkg/apperror"
	"rag-api-explorer-be/pkg/embedding"
	"rag-api-explorer-be/pkg/llm"
	"rag-api-explorer-be/pkg/store"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const (
	GreetingAnswer = "Bonjour ! Comment puis-je vous aider aujourd'hui ?"
	NotFoundAnswer = "Désolé, je n'ai pas d'informations sur ce sujet dans ma base de connaissances."
	apiHint        = "\n\n💡 Votre question semble concerner une API. Je peux l'explorer pour vous : dites par exemple \"Explore https://jsonplaceholder.typicode.com\"."

	SuggestionAPIExploration = "api_exploration"
	contextSeparator         = "\n---\n"
)

// VectorSearcher returns at most limit documents scoring at least threshold, best first.
// An empty result is not an error.
type VectorSearcher interface {
	Search(ctx context.Context, vector []float32, limit int, threshold float64) ([]store.Document, error)
}

type RetrievalConfig struct {
	Limit            int
	ShortQueryWords  int
	MediumQueryWords int
	ShortThreshold   float64
	MediumThreshold  float64
	LongThreshold    float64
	FloorThreshold   float64
	Temperature      float64
	// Zero values leave the provider defaults.
	MaxTokens int
	Model     string
}

func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		Limit:            3,
		ShortQueryWords:  3,
		MediumQueryWords: 6,
		ShortThreshold:   0.75,
		MediumThreshold:  0.80,
		LongThreshold:    0.85,
		FloorThreshold:   0.70,
		Temperature:      0.3,
	}
}

// AdaptiveThreshold picks the relevance bar from the question's word count:
// short questions match more loosely than long ones.
func (c RetrievalConfig) AdaptiveThreshold(question string) float64 {
	words := len(strings.Fields(question))
	switch {
	case words <= c.ShortQueryWords:
		return c.ShortThreshold
	case words <= c.MediumQueryWords:
		return c.MediumThreshold
	default:
		return c.LongThreshold
	}
}

type RAGResult struct {
	Answer     string
	Sources    []store.Source
	Found      bool
	Suggestion string
}

type RAGPipeline struct {
	embedder embedding.EmbeddingProvider
	searcher VectorSearcher
	llm      llm.LLMProvider
	cfg      RetrievalConfig
	logger   logger.ILogger
	trace    logger.ILogger
}

// NewRAGPipeline wires the retrieval pipeline. trace receives full prompts and may be nil.
func NewRAGPipeline(
	embedder embedding.EmbeddingProvider,
	searcher VectorSearcher,
	llmProvider llm.LLMProvider,
	cfg RetrievalConfig,
	log logger.ILogger,
	trace logger.ILogger,
) *RAGPipeline {
	if trace == nil {
		trace = logger.NewNopLogger()
	}
	return &RAGPipeline{
		embedder: embedder,
		searcher: searcher,
		llm:      llmProvider,
		cfg:      cfg,
		logger:   log,
		trace:    trace,
	}
}

// ProcessQuestion answers from the indexed corpus only. A question with no
// relevant passage yields Found=false, not an error.
func (p *RAGPipeline) ProcessQuestion(ctx context.Context, question string) (*RAGResult, error) {
	ctx, span := otel.Tracer("rag").Start(ctx, "rag.process_question")
	defer span.End()

	if intent.IsGreeting(question) {
		return &RAGResult{Answer: GreetingAnswer, Sources: []store.Source{}, Found: true}, nil
	}

	vector, err := p.embedder.Generate(ctx, question)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.Wrap(apperror.ErrEmbedding, err)
	}

	threshold := p.cfg.AdaptiveThreshold(question)
	span.SetAttributes(attribute.Float64("rag.threshold", threshold))

	docs, err := p.searcher.Search(ctx, vector, p.cfg.Limit, threshold)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.Wrap(apperror.ErrVectorSearch, err)
	}

	if len(docs) == 0 && threshold > p.cfg.FloorThreshold {
		p.logger.Debug("RAG", "No passage above threshold, relaxing", map[string]interface{}{
			"threshold": threshold,
			"floor":     p.cfg.FloorThreshold,
		})
		docs, err = p.searcher.Search(ctx, vector, p.cfg.Limit, p.cfg.FloorThreshold)
		if err != nil {
			span.RecordError(err)
			return nil, apperror.Wrap(apperror.ErrVectorSearch, err)
		}
	}
	span.SetAttributes(attribute.Int("rag.documents", len(docs)))

	if len(docs) == 0 {
		result := &RAGResult{Answer: NotFoundAnswer, Sources: []store.Source{}, Found: false}
		if intent.IsAPIRelated(question) {
			result.Answer += apiHint
			result.Suggestion = SuggestionAPIExploration
		}
		p.logger.Info("RAG", "No relevant passage found", map[string]interface{}{
			"question": truncateLog(question, 50),
		})
		return result, nil
	}

	prompt := BuildPrompt(question, BuildContext(docs))
	p.trace.Debug("RAG", "Grounded prompt", map[string]interface{}{
		"prompt": prompt,
	})

	answer, err := p.llm.Generate(ctx, prompt, p.completionOptions()...)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.Wrap(apperror.ErrCompletion, err)
	}

	p.logger.Info("RAG", "Answer generated", map[string]interface{}{
		"question":  truncateLog(question, 50),
		"documents": len(docs),
		"threshold": threshold,
	})

	return &RAGResult{
		Answer:  strings.TrimSpace(answer),
		Sources: FormatSources(docs),
		Found:   true,
	}, nil
}

func BuildContext(docs []store.Document) string {
	parts := make([]string, len(docs))
	for i, d := range docs {
		parts[i] = d.Text
	}
	return strings.Join(parts, contextSeparator)
}

func BuildPrompt(question, passages string) string {
	return fmt.Sprintf(`Tu es un assistant IA spécialisé dans la recherche documentaire.

Contexte disponible :
%s

Question : %s

Instructions :
- Réponds uniquement en te basant sur le contexte fourni
- Si le contexte ne contient pas d'informations pertinentes, dis-le clairement
- Sois précis et factuel
- N'invente pas d'informations

Réponse :`, passages, question)
}

// FormatSources dedupes by (title, author) keeping the first occurrence, and
// drops entries missing a title, author or date. Scores become percentages.
func FormatSources(docs []store.Document) []store.Source {
	sources := make([]store.Source, 0, len(docs))
	seen := make(map[[2]string]bool, len(docs))

	for _, d := range docs {
		if d.Title == "" || d.Author == "" || d.Date == "" {
			continue
		}
		key := [2]string{d.Title, d.Author}
		if seen[key] {
			continue
		}
		seen[key] = true

		sources = append(sources, store.Source{
			Title:  d.Title,
			Author: d.Author,
			Date:   d.Date,
			Score:  int(math.Round(d.Score * 100)),
		})
	}
	return sources
}

func truncateLog(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}

func (p *RAGPipeline) completionOptions() []llm.Option {
	opts := []llm.Option{llm.WithTemperature(p.cfg.Temperature)}
	if p.cfg.MaxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(p.cfg.MaxTokens))
	}
	if p.cfg.Model != "" {
		opts = append(opts, llm.WithModel(p.cfg.Model))
	}
	return opts
}
