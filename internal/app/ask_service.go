package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"docuchat/internal/ai"
	"docuchat/internal/model"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrQuestionEmpty = errors.New("question is empty")
	ErrForbidden     = errors.New("operation not permitted for this role")
)

// NoAccessibleDocsAnswer is returned as a normal answer, not an error, when
// the requester's accessible set is empty.
const NoAccessibleDocsAnswer = "No accessible documents available."

const (
	SourceCache     = "cache"
	SourceGenerated = "generated"
	SourceNone      = ""
)

const systemPrompt = "You are a helpful PDF assistant."

type AccessResolver interface {
	Accessible(username, role string) ([]model.Document, error)
}

type AnswerCache interface {
	Get(ctx context.Context, username, normalizedQuestion string) (string, bool, error)
	Set(ctx context.Context, username, normalizedQuestion, answer string) error
}

type InteractionStore interface {
	LatestByKey(username, question string) (*model.Interaction, error)
	ListByUsername(username string, limit int) ([]model.Interaction, error)
}

type InteractionPublisher interface {
	Publish(ctx context.Context, interaction model.Interaction) error
}

type CompletionClient interface {
	Complete(ctx context.Context, cfg ai.ChatConfig, messages []ai.ChatMessage) (string, error)
}

// AskService runs the question-answering pipeline: resolve access, consult
// the cache, otherwise generate against the accessible documents and record
// the result.
type AskService struct {
	resolver     AccessResolver
	answerCache  AnswerCache
	interactions InteractionStore
	publisher    InteractionPublisher
	llmClient    CompletionClient
	llmConfig    ai.ChatConfig
}

func NewAskService(
	resolver AccessResolver,
	answerCache AnswerCache,
	interactions InteractionStore,
	publisher InteractionPublisher,
	llmClient CompletionClient,
	llmConfig ai.ChatConfig,
) *AskService {
	return &AskService{
		resolver:     resolver,
		answerCache:  answerCache,
		interactions: interactions,
		publisher:    publisher,
		llmClient:    llmClient,
		llmConfig:    llmConfig,
	}
}

type AskInput struct {
	Username string
	Role     string
	Question string
}

type AskResult struct {
	Answer string `json:"answer"`
	Source string `json:"source,omitempty"`
}

// NormalizeQuestion collapses casing and surrounding whitespace so that
// "Foo?" and " foo? " share one cache key.
func NormalizeQuestion(question string) string {
	return strings.ToLower(strings.TrimSpace(question))
}

// Ask answers one question for one requester. Terminal outcomes: an empty
// accessible set short-circuits before any cache or model access; a cache hit
// returns without generating; a generation failure returns the error with
// nothing written; a generated answer is cached and recorded before returning.
func (s *AskService) Ask(ctx context.Context, input AskInput) (*AskResult, error) {
	if input.Username == "" || input.Role == "" {
		return nil, ErrInvalidInput
	}
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, ErrQuestionEmpty
	}

	docs, err := s.resolver.Accessible(input.Username, input.Role)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return &AskResult{Answer: NoAccessibleDocsAnswer, Source: SourceNone}, nil
	}

	normalized := NormalizeQuestion(question)

	cached, hit, err := s.answerCache.Get(ctx, input.Username, normalized)
	if err != nil {
		log.Printf("answer cache get failed: %v", err)
	} else if hit {
		return &AskResult{Answer: cached, Source: SourceCache}, nil
	}

	previous, err := s.interactions.LatestByKey(input.Username, normalized)
	if err != nil {
		return nil, err
	}
	if previous != nil {
		if cacheErr := s.answerCache.Set(ctx, input.Username, normalized, previous.Answer); cacheErr != nil {
			log.Printf("re-prime answer cache failed: %v", cacheErr)
		}
		return &AskResult{Answer: previous.Answer, Source: SourceCache}, nil
	}

	prompt, filenames := buildPrompt(question, docs)
	messages := []ai.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	}
	answer, err := s.llmClient.Complete(ctx, s.llmConfig, messages)
	if err != nil {
		return nil, err
	}
	answer = strings.TrimSpace(answer)

	s.record(ctx, input.Username, normalized, answer, filenames)

	return &AskResult{Answer: answer, Source: SourceGenerated}, nil
}

// record persists a confirmed answer: a synchronous cache write so an
// immediate re-ask hits, then an async interaction row via the queue.
// Both are best effort; the answer has already been generated and still
// reaches the caller if persistence fails.
func (s *AskService) record(ctx context.Context, username, normalizedQuestion, answer string, filenames []string) {
	if err := s.answerCache.Set(ctx, username, normalizedQuestion, answer); err != nil {
		log.Printf("cache generated answer failed: %v", err)
	}

	interaction := model.Interaction{
		Username:  username,
		Question:  normalizedQuestion,
		Answer:    answer,
		CreatedAt: time.Now(),
	}
	interaction.SetFilenames(filenames)
	if err := s.publisher.Publish(ctx, interaction); err != nil {
		log.Printf("enqueue interaction failed: %v", err)
	}
}

// History returns the requester's interactions, newest first.
func (s *AskService) History(username string, limit int) ([]model.Interaction, error) {
	if username == "" {
		return nil, ErrInvalidInput
	}
	return s.interactions.ListByUsername(username, limit)
}
