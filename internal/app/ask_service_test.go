package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docuchat/internal/ai"
	"docuchat/internal/model"
)

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

type stubResolver struct {
	docs map[string][]model.Document // username -> accessible set
}

func (r *stubResolver) Accessible(username, role string) ([]model.Document, error) {
	return r.docs[username], nil
}

type stubAnswerCache struct {
	entries  map[string]string
	getCalls int
	setCalls int
	setErr   error
}

func newStubAnswerCache() *stubAnswerCache {
	return &stubAnswerCache{entries: make(map[string]string)}
}

func (c *stubAnswerCache) Get(_ context.Context, username, q string) (string, bool, error) {
	c.getCalls++
	answer, ok := c.entries[username+"|"+q]
	return answer, ok, nil
}

func (c *stubAnswerCache) Set(_ context.Context, username, q, answer string) error {
	c.setCalls++
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[username+"|"+q] = answer
	return nil
}

type stubInteractionStore struct {
	byKey map[string]*model.Interaction
}

func newStubInteractionStore() *stubInteractionStore {
	return &stubInteractionStore{byKey: make(map[string]*model.Interaction)}
}

func (s *stubInteractionStore) LatestByKey(username, question string) (*model.Interaction, error) {
	i, ok := s.byKey[username+"|"+question]
	if !ok {
		return nil, nil
	}
	clone := *i
	return &clone, nil
}

func (s *stubInteractionStore) ListByUsername(username string, limit int) ([]model.Interaction, error) {
	var out []model.Interaction
	for _, i := range s.byKey {
		if i.Username == username {
			out = append(out, *i)
		}
	}
	return out, nil
}

type stubPublisher struct {
	published []model.Interaction
	err       error
}

func (p *stubPublisher) Publish(_ context.Context, interaction model.Interaction) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, interaction)
	return nil
}

type stubLLM struct {
	answer     string
	err        error
	calls      int
	lastPrompt string
}

func (l *stubLLM) Complete(_ context.Context, _ ai.ChatConfig, messages []ai.ChatMessage) (string, error) {
	l.calls++
	if len(messages) > 0 {
		l.lastPrompt = messages[len(messages)-1].Content
	}
	if l.err != nil {
		return "", l.err
	}
	return l.answer, nil
}

type fixture struct {
	service      *AskService
	cache        *stubAnswerCache
	interactions *stubInteractionStore
	publisher    *stubPublisher
	llm          *stubLLM
}

func newFixture(docs map[string][]model.Document) *fixture {
	f := &fixture{
		cache:        newStubAnswerCache(),
		interactions: newStubInteractionStore(),
		publisher:    &stubPublisher{},
		llm:          &stubLLM{answer: "- Refunds take 5 days."},
	}
	f.service = NewAskService(
		&stubResolver{docs: docs},
		f.cache,
		f.interactions,
		f.publisher,
		f.llm,
		ai.ChatConfig{Model: "test-model"},
	)
	return f
}

func policyDocs() map[string][]model.Document {
	doc := model.Document{
		Filename:  "policy.pdf",
		Owner:     "alice",
		OwnerRole: model.RoleManager,
		Text:      "Refunds are processed in 5 days.",
	}
	return map[string][]model.Document{
		"alice": {doc},
		"bob":   {doc}, // bob's manager is alice
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestAskRejectsEmptyQuestion(t *testing.T) {
	f := newFixture(policyDocs())

	_, err := f.service.Ask(context.Background(), AskInput{Username: "bob", Role: model.RoleEmployee, Question: "   "})
	if !errors.Is(err, ErrQuestionEmpty) {
		t.Fatalf("expected ErrQuestionEmpty, got %v", err)
	}
}

func TestAskNoAccessibleDocumentsShortCircuits(t *testing.T) {
	f := newFixture(map[string][]model.Document{})

	result, err := f.service.Ask(context.Background(), AskInput{Username: "carol", Role: model.RoleManager, Question: "anything?"})
	if err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}
	if result.Answer != NoAccessibleDocsAnswer {
		t.Errorf("expected fixed answer %q, got %q", NoAccessibleDocsAnswer, result.Answer)
	}
	if result.Source != SourceNone {
		t.Errorf("expected source %q, got %q", SourceNone, result.Source)
	}
	if f.llm.calls != 0 {
		t.Error("generation must not be invoked with no accessible documents")
	}
	if f.cache.getCalls != 0 || f.cache.setCalls != 0 {
		t.Error("cache must not be touched with no accessible documents")
	}
	if len(f.publisher.published) != 0 {
		t.Error("no interaction must be recorded with no accessible documents")
	}
}

func TestAskGeneratesAndRecordsOnMiss(t *testing.T) {
	f := newFixture(policyDocs())

	result, err := f.service.Ask(context.Background(), AskInput{Username: "bob", Role: model.RoleEmployee, Question: "How long do refunds take?"})
	if err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}
	if result.Source != SourceGenerated {
		t.Errorf("expected source %q, got %q", SourceGenerated, result.Source)
	}
	if result.Answer != "- Refunds take 5 days." {
		t.Errorf("unexpected answer %q", result.Answer)
	}
	if f.llm.calls != 1 {
		t.Fatalf("expected 1 generation, got %d", f.llm.calls)
	}
	if !strings.Contains(f.llm.lastPrompt, "From policy.pdf:\nRefunds are processed in 5 days.") {
		t.Errorf("prompt missing grounding document:\n%s", f.llm.lastPrompt)
	}

	if len(f.publisher.published) != 1 {
		t.Fatalf("expected 1 recorded interaction, got %d", len(f.publisher.published))
	}
	recorded := f.publisher.published[0]
	if recorded.Username != "bob" {
		t.Errorf("interaction recorded for %q", recorded.Username)
	}
	if recorded.Question != "how long do refunds take?" {
		t.Errorf("interaction key not normalized: %q", recorded.Question)
	}
	names := recorded.Filenames()
	if len(names) != 1 || names[0] != "policy.pdf" {
		t.Errorf("expected provenance [policy.pdf], got %v", names)
	}
}

func TestAskSecondIdenticalQuestionHitsCache(t *testing.T) {
	f := newFixture(policyDocs())
	ctx := context.Background()
	input := AskInput{Username: "bob", Role: model.RoleEmployee, Question: "How long do refunds take?"}

	first, err := f.service.Ask(ctx, input)
	if err != nil {
		t.Fatalf("first Ask returned error: %v", err)
	}
	second, err := f.service.Ask(ctx, input)
	if err != nil {
		t.Fatalf("second Ask returned error: %v", err)
	}

	if second.Source != SourceCache {
		t.Errorf("expected source %q, got %q", SourceCache, second.Source)
	}
	if second.Answer != first.Answer {
		t.Errorf("cached answer %q differs from generated %q", second.Answer, first.Answer)
	}
	if f.llm.calls != 1 {
		t.Errorf("expected exactly 1 generation, got %d", f.llm.calls)
	}
}

func TestAskNormalizesQuestionForCacheKey(t *testing.T) {
	f := newFixture(policyDocs())
	ctx := context.Background()

	if _, err := f.service.Ask(ctx, AskInput{Username: "bob", Role: model.RoleEmployee, Question: "Foo?"}); err != nil {
		t.Fatalf("first Ask returned error: %v", err)
	}
	result, err := f.service.Ask(ctx, AskInput{Username: "bob", Role: model.RoleEmployee, Question: "  foo?  "})
	if err != nil {
		t.Fatalf("second Ask returned error: %v", err)
	}

	if result.Source != SourceCache {
		t.Errorf("casing/whitespace variants must share a key, got source %q", result.Source)
	}
	if f.llm.calls != 1 {
		t.Errorf("expected 1 generation, got %d", f.llm.calls)
	}
}

func TestAskCacheIsPerUser(t *testing.T) {
	f := newFixture(policyDocs())
	ctx := context.Background()
	question := "How long do refunds take?"

	if _, err := f.service.Ask(ctx, AskInput{Username: "bob", Role: model.RoleEmployee, Question: question}); err != nil {
		t.Fatalf("bob's Ask returned error: %v", err)
	}
	result, err := f.service.Ask(ctx, AskInput{Username: "alice", Role: model.RoleManager, Question: question})
	if err != nil {
		t.Fatalf("alice's Ask returned error: %v", err)
	}

	if result.Source != SourceGenerated {
		t.Errorf("identical questions from different users must not share entries, got source %q", result.Source)
	}
	if f.llm.calls != 2 {
		t.Errorf("expected 2 generations, got %d", f.llm.calls)
	}
}

func TestAskFallsBackToStoredInteractions(t *testing.T) {
	f := newFixture(policyDocs())
	// Simulate a cold Redis with a previously persisted interaction.
	f.interactions.byKey["bob|how long do refunds take?"] = &model.Interaction{
		Username: "bob",
		Question: "how long do refunds take?",
		Answer:   "- Five days.",
	}

	result, err := f.service.Ask(context.Background(), AskInput{Username: "bob", Role: model.RoleEmployee, Question: "How long do refunds take?"})
	if err != nil {
		t.Fatalf("Ask returned error: %v", err)
	}
	if result.Source != SourceCache {
		t.Errorf("expected source %q, got %q", SourceCache, result.Source)
	}
	if result.Answer != "- Five days." {
		t.Errorf("unexpected answer %q", result.Answer)
	}
	if f.llm.calls != 0 {
		t.Error("generation must not run on a store hit")
	}
	if _, ok := f.cache.entries["bob|how long do refunds take?"]; !ok {
		t.Error("store hit should re-prime the cache")
	}
}

func TestAskGenerationFailureWritesNothing(t *testing.T) {
	f := newFixture(policyDocs())
	f.llm.err = &ai.GenerationError{Err: errors.New("connection refused")}

	_, err := f.service.Ask(context.Background(), AskInput{Username: "bob", Role: model.RoleEmployee, Question: "How long do refunds take?"})

	var genErr *ai.GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("expected *ai.GenerationError, got %v", err)
	}
	if f.cache.setCalls != 0 {
		t.Error("failed generation must not write to the cache")
	}
	if len(f.publisher.published) != 0 {
		t.Error("failed generation must not record an interaction")
	}

	// A later retry with a healthy model must still be a miss.
	f.llm.err = nil
	result, err := f.service.Ask(context.Background(), AskInput{Username: "bob", Role: model.RoleEmployee, Question: "How long do refunds take?"})
	if err != nil {
		t.Fatalf("retry Ask returned error: %v", err)
	}
	if result.Source != SourceGenerated {
		t.Errorf("expected a fresh generation after failure, got source %q", result.Source)
	}
}

func TestAskRecorderFailureStillReturnsAnswer(t *testing.T) {
	f := newFixture(policyDocs())
	f.publisher.err = errors.New("broker down")

	result, err := f.service.Ask(context.Background(), AskInput{Username: "bob", Role: model.RoleEmployee, Question: "How long do refunds take?"})
	if err != nil {
		t.Fatalf("Ask returned error despite best-effort recording: %v", err)
	}
	if result.Source != SourceGenerated || result.Answer == "" {
		t.Errorf("answer must still reach the caller, got %+v", result)
	}
}

func TestNormalizeQuestion(t *testing.T) {
	cases := map[string]string{
		"Foo?":     "foo?",
		"  foo?  ": "foo?",
		"\tBAR \n": "bar",
		"already":  "already",
	}
	for in, want := range cases {
		if got := NormalizeQuestion(in); got != want {
			t.Errorf("NormalizeQuestion(%q) = %q, want %q", in, got, want)
		}
	}
}
