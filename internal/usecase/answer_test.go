package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"docqa/internal/domain"
)

type fakeRetriever struct {
	passages []domain.Passage
	err      error
	calls    int
	lastQ    string
	lastK    int
}

func (f *fakeRetriever) Fetch(_ context.Context, question string, k int) ([]domain.Passage, error) {
	f.calls++
	f.lastQ = question
	f.lastK = k
	return f.passages, f.err
}

type fakeBackend struct {
	response   string
	usage      *domain.Usage
	genErr     error
	confErr    error
	calls      int
	lastPrompt string
}

func (f *fakeBackend) Generate(_ context.Context, prompt string) (domain.Generation, error) {
	f.calls++
	f.lastPrompt = prompt
	if f.genErr != nil {
		return domain.Generation{}, f.genErr
	}
	return domain.Generation{Text: f.response, Usage: f.usage}, nil
}

func (f *fakeBackend) Configured() error { return f.confErr }
func (f *fakeBackend) Name() string      { return "fake" }

func threePassages() []domain.Passage {
	return []domain.Passage{
		{Text: "refunds take 14 days", Score: 0.9, SourceName: "S1", SourcePath: "/docs/s1.txt"},
		{Text: "refunds need a receipt", Score: 0.8, SourceName: "S2", SourcePath: "/docs/s2.txt"},
		{Text: "contact support for refunds", Score: 0.7, SourceName: "S3", SourcePath: "/docs/s3.txt"},
	}
}

func TestAnswerGroundedWithReferences(t *testing.T) {
	retriever := &fakeRetriever{passages: threePassages()}
	backend := &fakeBackend{response: "Refunds take 14 days and need a receipt."}
	uc := NewAnswerUseCase(retriever, backend, 3)

	result, err := uc.Answer(context.Background(), "refund policy", domain.ExpertiseBeginner, "")
	if err != nil {
		t.Fatal(err)
	}

	if result.Text != backend.response {
		t.Errorf("unexpected answer: %q", result.Text)
	}
	if len(result.References) != 3 {
		t.Fatalf("expected 3 references, got %d", len(result.References))
	}
	// References follow retrieval order.
	for i, want := range []string{"S1", "S2", "S3"} {
		if result.References[i].DisplayName != want {
			t.Errorf("reference %d: expected %s, got %s", i, want, result.References[i].DisplayName)
		}
	}
	if backend.calls != 1 {
		t.Errorf("expected 1 backend call, got %d", backend.calls)
	}
}

func TestAnswerEmptyRetrievalSkipsBackend(t *testing.T) {
	retriever := &fakeRetriever{}
	backend := &fakeBackend{response: "should never be used"}
	uc := NewAnswerUseCase(retriever, backend, 3)

	result, err := uc.Answer(context.Background(), "unknown topic", domain.ExpertiseExpert, "")
	if err != nil {
		t.Fatal(err)
	}

	if result.Text != NoResultsMessage {
		t.Errorf("expected no-results message, got %q", result.Text)
	}
	if result.References != nil {
		t.Errorf("expected nil references, got %v", result.References)
	}
	if backend.calls != 0 {
		t.Errorf("expected zero backend calls, got %d", backend.calls)
	}
}

func TestAnswerSentinelSuppressesReferences(t *testing.T) {
	for _, response := range []string{
		"I don't know",
		"Sorry, I DON'T KNOW the answer to that.",
		"non LO so, mi dispiace",
	} {
		retriever := &fakeRetriever{passages: threePassages()}
		backend := &fakeBackend{response: response}
		uc := NewAnswerUseCase(retriever, backend, 3)

		result, err := uc.Answer(context.Background(), "obscure question", domain.ExpertiseExpert, "")
		if err != nil {
			t.Fatal(err)
		}

		if result.Text != response {
			t.Errorf("expected verbatim response, got %q", result.Text)
		}
		if len(result.References) != 0 {
			t.Errorf("response %q: expected no references, got %d", response, len(result.References))
		}
	}
}

func TestAnswerMissingCredentials(t *testing.T) {
	retriever := &fakeRetriever{passages: threePassages()}
	backend := &fakeBackend{confErr: errors.New("no key")}
	uc := NewAnswerUseCase(retriever, backend, 3)

	_, err := uc.Answer(context.Background(), "refund policy", domain.ExpertiseExpert, "")

	var unavailable *domain.BackendUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected BackendUnavailableError, got %v", err)
	}
	if unavailable.Backend != "fake" {
		t.Errorf("unexpected backend name: %s", unavailable.Backend)
	}
	if backend.calls != 0 {
		t.Errorf("expected zero backend calls, got %d", backend.calls)
	}
}

func TestAnswerBackendFailure(t *testing.T) {
	retriever := &fakeRetriever{passages: threePassages()}
	cause := errors.New("rate limited")
	backend := &fakeBackend{genErr: cause}
	uc := NewAnswerUseCase(retriever, backend, 3)

	_, err := uc.Answer(context.Background(), "refund policy", domain.ExpertiseExpert, "")

	var synth *domain.SynthesisError
	if !errors.As(err, &synth) {
		t.Fatalf("expected SynthesisError, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to survive")
	}
}

func TestAnswerRetrievalUnavailable(t *testing.T) {
	retriever := &fakeRetriever{err: domain.ErrRetrievalUnavailable}
	backend := &fakeBackend{}
	uc := NewAnswerUseCase(retriever, backend, 3)

	_, err := uc.Answer(context.Background(), "anything", domain.ExpertiseExpert, "")
	if !IsRetrievalUnavailable(err) {
		t.Fatalf("expected retrieval-unavailable error, got %v", err)
	}
	if backend.calls != 0 {
		t.Errorf("expected zero backend calls, got %d", backend.calls)
	}
}

func TestAnswerCarriesPriorContext(t *testing.T) {
	retriever := &fakeRetriever{passages: threePassages()}
	backend := &fakeBackend{response: "grounded answer"}
	uc := NewAnswerUseCase(retriever, backend, 3)

	_, err := uc.Answer(context.Background(), "Q", domain.ExpertiseExpert, "P")
	if err != nil {
		t.Fatal(err)
	}

	want := "P \n\nCurrent question: Q"
	if retriever.lastQ != want {
		t.Errorf("expected effective question %q, got %q", want, retriever.lastQ)
	}
}

func TestAnswerUsagePassthrough(t *testing.T) {
	retriever := &fakeRetriever{passages: threePassages()}
	backend := &fakeBackend{
		response: "grounded answer",
		usage:    &domain.Usage{InputTokens: 120, OutputTokens: 45},
	}
	uc := NewAnswerUseCase(retriever, backend, 3)

	result, err := uc.Answer(context.Background(), "refund policy", domain.ExpertiseExpert, "")
	if err != nil {
		t.Fatal(err)
	}
	if result.Usage == nil || result.Usage.InputTokens != 120 || result.Usage.OutputTokens != 45 {
		t.Errorf("unexpected usage: %+v", result.Usage)
	}
}

func TestEffectiveQuestion(t *testing.T) {
	if got := EffectiveQuestion("Q", ""); got != "Q" {
		t.Errorf("without prior answer: got %q", got)
	}
	if got := EffectiveQuestion("Q", "P"); got != "P \n\nCurrent question: Q" {
		t.Errorf("with prior answer: got %q", got)
	}
}

func TestDedupeReferences(t *testing.T) {
	passages := []domain.Passage{
		{SourceName: "First Name", SourcePath: "/a"},
		{SourceName: "B", SourcePath: "/b"},
		{SourceName: "Second Name", SourcePath: "/a"},
		{SourceName: "B again", SourcePath: "/b"},
		{SourceName: "C", SourcePath: "/c"},
	}

	refs := DedupeReferences(passages)
	if len(refs) != 3 {
		t.Fatalf("expected 3 references, got %d", len(refs))
	}

	// First occurrence fixes order and display name.
	want := []domain.Reference{
		{DisplayName: "First Name", Source: "/a"},
		{DisplayName: "B", Source: "/b"},
		{DisplayName: "C", Source: "/c"},
	}
	for i := range want {
		if refs[i] != want[i] {
			t.Errorf("reference %d: expected %+v, got %+v", i, want[i], refs[i])
		}
	}
}

func TestDedupeReferencesEmptyPath(t *testing.T) {
	// Web content may carry a name only; the name then identifies the source.
	passages := []domain.Passage{
		{SourceName: "Web Content"},
		{SourceName: "Web Content"},
	}
	refs := DedupeReferences(passages)
	if len(refs) != 1 {
		t.Fatalf("expected 1 reference, got %d", len(refs))
	}
}

func TestDedupeReferencesManyDistinct(t *testing.T) {
	var passages []domain.Passage
	for i := 0; i < 10; i++ {
		passages = append(passages, domain.Passage{
			SourceName: fmt.Sprintf("S%d", i),
			SourcePath: fmt.Sprintf("/s/%d", i),
		})
	}
	refs := DedupeReferences(passages)
	if len(refs) != 10 {
		t.Fatalf("expected 10 references, got %d", len(refs))
	}
}
