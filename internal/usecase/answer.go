package usecase

import (
	"context"
	"errors"
	"strings"

	"docqa/internal/domain"
	"docqa/internal/port"
)

// NoResultsMessage is returned without calling any backend when retrieval
// comes back empty.
const NoResultsMessage = "No relevant results found for your question."

// outOfContextPhrases are the sentinel phrases the template instructs the
// model to emit when the context does not contain the answer. Detection is a
// case-insensitive substring match; a model that paraphrases will slip
// through, which matches the historical behavior of this check.
var outOfContextPhrases = []string{
	"I don't know",
	"Non lo so",
}

// AnswerUseCase turns a question into a grounded, cited answer: retrieve,
// prompt, dispatch to the configured backend, interpret the response.
type AnswerUseCase struct {
	retriever port.Retriever
	backend   port.Generator
	topK      int
}

func NewAnswerUseCase(retriever port.Retriever, backend port.Generator, topK int) *AnswerUseCase {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &AnswerUseCase{
		retriever: retriever,
		backend:   backend,
		topK:      topK,
	}
}

// EffectiveQuestion folds the prior answer into the question when the caller
// opted in to carrying context forward. The prior answer travels as free text,
// not as a structured turn.
func EffectiveQuestion(question, priorAnswer string) string {
	if priorAnswer == "" {
		return question
	}
	return priorAnswer + " \n\nCurrent question: " + question
}

// Answer runs the full pipeline for one question.
//
// The credentials check deliberately happens after the empty-retrieval
// short-circuit: an empty index answers for free regardless of backend state,
// and a misconfigured backend is reported before any network call is made.
func (u *AnswerUseCase) Answer(ctx context.Context, question string, expertise domain.ExpertiseLevel, priorAnswer string) (domain.AnswerResult, error) {
	effective := EffectiveQuestion(question, priorAnswer)

	passages, err := u.retriever.Fetch(ctx, effective, u.topK)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	if len(passages) == 0 {
		return domain.AnswerResult{Text: NoResultsMessage}, nil
	}

	if err := u.backend.Configured(); err != nil {
		return domain.AnswerResult{}, &domain.BackendUnavailableError{Backend: u.backend.Name()}
	}

	prompt := BuildPrompt(JoinPassages(passages), effective, expertise, "")

	gen, err := u.backend.Generate(ctx, prompt)
	if err != nil {
		return domain.AnswerResult{}, &domain.SynthesisError{Backend: u.backend.Name(), Err: err}
	}

	if isOutOfContext(gen.Text) {
		// The model admitted the context does not cover the question, so the
		// retrieved passages did not ground the answer: no citations.
		return domain.AnswerResult{Text: gen.Text, Usage: gen.Usage}, nil
	}

	return domain.AnswerResult{
		Text:       gen.Text,
		References: DedupeReferences(passages),
		Usage:      gen.Usage,
	}, nil
}

// BackendName exposes the configured backend's name to callers that render
// errors.
func (u *AnswerUseCase) BackendName() string {
	return u.backend.Name()
}

func isOutOfContext(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range outOfContextPhrases {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

// DedupeReferences builds citations from passages, keeping one Reference per
// distinct source path. The first occurrence wins: it fixes both the display
// name and the position in the output.
func DedupeReferences(passages []domain.Passage) []domain.Reference {
	seen := make(map[string]bool, len(passages))
	refs := make([]domain.Reference, 0, len(passages))
	for _, p := range passages {
		source := p.SourcePath
		if source == "" {
			source = p.SourceName
		}
		if seen[source] {
			continue
		}
		seen[source] = true
		refs = append(refs, domain.Reference{
			DisplayName: p.SourceName,
			Source:      source,
		})
	}
	return refs
}

// IsRetrievalUnavailable reports whether err means there is no knowledge base
// to query.
func IsRetrievalUnavailable(err error) bool {
	return errors.Is(err, domain.ErrRetrievalUnavailable)
}
