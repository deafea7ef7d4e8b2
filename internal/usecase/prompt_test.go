package usecase

import (
	"strings"
	"testing"

	"docqa/internal/domain"
)

func TestBuildPromptDeterministic(t *testing.T) {
	a := BuildPrompt("some context", "some question", domain.ExpertiseBeginner, "")
	b := BuildPrompt("some context", "some question", domain.ExpertiseBeginner, "")
	if a != b {
		t.Fatal("expected byte-identical prompts for identical inputs")
	}
}

func TestBuildPromptSubstitutesAllSlots(t *testing.T) {
	prompt := BuildPrompt("CTX-MARKER", "QUESTION-MARKER", domain.ExpertiseIntermediate, "HISTORY-MARKER")

	for _, marker := range []string{"CTX-MARKER", "QUESTION-MARKER", "intermediate", "HISTORY-MARKER"} {
		if !strings.Contains(prompt, marker) {
			t.Errorf("prompt missing %q", marker)
		}
	}
	if strings.Contains(prompt, "{{") {
		t.Error("prompt contains unexpanded template syntax")
	}
}

func TestBuildPromptCarriesSentinelInstruction(t *testing.T) {
	prompt := BuildPrompt("ctx", "q", domain.ExpertiseExpert, "")
	if !strings.Contains(prompt, "I don't know") {
		t.Error("prompt missing the out-of-context sentinel instruction")
	}
}

func TestJoinPassagesOrderAndSeparator(t *testing.T) {
	passages := []domain.Passage{
		{Text: "first"},
		{Text: "second"},
		{Text: "third"},
	}

	joined := JoinPassages(passages)
	want := "first\n\n- -\n\nsecond\n\n- -\n\nthird"
	if joined != want {
		t.Errorf("expected %q, got %q", want, joined)
	}
}

func TestJoinPassagesEmpty(t *testing.T) {
	if got := JoinPassages(nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}
