package chatlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"docqa/internal/domain"
)

func TestLogInteractionRecordsFullHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_log.txt")
	l := New(path, 1, 1)
	defer l.Close()

	history := []domain.HistoryEntry{
		{Question: "first question", Answer: "first answer", AskedAt: time.Now()},
		{
			Question:   "second question",
			Answer:     "second answer",
			References: []domain.Reference{{DisplayName: "guide.txt", Source: "/kb/guide.txt"}},
			AskedAt:    time.Now(),
		},
	}
	result := domain.AnswerResult{
		Text:  "second answer",
		Usage: &domain.Usage{InputTokens: 12, OutputTokens: 3},
	}

	l.LogInteraction("second question", "first answer \n\nCurrent question: second question", result, history)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)

	for _, want := range []string{
		"second question",
		"effective_question",
		"first question",  // entire history, not just the current turn
		"first answer",
		"guide.txt",
		"input_tokens=12",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestLogInteractionEmptyHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_log.txt")
	l := New(path, 1, 1)
	defer l.Close()

	l.LogInteraction("q", "q", domain.AnswerResult{Text: "a"}, nil)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "history") {
		t.Errorf("log missing history field:\n%s", data)
	}
}

func TestLogFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_log.txt")
	l := New(path, 1, 1)
	defer l.Close()

	l.LogFailure("broken question", os.ErrDeadlineExceeded)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "broken question") || !strings.Contains(out, "ERROR") {
		t.Errorf("unexpected failure log:\n%s", out)
	}
}
