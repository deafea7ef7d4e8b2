// Package chatlog records every question/answer interaction to a durable,
// rotating log file.
package chatlog

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"

	"docqa/internal/domain"
)

// Logger writes one entry per completed query. The log captures the question
// as typed, the effective question after prior-answer folding, the raw answer,
// and the session's full history.
type Logger struct {
	log    *slog.Logger
	closer *lumberjack.Logger
}

// New builds a logger that rotates at maxSizeMB, keeping maxBackups old files.
func New(path string, maxSizeMB, maxBackups int) *Logger {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
	}
	return &Logger{
		log:    slog.New(slog.NewTextHandler(rotator, nil)),
		closer: rotator,
	}
}

// LogInteraction appends one completed query to the log, including the
// session's full history as of this query.
func (l *Logger) LogInteraction(question, effectiveQuestion string, result domain.AnswerResult, history []domain.HistoryEntry) {
	attrs := []any{
		slog.String("question", question),
		slog.String("effective_question", effectiveQuestion),
		slog.String("answer", result.Text),
		slog.Int("references", len(result.References)),
		slog.String("history", marshalHistory(history)),
	}
	if result.Usage != nil {
		attrs = append(attrs,
			slog.Int("input_tokens", result.Usage.InputTokens),
			slog.Int("output_tokens", result.Usage.OutputTokens),
		)
	}
	l.log.Info("interaction", attrs...)
}

func marshalHistory(history []domain.HistoryEntry) string {
	if len(history) == 0 {
		return "[]"
	}
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Sprintf("marshal failed: %v", err)
	}
	return string(data)
}

// LogFailure appends a failed query.
func (l *Logger) LogFailure(question string, err error) {
	l.log.Error("query failed", slog.String("question", question), slog.String("error", err.Error()))
}

func (l *Logger) Close() error {
	return l.closer.Close()
}
