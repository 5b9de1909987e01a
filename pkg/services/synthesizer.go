package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-ask/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-ask/pkg/llm"
	"github.com/ekaya-inc/ekaya-ask/pkg/logging"
	"github.com/ekaya-inc/ekaya-ask/pkg/models"
	"github.com/ekaya-inc/ekaya-ask/pkg/prompts"
	sqlgate "github.com/ekaya-inc/ekaya-ask/pkg/sql"
)

var (
	completenessTerms = regexp.MustCompile(`\b(all|every|complete|entire|full list)\b`)
	standaloneNumber  = regexp.MustCompile(`\b(\d+)\b`)

	sqlFence     = regexp.MustCompile("(?i)```sql\\s*")
	anyFence     = regexp.MustCompile("```\\s*")
	selectPrefix = regexp.MustCompile(`(?i)^\s*SELECT`)
)

// DeriveQuantityHint reads the row count the user asked for from the raw
// question: ALL for completeness terms, EXACT(n) for the first standalone
// integer, DEFAULT(100) otherwise. Integers too large for an int are clamped
// to models.SafetyRowCap.
func DeriveQuantityHint(raw string) models.QuantityHint {
	if completenessTerms.MatchString(strings.ToLower(raw)) {
		return models.QuantityHint{Kind: models.QuantityAll}
	}
	if m := standaloneNumber.FindStringSubmatch(raw); m != nil {
		n, err := strconv.Atoi(m[1])
		if errors.Is(err, strconv.ErrRange) {
			n = models.SafetyRowCap
		}
		return models.QuantityHint{Kind: models.QuantityExact, N: n}
	}
	return models.QuantityHint{Kind: models.QuantityDefault, N: models.DefaultRowLimit}
}

// CleanCompletion strips code fences and surrounding whitespace from a
// completion and normalizes a leading SELECT.
func CleanCompletion(reply string) string {
	reply = sqlFence.ReplaceAllString(reply, "")
	reply = anyFence.ReplaceAllString(reply, "")
	return selectPrefix.ReplaceAllString(strings.TrimSpace(reply), "SELECT")
}

// Synthesis is one round trip to the completion service.
type Synthesis struct {
	Model         string
	Hint          models.QuantityHint
	SystemPrompt  string
	UserPrompt    string
	RawCompletion string
	SQL           string // RawCompletion after CleanCompletion
	Duration      time.Duration
}

// SQLSynthesizer asks the completion service for a SELECT answering a question.
type SQLSynthesizer interface {
	// Synthesize returns the cleaned completion. On failure the returned
	// Synthesis still carries the prompts and timing, and the error wraps
	// apperrors.ErrNoSQLGenerated.
	Synthesize(ctx context.Context, question models.Question, schemaText string) (*Synthesis, error)
}

// SynthesizerConfig sets the sampling parameters sent with each completion.
type SynthesizerConfig struct {
	DefaultSchema string
	Temperature   float64
	MaxTokens     int
}

type sqlSynthesizer struct {
	completer llm.Completer
	cfg       SynthesizerConfig
	logger    *zap.Logger
}

// NewSQLSynthesizer creates a synthesizer backed by completer.
func NewSQLSynthesizer(completer llm.Completer, cfg SynthesizerConfig, logger *zap.Logger) SQLSynthesizer {
	return &sqlSynthesizer{
		completer: completer,
		cfg:       cfg,
		logger:    logging.OrNop(logger).Named("synthesizer"),
	}
}

func (s *sqlSynthesizer) Synthesize(ctx context.Context, question models.Question, schemaText string) (*Synthesis, error) {
	hint := DeriveQuantityHint(question.Raw)
	syn := &Synthesis{
		Model:        s.completer.Model(),
		Hint:         hint,
		SystemPrompt: prompts.SQLSystemPrompt(s.cfg.DefaultSchema, sqlgate.ForbiddenKeywords),
		UserPrompt:   prompts.BuildSQLUserPrompt(schemaText, question.Raw, hint),
	}

	start := time.Now()
	reply, err := s.completer.Complete(ctx, llm.CompletionRequest{
		SystemPrompt: syn.SystemPrompt,
		UserPrompt:   syn.UserPrompt,
		Temperature:  s.cfg.Temperature,
		MaxTokens:    s.cfg.MaxTokens,
	})
	syn.Duration = time.Since(start)
	if err != nil {
		s.logger.Warn("Completion failed",
			zap.String("hint", hint.String()),
			zap.Duration("elapsed", syn.Duration),
			zap.String("error", logging.SanitizeError(err)))
		return syn, fmt.Errorf("%w: %w", apperrors.ErrNoSQLGenerated, err)
	}

	syn.RawCompletion = reply
	syn.SQL = CleanCompletion(reply)
	if syn.SQL == "" {
		return syn, apperrors.ErrNoSQLGenerated
	}

	s.logger.Debug("Completion received",
		zap.String("hint", hint.String()),
		zap.Int("completion_len", len(reply)),
		zap.Duration("elapsed", syn.Duration))

	return syn, nil
}
