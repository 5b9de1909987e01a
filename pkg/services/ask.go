package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-ask/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-ask/pkg/audit"
	"github.com/ekaya-inc/ekaya-ask/pkg/llm"
	"github.com/ekaya-inc/ekaya-ask/pkg/logging"
	"github.com/ekaya-inc/ekaya-ask/pkg/metrics"
	"github.com/ekaya-inc/ekaya-ask/pkg/models"
	sqlgate "github.com/ekaya-inc/ekaya-ask/pkg/sql"
)

const (
	emptyQuestionError    = "Empty question"
	emptyQuestionDetails  = "Please provide a question."
	aiDisabledError       = "AI Agent is disabled"
	aiDisabledDetails     = "Please enable the AI Agent to generate SQL queries automatically, or write SQL manually."
	queryFailedError      = "Query failed"
	internalFailureDetail = "internal error"
)

// AskService routes a question to a catalog answer or through SQL synthesis,
// the safety gate and execution.
type AskService interface {
	// Ask always returns a result; failures are described by its Route,
	// Error and Details fields.
	Ask(ctx context.Context, req *models.AskRequest) *models.AskResult
}

// AskDeps are the pipeline stages. Audit defaults to audit.NopSink.
type AskDeps struct {
	Classifier  *Classifier
	Meta        MetaService
	Schema      SchemaInspector
	Synthesizer SQLSynthesizer
	Gate        *sqlgate.Gate
	Executor    QueryExecutor
	Audit       audit.Sink
}

type askService struct {
	deps             AskDeps
	aiEnabledDefault bool
	logger           *zap.Logger
}

// NewAskService creates the orchestrator. aiEnabledDefault applies when a
// request leaves ai_enabled unset.
func NewAskService(deps AskDeps, aiEnabledDefault bool, logger *zap.Logger) AskService {
	if deps.Classifier == nil {
		deps.Classifier = NewClassifier()
	}
	if deps.Audit == nil {
		deps.Audit = audit.NopSink{}
	}
	return &askService{
		deps:             deps,
		aiEnabledDefault: aiEnabledDefault,
		logger:           logging.OrNop(logger).Named("ask"),
	}
}

func (s *askService) Ask(ctx context.Context, req *models.AskRequest) (res *models.AskResult) {
	res = &models.AskResult{
		RequestID: req.RequestID,
		Question:  models.NewQuestion(req.Question),
	}
	if res.RequestID == "" {
		res.RequestID = uuid.NewString()
	}
	logger := s.logger.With(zap.String("request_id", res.RequestID))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Ask pipeline panicked", zap.Any("panic", r), zap.Stack("stack"))
			res.Route = models.RouteError
			res.Error = queryFailedError
			res.Details = internalFailureDetail
		}
		metrics.ObserveQuestion(string(res.Route))
	}()

	if res.Question.IsEmpty() {
		res.Route = models.RouteEmpty
		res.Err = apperrors.ErrEmptyQuestion
		res.Error = emptyQuestionError
		res.Details = emptyQuestionDetails
		return res
	}

	if finding := sqlgate.ScreenInput(res.Question.Raw); finding != nil {
		logger.Warn("Question looks like an injection payload", zap.String("fingerprint", finding.Fingerprint))
		s.record(ctx, res, audit.EventSuspiciousInput, audit.SeverityCritical, audit.SuspiciousInputDetails{
			Question:    finding.Input,
			Fingerprint: finding.Fingerprint,
		})
	}

	intent, rule := s.deps.Classifier.ClassifyWithRule(res.Question)
	res.Intent = intent
	logger.Debug("Question classified", zap.String("intent", intent.String()), zap.String("rule", rule))

	if intent == models.IntentSecurityBlock {
		s.answerSecurityBlock(ctx, res)
		return res
	}
	if intent.IsMeta() {
		s.answerMeta(ctx, res)
		return res
	}

	if !s.aiEnabled(req) {
		res.Route = models.RouteAIDisabled
		res.Err = apperrors.ErrAIDisabled
		res.Error = aiDisabledError
		res.Details = aiDisabledDetails
		return res
	}

	if err := s.runSQLPipeline(ctx, res, logger); err != nil {
		s.fail(ctx, res, err, logger)
	}
	return res
}

func (s *askService) aiEnabled(req *models.AskRequest) bool {
	if req.AIEnabled == nil {
		return s.aiEnabledDefault
	}
	return *req.AIEnabled
}

func (s *askService) answerSecurityBlock(ctx context.Context, res *models.AskResult) {
	res.Meta = SecurityBlockAnswer()
	res.Route = models.RouteSecurityBlock
	res.Err = apperrors.ErrSecurityBlocked
	res.Error = res.Meta.Error
	res.Details = res.Meta.Details

	metrics.ObserveMetaIntent(res.Intent.String())
	s.record(ctx, res, audit.EventSecurityBlock, audit.SeverityWarning, audit.SecurityBlockDetails{
		Question: res.Question.Raw,
	})
}

func (s *askService) answerMeta(ctx context.Context, res *models.AskResult) {
	res.Meta = s.deps.Meta.Answer(ctx, res.Intent)
	metrics.ObserveMetaIntent(res.Intent.String())

	s.record(ctx, res, audit.EventMetaAnswered, audit.SeverityInfo, audit.MetaAnsweredDetails{
		Intent: res.Intent.String(),
		Failed: res.Meta.Failed(),
	})

	if res.Meta.Failed() {
		res.Route = models.RouteMetaError
		res.Error = res.Meta.Error
		res.Details = res.Meta.Details
		return
	}
	res.Route = models.RouteMeta
}

// runSQLPipeline describes the schema, synthesizes, gates and executes.
// res is filled in as each stage succeeds so failures can report the SQL.
func (s *askService) runSQLPipeline(ctx context.Context, res *models.AskResult, logger *zap.Logger) error {
	schemaText, _, err := s.deps.Schema.DescribeSchema(ctx)
	if err != nil {
		return err
	}

	syn, err := s.deps.Synthesizer.Synthesize(ctx, res.Question, schemaText)
	s.recordCompletion(ctx, res, syn, err)
	if err != nil {
		return err
	}
	res.RawSQL = syn.SQL

	gated, err := s.deps.Gate.Sanitize(syn.SQL, res.Question.Raw)
	if err != nil {
		metrics.ObserveGate(sqlgate.Outcome(err), false, false)
		s.recordRejection(ctx, res, syn.SQL, err)
		return err
	}
	metrics.ObserveGate(sqlgate.OutcomeAccepted, gated.SafetyCapApplied, gated.SchemaQualified)
	s.record(ctx, res, audit.EventSQLSanitized, audit.SeverityInfo, audit.SQLSanitizedDetails{
		Raw:               syn.RawCompletion,
		Cleaned:           gated.SQL,
		SafetyCapApplied:  gated.SafetyCapApplied,
		SchemaQualified:   gated.SchemaQualified,
		DroppedStatements: gated.DroppedStatements,
	})
	res.SQL = gated.SQL

	result, err := s.deps.Executor.Execute(ctx, gated.SQL)
	if err != nil {
		if sqlgate.Outcome(err) != "error" {
			s.recordRejection(ctx, res, gated.SQL, err)
		}
		return err
	}

	logger.Info("Question answered with SQL",
		zap.String("hint", syn.Hint.String()),
		zap.Int("row_count", result.RowCount),
		zap.Bool("safety_cap_applied", gated.SafetyCapApplied))

	res.Result = result
	res.Route = models.RouteSQL
	return nil
}

// fail turns a pipeline error into the "Query failed" response, adding the
// table suggestion for missing-object errors.
func (s *askService) fail(ctx context.Context, res *models.AskResult, err error, logger *zap.Logger) {
	res.Route = models.RouteError
	res.Err = err
	res.Error = queryFailedError
	res.Details = failureMessage(err)

	logger.Warn("Ask pipeline failed",
		zap.String("details", logging.SanitizeError(err)),
		zap.String("sql", logging.SanitizeQuery(res.SQL)))

	qe, ok := apperrors.IsObjectNotFound(err)
	if !ok {
		return
	}
	tables, listErr := s.deps.Schema.ListSchemaTables(ctx)
	if listErr != nil {
		logger.Warn("Could not list tables for suggestion", zap.String("error", logging.SanitizeError(listErr)))
	}
	res.Suggestion = BuildNotFoundSuggestion(qe.MissingObject(), tables, listErr)
}

// failureMessage is the user-facing details text for a pipeline error.
func failureMessage(err error) string {
	var ce *apperrors.CatalogQueryError
	switch {
	case errors.Is(err, apperrors.ErrNoSQLGenerated):
		return apperrors.ErrNoSQLGenerated.Error()
	case errors.As(err, &ce):
		return failureDetails(err)
	default:
		return logging.SanitizeError(err)
	}
}

func (s *askService) recordCompletion(ctx context.Context, res *models.AskResult, syn *Synthesis, err error) {
	if syn == nil {
		return
	}

	outcome := "ok"
	details := audit.CompletionExchangeDetails{
		Question:        res.Question.Raw,
		Hint:            syn.Hint.String(),
		Model:           syn.Model,
		SystemPromptLen: len(syn.SystemPrompt),
		UserPromptLen:   len(syn.UserPrompt),
		Completion:      syn.RawCompletion,
		DurationMS:      syn.Duration.Milliseconds(),
	}
	if err != nil {
		outcome = completionOutcome(err)
		details.Error = logging.SanitizeError(err)
	}
	metrics.ObserveCompletion(outcome, syn.Duration)
	s.record(ctx, res, audit.EventCompletionExchange, audit.SeverityInfo, details)
}

func completionOutcome(err error) string {
	var llmErr *llm.Error
	if errors.As(err, &llmErr) {
		return string(llmErr.Type)
	}
	return string(llm.ErrorTypeEmpty)
}

func (s *askService) recordRejection(ctx context.Context, res *models.AskResult, sql string, err error) {
	details := audit.SQLRejectedDetails{Raw: sql, Reason: sqlgate.Outcome(err)}
	var fk *apperrors.ForbiddenKeywordError
	if errors.As(err, &fk) {
		details.Keyword = fk.Keyword
	}
	s.record(ctx, res, audit.EventSQLRejected, audit.SeverityWarning, details)
}

func (s *askService) record(ctx context.Context, res *models.AskResult, eventType audit.EventType, severity string, details any) {
	s.deps.Audit.Record(ctx, audit.NewEvent(eventType, res.RequestID, severity, details))
}
