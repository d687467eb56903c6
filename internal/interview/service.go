// Package interview owns the server-side session lifecycle: start,
// answer submission with evaluation, completion, and recording linkage.
package interview

import (
	"context"
	"strings"
	"sync"

	"github.com/mssola/user_agent"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/insidejustjoin/justjoin-sub002/internal/catalog"
	"github.com/insidejustjoin/justjoin-sub002/internal/models"
	"github.com/insidejustjoin/justjoin-sub002/pkg/errors"
	"github.com/insidejustjoin/justjoin-sub002/pkg/i18n"
	"github.com/insidejustjoin/justjoin-sub002/pkg/logger"
	"github.com/insidejustjoin/justjoin-sub002/pkg/metrics"
)

// Service is the interview session service. The session row is the sole
// point of mutation for session state; sessionLocks serializes writers per
// session so concurrent submissions cannot interleave.
type Service struct {
	db        *gorm.DB
	catalog   *catalog.Service
	evaluator Evaluator
	i18n      *i18n.I18nSupport
	metrics   *metrics.Metrics

	sessionLocks sync.Map // session id -> *sync.Mutex
}

func NewService(db *gorm.DB, cat *catalog.Service, eval Evaluator, loc *i18n.I18nSupport, m *metrics.Metrics) *Service {
	if eval == nil {
		eval = lexiconEvaluator{}
	}
	return &Service{
		db:        db,
		catalog:   cat,
		evaluator: eval,
		i18n:      loc,
		metrics:   m,
	}
}

func (s *Service) lock(sessionID string) *sync.Mutex {
	mu, _ := s.sessionLocks.LoadOrStore(sessionID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Start creates a session and returns the opening message plus the first
// question. Consent is mandatory; nothing is created without it.
func (s *Service) Start(ctx context.Context, in StartInput) (*StartResult, error) {
	if !in.ConsentGiven {
		return nil, errors.WithCode(errors.CodeConsentRequired, "consent is required before starting an interview")
	}
	lang := in.Language
	if lang == "" {
		lang = "ja"
	}

	applicant, err := models.GetOrCreateApplicant(s.db, strings.TrimSpace(in.Email), in.Name, in.Position)
	if err != nil {
		// Identity lookup must not block the interview; fall back to an
		// anonymous applicant.
		logger.Warn("applicant lookup failed, using anonymous identity", zap.Error(err))
		applicant, err = models.GetOrCreateApplicant(s.db, "", in.Name, in.Position)
		if err != nil {
			return nil, errors.Wrap(err, "applicant creation failed")
		}
	}

	first, err := s.catalog.First(ctx)
	if err != nil {
		return nil, err
	}
	total, err := s.catalog.TotalCount(ctx)
	if err != nil {
		return nil, err
	}

	session, err := models.CreateInterviewSession(
		s.db, applicant.ID, lang, in.IPAddress, in.UserAgent, parseClientMeta(in.UserAgent),
	)
	if err != nil {
		return nil, errors.Wrap(err, "session creation failed")
	}

	session.Status = models.StatusInProgress
	if err := models.SaveInterviewSession(s.db, session); err != nil {
		return nil, errors.Wrap(err, "session activation failed")
	}

	if s.metrics != nil {
		s.metrics.SessionStarted()
	}
	logger.Info("interview session started",
		zap.String("session", session.ID),
		zap.String("applicant", applicant.ID),
		zap.String("language", lang))

	view := questionView(first, lang)
	return &StartResult{
		SessionID:    session.ID,
		ApplicantID:  applicant.ID,
		Message:      s.say(lang, "interview.opening", view.Text),
		NextQuestion: view,
		Progress:     progress(1, total),
	}, nil
}

// SubmitAnswer validates, evaluates, and persists one answer, then either
// advances to the next question or completes the session.
func (s *Service) SubmitAnswer(ctx context.Context, sessionID string, questionID uint, text string, responseTime float64) (*SubmitResult, error) {
	if sessionID == "" || questionID == 0 || strings.TrimSpace(text) == "" {
		return nil, errors.WithCode(errors.CodeValidation, "sessionId, questionId and text are required")
	}

	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	session, err := models.GetInterviewSession(s.db, sessionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.WithCodef(errors.CodeSessionNotFound, "session %s not found", sessionID)
		}
		return nil, errors.Wrap(err, "session lookup failed")
	}
	if session.IsTerminal() {
		return nil, errors.WithCodef(errors.CodeSessionTerminal, "session %s is %s", sessionID, session.Status)
	}

	if _, err := s.catalog.GetByID(ctx, questionID); err != nil {
		return nil, err
	}

	exists, err := models.AnswerExists(s.db, sessionID, questionID)
	if err != nil {
		return nil, errors.Wrap(err, "answer lookup failed")
	}
	if exists {
		return nil, errors.WithCodef(errors.CodeValidation, "question %d already answered in this session", questionID)
	}

	answer := &models.Answer{
		QuestionID:   questionID,
		SessionID:    sessionID,
		ApplicantID:  session.ApplicantID,
		Text:         text,
		ResponseTime: responseTime,
		WordCount:    WordCount(text),
	}
	// Evaluation failure persists the answer with a nil score; it never
	// rejects the submission.
	if score, err := s.evaluator.Evaluate(ctx, text); err != nil {
		logger.Warn("answer evaluation failed, persisting without score",
			zap.String("session", sessionID), zap.Error(err))
	} else {
		answer.SentimentScore = &score
	}

	if err := models.CreateAnswer(s.db, answer); err != nil {
		return nil, errors.Wrap(err, "answer persistence failed")
	}
	if s.metrics != nil {
		s.metrics.AnswerSubmitted()
	}

	total, err := s.catalog.TotalCount(ctx)
	if err != nil {
		return nil, err
	}
	next, err := s.catalog.GetNext(ctx, questionID)
	if err != nil {
		return nil, err
	}

	lang := session.Language
	if next == nil {
		if err := models.FinishInterviewSession(s.db, session, models.StatusCompleted); err != nil {
			return nil, errors.Wrap(err, "session completion failed")
		}
		if s.metrics != nil {
			s.metrics.SessionFinished(models.StatusCompleted)
		}
		answered, err := models.CountAnswersBySession(s.db, sessionID)
		if err != nil {
			return nil, errors.Wrap(err, "answer count failed")
		}
		logger.Info("interview session completed",
			zap.String("session", sessionID), zap.Int64("answered", answered))
		return &SubmitResult{
			Message:    s.say(lang, "interview.complete", ""),
			IsComplete: true,
			Summary: &Summary{
				TotalDuration:     session.TotalDuration,
				QuestionsAnswered: int(answered),
				CompletionRate:    float64(answered) / float64(total) * 100,
			},
		}, nil
	}

	// currentQuestionIndex is zero-based and never moves backwards.
	if idx := next.SortOrder - 1; idx > session.CurrentQuestionIndex {
		session.CurrentQuestionIndex = idx
	}
	if err := models.SaveInterviewSession(s.db, session); err != nil {
		return nil, errors.Wrap(err, "session progress update failed")
	}

	view := questionView(next, lang)
	p := progress(next.SortOrder, total)
	return &SubmitResult{
		Message:      s.say(lang, "interview.next", view.Text),
		NextQuestion: view,
		IsComplete:   false,
		Progress:     &p,
	}, nil
}

// End force-transitions the session to a terminal status. Idempotent:
// ending an already-terminal session is a no-op success.
func (s *Service) End(ctx context.Context, sessionID, reason string) (*EndResult, error) {
	if sessionID == "" {
		return nil, errors.WithCode(errors.CodeValidation, "sessionId is required")
	}

	mu := s.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	session, err := models.GetInterviewSession(s.db, sessionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.WithCodef(errors.CodeSessionNotFound, "session %s not found", sessionID)
		}
		return nil, errors.Wrap(err, "session lookup failed")
	}
	if session.IsTerminal() {
		return &EndResult{TotalDuration: session.TotalDuration}, nil
	}

	status := models.StatusCancelled
	if reason == "completed" {
		status = models.StatusCompleted
	}
	if err := models.FinishInterviewSession(s.db, session, status); err != nil {
		return nil, errors.Wrap(err, "session end failed")
	}
	if s.metrics != nil {
		s.metrics.SessionFinished(status)
	}
	logger.Info("interview session ended",
		zap.String("session", sessionID),
		zap.String("status", status),
		zap.String("reason", reason))

	return &EndResult{TotalDuration: session.TotalDuration}, nil
}

// Get returns the session snapshot plus applicant profile summary.
func (s *Service) Get(ctx context.Context, sessionID string) (*SessionSnapshot, error) {
	session, err := models.GetInterviewSession(s.db, sessionID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.WithCodef(errors.CodeSessionNotFound, "session %s not found", sessionID)
		}
		return nil, errors.Wrap(err, "session lookup failed")
	}

	answered, err := models.CountAnswersBySession(s.db, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "answer count failed")
	}

	snap := &SessionSnapshot{
		ID:                   session.ID,
		Status:               session.Status,
		Language:             session.Language,
		CurrentQuestionIndex: session.CurrentQuestionIndex,
		StartedAt:            session.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
		TotalDuration:        session.TotalDuration,
		AnsweredCount:        int(answered),
		Metadata:             session.Metadata,
	}
	if session.CompletedAt != nil {
		snap.CompletedAt = session.CompletedAt.Format("2006-01-02T15:04:05Z07:00")
	}

	if applicant, err := models.GetApplicant(s.db, session.ApplicantID); err == nil {
		snap.Applicant = ApplicantSummary{
			ID:       applicant.ID,
			Name:     applicant.Name,
			Email:    applicant.Email,
			Position: applicant.Position,
		}
	}
	return snap, nil
}

// SaveRecordingInfo links an uploaded segment to its session. A missing
// session is logged and swallowed: recording upload must never fail the
// interview.
func (s *Service) SaveRecordingInfo(ctx context.Context, sessionID, kind, filename string, size int64, mimetype string) {
	session, err := models.GetInterviewSession(s.db, sessionID)
	if err != nil {
		logger.Warn("recording references unknown session, skipping link",
			zap.String("session", sessionID), zap.Error(err))
		return
	}

	seg := &models.RecordingSegment{
		SessionID:   sessionID,
		ApplicantID: session.ApplicantID,
		Type:        kind,
		Filename:    filename,
		Filesize:    size,
		Mimetype:    mimetype,
	}
	if err := models.CreateRecordingSegment(s.db, seg); err != nil {
		logger.Warn("recording metadata persistence failed",
			zap.String("session", sessionID), zap.Error(err))
		return
	}
	if s.metrics != nil {
		s.metrics.RecordingUploaded(kind, size)
	}
}

func (s *Service) say(lang, key, questionText string) string {
	if s.i18n == nil {
		return questionText
	}
	var data map[string]interface{}
	if questionText != "" {
		data = map[string]interface{}{"Question": questionText}
	}
	return s.i18n.T(lang, key, data)
}

func questionView(q *models.Question, lang string) *QuestionView {
	return &QuestionView{ID: q.ID, Order: q.SortOrder, Text: q.Text(lang)}
}

func progress(current, total int) Progress {
	p := Progress{Current: current, Total: total}
	if total > 0 {
		p.Percentage = current * 100 / total
	}
	return p
}

func parseClientMeta(uaString string) map[string]string {
	if uaString == "" {
		return nil
	}
	ua := user_agent.New(uaString)
	name, version := ua.Browser()
	return map[string]string{
		"browser":        name,
		"browserVersion": version,
		"os":             ua.OS(),
		"mobile":         boolString(ua.Mobile()),
	}
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
