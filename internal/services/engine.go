package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"alfredoptarigan/resume-analyzer/internal/apperrors"
	"alfredoptarigan/resume-analyzer/internal/logger"
	"alfredoptarigan/resume-analyzer/internal/models"
)

// AnalysisClient is the typed contract of the analysis engine. Every failure
// is reported as an EngineUnavailable error.
type AnalysisClient interface {
	Evaluate(ctx context.Context, resumeText, jobText string) (*models.AnalysisResult, error)
	InterviewQuestions(ctx context.Context, resumeText, jobText string) (*models.InterviewResult, error)
	ChatReply(ctx context.Context, message, chatContext string) (*models.ChatResult, error)
}

type EngineOptions struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryWait  time.Duration
}

type engineClient struct {
	client *resty.Client
	log    *zap.Logger
}

// NewEngineClient talks to the HTTP analysis engine at opts.BaseURL.
func NewEngineClient(opts EngineOptions, log *zap.Logger) AnalysisClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.MaxRetries).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(opts.RetryWait * 4).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		AddRetryCondition(isTransientEngineFailure)

	return &engineClient{
		client: client,
		log:    logger.OrNop(log).With(zap.String(logger.FieldEngine, "http")),
	}
}

// isTransientEngineFailure retries network errors, 429 and 5xx, but never a
// request whose context is already done.
func isTransientEngineFailure(resp *resty.Response, err error) bool {
	if resp != nil && resp.Request != nil && resp.Request.Context().Err() != nil {
		return false
	}
	if err != nil {
		return true
	}
	return resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= http.StatusInternalServerError
}

// Evaluate implements AnalysisClient.
func (e *engineClient) Evaluate(ctx context.Context, resumeText, jobText string) (*models.AnalysisResult, error) {
	body, err := e.post(ctx, "/analyze", map[string]string{"resume": resumeText, "job": jobText})
	if err != nil {
		return nil, err
	}
	return parseAnalysisResult(body)
}

// InterviewQuestions implements AnalysisClient.
func (e *engineClient) InterviewQuestions(ctx context.Context, resumeText, jobText string) (*models.InterviewResult, error) {
	body, err := e.post(ctx, "/interview-questions", map[string]string{"resume": resumeText, "job": jobText})
	if err != nil {
		return nil, err
	}
	return parseInterviewResult(body)
}

// ChatReply implements AnalysisClient.
func (e *engineClient) ChatReply(ctx context.Context, message, chatContext string) (*models.ChatResult, error) {
	body, err := e.post(ctx, "/chat", map[string]string{"message": message, "context": chatContext})
	if err != nil {
		return nil, err
	}
	return parseChatResult(body)
}

func (e *engineClient) post(ctx context.Context, path string, payload map[string]string) (string, error) {
	started := time.Now()

	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(path)
	if err != nil {
		e.log.Warn("engine request failed", zap.String("path", path), zap.Error(err))
		return "", apperrors.EngineUnavailable("analysis engine is unreachable", err)
	}

	e.log.Debug("engine responded",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("elapsed", time.Since(started)),
		zap.String("body", logger.TruncateForLog(resp.String(), 200)),
	)

	if resp.IsError() || resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return "", apperrors.EngineUnavailable(
			fmt.Sprintf("analysis engine returned status %d", resp.StatusCode()), nil)
	}

	return resp.String(), nil
}

func checkEngineBody(body string) error {
	if !gjson.Valid(body) {
		return apperrors.EngineUnavailable("analysis engine returned malformed JSON", nil)
	}
	if msg := gjson.Get(body, "error"); msg.Exists() && msg.Type != gjson.Null && msg.String() != "" {
		return apperrors.EngineUnavailable("analysis engine reported an error", fmt.Errorf("%s", msg.String()))
	}
	return nil
}

// parseAnalysisResult requires a numeric matchScore. Missing skills and
// feedback default to empty values.
func parseAnalysisResult(body string) (*models.AnalysisResult, error) {
	if err := checkEngineBody(body); err != nil {
		return nil, err
	}

	score := gjson.Get(body, "matchScore")
	if score.Type != gjson.Number {
		return nil, apperrors.EngineUnavailable("analysis engine response has no numeric matchScore", nil)
	}

	result := &models.AnalysisResult{
		MatchScore: score.Float(),
		Skills:     []string{},
		Feedback:   gjson.Get(body, "feedback").String(),
	}

	skills := gjson.Get(body, "skills")
	if skills.IsArray() {
		skills.ForEach(func(_, value gjson.Result) bool {
			result.Skills = append(result.Skills, value.String())
			return true
		})
	}

	return result, nil
}

// parseInterviewResult accepts questions as a single string or a list of strings.
func parseInterviewResult(body string) (*models.InterviewResult, error) {
	if err := checkEngineBody(body); err != nil {
		return nil, err
	}

	questions := gjson.Get(body, "questions")
	if questions.IsArray() {
		lines := make([]string, 0)
		questions.ForEach(func(_, value gjson.Result) bool {
			lines = append(lines, value.String())
			return true
		})
		return &models.InterviewResult{Questions: strings.Join(lines, "\n")}, nil
	}

	return &models.InterviewResult{Questions: questions.String()}, nil
}

func parseChatResult(body string) (*models.ChatResult, error) {
	if err := checkEngineBody(body); err != nil {
		return nil, err
	}
	return &models.ChatResult{Reply: gjson.Get(body, "reply").String()}, nil
}
