package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"alfredoptarigan/resume-analyzer/internal/apperrors"
	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
)

type spyExtractor struct {
	calls int
	text  string
	err   error
}

func (s *spyExtractor) Extract(data []byte, mediaType string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if s.text != "" {
		return s.text, nil
	}
	return string(data), nil
}

type spyEngine struct {
	evaluateCalls int
	questionCalls int
	chatCalls     int
	lastResume    string
	lastJob       string
	analysis      *models.AnalysisResult
	questions     *models.InterviewResult
	reply         *models.ChatResult
	err           error
}

func (s *spyEngine) Evaluate(ctx context.Context, resumeText, jobText string) (*models.AnalysisResult, error) {
	s.evaluateCalls++
	s.lastResume, s.lastJob = resumeText, jobText
	return s.analysis, s.err
}

func (s *spyEngine) InterviewQuestions(ctx context.Context, resumeText, jobText string) (*models.InterviewResult, error) {
	s.questionCalls++
	return s.questions, s.err
}

func (s *spyEngine) ChatReply(ctx context.Context, message, chatContext string) (*models.ChatResult, error) {
	s.chatCalls++
	return s.reply, s.err
}

type failingRepo struct {
	repositories.ReportRepository
	err error
}

func (f *failingRepo) Create(ctx context.Context, ownerID, jobDescription string, result *models.AnalysisResult) (*models.Report, error) {
	return nil, f.err
}

func (f *failingRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Report, error) {
	return nil, f.err
}

func (f *failingRepo) DeleteByOwnerAndID(ctx context.Context, ownerID, id string) error {
	return f.err
}

func textUpload(text string) *models.Upload {
	return &models.Upload{Filename: "resume.txt", MediaType: "text/plain", Data: []byte(text)}
}

func TestAnalyzerService_AnalyzeEndToEnd(t *testing.T) {
	repo := repositories.NewMemoryReportRepository()
	engine := &spyEngine{analysis: &models.AnalysisResult{MatchScore: 80, Skills: []string{"Go"}, Feedback: "Strong match"}}
	core, logs := observer.New(zapcore.InfoLevel)
	svc := NewAnalyzerService(NewTextExtractor(), engine, repo, zap.New(core))

	resp, err := svc.Analyze(context.Background(), "user-1",
		textUpload("Experienced engineer, Python, Go"), "Seeking Go backend engineer")

	require.NoError(t, err)
	assert.Equal(t, 80.0, resp.MatchScore)
	assert.Equal(t, []string{"Go"}, resp.Skills)
	assert.Equal(t, "Strong match", resp.Feedback)
	assert.Equal(t, "user-1", resp.OwnerID)
	assert.Equal(t, "Seeking Go backend engineer", resp.JobDescription)
	assert.Equal(t, "Experienced engineer, Python, Go", resp.ResumeText)
	assert.NotEmpty(t, resp.ID)

	assert.Equal(t, "Experienced engineer, Python, Go", engine.lastResume)
	assert.Equal(t, "Seeking Go backend engineer", engine.lastJob)

	reports, err := repo.ListByOwner(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, resp.ID, reports[0].ID.String())
	assert.Equal(t, 80.0, reports[0].MatchScore)
	assert.Equal(t, []string{"Go"}, reports[0].Skills)

	created := logs.FilterMessage("report created").All()
	require.Len(t, created, 1)
	assert.Equal(t, "user-1", created[0].ContextMap()["owner_id"])
}

func TestAnalyzerService_EngineFailureCreatesNoReport(t *testing.T) {
	repo := repositories.NewMemoryReportRepository()
	engine := &spyEngine{err: apperrors.EngineUnavailable("down", nil)}
	svc := NewAnalyzerService(NewTextExtractor(), engine, repo, nil)

	resp, err := svc.Analyze(context.Background(), "user-1", textUpload("resume"), "job")

	assert.Nil(t, resp)
	assert.Equal(t, apperrors.KindEngineUnavailable, apperrors.KindOf(err))

	reports, err := repo.ListByOwner(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestAnalyzerService_PlainEngineErrorIsWrapped(t *testing.T) {
	engine := &spyEngine{err: errors.New("connection reset")}
	svc := NewAnalyzerService(NewTextExtractor(), engine, repositories.NewMemoryReportRepository(), nil)

	_, err := svc.Chat(context.Background(), "user-1", "hi", "")

	assert.Equal(t, apperrors.KindEngineUnavailable, apperrors.KindOf(err))
}

func TestAnalyzerService_ExtractionFailureSkipsEngine(t *testing.T) {
	extractor := &spyExtractor{err: errors.New("corrupt pdf")}
	engine := &spyEngine{}
	repo := repositories.NewMemoryReportRepository()
	svc := NewAnalyzerService(extractor, engine, repo, nil)

	_, err := svc.Analyze(context.Background(), "user-1", textUpload("x"), "job")

	assert.Equal(t, apperrors.KindExtraction, apperrors.KindOf(err))
	assert.Zero(t, engine.evaluateCalls)
	reports, _ := repo.ListByOwner(context.Background(), "user-1")
	assert.Empty(t, reports)
}

func TestAnalyzerService_EmptyExtractionIsForwarded(t *testing.T) {
	engine := &spyEngine{analysis: &models.AnalysisResult{MatchScore: 0, Skills: []string{}}}
	svc := NewAnalyzerService(NewTextExtractor(), engine, repositories.NewMemoryReportRepository(), nil)

	resp, err := svc.Analyze(context.Background(), "user-1", textUpload(""), "job")

	require.NoError(t, err)
	assert.Equal(t, 1, engine.evaluateCalls)
	assert.Equal(t, "", engine.lastResume)
	assert.Equal(t, "", resp.ResumeText)
}

func TestAnalyzerService_AnalyzeValidation(t *testing.T) {
	extractor := &spyExtractor{}
	engine := &spyEngine{}
	svc := NewAnalyzerService(extractor, engine, repositories.NewMemoryReportRepository(), nil)

	_, err := svc.Analyze(context.Background(), "user-1", nil, "job")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = svc.Analyze(context.Background(), "user-1", textUpload("resume"), "   ")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	assert.Zero(t, extractor.calls)
	assert.Zero(t, engine.evaluateCalls)
}

func TestAnalyzerService_StoreFailures(t *testing.T) {
	repo := &failingRepo{err: errors.New("connection refused")}
	engine := &spyEngine{analysis: &models.AnalysisResult{MatchScore: 10}}
	svc := NewAnalyzerService(NewTextExtractor(), engine, repo, nil)

	_, err := svc.Analyze(context.Background(), "user-1", textUpload("resume"), "job")
	assert.Equal(t, apperrors.KindStore, apperrors.KindOf(err))

	_, err = svc.History(context.Background(), "user-1")
	assert.Equal(t, apperrors.KindStore, apperrors.KindOf(err))

	err = svc.DeleteReport(context.Background(), "user-1", "id")
	assert.Equal(t, apperrors.KindStore, apperrors.KindOf(err))
}

func TestAnalyzerService_HistoryAndDeleteAreScoped(t *testing.T) {
	repo := repositories.NewMemoryReportRepository()
	engine := &spyEngine{analysis: &models.AnalysisResult{MatchScore: 50, Skills: []string{"Go"}}}
	svc := NewAnalyzerService(NewTextExtractor(), engine, repo, nil)
	ctx := context.Background()

	mine, err := svc.Analyze(ctx, "user-a", textUpload("a"), "job a")
	require.NoError(t, err)
	theirs, err := svc.Analyze(ctx, "user-b", textUpload("b"), "job b")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteReport(ctx, "user-a", theirs.ID))

	historyA, err := svc.History(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, historyA, 1)
	assert.Equal(t, mine.ID, historyA[0].ID.String())

	historyB, err := svc.History(ctx, "user-b")
	require.NoError(t, err)
	assert.Len(t, historyB, 1)
}

func TestAnalyzerService_InterviewQuestionsAndChat(t *testing.T) {
	engine := &spyEngine{
		questions: &models.InterviewResult{Questions: "1. Why Go?"},
		reply:     &models.ChatResult{Reply: "Add metrics"},
	}
	svc := NewAnalyzerService(NewTextExtractor(), engine, repositories.NewMemoryReportRepository(), nil)

	questions, err := svc.InterviewQuestions(context.Background(), "user-1", "resume", "job")
	require.NoError(t, err)
	assert.Equal(t, "1. Why Go?", questions.Questions)

	reply, err := svc.Chat(context.Background(), "user-1", "What next?", "")
	require.NoError(t, err)
	assert.Equal(t, "Add metrics", reply.Reply)

	_, err = svc.InterviewQuestions(context.Background(), "user-1", "", "job")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	_, err = svc.Chat(context.Background(), "user-1", " ", "ctx")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	assert.Equal(t, 1, engine.questionCalls)
	assert.Equal(t, 1, engine.chatCalls)
}
