package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"alfredoptarigan/resume-analyzer/internal/apperrors"
	"alfredoptarigan/resume-analyzer/internal/logger"
	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
)

// AnalyzerService runs the per-user operations behind the gateway routes.
type AnalyzerService interface {
	Analyze(ctx context.Context, ownerID string, upload *models.Upload, jobDescription string) (*models.AnalyzeResponse, error)
	History(ctx context.Context, ownerID string) ([]models.Report, error)
	DeleteReport(ctx context.Context, ownerID, reportID string) error
	InterviewQuestions(ctx context.Context, ownerID, resumeText, jobText string) (*models.InterviewResult, error)
	Chat(ctx context.Context, ownerID, message, chatContext string) (*models.ChatResult, error)
}

type analyzerService struct {
	extractor  TextExtractor
	engine     AnalysisClient
	reportRepo repositories.ReportRepository
	log        *zap.Logger
}

func NewAnalyzerService(
	extractor TextExtractor,
	engine AnalysisClient,
	reportRepo repositories.ReportRepository,
	log *zap.Logger,
) AnalyzerService {
	return &analyzerService{
		extractor:  extractor,
		engine:     engine,
		reportRepo: reportRepo,
		log:        logger.OrNop(log),
	}
}

// Analyze extracts the résumé text, asks the engine for an evaluation and
// persists the result. Nothing is stored unless the engine call succeeds.
func (s *analyzerService) Analyze(ctx context.Context, ownerID string, upload *models.Upload, jobDescription string) (*models.AnalyzeResponse, error) {
	log := logger.WithOwner(s.log, ownerID)

	if upload == nil {
		return nil, apperrors.Validation("No resume file uploaded")
	}
	if strings.TrimSpace(jobDescription) == "" {
		return nil, apperrors.Validation("Job description is required")
	}

	log = log.With(zap.String(logger.FieldMediaType, upload.MediaType))

	resumeText, err := s.extractor.Extract(upload.Data, upload.MediaType)
	if err != nil {
		log.Warn("failed to extract resume text", zap.String("filename", upload.Filename), zap.Error(err))
		return nil, apperrors.Extraction(err)
	}

	log.Debug("resume text extracted", zap.Int("chars", len(resumeText)))

	result, err := s.engine.Evaluate(ctx, resumeText, jobDescription)
	if err != nil {
		log.Error("analysis engine evaluation failed", zap.Error(err))
		return nil, asEngineError(err)
	}

	report, err := s.reportRepo.Create(ctx, ownerID, jobDescription, result)
	if err != nil {
		log.Error("failed to persist report", zap.Error(err))
		return nil, apperrors.Store("failed to save report", err)
	}

	log.Info("report created",
		zap.String(logger.FieldReportID, report.ID.String()),
		zap.Float64("match_score", report.MatchScore),
	)

	return &models.AnalyzeResponse{
		ID:             report.ID.String(),
		OwnerID:        report.OwnerID,
		JobDescription: report.JobDescription,
		MatchScore:     report.MatchScore,
		Skills:         report.Skills,
		Feedback:       report.Feedback,
		ResumeText:     resumeText,
	}, nil
}

func (s *analyzerService) History(ctx context.Context, ownerID string) ([]models.Report, error) {
	reports, err := s.reportRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		logger.WithOwner(s.log, ownerID).Error("failed to fetch history", zap.Error(err))
		return nil, apperrors.Store("Failed to fetch history", err)
	}
	return reports, nil
}

// DeleteReport removes the owner's report. Unknown or foreign ids succeed.
func (s *analyzerService) DeleteReport(ctx context.Context, ownerID, reportID string) error {
	log := logger.WithOwner(s.log, ownerID).With(zap.String(logger.FieldReportID, reportID))

	if err := s.reportRepo.DeleteByOwnerAndID(ctx, ownerID, reportID); err != nil {
		log.Error("failed to delete report", zap.Error(err))
		return apperrors.Store("Failed to delete report", err)
	}

	log.Info("report deleted")
	return nil
}

func (s *analyzerService) InterviewQuestions(ctx context.Context, ownerID, resumeText, jobText string) (*models.InterviewResult, error) {
	if strings.TrimSpace(resumeText) == "" || strings.TrimSpace(jobText) == "" {
		return nil, apperrors.Validation("resume and job are required")
	}

	result, err := s.engine.InterviewQuestions(ctx, resumeText, jobText)
	if err != nil {
		logger.WithOwner(s.log, ownerID).Error("failed to generate questions", zap.Error(err))
		return nil, asEngineError(err)
	}
	return result, nil
}

func (s *analyzerService) Chat(ctx context.Context, ownerID, message, chatContext string) (*models.ChatResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, apperrors.Validation("message is required")
	}

	result, err := s.engine.ChatReply(ctx, message, chatContext)
	if err != nil {
		logger.WithOwner(s.log, ownerID).Error("chat failed", zap.Error(err))
		return nil, asEngineError(err)
	}
	return result, nil
}

func asEngineError(err error) error {
	if apperrors.Is(err, apperrors.KindEngineUnavailable) {
		return err
	}
	return apperrors.EngineUnavailable("analysis engine request failed", err)
}
