package handlers

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-analyzer/internal/apperrors"
	"alfredoptarigan/resume-analyzer/internal/middleware"
	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/services"
)

const (
	resumeFormField = "resume"
	jobFormField    = "job"
)

type AnalyzeHandler struct {
	analyzer    services.AnalyzerService
	maxFileSize int64
}

func NewAnalyzeHandler(analyzer services.AnalyzerService, maxFileSize int64) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer:    analyzer,
		maxFileSize: maxFileSize,
	}
}

// HandleAnalyze handles POST /analyze
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile(resumeFormField)
	if err != nil {
		return apperrors.Validation("No resume file uploaded")
	}

	if fileHeader.Size > h.maxFileSize {
		return apperrors.PayloadTooLarge(
			fmt.Sprintf("Resume file too large. Max size: %d bytes", h.maxFileSize))
	}

	upload, err := h.readUpload(fileHeader)
	if err != nil {
		return err
	}

	resp, err := h.analyzer.Analyze(c.UserContext(), middleware.SubjectID(c), upload, c.FormValue(jobFormField))
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

func (h *AnalyzeHandler) readUpload(fileHeader *multipart.FileHeader) (*models.Upload, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, apperrors.Validation("Failed to read uploaded resume")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		return nil, apperrors.Validation("Failed to read uploaded resume")
	}
	if int64(len(data)) > h.maxFileSize {
		return nil, apperrors.PayloadTooLarge(
			fmt.Sprintf("Resume file too large. Max size: %d bytes", h.maxFileSize))
	}

	return &models.Upload{
		Filename:  fileHeader.Filename,
		MediaType: fileHeader.Header.Get(fiber.HeaderContentType),
		Data:      data,
	}, nil
}
