package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-analyzer/internal/apperrors"
	"alfredoptarigan/resume-analyzer/internal/middleware"
	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/services"
)

// AssistantHandler proxies the follow-up engine calls. Nothing is persisted.
type AssistantHandler struct {
	analyzer services.AnalyzerService
}

func NewAssistantHandler(analyzer services.AnalyzerService) *AssistantHandler {
	return &AssistantHandler{
		analyzer: analyzer,
	}
}

// HandleInterviewQuestions handles POST /interview-questions
func (h *AssistantHandler) HandleInterviewQuestions(c *fiber.Ctx) error {
	var req models.InterviewQuestionsRequest

	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("Invalid request payload")
	}

	result, err := h.analyzer.InterviewQuestions(c.UserContext(), middleware.SubjectID(c), req.Resume, req.Job)
	if err != nil {
		return err
	}

	return c.JSON(result)
}

// HandleChat handles POST /chat
func (h *AssistantHandler) HandleChat(c *fiber.Ctx) error {
	var req models.ChatRequest

	if err := c.BodyParser(&req); err != nil {
		return apperrors.Validation("Invalid request payload")
	}

	result, err := h.analyzer.Chat(c.UserContext(), middleware.SubjectID(c), req.Message, req.Context)
	if err != nil {
		return err
	}

	return c.JSON(result)
}
