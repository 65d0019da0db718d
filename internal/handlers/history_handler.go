package handlers

import (
	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-analyzer/internal/middleware"
	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/services"
)

type HistoryHandler struct {
	analyzer services.AnalyzerService
}

func NewHistoryHandler(analyzer services.AnalyzerService) *HistoryHandler {
	return &HistoryHandler{
		analyzer: analyzer,
	}
}

// HandleList handles GET /history
func (h *HistoryHandler) HandleList(c *fiber.Ctx) error {
	reports, err := h.analyzer.History(c.UserContext(), middleware.SubjectID(c))
	if err != nil {
		return err
	}

	return c.JSON(reports)
}

// HandleDelete handles DELETE /history/:id
func (h *HistoryHandler) HandleDelete(c *fiber.Ctx) error {
	if err := h.analyzer.DeleteReport(c.UserContext(), middleware.SubjectID(c), c.Params("id")); err != nil {
		return err
	}

	return c.JSON(models.MessageResponse{
		Message: "Report deleted successfully",
	})
}
