package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the authenticated routes. auth runs before every
// handler registered here.
func RegisterRoutes(
	router fiber.Router,
	auth fiber.Handler,
	analyze *AnalyzeHandler,
	history *HistoryHandler,
	assistant *AssistantHandler,
) {
	router.Post("/analyze", auth, analyze.HandleAnalyze)
	router.Get("/history", auth, history.HandleList)
	router.Delete("/history/:id", auth, history.HandleDelete)
	router.Post("/interview-questions", auth, assistant.HandleInterviewQuestions)
	router.Post("/chat", auth, assistant.HandleChat)
}

// Endpoints lists the authenticated routes for the index page.
func Endpoints() []string {
	return []string{
		"POST /analyze",
		"GET /history",
		"DELETE /history/:id",
		"POST /interview-questions",
		"POST /chat",
	}
}
