package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"alfredoptarigan/resume-analyzer/internal/apperrors"
	"alfredoptarigan/resume-analyzer/internal/logger"
	"alfredoptarigan/resume-analyzer/internal/models"
)

// contentGenerator is the subset of *genai.Models the service calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type GeminiOptions struct {
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

type geminiService struct {
	models        contentGenerator
	modelName     string
	timeout       time.Duration
	maxRetries    int
	promptBuilder *PromptBuilder
	log           *zap.Logger
}

// NewGeminiService answers AnalysisClient calls by prompting Gemini directly.
func NewGeminiService(ctx context.Context, opts GeminiOptions, log *zap.Logger) (AnalysisClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return newGeminiService(client.Models, opts, log), nil
}

func newGeminiService(models contentGenerator, opts GeminiOptions, log *zap.Logger) *geminiService {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &geminiService{
		models:        models,
		modelName:     model,
		timeout:       opts.Timeout,
		maxRetries:    opts.MaxRetries,
		promptBuilder: NewPromptBuilder(),
		log:           logger.OrNop(log).With(zap.String(logger.FieldEngine, "gemini")),
	}
}

// Evaluate implements AnalysisClient.
func (g *geminiService) Evaluate(ctx context.Context, resumeText, jobText string) (*models.AnalysisResult, error) {
	response, err := g.generateTextWithRetry(ctx,
		g.promptBuilder.EvaluationSystemPrompt(),
		g.promptBuilder.BuildEvaluationPrompt(resumeText, jobText),
		0.2, "application/json")
	if err != nil {
		return nil, err
	}

	return parseAnalysisResult(extractJSON(response))
}

// InterviewQuestions implements AnalysisClient.
func (g *geminiService) InterviewQuestions(ctx context.Context, resumeText, jobText string) (*models.InterviewResult, error) {
	response, err := g.generateTextWithRetry(ctx, "",
		g.promptBuilder.BuildInterviewQuestionsPrompt(resumeText, jobText),
		0.7, "")
	if err != nil {
		return nil, err
	}

	return &models.InterviewResult{Questions: strings.TrimSpace(response)}, nil
}

// ChatReply implements AnalysisClient.
func (g *geminiService) ChatReply(ctx context.Context, message, chatContext string) (*models.ChatResult, error) {
	response, err := g.generateTextWithRetry(ctx,
		g.promptBuilder.ChatSystemPrompt(),
		g.promptBuilder.BuildChatPrompt(message, chatContext),
		0.7, "")
	if err != nil {
		return nil, err
	}

	return &models.ChatResult{Reply: strings.TrimSpace(response)}, nil
}

func (g *geminiService) generateText(ctx context.Context, systemPrompt, prompt string, temperature float32, mimeType string) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  4096,
		ResponseMIMEType: mimeType,
	}
	if systemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}

// generateTextWithRetry makes one attempt plus maxRetries more on failure.
func (g *geminiService) generateTextWithRetry(ctx context.Context, systemPrompt, prompt string, temperature float32, mimeType string) (string, error) {
	var lastErr error
	attempts := g.maxRetries + 1

	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := g.generateText(ctx, systemPrompt, prompt, temperature, mimeType)
		if err == nil {
			g.log.Debug("gemini responded",
				zap.Int("attempt", attempt),
				zap.String("body", logger.TruncateForLog(result, 200)),
			)
			return result, nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return "", apperrors.EngineUnavailable("analysis request cancelled", ctx.Err())
		}

		if attempt < attempts {
			g.log.Warn("gemini attempt failed, retrying", zap.Int("attempt", attempt), zap.Error(err))
		}
	}

	return "", apperrors.EngineUnavailable(fmt.Sprintf("gemini failed after %d attempts", attempts), lastErr)
}
