package main

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"alfredoptarigan/resume-analyzer/internal/config"
	"alfredoptarigan/resume-analyzer/internal/logger"
	"alfredoptarigan/resume-analyzer/internal/services"
)

// evaluate_local smoke-tests an engine deployment against files on disk.
// Nothing is written to the report store.

var (
	resumePath string
	jobPath    string
	jobText    string
	withExtras bool
	debug      bool

	rootCmd = &cobra.Command{
		Use:          "evaluate_local",
		Short:        "Run a local résumé through the configured analysis engine",
		SilenceUsage: true,
		RunE:         runEvaluate,
	}

	extractCmd = &cobra.Command{
		Use:   "extract",
		Short: "Print the text extracted from the résumé file",
		RunE:  runExtract,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&resumePath, "resume", "r", "", "path to the résumé (PDF or text)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "verbose/debug output")
	rootCmd.Flags().StringVarP(&jobPath, "job-file", "f", "", "path to a file holding the job description")
	rootCmd.Flags().StringVarP(&jobText, "job", "j", "", "job description text")
	rootCmd.Flags().BoolVar(&withExtras, "questions", false, "also request interview questions")

	_ = rootCmd.MarkPersistentFlagRequired("resume")
	rootCmd.MarkFlagsMutuallyExclusive("job", "job-file")

	rootCmd.AddCommand(extractCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func runExtract(cmd *cobra.Command, _ []string) error {
	text, err := extractResume()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	job, err := loadJob()
	if err != nil {
		return err
	}

	cfg := config.Load()
	log, err := logger.New(false, debug)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	engine, err := newEngine(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}

	resumeText, err := extractResume()
	if err != nil {
		return err
	}
	log.Info("résumé extracted", zap.String("file", resumePath), zap.Int("chars", len(resumeText)))

	output := map[string]any{}

	result, err := engine.Evaluate(cmd.Context(), resumeText, job)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}
	output["analysis"] = result

	if withExtras {
		questions, err := engine.InterviewQuestions(cmd.Context(), resumeText, job)
		if err != nil {
			return fmt.Errorf("interview questions failed: %w", err)
		}
		output["interview"] = questions
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func newEngine(ctx context.Context, cfg *config.Config, log *zap.Logger) (services.AnalysisClient, error) {
	if cfg.Engine.Provider == config.EngineProviderGemini {
		return services.NewGeminiService(ctx, services.GeminiOptions{
			APIKey:     cfg.Gemini.APIKey,
			Model:      cfg.Gemini.Model,
			Timeout:    cfg.Engine.Timeout,
			MaxRetries: cfg.Engine.MaxRetries,
		}, log)
	}

	return services.NewEngineClient(services.EngineOptions{
		BaseURL:    cfg.Engine.BaseURL,
		Timeout:    cfg.Engine.Timeout,
		MaxRetries: cfg.Engine.MaxRetries,
		RetryWait:  cfg.Engine.RetryWait,
	}, log), nil
}

func extractResume() (string, error) {
	data, err := os.ReadFile(resumePath)
	if err != nil {
		return "", fmt.Errorf("failed to read résumé: %w", err)
	}

	text, err := services.NewTextExtractor().Extract(data, mime.TypeByExtension(strings.ToLower(filepath.Ext(resumePath))))
	if err != nil {
		return "", fmt.Errorf("failed to extract résumé text: %w", err)
	}
	return text, nil
}

func loadJob() (string, error) {
	if jobPath != "" {
		data, err := os.ReadFile(jobPath)
		if err != nil {
			return "", fmt.Errorf("failed to read job description: %w", err)
		}
		jobText = string(data)
	}

	if strings.TrimSpace(jobText) == "" {
		return "", fmt.Errorf("a job description is required (--job or --job-file)")
	}
	return jobText, nil
}
