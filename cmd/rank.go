package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spigell/resume-ranker/internal/ai/gemini"
	"github.com/spigell/resume-ranker/internal/extraction"
	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/pipeline"
	"github.com/spigell/resume-ranker/internal/ranking"
	"github.com/spigell/resume-ranker/internal/report"
	"github.com/spigell/resume-ranker/internal/scoring"
	"github.com/spigell/resume-ranker/internal/secrets"
	"github.com/spigell/resume-ranker/internal/store"
	"github.com/spigell/resume-ranker/internal/vocab"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptDetails = "Show candidate details"
	PromptDump    = "Dump results to file"
	PromptExport  = "Export results to XLSX"
	PromptExit    = "Exit"
	PromptBack    = "back"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptDetails, PromptDump, PromptExport, PromptExit},
}

var rankCmd = &cobra.Command{
	Use:   "rank --job <file|-> <resume.pdf>...",
	Short: "Rank PDF résumés against a job description",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rank(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringP("job", "J", "", "file with the job description, '-' reads stdin")
	rankCmd.Flags().BoolP("yes", "y", false, "print the ranking and exit without the interactive menu")
	rankCmd.Flags().StringP("export", "x", "", "write the ranking to this XLSX file")

	rankCmd.MarkFlagRequired("job")
}

// rank is the main command for the cli.
func rank(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resume-ranker", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	description, err := readJob(cmd.Flag("job").Value.String())
	if err != nil {
		logger.Fatal("reading job description", zap.Error(err))
	}

	files, err := readFiles(args)
	if err != nil {
		logger.Fatal("reading résumés", zap.Error(err))
	}

	set, err := vocab.Decode(config.Vocabulary)
	if err != nil {
		logger.Fatal("loading vocabulary", zap.Error(err))
	}
	matchers, err := set.Compile()
	if err != nil {
		logger.Fatal("compiling vocabulary", zap.Error(err))
	}

	st, err := store.Open(ctx, config.Store.Driver, config.Store.DSN)
	if err != nil {
		logger.Fatal("opening store", zap.Error(err), zap.String("driver", config.Store.Driver))
	}
	defer st.Close()

	orchestrator := pipeline.New(st, pipeline.Deps{
		Extractor: extraction.New(matchers, logger, prepareDecoders(ctx, config.Extraction, logger)...),
		Scorer:    scoring.New(matchers, logger),
		Logger:    logger,
	}, pipeline.Config{PollInterval: config.PollInterval})
	defer orchestrator.Close()

	job, err := orchestrator.CreateJob(ctx, description)
	if err != nil {
		logger.Fatal("creating job", zap.Error(err))
	}

	if _, err := orchestrator.Upload(ctx, job.ID, files); err != nil {
		logger.Fatal("uploading résumés", zap.Error(err), jobField(job.ID))
	}

	summary, err := orchestrator.Wait(ctx, job.ID, progressLogger(logger, job.ID))
	if err != nil {
		logger.Fatal("waiting for results", zap.Error(err), jobField(job.ID))
	}

	logger.Info("job completed",
		jobField(job.ID),
		zap.Int("completed", summary.Completed),
		zap.Int("failed", summary.Failed),
	)

	rep, err := buildReport(ctx, st, job.ID)
	if err != nil {
		logger.Fatal("loading results", zap.Error(err))
	}

	if err := rep.WriteTable(os.Stdout); err != nil {
		logger.Fatal("printing results", zap.Error(err))
	}

	if path := cmd.Flag("export").Value.String(); path != "" {
		if err := exportXLSX(rep, path, logger); err != nil {
			logger.Fatal("exporting results", zap.Error(err))
		}
	}

	if len(rep.Ranked) == 0 {
		logger.Info("exiting", zap.String("reason", "no résumé was ranked"))
		return
	}

	if cmd.Flag("yes").Value.String() == "true" {
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, rep, config, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, rep *report.Report, config *Config, logger *zap.Logger) error {
	switch action {
	case PromptDetails:
		return showDetails(rep)
	case PromptDump:
		filename, err := rep.DumpToTmpFile(config.Report.Output)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExport:
		name := fmt.Sprintf("ranking_%s.xlsx", rep.Job.ID)
		return exportXLSX(rep, filepath.Join(config.Report.Output, name), logger)
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// buildReport reloads the job and its résumés so the report carries the final job status.
func buildReport(ctx context.Context, st store.Store, jobID string) (*report.Report, error) {
	job, err := st.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	resumes, err := st.ListResumes(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return report.Build(job, resumes), nil
}

func showDetails(rep *report.Report) error {
	for {
		items := make([]string, 0, len(rep.Ranked)+1)
		for _, e := range rep.Ranked {
			items = append(items, fmt.Sprintf("%d. %s / %d / %s", e.Rank, e.Name, e.Score, e.Fit))
		}

		candidatePrompt := promptui.Select{
			Label: "Choose a candidate and press ENTER",
			Items: append(items, PromptBack),
			Size:  10,
		}

		idx, selected, err := candidatePrompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptBack {
			return nil
		}

		if err := report.WriteDetails(os.Stdout, rep.Ranked[idx]); err != nil {
			return err
		}
	}
}

func exportXLSX(rep *report.Report, path string, logger *zap.Logger) error {
	saved, err := rep.WriteXLSX(path)
	if err != nil {
		return fmt.Errorf("export results to xlsx: %w", err)
	}
	logger.Info("exported results", zap.String("filename", saved))
	return nil
}

// prepareDecoders returns the PDF text decoder, followed by Gemini when it is enabled.
// A misconfigured Gemini decoder is skipped with a warning.
func prepareDecoders(ctx context.Context, cfg *ExtractionConfig, logger *zap.Logger) []extraction.TextDecoder {
	decoders := []extraction.TextDecoder{extraction.PDFDecoder{}}
	if cfg == nil || cfg.Gemini == nil || !cfg.Gemini.Enabled {
		return decoders
	}

	decoder, err := newGeminiDecoder(ctx, cfg.Gemini, logger)
	if err != nil {
		logger.Warn("skipping gemini decoder", zap.Error(err))
		return decoders
	}

	return append(decoders, decoder)
}

func newGeminiDecoder(ctx context.Context, cfg *GeminiConfig, logger *zap.Logger) (*gemini.Decoder, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.APIKey,
		Env:   "GEMINI_API_KEY",
		File:  cfg.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set extraction.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Model)
	if err != nil {
		return nil, err
	}

	return gemini.NewDecoder(generator, logger, cfg.MaxLogLength), nil
}

// progressLogger logs the counts whenever they change.
func progressLogger(log *zap.Logger, jobID string) func(ranking.Summary) {
	var last ranking.Summary
	return func(s ranking.Summary) {
		if s == last {
			return
		}
		last = s
		log.Info("processing résumés",
			jobField(jobID),
			zap.Int("total", s.Total),
			zap.Int("pending", s.Pending),
			zap.Int("processing", s.Processing),
			zap.Int("completed", s.Completed),
			zap.Int("failed", s.Failed),
		)
	}
}

func jobField(id string) zap.Field {
	return zap.String(logger.FieldJobID, id)
}

func readJob(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("job description file is required")
	}

	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read job description: %w", err)
	}

	return string(data), nil
}

func readFiles(paths []string) ([]pipeline.File, error) {
	files := make([]pipeline.File, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		files = append(files, pipeline.File{Name: filepath.Base(path), Data: data})
	}
	return files, nil
}

// redacted returns a copy of config safe for logging.
func redacted(config *Config) *Config {
	c := *config
	if config.Extraction != nil && config.Extraction.Gemini != nil && config.Extraction.Gemini.APIKey != "" {
		g := *config.Extraction.Gemini
		g.APIKey = "***"
		c.Extraction = &ExtractionConfig{Gemini: &g}
	}
	return &c
}
