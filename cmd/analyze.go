package cmd

import (
	"encoding/json"
	"log"
	"os"

	"github.com/spigell/resume-ranker/internal/logger"
	"github.com/spigell/resume-ranker/internal/scoring"
	"github.com/spigell/resume-ranker/internal/vocab"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze --job <file|->",
	Short: "Print the requirements derived from a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		analyze(cmd)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringP("job", "J", "", "file with the job description, '-' reads stdin")
	analyzeCmd.MarkFlagRequired("job")
}

func analyze(cmd *cobra.Command) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	description, err := readJob(cmd.Flag("job").Value.String())
	if err != nil {
		logger.Fatal("reading job description", zap.Error(err))
	}

	set, err := vocab.Decode(config.Vocabulary)
	if err != nil {
		logger.Fatal("loading vocabulary", zap.Error(err))
	}
	matchers, err := set.Compile()
	if err != nil {
		logger.Fatal("compiling vocabulary", zap.Error(err))
	}

	requirements := scoring.New(matchers, logger).AnalyzeJob(description)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(requirements); err != nil {
		logger.Fatal("printing requirements", zap.Error(err))
	}
}
