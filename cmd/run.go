package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-selector/internal/agents"
	"github.com/spigell/resume-selector/internal/candidate"
	"github.com/spigell/resume-selector/internal/export"
	"github.com/spigell/resume-selector/internal/loader"
	"github.com/spigell/resume-selector/internal/logger"
	"github.com/spigell/resume-selector/internal/metrics"
	"github.com/spigell/resume-selector/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] RESUME...",
	Short: "Screen resumes against a job description and export the ranking",
	Long: "Screen resumes against a job description and export the ranking.\n" +
		"RESUME is a .txt, .md, .pdf or .docx file, or a directory containing such files.",
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		run(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("jd", "", "file with the job description (required)")
	runCmd.Flags().StringP("output", "o", "", "results file (default is resume_analysis_results.json)")
	runCmd.Flags().StringP("model", "m", "", "model to use, overrides gateway.model")
	runCmd.Flags().IntP("concurrency", "c", 0, "resumes processed at once, overrides processing.max-concurrent")
	runCmd.Flags().BoolP("interactive", "i", false, "choose a model interactively when the configured one is not available")

	runCmd.MarkFlagRequired("jd")

	viper.BindPFlag("export.path", runCmd.Flags().Lookup("output"))
	viper.BindPFlag("gateway.model", runCmd.Flags().Lookup("model"))
	viper.BindPFlag("processing.max-concurrent", runCmd.Flags().Lookup("concurrency"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resume-selector", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	jdPath, _ := cmd.Flags().GetString("jd")
	jobDescription, err := loader.Load(jdPath)
	if err != nil {
		logger.Fatal("loading the job description", zap.Error(err))
	}

	paths, err := loader.Expand(args)
	if err != nil {
		logger.Fatal("collecting resume files", zap.Error(err))
	}

	items := loader.LoadAll(paths, logger)
	if len(items) == 0 {
		logger.Fatal("exiting", zap.String("reason", "no resumes could be loaded"), zap.Strings("paths", args))
	}
	logger.Info("resumes loaded", zap.Int("count", len(items)), zap.Int("skipped", len(paths)-len(items)))

	gw, err := newGateway(ctx, config.Gateway, logger)
	if err != nil {
		logger.Fatal("creating a model gateway", zap.Error(err))
	}

	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		model, err := chooseModel(ctx, gw, config.Gateway.Model, promptSelect)
		if err != nil {
			logger.Fatal("choosing a model", zap.Error(err))
		}
		config.Gateway.Model = model
	}

	prompts, err := agents.LoadPrompts(promptsDir(config))
	if err != nil {
		logger.Fatal("loading prompts", zap.Error(err))
	}

	policy, err := candidate.ParsePolicy(config.Processing.RecommendationPolicy)
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	collector := metrics.New()
	orchestrator := pipeline.New(pipeline.Config{
		Model:         config.Gateway.Model,
		MaxConcurrent: config.Processing.MaxConcurrent,
		MaxRetries:    config.Gateway.MaxRetries,
		RetryDelay:    config.Gateway.RetryDelay,
		MaxLogLength:  config.Gateway.MaxLogLength,
		Assembler: candidate.Assembler{
			MaxSkills:    config.Processing.MaxSkills,
			MaxQuestions: config.Processing.MaxQuestions,
			Policy:       policy,
		},
	}, pipeline.Deps{
		Gateway: gw,
		Prompts: prompts,
		Logger:  logger,
		Metrics: collector,
	})

	job := orchestrator.Start(ctx, items, jobDescription)
	for p := range job.Progress() {
		logger.Info("progress", zap.Int("completed", p.Completed), zap.Int("total", p.Total), zap.String("current", p.Label))
	}

	outcome := <-job.Done()
	if outcome.Err != nil {
		logger.Fatal("screening failed",
			zap.Error(outcome.Err),
			zap.String("hint", "check that the model backend is running and the model is pulled, or use --interactive"),
		)
	}
	result := outcome.Result

	if result.Reported() == 0 {
		logger.Warn("no candidates could be assessed", zap.Strings("skipped", result.Skipped))
	}

	if err := printRanking(os.Stdout, result); err != nil {
		logger.Error("printing the ranking", zap.Error(err))
	}

	doc := export.FromResult(result, time.Now())
	sinks, err := publishResults(ctx, config.Export, doc)
	if err != nil {
		logger.Fatal("exporting results", zap.Error(err))
	}
	for _, sink := range sinks {
		logger.Info("results exported", zap.String("sink", sink.Name()), zap.Int("candidates", len(doc.Results)))
	}

	if config.Metrics != nil && config.Metrics.Textfile != "" {
		if err := collector.WriteTextfile(config.Metrics.Textfile); err != nil {
			logger.Warn("writing metrics textfile", zap.Error(err))
		}
	}
}

func promptsDir(config *Config) string {
	if config.Prompts == nil {
		return ""
	}
	return config.Prompts.Dir
}

// publishResults writes doc to every configured sink. Sink connections are
// closed before it returns.
func publishResults(ctx context.Context, cfg *ExportConfig, doc export.Document) ([]export.Sink, error) {
	sinks, closeSinks := exportSinks(cfg)
	defer closeSinks()

	return sinks, export.Publish(ctx, doc, cfg.Validate, sinks...)
}

func exportSinks(cfg *ExportConfig) ([]export.Sink, func()) {
	sinks := []export.Sink{export.FileSink{Path: cfg.Path}}

	if cfg.Redis == nil || cfg.Redis.Addr == "" {
		return sinks, func() {}
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	sinks = append(sinks, export.RedisSink{Client: client, Key: cfg.Redis.Key})

	return sinks, func() { _ = client.Close() }
}

// printRanking writes the ranked candidates as a table.
func printRanking(w io.Writer, result *pipeline.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "RANK\tSCORE\tRECOMMENDATION\tNAME\tFILE")
	for i, r := range result.Reports {
		fmt.Fprintf(tw, "%d\t%.1f\t%s\t%s\t%s\n", i+1, r.Score, r.Recommendation, r.Name, r.Filename)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n%d of %d resumes assessed with %s\n", result.Reported(), result.Total, result.Model)
	return err
}
