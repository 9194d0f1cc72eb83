package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-selector/internal/gateway"
	"github.com/spigell/resume-selector/internal/logger"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Check the model backend and list its models",
	Run: func(_ *cobra.Command, _ []string) {
		listModels()
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func listModels() {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	gw, err := newGateway(ctx, config.Gateway, logger)
	if err != nil {
		logger.Fatal("creating a model gateway", zap.Error(err))
	}

	if err := gw.Ping(ctx); err != nil {
		logger.Fatal("model backend is unreachable", zap.String("provider", gw.Provider()), zap.Error(err))
	}

	models, err := gw.ListModels(ctx)
	if err != nil {
		logger.Fatal("listing models", zap.Error(err))
	}

	fmt.Printf("%s is reachable, %d models available\n", gw.Provider(), len(models))
	for _, name := range models {
		marker := " "
		if gateway.HasModel([]string{name}, config.Gateway.Model) {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, name)
	}
}
