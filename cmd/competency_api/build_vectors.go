package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/competency-model/internal/catalog"
	"github.com/jonathan/competency-model/internal/config"
	"github.com/jonathan/competency-model/internal/db"
	"github.com/jonathan/competency-model/internal/embedding"
	"github.com/jonathan/competency-model/internal/vecindex"
)

var buildVectorsCmd = &cobra.Command{
	Use:   "build-vectors",
	Short: "Rebuild the occupation vector index",
	Long:  `Embed one composite description per occupation in the catalog and upsert the vectors into the nearest-neighbor index.`,
	RunE:  runBuildVectors,
}

func init() {
	rootCmd.AddCommand(buildVectorsCmd)
}

func runBuildVectors(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	index := vecindex.NewPostgres(database.Pool(), cfg.Dimension)
	if err := index.EnsureSchema(ctx); err != nil {
		return err
	}

	provider, err := embedding.NewGeminiProvider(ctx, cfg.APIKey, cfg.EmbeddingModel, cfg.Dimension)
	if err != nil {
		return err
	}
	defer provider.Close()

	builder := catalog.NewBuilder(database, provider, index, cfg.TextTopK, cfg.UpsertBatchSize)
	count, err := builder.Build(ctx)
	if err != nil {
		return fmt.Errorf("vector build failed: %w", err)
	}

	fmt.Printf("Successfully created %d job competency vectors\n", count)
	return nil
}
