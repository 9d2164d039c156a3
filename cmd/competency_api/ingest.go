package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/competency-model/internal/config"
	"github.com/jonathan/competency-model/internal/db"
	"github.com/jonathan/competency-model/internal/ingestion"
)

var (
	ingestOccupations string
	ingestSkills      string
	ingestAbilities   string
	ingestRowLimit    int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load O*NET spreadsheets into the catalog",
	Long:  `Read the occupation, skills and abilities workbooks, join them and reload the job_competencies table.`,
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestOccupations, "occupations", "data/OccupationData.xlsx", "Path to the occupation data workbook")
	ingestCmd.Flags().StringVar(&ingestSkills, "skills", "data/Skills.xlsx", "Path to the skills workbook")
	ingestCmd.Flags().StringVar(&ingestAbilities, "abilities", "data/Abilities.xlsx", "Path to the abilities workbook")
	ingestCmd.Flags().IntVar(&ingestRowLimit, "row-limit", 0, "Maximum data rows read per workbook (0 = all)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	pipeline := ingestion.NewPipeline(database, ingestion.Options{
		OccupationPath: ingestOccupations,
		SkillsPath:     ingestSkills,
		AbilitiesPath:  ingestAbilities,
		RowLimit:       ingestRowLimit,
	})

	count, err := pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	fmt.Printf("Loaded %d competency records\n", count)
	return nil
}
