package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"g1-quiz-service/internal/config"
	"g1-quiz-service/internal/domain"
	infrapg "g1-quiz-service/internal/infra/postgres"
	"g1-quiz-service/internal/questions"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
)

// NewSeedCmd loads a JSON question file into the Postgres bank. Records
// are validated with the same rules the adapter applies at fetch time,
// so a bad row fails the seed instead of poisoning the bank.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load questions from a JSON file into the question bank",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, file)
		},
	}
	cmd.Flags().StringVar(&file, "file", "questions.json", "path to the question JSON file")
	return cmd
}

func runSeed(ctx context.Context, configPath, file string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	var records []domain.Question
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse %s: %w", file, err)
	}
	for i, q := range records {
		// seed files carry no ids; assign positional ones for validation
		if q.ID == 0 {
			q.ID = i + 1
		}
		if err := questions.Validate(q); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	bank := infrapg.NewBank(pool)
	for i, q := range records {
		if err := bank.InsertQuestion(ctx, q); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	log.Printf("seeded %d questions from %s", len(records), file)
	return nil
}
