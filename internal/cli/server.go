package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"g1-quiz-service/internal/assistant"
	"g1-quiz-service/internal/config"
	"g1-quiz-service/internal/domain"
	"g1-quiz-service/internal/infra/memory"
	infrapg "g1-quiz-service/internal/infra/postgres"
	infraredis "g1-quiz-service/internal/infra/redis"
	"g1-quiz-service/internal/questions"
	transport "g1-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	cacheTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var bank questions.Bank = memory.NewStaticBank(sampleQuestions())
	if pool != nil {
		bank = infrapg.NewBank(pool)
	}
	if redisClient != nil {
		bank = infraredis.NewBank(redisClient, bank, redisTTL)
	} else {
		bank = questions.NewCachedBank(bank, cacheTTL)
	}

	var mistakes questions.MistakeStore = memory.NewMistakeStore()
	if pool != nil {
		mistakes = infrapg.NewMistakeStore(pool)
	} else if redisClient != nil {
		mistakes = infraredis.NewMistakeStore(redisClient)
	}

	source := questions.NewAdapter(bank, mistakes)

	var assistantClient *assistant.Client
	if cfg.Assistant.Endpoint != "" {
		assistantClient = assistant.New(cfg.Assistant.Endpoint, config.TTLDuration(cfg.Assistant.Timeout, 30*time.Second))
	}

	api := transport.NewAPI(source, assistantClient)
	wsHandler := transport.NewWSHandler(source)
	router := transport.NewRouter(api, wsHandler, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting g1 quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuestions seeds the in-memory fallback bank so practice modes
// work without Postgres. The simulation needs a seeded question bank;
// run the migrate and seed commands against a real database for that.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID: 1, Kind: domain.KindSigns,
			Text:    "What does a red octagonal sign mean?",
			OptionA: "Yield to oncoming traffic", OptionB: "Come to a complete stop",
			OptionC: "Slow down and proceed", OptionD: "No entry",
			CorrectOption: domain.OptionB, Category: "Regulatory signs",
			Explanation: "An octagonal red sign always means stop completely before the stop line.",
		},
		{
			ID: 2, Kind: domain.KindSigns,
			Text:    "A yellow diamond-shaped sign with a curved arrow warns of what?",
			OptionA: "A winding road ahead", OptionB: "A roundabout",
			OptionC: "A sharp curve ahead", OptionD: "A merge lane",
			CorrectOption: domain.OptionC, Category: "Warning signs",
			Explanation: "Diamond-shaped yellow signs warn of hazards; the curved arrow marks a sharp curve.",
		},
		{
			ID: 3, Kind: domain.KindSigns,
			Text:    "What does a white rectangular sign showing a number mean?",
			OptionA: "The highway exit number", OptionB: "The distance to the next town",
			OptionC: "The maximum legal speed", OptionD: "The route number",
			CorrectOption: domain.OptionC, Category: "Regulatory signs",
			Explanation: "White rectangular signs are regulatory; a number states the maximum speed limit.",
		},
		{
			ID: 4, Kind: domain.KindRules,
			Text:    "Within how many metres of a fire hydrant is parking prohibited?",
			OptionA: "1 metre", OptionB: "3 metres", OptionC: "5 metres", OptionD: "10 metres",
			CorrectOption: domain.OptionB, Category: "Parking rules",
			Explanation: "Ontario prohibits parking within 3 metres of a fire hydrant.",
		},
		{
			ID: 5, Kind: domain.KindRules,
			Text:    "When must you use your headlights?",
			OptionA: "Only after midnight", OptionB: "Between dusk and dawn and when visibility is under 150 m",
			OptionC: "Only on unlit roads", OptionD: "Whenever other drivers do",
			CorrectOption: domain.OptionB, Category: "Driving at night",
			Explanation: "Headlights are required from half an hour before sunset to half an hour after sunrise, and whenever you cannot see 150 m ahead.",
		},
		{
			ID: 6, Kind: domain.KindRules,
			Text:    "What must a G1 driver's blood alcohol level be while driving?",
			OptionA: "Under 0.05", OptionB: "Under 0.08", OptionC: "Zero", OptionD: "Under 0.02",
			CorrectOption: domain.OptionC, Category: "Graduated licensing",
			Explanation: "Novice drivers in the graduated licensing system must have a zero blood alcohol level.",
		},
	}
}
