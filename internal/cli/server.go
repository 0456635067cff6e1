package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quizblox-service/internal/app"
	"quizblox-service/internal/config"
	"quizblox-service/internal/infra/local"
	"quizblox-service/internal/infra/memory"
	"quizblox-service/internal/infra/opentdb"
	infrapg "quizblox-service/internal/infra/postgres"
	infraredis "quizblox-service/internal/infra/redis"
	transport "quizblox-service/internal/transport/http"
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
	sessionTTL := config.TTLDuration(cfg.Redis.TTL, 24*time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	// Session container: Redis when configured, per-process memory otherwise.
	memStore := memory.NewSessionStore()
	var sessions interface {
		app.SessionStore
		transport.IdentityStore
	} = memStore
	if redisClient != nil {
		sessions = infraredis.NewSessionStore(redisClient, sessionTTL)
	}

	// Local question bank, cached between quiz starts.
	bankPath := cfg.Quiz.BankPath
	if bankPath == "" {
		bankPath = "data/questions.json"
	}
	bankTTL := config.TTLDuration(cfg.Quiz.BankTTL, 10*time.Minute)
	bank := memory.NewQuestionBank(local.NewBankFile(bankPath), bankTTL)

	// Remote trivia source with its category list, cached in Redis when
	// available.
	trivia := opentdb.NewClient(cfg.Trivia.BaseURL, config.TTLDuration(cfg.Trivia.Timeout, 10*time.Second))
	var categories app.CategorySource = trivia
	if redisClient != nil {
		categoryTTL := config.TTLDuration(cfg.Trivia.CategoryTTL, time.Hour)
		categories = infraredis.NewCategoryCache(redisClient, trivia, categoryTTL)
	}

	// Identity and history: Postgres when configured, memory otherwise.
	var users app.UserStore
	var history app.HistoryStore
	if pool != nil {
		users = infrapg.NewUserStore(pool)
		history = infrapg.NewHistoryStore(pool)
	} else {
		memUsers := memory.NewUserStore()
		users = memUsers
		history = memory.NewHistoryStore(memUsers)
	}

	quizService := app.NewQuizService(sessions, bank, trivia, categories, history)
	authService := app.NewAuthService(users)
	handler := transport.NewHandler(quizService, authService, sessions)
	wsHandler := transport.NewWSHandler(quizService, sessions)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quizblox service on :%s", finalPort)
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
