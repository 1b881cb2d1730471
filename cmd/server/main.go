package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/commonsfund/ledger/internal/api"
	"github.com/commonsfund/ledger/internal/auth"
	"github.com/commonsfund/ledger/internal/invoice"
	"github.com/commonsfund/ledger/internal/repository"
	"github.com/commonsfund/ledger/internal/seed"
	"github.com/commonsfund/ledger/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	logging.Setup()

	port := getEnv("PORT", "8080")
	dbPath := getEnv("DB_PATH", "ledger.db")
	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	slog.Info("initializing database", "path", dbPath)
	db, err := repository.InitDB(dbPath)
	if err != nil {
		slog.Error("failed to init db", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Repositories.
	collectiveRepo := repository.NewCollectiveRepo(db)
	txnRepo := repository.NewTransactionRepo(db)
	memberRepo := repository.NewMemberRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	expenseRepo := repository.NewExpenseRepo(db)
	updateRepo := repository.NewUpdateRepo(db)
	paymentMethodRepo := repository.NewPaymentMethodRepo(db)

	// Services.
	invoiceSvc := invoice.NewService(collectiveRepo, txnRepo, paymentMethodRepo)
	jwtManager := auth.NewJWTManager(jwtSecret, 24*time.Hour)
	authMW := api.NewAuthMiddleware(jwtManager, memberRepo)

	// Seed fixture data when the database is empty.
	if fixturePath := getEnv("FIXTURE_PATH", "testdata/fixture.json"); fixturePath != "" {
		seedSvc := seed.NewService(collectiveRepo, txnRepo, memberRepo,
			paymentMethodRepo, orderRepo, expenseRepo, updateRepo)
		if _, err := seedSvc.LoadFile(fixturePath); err != nil {
			slog.Warn("fixture seeding skipped", "path", fixturePath, "error", err)
		}
	}

	router := api.NewRouter(api.Deps{
		CollectiveRepo: collectiveRepo,
		TxnRepo:        txnRepo,
		MemberRepo:     memberRepo,
		OrderRepo:      orderRepo,
		ExpenseRepo:    expenseRepo,
		UpdateRepo:     updateRepo,
		InvoiceSvc:     invoiceSvc,
		Auth:           authMW,
	})

	slog.Info("collectives ledger query service",
		"address", ":"+port,
		"api_base", "http://localhost:"+port+"/api/v1",
	)

	if err := http.ListenAndServe(":"+port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
