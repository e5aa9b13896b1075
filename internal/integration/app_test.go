package integration_test

import (
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minhngvn/cinema-booking-api/internal/app"
	"github.com/minhngvn/cinema-booking-api/internal/auth"
	"github.com/minhngvn/cinema-booking-api/internal/mailer"
	"github.com/minhngvn/cinema-booking-api/internal/payment"
	"github.com/minhngvn/cinema-booking-api/internal/queue"
	"github.com/minhngvn/cinema-booking-api/internal/repository"
	appvalidator "github.com/minhngvn/cinema-booking-api/internal/validator"
	"github.com/redis/go-redis/v9"
)

type TestApp struct {
	App             *app.Application
	DB              *pgxpool.Pool
	Redis           redis.UniversalClient
	Mailer          *mailer.MockMailer
	PaymentProvider *payment.MockPaymentProvider
	Events          *queue.MockPublisher
	Tokens          *auth.TokenManager
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	validator := appvalidator.NewValidator()

	mockMailer := mailer.NewMockMailer()

	paymentProvider := &payment.MockPaymentProvider{}

	events := queue.NewMockPublisher()

	tokens := auth.NewTokenManager("integration-test-secret", time.Hour)

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	sessionManager := app.NewSessionManager(redisClient)

	userRepo := repository.NewPostgresUserRepository(db)
	tokenRepo := repository.NewPostgresTokenRepository(db)
	movieRepo := repository.NewPostgresMovieRepository(db)
	showtimeRepo := repository.NewPostgresShowtimeRepository(db)
	seatRepo := repository.NewPostgresSeatRepository(db)
	paymentRepo := repository.NewPostgresPaymentRepository(db)
	bookingRepo := repository.NewPostgresBookingRepository(db)

	application := app.NewApp(
		cfg,
		logger,
		db,
		redisClient,
		validator,
		mockMailer,
		sessionManager,
		tokens,
		userRepo,
		tokenRepo,
		movieRepo,
		showtimeRepo,
		seatRepo,
		paymentRepo,
		bookingRepo,
		paymentProvider,
		events,
	)

	return &TestApp{
		App:             application,
		DB:              db,
		Redis:           redisClient,
		Mailer:          mockMailer,
		PaymentProvider: paymentProvider,
		Events:          events,
		Tokens:          tokens,
	}, nil
}
