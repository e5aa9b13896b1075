package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/exaring/otelpgx"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxstd "github.com/jackc/pgx/v5/stdlib"
	"github.com/minhngvn/cinema-booking-api/internal/auth"
	"github.com/minhngvn/cinema-booking-api/internal/domain"
	"github.com/minhngvn/cinema-booking-api/internal/mailer"
	"github.com/minhngvn/cinema-booking-api/internal/payment"
	"github.com/minhngvn/cinema-booking-api/internal/queue"
	"github.com/minhngvn/cinema-booking-api/internal/repository"
	appvalidator "github.com/minhngvn/cinema-booking-api/internal/validator"
	"github.com/minhngvn/cinema-booking-api/internal/vcs"
	"github.com/minhngvn/cinema-booking-api/migrations"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	"github.com/stripe/stripe-go/v82"
)

var (
	version = vcs.Version()
)

type Application struct {
	config         Config
	logger         *slog.Logger
	db             *pgxpool.Pool
	redis          redis.UniversalClient
	validator      *validator.Validate
	mailer         mailer.Mailer
	sessionManager *scs.SessionManager
	tokens         *auth.TokenManager

	userRepo     domain.UserRepository
	tokenRepo    domain.TokenRepository
	movieRepo    domain.MovieRepository
	showtimeRepo domain.ShowtimeRepository
	seatRepo     domain.SeatRepository
	paymentRepo  domain.PaymentRepository
	bookingRepo  domain.BookingRepository

	paymentProvider domain.PaymentProvider
	events          queue.Publisher
}

type Config struct {
	Port             int
	Env              string
	OtelCollectorUrl string
	DB               DBConfig
	Redis            RedisConfig
	SMTP             SMTPConfig
	Stripe           StripeConfig
	JWT              JWTConfig
	AMQP             AMQPConfig
	Limiter          LimiterConfig
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessUrl    string
	FailureUrl    string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type AMQPConfig struct {
	URL string
}

type LimiterConfig struct {
	RPS     float64
	Burst   int
	Enabled bool
}

func NewApp(
	cfg Config,
	logger *slog.Logger,
	db *pgxpool.Pool,
	redisClient redis.UniversalClient,
	validator *validator.Validate,
	mailer mailer.Mailer,
	sessionManager *scs.SessionManager,
	tokens *auth.TokenManager,
	userRepo domain.UserRepository,
	tokenRepo domain.TokenRepository,
	movieRepo domain.MovieRepository,
	showtimeRepo domain.ShowtimeRepository,
	seatRepo domain.SeatRepository,
	paymentRepo domain.PaymentRepository,
	bookingRepo domain.BookingRepository,
	paymentProvider domain.PaymentProvider,
	events queue.Publisher) *Application {

	return &Application{
		config:          cfg,
		logger:          logger,
		db:              db,
		redis:           redisClient,
		validator:       validator,
		mailer:          mailer,
		sessionManager:  sessionManager,
		tokens:          tokens,
		userRepo:        userRepo,
		tokenRepo:       tokenRepo,
		movieRepo:       movieRepo,
		showtimeRepo:    showtimeRepo,
		seatRepo:        seatRepo,
		paymentRepo:     paymentRepo,
		bookingRepo:     bookingRepo,
		paymentProvider: paymentProvider,
		events:          events,
	}
}

func Run() error {
	var cfg Config

	flag.IntVar(&cfg.Port, "port", 3000, "server port")
	flag.StringVar(&cfg.Env, "env", "dev", "Environment (dev|staging|prod)")
	flag.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", "", "OpenTelemetry collector URL")

	flag.StringVar(&cfg.DB.DSN, "db-dsn", "", "PostgreSQL DSN")
	flag.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	flag.StringVar(&cfg.Redis.URL, "redis-url", "", "Redis URL")
	flag.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.SMTP.Host, "smtp-host", "sandbox.smtp.mailtrap.io", "SMTP host")
	flag.IntVar(&cfg.SMTP.Port, "smtp-port", 2525, "SMTP port")
	flag.StringVar(&cfg.SMTP.Username, "smtp-username", "", "SMTP username")
	flag.StringVar(&cfg.SMTP.Password, "smtp-password", "", "SMTP password")
	flag.StringVar(&cfg.SMTP.Sender, "smtp-sender", "CineBook <no-reply@cinebook.example.com>", "SMTP sender")

	flag.StringVar(&cfg.Stripe.SecretKey, "stripe-key", "", "Stripe secret key")
	flag.StringVar(&cfg.Stripe.WebhookSecret, "stripe-webhook-secret", "", "Stripe webhook secret")
	flag.StringVar(&cfg.Stripe.SuccessUrl, "stripe-success-url", "https://example.com/success.html", "Stripe payment success page")
	flag.StringVar(&cfg.Stripe.FailureUrl, "stripe-failure-url", "https://example.com/failure.html", "Stripe payment failure page")

	flag.StringVar(&cfg.JWT.Secret, "jwt-secret", "", "JWT signing secret")
	flag.DurationVar(&cfg.JWT.TTL, "jwt-ttl", 24*time.Hour, "JWT access token lifetime")

	flag.StringVar(&cfg.AMQP.URL, "amqp-url", "", "RabbitMQ URL (empty disables event publishing)")

	flag.Float64Var(&cfg.Limiter.RPS, "limiter-rps", 10, "Rate limiter maximum requests per second")
	flag.IntVar(&cfg.Limiter.Burst, "limiter-burst", 20, "Rate limiter maximum burst")
	flag.BoolVar(&cfg.Limiter.Enabled, "limiter-enabled", true, "Enable rate limiter")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	stripe.Key = cfg.Stripe.SecretKey

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	validator := appvalidator.NewValidator()

	err := RunMigrations(cfg.DB.DSN)
	if err != nil {
		return err
	}

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	userRepo := repository.NewPostgresUserRepository(db)
	tokenRepo := repository.NewPostgresTokenRepository(db)
	movieRepo := repository.NewPostgresMovieRepository(db)
	showtimeRepo := repository.NewPostgresShowtimeRepository(db)
	seatRepo := repository.NewPostgresSeatRepository(db)
	paymentRepo := repository.NewPostgresPaymentRepository(db)
	bookingRepo := repository.NewPostgresBookingRepository(db)

	stripeProvider := payment.NewStripePaymentProvider(cfg.Stripe.FailureUrl, cfg.Stripe.SuccessUrl)

	var events queue.Publisher
	if cfg.AMQP.URL != "" {
		events = queue.NewAMQPPublisher(cfg.AMQP.URL)
	}

	app := NewApp(
		cfg,
		logger,
		db,
		redisClient,
		validator,
		mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender),
		NewSessionManager(redisClient),
		auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TTL),
		userRepo,
		tokenRepo,
		movieRepo,
		showtimeRepo,
		seatRepo,
		paymentRepo,
		bookingRepo,
		stripeProvider,
		events,
	)

	shutdownTelemetry, err := app.InitTelemetry()
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	return app.serve()
}

func NewSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	err = redisotel.InstrumentTracing(rdb)
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// RunMigrations applies any pending schema migrations embedded in the binary.
func RunMigrations(dsn string) error {
	config, err := pgx.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("failed to parse DSN: %w", err)
	}

	db := pgxstd.OpenDB(*config)
	defer db.Close()

	driver, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil {
		return fmt.Errorf("pgx migration driver error: %w", err)
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("migration source error: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx", driver)
	if err != nil {
		return fmt.Errorf("migrate.New error: %w", err)
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

func (app *Application) serve() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(chimiddleware.RequestID)
	r.Use(otelchi.Middleware("cinema-booking-api", otelchi.WithChiRoutes(r)))
	r.Use(app.requestLogger)
	r.Use(app.recoverPanic)
	r.Use(app.rateLimit)
	r.Use(app.sessionManager.LoadAndSave)
	r.Use(app.ensureGuestSession)

	r.Get("/health", app.GetHealth)

	r.Post("/users", app.RegisterUser)
	r.Put("/users/activation", app.ActivateUser)
	r.Post("/tokens/authentication", app.Login)

	r.With(app.requireAuthentication).Route("/users/me", func(r chi.Router) {
		r.Get("/", app.GetCurrentUser)
		r.Patch("/", app.UpdateUser)
	})

	r.Route("/movies", func(r chi.Router) {
		r.Get("/", app.GetMovies)
		r.Get("/{movieId}", app.GetMovieById)
		r.Get("/{movieId}/showtimes", app.GetShowtimesByMovieAndDate)
	})

	r.Route("/showtimes/{showtimeId}", func(r chi.Router) {
		r.Get("/seats", app.GetSeatMapByShowtime)
		r.Post("/hold", app.CreateHoldHandler)
		r.Delete("/hold", app.DeleteHoldHandler)
		r.With(app.requireAuthentication, app.requireActivatedUser).Post("/bookings", app.CreateBookingHandler)
	})

	r.With(app.requireAuthentication).Route("/users/me/bookings", func(r chi.Router) {
		r.Get("/", app.GetUserBookingsHandler)
		r.Get("/{bookingId}", app.GetUserBookingById)
		r.Get("/{bookingId}/qr", app.GetBookingTicket)
	})

	r.With(app.requireAuthentication, app.requireActivatedUser).Post("/checkout/session", app.CreateCheckoutSessionHandler)

	r.Post("/webhook", app.StripeWebhookHandler)

	return r
}
