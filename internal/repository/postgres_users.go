package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minhngvn/cinema-booking-api/internal/domain"
)

type PostgresUserRepository struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{
		db: db,
	}
}

// CreateWithToken inserts the user and its activation token in one
// transaction so that a half-registered user without a token can never exist.
func (p *PostgresUserRepository) CreateWithToken(
	ctx context.Context,
	user *domain.User,
	tokenFn func(*domain.User) (*domain.Token, error)) (*domain.Token, error) {

	var token *domain.Token

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO users (first_name, last_name, email, password_hash)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, activated, version
		`

		err := tx.QueryRow(
			ctx,
			query,
			user.FirstName,
			user.LastName,
			user.Email,
			user.Password.Hash).Scan(&user.ID, &user.CreatedAt, &user.Activated, &user.Version)

		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
				return domain.ErrUserAlreadyExists
			}

			return err
		}

		token, err = tokenFn(user)
		if err != nil {
			return err
		}

		query = `
			INSERT INTO tokens (hash, user_id, expiry, scope)
			VALUES ($1, $2, $3, $4)
		`

		_, err = tx.Exec(ctx, query, token.Hash, token.UserId, token.Expiry, token.Scope)

		return err
	})

	if err != nil {
		return nil, err
	}

	return token, nil
}

func (p *PostgresUserRepository) GetByToken(
	ctx context.Context,
	tokenHash []byte,
	tokenScope string) (*domain.User, error) {

	query := `
		SELECT u.id, u.first_name, u.last_name, u.email, u.password_hash, u.activated, u.version, u.created_at
		FROM users u
		JOIN tokens t ON u.id = t.user_id
		WHERE t.hash = $1 AND t.scope = $2 AND t.expiry > now()
	`

	return p.queryUser(ctx, query, tokenHash, tokenScope)
}

func (p *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, first_name, last_name, email, password_hash, activated, version, created_at
		FROM users
		WHERE email = $1
	`

	return p.queryUser(ctx, query, email)
}

func (p *PostgresUserRepository) GetById(ctx context.Context, id int) (*domain.User, error) {
	query := `
		SELECT id, first_name, last_name, email, password_hash, activated, version, created_at
		FROM users
		WHERE id = $1
	`

	return p.queryUser(ctx, query, id)
}

func (p *PostgresUserRepository) queryUser(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var user domain.User

	err := p.db.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Password.Hash,
		&user.Activated,
		&user.Version,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &user, nil
}

func (p *PostgresUserRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, updated_at = now(), version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version
	`

	err := p.db.QueryRow(
		ctx,
		query,
		user.FirstName,
		user.LastName,
		user.ID,
		user.Version).Scan(&user.Version)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrEditConflict
		}

		return err
	}

	return nil
}

func (p *PostgresUserRepository) ActivateUser(ctx context.Context, user *domain.User) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			UPDATE users
			SET activated = true, updated_at = now(), version = version + 1
			WHERE id = $1 AND version = $2
			RETURNING version
		`

		err := tx.QueryRow(ctx, query, user.ID, user.Version).Scan(&user.Version)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrEditConflict
			}

			return err
		}

		query = `DELETE FROM tokens WHERE scope = $1 AND user_id = $2`

		_, err = tx.Exec(ctx, query, domain.UserActivationScope, user.ID)

		return err
	})
}
