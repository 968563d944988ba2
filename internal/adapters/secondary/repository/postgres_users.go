package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jupiterclapton/inkwell/internal/core/domain"
)

// DTO interne : tampon entre la base et le domaine.
type sqlUser struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	ImageURL     string    `db:"image_url"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

type PostgresUserRepo struct {
	db *pgxpool.Pool
}

// NewPostgresUserRepo reçoit un *pgxpool.Pool déjà configuré (tracer compris).
func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{db: pool}
}

func (r *PostgresUserRepo) Save(ctx context.Context, user *domain.User) error {
	q := `
		INSERT INTO users (id, name, username, email, image_url, password_hash, created_at, updated_at)
		VALUES (@id, @name, @username, @email, @image_url, @password_hash, @created_at, @updated_at)
	`

	args := pgx.NamedArgs{
		"id":            user.ID,
		"name":          user.Name,
		"username":      user.Username,
		"email":         user.Email,
		"image_url":     user.ImageURL,
		"password_hash": user.PasswordHash,
		"created_at":    user.CreatedAt,
		"updated_at":    user.UpdatedAt,
	}

	if _, err := r.db.Exec(ctx, q, args); err != nil {
		return r.handleError(err)
	}
	return nil
}

func (r *PostgresUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	q := `SELECT id, name, username, email, image_url, password_hash, created_at, updated_at FROM users WHERE id = $1`

	var u sqlUser
	err := r.db.QueryRow(ctx, q, id).Scan(
		&u.ID, &u.Name, &u.Username, &u.Email, &u.ImageURL, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound // Traduction technique -> Domaine
		}
		return nil, fmt.Errorf("db: get by id: %w", err)
	}

	return r.toDomain(&u), nil
}

// GetByLogin cherche par email OU username. Les deux colonnes sont stockées
// normalisées, donc on normalise le login des deux façons et on matche l'une ou l'autre.
func (r *PostgresUserRepo) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	q := `
		SELECT id, name, username, email, image_url, password_hash, created_at, updated_at
		FROM users
		WHERE email = $1 OR username = $2
	`

	var u sqlUser
	err := r.db.QueryRow(ctx, q, domain.NormalizeEmail(login), domain.NormalizeUsername(login)).Scan(
		&u.ID, &u.Name, &u.Username, &u.Email, &u.ImageURL, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("db: get by login: %w", err)
	}

	return r.toDomain(&u), nil
}

func (r *PostgresUserRepo) Update(ctx context.Context, user *domain.User) error {
	q := `
		UPDATE users
		SET name = @name, username = @username, email = @email,
		    image_url = @image_url, password_hash = @password_hash, updated_at = @updated_at
		WHERE id = @id
	`
	args := pgx.NamedArgs{
		"id":            user.ID,
		"name":          user.Name,
		"username":      user.Username,
		"email":         user.Email,
		"image_url":     user.ImageURL,
		"password_hash": user.PasswordHash,
		"updated_at":    time.Now().UTC(),
	}

	tag, err := r.db.Exec(ctx, q, args)
	if err != nil {
		return r.handleError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *PostgresUserRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// --- HELPERS ---

func (r *PostgresUserRepo) toDomain(u *sqlUser) *domain.User {
	return &domain.User{
		ID:           u.ID,
		Name:         u.Name,
		Username:     u.Username,
		Email:        u.Email,
		ImageURL:     u.ImageURL,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// handleError traduit les codes d'erreur PostgreSQL en erreurs du Domaine.
func (r *PostgresUserRepo) handleError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Code 23505 = Unique Violation. Le nom de contrainte dit quelle clé a collé.
		if pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "username") {
				return domain.ErrUsernameTaken
			}
			return domain.ErrEmailAlreadyExists
		}
	}
	return err
}
