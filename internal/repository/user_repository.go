package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/ssekandi/psms-api/internal/models"
)

// UserRepository stores staff accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a user and fills in its id.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	const query = `
        INSERT INTO users (first_name, last_name, email, password_hash, role, placeholder)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at`
	return r.db.QueryRowxContext(ctx, query,
		user.FirstName, user.LastName, user.Email, user.PasswordHash, user.Role, user.Placeholder,
	).Scan(&user.ID, &user.CreatedAt)
}

// FindByID returns one user.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail returns one user by login email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = $1`, email); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListTeachers returns teacher accounts ordered by id. Placeholder rows
// (imported names with no login) are skipped when includePlaceholders is
// false; the timetable generator excludes them so lessons only go to real
// staff.
func (r *UserRepository) ListTeachers(ctx context.Context, includePlaceholders bool) ([]models.User, error) {
	query := `SELECT * FROM users WHERE role = $1`
	if !includePlaceholders {
		query += ` AND placeholder = FALSE`
	}
	query += ` ORDER BY id`
	var teachers []models.User
	if err := r.db.SelectContext(ctx, &teachers, query, models.RoleTeacher); err != nil {
		return nil, err
	}
	return teachers, nil
}
