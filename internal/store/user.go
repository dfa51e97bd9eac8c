package store

import (
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"

	"sce-storefront/internal/models"
)

// UserDB is the Postgres-backed UserStore.
type UserDB struct {
	DB *sqlx.DB
}

func NewUserDB(db *sqlx.DB) *UserDB {
	return &UserDB{DB: db}
}

const userSelect = `SELECT id, username, email, password_hash, reset_token, reset_token_expires, created_at
                    FROM users`

func (s *UserDB) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.DB.Get(&user, userSelect+` WHERE username = $1`, username)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserDB) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.DB.Get(&user, userSelect+` WHERE email = $1`, email)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserDB) Create(user *models.User) error {
	query := `INSERT INTO users (username, email, password_hash)
	          VALUES ($1, $2, $3) RETURNING id, created_at`
	return s.DB.Get(user, query, user.Username, user.Email, user.PasswordHash)
}

func (s *UserDB) SetResetToken(userID int, token string, expires time.Time) error {
	query := `UPDATE users SET reset_token = $1, reset_token_expires = $2 WHERE id = $3`
	_, err := s.DB.Exec(query, token, expires, userID)
	return err
}

func (s *UserDB) UpdatePassword(userID int, passwordHash string) error {
	query := `UPDATE users SET password_hash = $1, reset_token = NULL, reset_token_expires = NULL
	          WHERE id = $2`
	_, err := s.DB.Exec(query, passwordHash, userID)
	return err
}
