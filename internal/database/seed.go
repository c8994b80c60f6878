package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: a default
// admin user and a starter set of categories. It is a no-op when any
// users already exist.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (username, email, password_hash, role, bio)
		VALUES ($1, $2, $3, $4, $5)
	`, "admin", "admin@blog.local", string(hash), "admin", "Blog administrator")
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	categories := []struct{ name, slug string }{
		{"Design", "design"},
		{"Development", "development"},
		{"Technology", "technology"},
		{"Life", "life"},
	}
	for _, c := range categories {
		if _, err := db.Exec(
			`INSERT INTO categories (name, slug) VALUES ($1, $2)`,
			c.name, c.slug,
		); err != nil {
			return fmt.Errorf("seed insert category %q: %w", c.slug, err)
		}
	}

	slog.Info("database seeded with default admin user",
		"email", "admin@blog.local",
		"password", "admin123",
	)

	return nil
}
