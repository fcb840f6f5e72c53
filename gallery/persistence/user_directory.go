package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kaistout4/ImageGallerySPA/gallery/domain"
	"github.com/kaistout4/ImageGallerySPA/shared/db"
)

var _ domain.UserDirectory = (*SQLiteUserDirectory)(nil)

// SQLiteUserDirectory resolves usernames to display names from the users table
type SQLiteUserDirectory struct {
	db *sql.DB
}

func NewUserDirectory(sqlDB *sql.DB) *SQLiteUserDirectory {
	return &SQLiteUserDirectory{
		db: sqlDB,
	}
}

const getUserQuery = `
	SELECT id, display_name
	FROM users
	WHERE id = ?
`

// GetUser returns nil, nil for unknown users
func (d *SQLiteUserDirectory) GetUser(ctx context.Context, id string) (*domain.Author, error) {
	if id == "" {
		return nil, nil
	}

	var a domain.Author
	err := db.GetExecutor(ctx, d.db).QueryRowContext(ctx, getUserQuery, id).Scan(&a.ID, &a.DisplayName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", id, err)
	}

	return &a, nil
}

const upsertUserQuery = `
	INSERT INTO users (id, display_name, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		display_name = excluded.display_name,
		updated_at = excluded.updated_at
`

// UpsertUser records or replaces the display name for a.ID
func (d *SQLiteUserDirectory) UpsertUser(ctx context.Context, a domain.Author) error {
	if a.ID == "" {
		return fmt.Errorf("user id cannot be empty")
	}
	if a.DisplayName == "" {
		return fmt.Errorf("display name cannot be empty")
	}

	_, err := db.GetExecutor(ctx, d.db).ExecContext(ctx, upsertUserQuery, a.ID, a.DisplayName, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", a.ID, err)
	}

	return nil
}

// UpsertUsers records every author or none of them. It joins a transaction
// already carried by ctx.
func (d *SQLiteUserDirectory) UpsertUsers(ctx context.Context, authors []domain.Author) error {
	return db.RunInTransaction(ctx, d.db, func(txCtx context.Context) error {
		for _, a := range authors {
			if err := d.UpsertUser(txCtx, a); err != nil {
				return err
			}
		}
		return nil
	})
}
