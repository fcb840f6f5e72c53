package persistence

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/kaistout4/ImageGallerySPA/shared/db/sqlite"
)

// setupTestDB opens a migrated database in a temporary directory
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "gallery.db"),
	})
	if err := database.Connect(); err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return database.DB()
}
