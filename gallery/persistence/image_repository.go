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

var _ domain.ImageRepository = (*SQLiteImageRepository)(nil)

// SQLiteImageRepository implements domain.ImageRepository using SQL database (SQLite)
type SQLiteImageRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewImageRepository creates a new SQLiteImageRepository from a standard sql.DB
func NewImageRepository(sqlDB *sql.DB) *SQLiteImageRepository {
	return &SQLiteImageRepository{
		db:  sqlDB,
		now: func() time.Time { return time.Now().UTC() },
	}
}

const listImagesQuery = `
	SELECT id, src, name, author_id, created_at
	FROM images
	ORDER BY created_at, id
`

// ListAll returns every image, oldest first
func (r *SQLiteImageRepository) ListAll(ctx context.Context) ([]*domain.Image, error) {
	return r.queryImages(ctx, "list images", listImagesQuery)
}

// contains_fold is registered by the sqlite package; query characters are literal.
const searchImagesQuery = `
	SELECT id, src, name, author_id, created_at
	FROM images
	WHERE contains_fold(name, ?)
	ORDER BY created_at, id
`

// Search returns images whose name contains query under Unicode case folding
func (r *SQLiteImageRepository) Search(ctx context.Context, query string) ([]*domain.Image, error) {
	if query == "" {
		return r.ListAll(ctx)
	}

	return r.queryImages(ctx, "search images", searchImagesQuery, query)
}

const getImageQuery = `
	SELECT id, src, name, author_id, created_at
	FROM images
	WHERE id = ?
`

// FindByID retrieves a single image; a missing record yields nil, nil
func (r *SQLiteImageRepository) FindByID(ctx context.Context, id string) (*domain.Image, error) {
	key, ok := domain.ParseID(id)
	if !ok {
		return nil, domain.NewError(domain.ErrInvalidIdentifier, fmt.Sprintf("%q is not a valid image id", id))
	}

	var row imageRow
	err := db.GetExecutor(ctx, r.db).QueryRowContext(ctx, getImageQuery, key).Scan(
		&row.ID,
		&row.Src,
		&row.Name,
		&row.AuthorID,
		&row.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, domain.StorageError("get image", err)
	}

	return row.toDomain(), nil
}

const insertImageQuery = `
	INSERT INTO images (id, src, name, author_id, created_at)
	VALUES (?, ?, ?, ?, ?)
`

// Create stores a new image record and returns it with its assigned id
func (r *SQLiteImageRepository) Create(ctx context.Context, src, name, authorID string) (*domain.Image, error) {
	if src == "" {
		return nil, domain.NewError(domain.ErrValidation, "image src cannot be empty")
	}

	if authorID == "" {
		return nil, domain.NewError(domain.ErrValidation, "image author cannot be empty")
	}

	if domain.NameLength(name) > domain.MaxNameLength {
		return nil, domain.NewError(domain.ErrValidation, fmt.Sprintf("Image name exceeds %d characters", domain.MaxNameLength))
	}

	img := &domain.Image{
		ID:        domain.NewID(),
		Src:       src,
		Name:      name,
		AuthorID:  authorID,
		CreatedAt: r.now(),
	}

	_, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, insertImageQuery,
		img.ID,
		img.Src,
		img.Name,
		img.AuthorID,
		img.CreatedAt,
	)
	if err != nil {
		return nil, domain.StorageError("insert image record", err)
	}

	return img, nil
}

const updateImageNameQuery = `
	UPDATE images SET name = ? WHERE id = ?
`

// UpdateName renames an image and reports how many records matched
func (r *SQLiteImageRepository) UpdateName(ctx context.Context, id, newName string) (int64, error) {
	key, ok := domain.ParseID(id)
	if !ok {
		return 0, domain.NewError(domain.ErrInvalidIdentifier, fmt.Sprintf("%q is not a valid image id", id))
	}

	if domain.NameLength(newName) > domain.MaxNameLength {
		return 0, domain.NewError(domain.ErrValidation, fmt.Sprintf("Image name exceeds %d characters", domain.MaxNameLength))
	}

	res, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, updateImageNameQuery, newName, key)
	if err != nil {
		return 0, domain.StorageError("update image name", err)
	}

	// SQLite reports changed rows; an UPDATE to the same value still counts as a change.
	matched, err := res.RowsAffected()
	if err != nil {
		return 0, domain.StorageError("update image name", err)
	}

	return matched, nil
}

func (r *SQLiteImageRepository) queryImages(ctx context.Context, op, query string, args ...any) ([]*domain.Image, error) {
	rows, err := db.GetExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.StorageError(op, err)
	}
	defer rows.Close()

	images := []*domain.Image{}
	for rows.Next() {
		var row imageRow
		if err := rows.Scan(&row.ID, &row.Src, &row.Name, &row.AuthorID, &row.CreatedAt); err != nil {
			return nil, domain.StorageError(op, err)
		}
		images = append(images, row.toDomain())
	}

	if err := rows.Err(); err != nil {
		return nil, domain.StorageError(op, err)
	}

	return images, nil
}

// imageRow is a private struct used to scan database rows
type imageRow struct {
	ID        string       `db:"id"`
	Src       string       `db:"src"`
	Name      string       `db:"name"`
	AuthorID  string       `db:"author_id"`
	CreatedAt sql.NullTime `db:"created_at"`
}

func (ir *imageRow) toDomain() *domain.Image {
	img := &domain.Image{
		ID:       ir.ID,
		Src:      ir.Src,
		Name:     ir.Name,
		AuthorID: ir.AuthorID,
	}

	if ir.CreatedAt.Valid {
		img.CreatedAt = ir.CreatedAt.Time
	}

	return img
}
