package domain

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"
)

// MaxNameLength is the longest image name, in characters, that may be stored.
const MaxNameLength = 100

// Image represents an uploaded image record.
// Src and AuthorID are fixed at creation; only Name is mutable.
type Image struct {
	ID        string
	Src       string
	Name      string
	AuthorID  string
	CreatedAt time.Time
}

// Entry is an image together with its resolved author, as shown in the gallery.
type Entry struct {
	Image  *Image
	Author Author
}

type ImageRepository interface {
	// ListAll returns every image record.
	ListAll(ctx context.Context) ([]*Image, error)

	// Search returns images whose name contains query, ignoring case.
	// An empty query behaves like ListAll.
	Search(ctx context.Context, query string) ([]*Image, error)

	// FindByID returns nil, nil when no record has the given id.
	FindByID(ctx context.Context, id string) (*Image, error)

	Create(ctx context.Context, src, name, authorID string) (*Image, error)

	// UpdateName returns the number of records matched (0 or 1).
	UpdateName(ctx context.Context, id, newName string) (int64, error)
}

// NameLength counts characters, not bytes.
func NameLength(name string) int {
	return utf8.RuneCountInString(name)
}

// CheckNameLength reports ErrNameTooLong for names over MaxNameLength.
func CheckNameLength(name string) error {
	if NameLength(name) > MaxNameLength {
		return NewError(ErrNameTooLong, fmt.Sprintf("Image name exceeds %d characters", MaxNameLength))
	}
	return nil
}
