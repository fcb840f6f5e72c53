package application

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/kaistout4/ImageGallerySPA/gallery/domain"
)

// fakeImageRepository is an in-memory domain.ImageRepository that counts calls
type fakeImageRepository struct {
	mu      sync.Mutex
	images  []*domain.Image
	calls   map[string]int
	listErr error

	// deleteBeforeUpdate simulates a record removed between lookup and write
	deleteBeforeUpdate bool
}

func newFakeImageRepository(images ...*domain.Image) *fakeImageRepository {
	return &fakeImageRepository{images: images, calls: map[string]int{}}
}

func (f *fakeImageRepository) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
}

func (f *fakeImageRepository) storageCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *fakeImageRepository) ListAll(ctx context.Context) ([]*domain.Image, error) {
	f.record("ListAll")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]*domain.Image{}, f.images...), nil
}

func (f *fakeImageRepository) Search(ctx context.Context, query string) ([]*domain.Image, error) {
	f.record("Search")
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*domain.Image
	for _, img := range f.images {
		if strings.Contains(strings.ToLower(img.Name), strings.ToLower(query)) {
			out = append(out, img)
		}
	}
	return out, nil
}

func (f *fakeImageRepository) FindByID(ctx context.Context, id string) (*domain.Image, error) {
	f.record("FindByID")
	if !domain.ValidID(id) {
		return nil, domain.NewError(domain.ErrInvalidIdentifier, "invalid id")
	}
	for _, img := range f.images {
		if img.ID == id {
			copied := *img
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeImageRepository) Create(ctx context.Context, src, name, authorID string) (*domain.Image, error) {
	f.record("Create")
	if domain.NameLength(name) > domain.MaxNameLength {
		return nil, domain.NewError(domain.ErrValidation, "name too long")
	}
	img := &domain.Image{ID: domain.NewID(), Src: src, Name: name, AuthorID: authorID}
	f.images = append(f.images, img)
	return img, nil
}

func (f *fakeImageRepository) UpdateName(ctx context.Context, id, newName string) (int64, error) {
	f.record("UpdateName")
	if f.deleteBeforeUpdate {
		f.images = nil
	}
	for _, img := range f.images {
		if img.ID == id {
			img.Name = newName
			return 1, nil
		}
	}
	return 0, nil
}

// fakeUserDirectory resolves from a map and fails for ids in failing
type fakeUserDirectory struct {
	mu      sync.Mutex
	users   map[string]string
	failing map[string]bool
	calls   map[string]int
}

func newFakeUserDirectory(users map[string]string) *fakeUserDirectory {
	return &fakeUserDirectory{users: users, failing: map[string]bool{}, calls: map[string]int{}}
}

func (f *fakeUserDirectory) GetUser(ctx context.Context, id string) (*domain.Author, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[id]++

	if f.failing[id] {
		return nil, errors.New("directory unavailable")
	}
	name, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return &domain.Author{ID: id, DisplayName: name}, nil
}

func (f *fakeUserDirectory) UpsertUser(ctx context.Context, a domain.Author) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[a.ID] = a.DisplayName
	return nil
}
