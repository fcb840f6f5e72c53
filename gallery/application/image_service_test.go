package application

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kaistout4/ImageGallerySPA/gallery/domain"
	"github.com/kaistout4/ImageGallerySPA/gallery/persistence"
	"github.com/kaistout4/ImageGallerySPA/shared/db/sqlite"
)

func testImage(name, author string) *domain.Image {
	return &domain.Image{ID: domain.NewID(), Src: "/uploads/" + name + ".png", Name: name, AuthorID: author}
}

func TestImageService_RenameImage(t *testing.T) {
	cat := testImage("Cat", "alice")

	tests := []struct {
		name         string
		caller       string
		id           string
		newName      string
		wantErr      error
		wantStorage  bool
		raceOnUpdate bool
	}{
		{
			name:    "owner renames",
			caller:  "alice",
			id:      cat.ID,
			newName: "Cats",
		},
		{
			name:    "empty name",
			caller:  "alice",
			id:      cat.ID,
			newName: "",
			wantErr: domain.ErrValidation,
		},
		{
			name:    "name too long",
			caller:  "alice",
			id:      cat.ID,
			newName: strings.Repeat("n", domain.MaxNameLength+1),
			wantErr: domain.ErrNameTooLong,
		},
		{
			name:    "malformed id",
			caller:  "alice",
			id:      "not-an-object-id",
			newName: "Cats",
			wantErr: domain.ErrNotFound,
		},
		{
			name:        "missing image",
			caller:      "alice",
			id:          domain.NewID(),
			newName:     "Cats",
			wantErr:     domain.ErrNotFound,
			wantStorage: true,
		},
		{
			name:        "non-owner",
			caller:      "bob",
			id:          cat.ID,
			newName:     "Cats",
			wantErr:     domain.ErrForbidden,
			wantStorage: true,
		},
		{
			name:        "anonymous caller",
			caller:      "",
			id:          cat.ID,
			newName:     "Cats",
			wantErr:     domain.ErrForbidden,
			wantStorage: true,
		},
		{
			name:         "deleted before update",
			caller:       "alice",
			id:           cat.ID,
			newName:      "Cats",
			wantErr:      domain.ErrNotFound,
			wantStorage:  true,
			raceOnUpdate: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored := *cat
			repo := newFakeImageRepository(&stored)
			repo.deleteBeforeUpdate = tt.raceOnUpdate
			svc := NewImageService(repo, newFakeUserDirectory(nil))

			err := svc.RenameImage(context.Background(), tt.caller, tt.id, tt.newName)

			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("RenameImage() error = %v", err)
				}
				if stored.Name != tt.newName {
					t.Errorf("Name = %q, want %q", stored.Name, tt.newName)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("RenameImage() error = %v, want %v", err, tt.wantErr)
			}
			if !tt.raceOnUpdate && stored.Name != "Cat" {
				t.Errorf("Name = %q after failed rename, want unchanged", stored.Name)
			}
			if !tt.wantStorage && repo.storageCalls() != 0 {
				t.Errorf("storage touched %d times for a rejected request", repo.storageCalls())
			}
		})
	}
}

func TestImageService_RenameLongNameIsIdempotent(t *testing.T) {
	cat := testImage("Cat", "alice")
	repo := newFakeImageRepository(cat)
	svc := NewImageService(repo, newFakeUserDirectory(nil))

	long := strings.Repeat("x", domain.MaxNameLength+5)
	for i := 0; i < 3; i++ {
		err := svc.RenameImage(context.Background(), "alice", cat.ID, long)
		if !errors.Is(err, domain.ErrNameTooLong) {
			t.Fatalf("attempt %d: error = %v, want ErrNameTooLong", i, err)
		}
	}

	if cat.Name != "Cat" {
		t.Errorf("Name = %q, want %q", cat.Name, "Cat")
	}
}

func TestImageService_CreateImage(t *testing.T) {
	tests := []struct {
		name    string
		caller  string
		src     string
		imgName string
		wantErr error
	}{
		{"success", "alice", "/uploads/x.png", "Cat", nil},
		{"anonymous", "", "/uploads/x.png", "Cat", domain.ErrUnauthorized},
		{"anonymous without file", "", "", "", domain.ErrUnauthorized},
		{"no file", "alice", "", "Cat", domain.ErrValidation},
		{"no name", "alice", "/uploads/x.png", "", domain.ErrValidation},
		{"name too long", "alice", "/uploads/x.png", strings.Repeat("n", 101), domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeImageRepository()
			svc := NewImageService(repo, newFakeUserDirectory(nil))

			img, err := svc.CreateImage(context.Background(), tt.caller, tt.src, tt.imgName)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CreateImage() error = %v, want %v", err, tt.wantErr)
				}
				if len(repo.images) != 0 {
					t.Errorf("%d images stored after failed create", len(repo.images))
				}
				return
			}

			if err != nil {
				t.Fatalf("CreateImage() error = %v", err)
			}
			if img.AuthorID != tt.caller {
				t.Errorf("AuthorID = %q, want %q", img.AuthorID, tt.caller)
			}
		})
	}
}

func TestImageService_ListImagesEnrichesOncePerAuthor(t *testing.T) {
	repo := newFakeImageRepository(
		testImage("Sunset", "alice"),
		testImage("Cat", "bob"),
		testImage("Dog", "alice"),
		testImage("Bird", "alice"),
		testImage("Fish", "carol"),
	)
	users := newFakeUserDirectory(map[string]string{"alice": "Alice", "bob": "Bob"})
	users.failing["carol"] = true

	svc := NewImageService(repo, users)

	entries, err := svc.ListImages(context.Background(), "")
	if err != nil {
		t.Fatalf("ListImages() error = %v", err)
	}

	if len(entries) != 5 {
		t.Fatalf("len(entries) = %d, want 5", len(entries))
	}

	for id, n := range users.calls {
		if n != 1 {
			t.Errorf("author %s looked up %d times, want 1", id, n)
		}
	}
	if len(users.calls) != 3 {
		t.Errorf("looked up %d authors, want 3", len(users.calls))
	}

	want := map[string]domain.Author{
		"Sunset": {ID: "alice", DisplayName: "Alice"},
		"Cat":    {ID: "bob", DisplayName: "Bob"},
		"Fish":   {ID: "carol", DisplayName: domain.UnknownDisplayName},
	}
	for _, e := range entries {
		if w, ok := want[e.Image.Name]; ok && e.Author != w {
			t.Errorf("%s author = %+v, want %+v", e.Image.Name, e.Author, w)
		}
	}
}

func TestImageService_ListImagesUnknownAuthor(t *testing.T) {
	repo := newFakeImageRepository(testImage("Cat", "ghost"))
	svc := NewImageService(repo, newFakeUserDirectory(map[string]string{}))

	entries, err := svc.ListImages(context.Background(), "")
	if err != nil {
		t.Fatalf("ListImages() error = %v", err)
	}

	if entries[0].Author != domain.UnknownAuthor("ghost") {
		t.Errorf("Author = %+v, want placeholder", entries[0].Author)
	}
}

func TestImageService_ListImagesQueryDispatch(t *testing.T) {
	repo := newFakeImageRepository(testImage("Sunset", "alice"), testImage("Cat", "bob"))
	svc := NewImageService(repo, newFakeUserDirectory(nil))

	entries, err := svc.ListImages(context.Background(), "SUN")
	if err != nil {
		t.Fatalf("ListImages() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Image.Name != "Sunset" {
		t.Errorf("ListImages(SUN) = %d entries, want Sunset only", len(entries))
	}

	if _, err := svc.ListImages(context.Background(), ""); err != nil {
		t.Fatalf("ListImages() error = %v", err)
	}

	if repo.calls["Search"] != 1 || repo.calls["ListAll"] != 1 {
		t.Errorf("calls = %v, want one Search and one ListAll", repo.calls)
	}
}

func TestImageService_ListImagesStorageFailure(t *testing.T) {
	repo := newFakeImageRepository()
	repo.listErr = domain.StorageError("list images", errors.New("disk on fire"))
	svc := NewImageService(repo, newFakeUserDirectory(nil))

	_, err := svc.ListImages(context.Background(), "")
	if !errors.Is(err, domain.ErrStorage) {
		t.Errorf("ListImages() error = %v, want ErrStorage", err)
	}
}

func TestImageService_GetImage(t *testing.T) {
	cat := testImage("Cat", "alice")
	repo := newFakeImageRepository(cat)
	svc := NewImageService(repo, newFakeUserDirectory(map[string]string{"alice": "Alice"}))
	ctx := context.Background()

	entry, err := svc.GetImage(ctx, cat.ID)
	if err != nil {
		t.Fatalf("GetImage() error = %v", err)
	}
	if entry.Author.DisplayName != "Alice" {
		t.Errorf("DisplayName = %q, want %q", entry.Author.DisplayName, "Alice")
	}

	if _, err := svc.GetImage(ctx, "bad"); !errors.Is(err, domain.ErrInvalidIdentifier) {
		t.Errorf("GetImage(bad) error = %v, want ErrInvalidIdentifier", err)
	}

	if _, err := svc.GetImage(ctx, domain.NewID()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetImage(missing) error = %v, want ErrNotFound", err)
	}
}

func TestImageService_OwnershipScenario(t *testing.T) {
	database := sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: filepath.Join(t.TempDir(), "gallery.db")})
	if err := database.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	svc := NewImageService(
		persistence.NewImageRepository(database.DB()),
		persistence.NewUserDirectory(database.DB()),
	)

	img, err := svc.CreateImage(ctx, "alice", "/uploads/x.png", "Cat")
	if err != nil {
		t.Fatalf("CreateImage() error = %v", err)
	}

	entries, err := svc.ListImages(ctx, "")
	if err != nil {
		t.Fatalf("ListImages() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Image.Name != "Cat" || entries[0].Author.ID != "alice" {
		t.Fatalf("ListImages() = %+v, want Cat by alice", entries)
	}

	if err := svc.RenameImage(ctx, "bob", img.ID, "Mine now"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("RenameImage(bob) error = %v, want ErrForbidden", err)
	}

	if err := svc.RenameImage(ctx, "alice", img.ID, "Cats"); err != nil {
		t.Fatalf("RenameImage(alice) error = %v", err)
	}

	entry, err := svc.GetImage(ctx, img.ID)
	if err != nil {
		t.Fatalf("GetImage() error = %v", err)
	}
	if entry.Image.Name != "Cats" {
		t.Errorf("Name = %q, want %q", entry.Image.Name, "Cats")
	}
}

func TestDistinctAuthors(t *testing.T) {
	images := []*domain.Image{
		testImage("a", "alice"),
		testImage("b", "bob"),
		testImage("c", "alice"),
	}

	got := strings.Join(distinctAuthors(images), ",")
	if got != "alice,bob" {
		t.Errorf("distinctAuthors() = %q, want %q", got, "alice,bob")
	}
}

func TestIsOwner(t *testing.T) {
	img := testImage("Cat", "alice")

	tests := []struct {
		caller string
		want   bool
	}{
		{"alice", true},
		{"bob", false},
		{"", false},
		{"Alice", false},
	}

	for _, tt := range tests {
		if got := isOwner(tt.caller, img); got != tt.want {
			t.Errorf("isOwner(%q) = %v, want %v", tt.caller, got, tt.want)
		}
	}
}
