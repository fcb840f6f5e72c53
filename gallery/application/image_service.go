package application

import (
	"context"

	"github.com/kaistout4/ImageGallerySPA/gallery/domain"
	"github.com/rs/zerolog/log"
)

// defaultLookupConcurrency bounds parallel user directory calls per listing
const defaultLookupConcurrency = 8

// ImageService is the validation and authorization boundary for image records
type ImageService struct {
	images domain.ImageRepository
	users  domain.UserDirectory

	lookupConcurrency int
}

func NewImageService(images domain.ImageRepository, users domain.UserDirectory) *ImageService {
	return &ImageService{
		images:            images,
		users:             users,
		lookupConcurrency: defaultLookupConcurrency,
	}
}

// ListImages returns all images, or those matching query when it is non-empty,
// each paired with its author.
func (s *ImageService) ListImages(ctx context.Context, query string) ([]*domain.Entry, error) {
	var (
		images []*domain.Image
		err    error
	)

	if query != "" {
		images, err = s.images.Search(ctx, query)
	} else {
		images, err = s.images.ListAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	return s.enrich(ctx, images), nil
}

// GetImage returns a single enriched image. Unlike RenameImage, a malformed
// id is reported as ErrInvalidIdentifier rather than ErrNotFound.
func (s *ImageService) GetImage(ctx context.Context, id string) (*domain.Entry, error) {
	img, err := s.images.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, domain.NewError(domain.ErrNotFound, "Image does not exist")
	}

	return s.enrich(ctx, []*domain.Image{img})[0], nil
}

// RenameImage changes the name of an image owned by caller.
//
// Input checks run before any storage access so that a rejected request
// never reveals whether the image exists.
func (s *ImageService) RenameImage(ctx context.Context, caller, id, newName string) error {
	if newName == "" {
		return domain.NewError(domain.ErrValidation, "Name is required and must be a string")
	}

	if err := domain.CheckNameLength(newName); err != nil {
		return err
	}

	if !domain.ValidID(id) {
		return domain.NewError(domain.ErrNotFound, "Image does not exist")
	}

	img, err := s.images.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if img == nil {
		return domain.NewError(domain.ErrNotFound, "Image does not exist")
	}

	if !isOwner(caller, img) {
		log.Info().Str("imageID", id).Str("caller", caller).Msg("Rejected rename by non-owner")
		return domain.NewError(domain.ErrForbidden, "You can only edit images you own")
	}

	// The record may have disappeared since FindByID; a zero match count covers that.
	matched, err := s.images.UpdateName(ctx, id, newName)
	if err != nil {
		return err
	}
	if matched == 0 {
		return domain.NewError(domain.ErrNotFound, "Image does not exist")
	}

	return nil
}

// CreateImage records an uploaded file under caller's ownership
func (s *ImageService) CreateImage(ctx context.Context, caller, src, name string) (*domain.Image, error) {
	if caller == "" {
		return nil, domain.NewError(domain.ErrUnauthorized, "Authentication required")
	}

	if src == "" {
		return nil, domain.NewError(domain.ErrValidation, "No image file uploaded")
	}

	if name == "" {
		return nil, domain.NewError(domain.ErrValidation, "Image name is required")
	}

	img, err := s.images.Create(ctx, src, name, caller)
	if err != nil {
		return nil, err
	}

	log.Info().Str("imageID", img.ID).Str("author", caller).Str("src", src).Msg("Image created")
	return img, nil
}

// isOwner is the only authorization rule: the caller must be the author.
func isOwner(caller string, img *domain.Image) bool {
	return caller != "" && caller == img.AuthorID
}
