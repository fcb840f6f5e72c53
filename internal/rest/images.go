package rest

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kaistout4/ImageGallerySPA/api"
	"github.com/kaistout4/ImageGallerySPA/gallery/domain"
	"github.com/kaistout4/ImageGallerySPA/internal/middleware"
	"github.com/kaistout4/ImageGallerySPA/internal/upload"
	"github.com/rs/zerolog/log"
)

// ImageService is the subset of application.ImageService the handlers need
type ImageService interface {
	ListImages(ctx context.Context, query string) ([]*domain.Entry, error)
	GetImage(ctx context.Context, id string) (*domain.Entry, error)
	RenameImage(ctx context.Context, caller, id, newName string) error
	CreateImage(ctx context.Context, caller, src, name string) (*domain.Image, error)
}

// UploadStore stores the multipart file ahead of CreateImage
type UploadStore interface {
	Middleware(field string) gin.HandlerFunc
	Remove(src string) error
}

type ImageHandler struct {
	service ImageService
	uploads UploadStore
}

func NewImageHandler(service ImageService, uploads UploadStore) *ImageHandler {
	return &ImageHandler{
		service: service,
		uploads: uploads,
	}
}

// RegisterRoutes mounts the image endpoints. read runs ahead of the GET
// routes and write ahead of the mutating ones.
func (h *ImageHandler) RegisterRoutes(r gin.IRouter, read, write gin.HandlersChain) {
	images := r.Group("/images")
	{
		images.GET("", with(read, h.ListImages)...)
		images.GET("/search", with(read, h.SearchImages)...)
		images.GET("/:imageId", with(read, h.GetImage)...)
		images.PUT("/:imageId", with(write, h.RenameImage)...)
		// authentication runs before the upload middleware touches the disk
		images.POST("", with(write, h.uploads.Middleware("image"), h.CreateImage)...)
	}
}

// with returns a fresh chain so route registrations never share a backing array
func with(chain gin.HandlersChain, handlers ...gin.HandlerFunc) gin.HandlersChain {
	out := make(gin.HandlersChain, 0, len(chain)+len(handlers))
	out = append(out, chain...)
	return append(out, handlers...)
}

func (h *ImageHandler) ListImages(c *gin.Context) {
	entries, err := h.service.ListImages(c.Request.Context(), c.Query("q"))
	if err != nil {
		writeError(c, err, "Failed to fetch images")
		return
	}

	c.JSON(http.StatusOK, toAPIImages(entries))
}

func (h *ImageHandler) SearchImages(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.ErrorResponse{
			Error:   http.StatusText(http.StatusBadRequest),
			Message: "Query parameter 'q' is required",
		})
		return
	}

	entries, err := h.service.ListImages(c.Request.Context(), query)
	if err != nil {
		writeError(c, err, "Failed to search images")
		return
	}

	c.JSON(http.StatusOK, toAPIImages(entries))
}

func (h *ImageHandler) GetImage(c *gin.Context) {
	entry, err := h.service.GetImage(c.Request.Context(), c.Param("imageId"))
	if err != nil {
		writeError(c, err, "Failed to fetch image")
		return
	}

	c.JSON(http.StatusOK, toAPIImage(entry))
}

func (h *ImageHandler) RenameImage(c *gin.Context) {
	var req api.RenameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.NewError(domain.ErrValidation, "Name is required and must be a string"), "")
		return
	}

	caller, _ := middleware.Identity(c)
	if err := h.service.RenameImage(c.Request.Context(), caller, c.Param("imageId"), req.Name); err != nil {
		writeError(c, err, "Failed to update image name")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ImageHandler) CreateImage(c *gin.Context) {
	caller, _ := middleware.Identity(c)
	src, _ := upload.StoredPath(c)

	_, err := h.service.CreateImage(c.Request.Context(), caller, src, c.PostForm("name"))
	if err != nil {
		// the file was stored but no record points at it
		if src != "" {
			if rmErr := h.uploads.Remove(src); rmErr != nil {
				log.Error().Err(rmErr).Str("src", src).Msg("Failed to remove orphaned upload")
			}
		}
		writeError(c, err, "Failed to save image")
		return
	}

	c.Status(http.StatusCreated)
}

func toAPIImages(entries []*domain.Entry) []api.Image {
	out := make([]api.Image, len(entries))
	for i, e := range entries {
		out[i] = toAPIImage(e)
	}
	return out
}

func toAPIImage(e *domain.Entry) api.Image {
	return api.Image{
		ID:   e.Image.ID,
		Src:  e.Image.Src,
		Name: e.Image.Name,
		Author: api.Author{
			ID:          e.Author.ID,
			DisplayName: e.Author.DisplayName,
		},
	}
}
