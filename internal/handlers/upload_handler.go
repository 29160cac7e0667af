package handlers

import (
	"time"

	"panveliq/internal/api/middleware"
	"panveliq/internal/api/response"
	"panveliq/internal/models"
	"panveliq/internal/services"
	"panveliq/internal/utils/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

var uploadLog = logger.New("uploads")

const signedURLTTL = time.Hour

// UploadHandler stores content assets and records them as files.
type UploadHandler struct {
	db      *gorm.DB
	storage *services.S3Service
}

func NewUploadHandler(db *gorm.DB, storage *services.S3Service) *UploadHandler {
	return &UploadHandler{db: db, storage: storage}
}

// Upload accepts a multipart file, stores it and returns the file record
// with its signed URL.
func (h *UploadHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "missing file upload")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return response.Internal(c, "failed to read upload")
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ctx := c.Request().Context()
	key, err := h.storage.UploadFile(ctx, src, fileHeader.Filename, contentType)
	if err != nil {
		return response.Internal(c, "failed to store file")
	}

	file := models.File{
		Path:   key,
		UserID: middleware.GetUserID(c),
		Name:   fileHeader.Filename,
		Size:   fileHeader.Size,
		Type:   contentType,
	}
	if err := h.db.WithContext(ctx).Create(&file).Error; err != nil {
		uploadLog.Error("failed to record upload", err)
		return response.Internal(c, "failed to record file")
	}

	// Signed URL is normally filled by the read hook; fill it here so the
	// uploader gets it without a second request.
	url, err := h.storage.GetSignedURL(ctx, key, signedURLTTL)
	if err == nil {
		file.SignedURL = url
	}

	return response.Created(c, file)
}

// RegisterRoutes wires the upload endpoint.
func (h *UploadHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/uploads", h.Upload)
}
