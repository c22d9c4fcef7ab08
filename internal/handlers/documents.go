package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/unishare/unishare/internal/botconfig"
	"github.com/unishare/unishare/internal/documents"
	"github.com/unishare/unishare/internal/telegram"
)

// userIDHeader carries the web user id resolved by the session layer in front
// of this API. Empty means anonymous, which resolves to the system bot.
const userIDHeader = "X-User-ID"

// Preview policy: only document and image blobs small enough to pull through
// the bot API inline. Larger or odd-typed files go through the download URL.
const maxPreviewBytes int64 = 20 * 1024 * 1024

// BlobGateway is the upload/download surface the catalog handlers use.
type BlobGateway interface {
	Upload(ctx context.Context, input telegram.UploadInput) (documents.Document, error)
	ResolveDownloadURL(ctx context.Context, userID, fileID string) (string, error)
	FetchBlob(ctx context.Context, userID, fileID string) (telegram.Blob, error)
}

// DocumentCatalog is the read surface of the document store.
type DocumentCatalog interface {
	Get(ctx context.Context, id string) (documents.Document, error)
	List(ctx context.Context, filter documents.ListFilter) ([]documents.Document, error)
}

// DocumentsHandler serves the catalog API consumed by the web UI.
type DocumentsHandler struct {
	gateway  BlobGateway
	catalog  DocumentCatalog
	validate *validator.Validate
	logger   *slog.Logger
}

// NewDocumentsHandler creates a DocumentsHandler.
func NewDocumentsHandler(log *slog.Logger, gateway BlobGateway, catalog DocumentCatalog) *DocumentsHandler {
	return &DocumentsHandler{
		gateway:  gateway,
		catalog:  catalog,
		validate: validator.New(),
		logger:   log.With(slog.String("handler", "documents")),
	}
}

// Register registers the catalog routes.
func (h *DocumentsHandler) Register(e *echo.Echo) {
	group := e.Group("/api/documents")
	group.GET("", h.List)
	group.POST("", h.Upload)
	group.GET("/:id", h.Get)
	group.GET("/:id/download", h.Download)
	group.GET("/:id/preview", h.Preview)
}

// List returns catalog rows matching the query filters, newest first.
func (h *DocumentsHandler) List(c echo.Context) error {
	filter := documents.ListFilter{
		Search: c.QueryParam("search"),
		School: c.QueryParam("school"),
		Major:  c.QueryParam("major"),
	}
	if raw := strings.TrimSpace(c.QueryParam("tags")); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				filter.Tags = append(filter.Tags, tag)
			}
		}
	}
	if raw := c.QueryParam("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 {
			filter.Limit = min(limit, 100)
		}
	}
	if raw := c.QueryParam("offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset > 0 {
			filter.Offset = offset
		}
	}
	docs, err := h.catalog.List(c.Request().Context(), filter)
	if err != nil {
		h.logger.Error("list documents failed", slog.Any("error", err))
		return writeTaggedError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":   true,
		"documents": docs,
	})
}

// Get returns a single document record.
func (h *DocumentsHandler) Get(c echo.Context) error {
	doc, err := h.catalog.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeTaggedError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":  true,
		"document": doc,
	})
}

type uploadForm struct {
	Description  string `form:"description" validate:"max=2000"`
	School       string `form:"school" validate:"max=255"`
	Major        string `form:"major" validate:"max=255"`
	Tags         string `form:"tags" validate:"max=500"`
	UploaderName string `form:"uploader_name" validate:"max=255"`
}

// Upload accepts a multipart file plus metadata fields and pushes it through
// the blob gateway.
func (h *DocumentsHandler) Upload(c echo.Context) error {
	var form uploadForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if err := h.validate.Struct(form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "open file: "+err.Error())
	}
	defer func() {
		_ = file.Close()
	}()

	var tags []string
	for _, tag := range strings.Split(form.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	doc, err := h.gateway.Upload(c.Request().Context(), telegram.UploadInput{
		Reader:   file,
		FileName: fileHeader.Filename,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Size:     fileHeader.Size,
		Metadata: telegram.UploadMetadata{
			Description: form.Description,
			School:      form.School,
			Major:       form.Major,
			Tags:        tags,
		},
		UserID:       c.Request().Header.Get(userIDHeader),
		UploaderName: form.UploaderName,
	})
	if err != nil {
		h.logger.Error("upload failed", slog.String("file_name", fileHeader.Filename), slog.Any("error", err))
		return writeTaggedError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"success":  true,
		"document": doc,
	})
}

// Download resolves the record's blob handle to a transient direct-fetch URL
// and names the file for saving: the preserved original name when present.
func (h *DocumentsHandler) Download(c echo.Context) error {
	doc, err := h.catalog.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeTaggedError(c, err)
	}
	url, err := h.gateway.ResolveDownloadURL(c.Request().Context(), c.Request().Header.Get(userIDHeader), doc.FileID)
	if err != nil {
		return writeTaggedError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":   true,
		"url":       url,
		"file_name": doc.DownloadName(),
	})
}

// Preview streams the blob bytes inline for records the preview policy allows.
func (h *DocumentsHandler) Preview(c echo.Context) error {
	doc, err := h.catalog.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeTaggedError(c, err)
	}
	if !previewable(doc) {
		if doc.FileSize > maxPreviewBytes {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large to preview")
		}
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, "file type is not previewable")
	}
	blob, err := h.gateway.FetchBlob(c.Request().Context(), c.Request().Header.Get(userIDHeader), doc.FileID)
	if err != nil {
		return writeTaggedError(c, err)
	}
	contentType := blob.ContentType
	if contentType == "" {
		contentType = doc.MimeType
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return c.Blob(http.StatusOK, contentType, blob.Data)
}

func previewable(doc documents.Document) bool {
	if doc.FileSize > maxPreviewBytes {
		return false
	}
	mime := strings.ToLower(strings.TrimSpace(doc.MimeType))
	return mime == "application/pdf" || strings.HasPrefix(mime, "image/")
}

// writeTaggedError maps domain errors to tagged JSON results so the UI can
// render a localized message and, for expiry, suggest re-upload over retry.
func writeTaggedError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, documents.ErrDocumentNotFound):
		return c.JSON(http.StatusNotFound, map[string]any{
			"success": false,
			"code":    "not_found",
			"error":   "document not found",
		})
	case errors.Is(err, telegram.ErrBlobExpired):
		return c.JSON(http.StatusGone, map[string]any{
			"success": false,
			"code":    "expired",
			"error":   "file is no longer available on telegram, re-upload required",
		})
	case errors.Is(err, telegram.ErrNoMediaDescriptor):
		return c.JSON(http.StatusBadGateway, map[string]any{
			"success": false,
			"code":    "no_descriptor",
			"error":   "telegram accepted the upload but returned no retrievable handle",
		})
	case errors.Is(err, telegram.ErrBlobTooLarge):
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]any{
			"success": false,
			"code":    "too_large",
			"error":   "file too large",
		})
	case errors.Is(err, botconfig.ErrNoCredential), errors.Is(err, botconfig.ErrNoDestination):
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"success": false,
			"code":    "not_configured",
			"error":   err.Error(),
		})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"success": false,
			"code":    "internal",
			"error":   err.Error(),
		})
	}
}
