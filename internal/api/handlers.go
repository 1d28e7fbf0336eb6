package api

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/youruser/coverapp/internal/cover"
	imagepkg "github.com/youruser/coverapp/internal/image"
	"github.com/youruser/coverapp/internal/metrics"
	"github.com/youruser/coverapp/internal/storage"
)

// CoverGenerator renders a cover request to PNG.
type CoverGenerator interface {
	Generate(ctx context.Context, req cover.Request) (*cover.Result, error)
}

// Handler serves the upload and cover endpoints.
type Handler struct {
	Generator CoverGenerator
	Store     storage.Store
	Logger    *zap.Logger
}

func NewHandler(gen CoverGenerator, store storage.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Generator: gen, Store: store, Logger: logger}
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// qrHandler returns a PNG QR code for the "text" query param, the same badge
// a cover gets for qrText.
func qrHandler(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		BadRequest(c, "missing text")
		return
	}
	size := imagepkg.QRSize
	if v, err := strconv.Atoi(c.Query("size")); err == nil && v >= 64 && v <= 1024 {
		size = v
	}
	b, err := imagepkg.GenerateQRPNG(text, size)
	if err != nil {
		Internal(c, err.Error())
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

// UploadImage stores the multipart "file" field and returns its path.
func (h *Handler) UploadImage(c *gin.Context) {
	log := LoggerFromContext(c, h.Logger)

	file, err := c.FormFile("file")
	if err != nil {
		// A part sent with an empty filename is parsed as a plain form value.
		if form := c.Request.MultipartForm; form != nil {
			if _, ok := form.Value["file"]; ok {
				BadRequest(c, "No selected file")
				return
			}
		}
		BadRequest(c, "No file part")
		return
	}
	if file.Filename == "" {
		BadRequest(c, "No selected file")
		return
	}

	src, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if mt, err := mimetype.DetectReader(src); err == nil {
			contentType = mt.String()
		}
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			Internal(c, "failed to rewind file")
			return
		}
	}

	obj, err := h.Store.Save(c.Request.Context(), file.Filename, src, file.Size, contentType)
	if err != nil {
		log.Error("store upload", zap.String("filename", file.Filename), zap.Error(err))
		Internal(c, err.Error())
		return
	}

	metrics.Uploaded()
	log.Info("image uploaded",
		zap.String("filepath", obj.Path),
		zap.Int64("size", obj.Size),
		zap.String("content_type", obj.ContentType),
	)
	c.JSON(http.StatusOK, gin.H{"filepath": obj.Path})
}

// GenerateCover renders the JSON cover request and returns the PNG.
func (h *Handler) GenerateCover(c *gin.Context) {
	log := LoggerFromContext(c, h.Logger)

	var req cover.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	res, err := h.Generator.Generate(c.Request.Context(), req)
	if err != nil {
		log.Error("generate cover", zap.Error(err))
		Internal(c, err.Error())
		return
	}

	c.Header("X-Cover-Path", res.Path)
	c.Data(http.StatusOK, "image/png", res.PNG)
}
