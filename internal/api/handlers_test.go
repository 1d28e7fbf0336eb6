package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/youruser/coverapp/internal/config"
	"github.com/youruser/coverapp/internal/cover"
	imagepkg "github.com/youruser/coverapp/internal/image"
	"github.com/youruser/coverapp/internal/storage"
)

type fakeGenerator struct {
	err   error
	panic string
}

func (g *fakeGenerator) Generate(_ context.Context, _ cover.Request) (*cover.Result, error) {
	if g.panic != "" {
		panic(g.panic)
	}
	return nil, g.err
}

func newTestRouter(t *testing.T, gen CoverGenerator, perMinute int) (*gin.Engine, string) {
	t.Helper()
	uploadDir := t.TempDir()
	store, err := storage.NewFilesystemStore(uploadDir)
	if err != nil {
		t.Fatalf("NewFilesystemStore() failed: %v", err)
	}
	if gen == nil {
		gen = cover.NewGenerator(
			imagepkg.NewFetcher(5*time.Second, 8<<20, 4_000_000),
			imagepkg.NewFontLoader(nil, nil),
			t.TempDir(),
			zap.NewNop(),
		)
	}

	cfg := &config.Config{Server: config.ServerConfig{GinMode: "test", AllowedOrigins: []string{"*"}}}
	r := NewRouter(cfg, zap.NewNop())
	RegisterRoutes(r, NewHandler(gen, store, zap.NewNop()), NewRateLimiter(perMinute))
	return r, uploadDir
}

func newMultipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func doUpload(t *testing.T, r http.Handler, field, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := newMultipartUpload(t, field, filename, content)
	req := httptest.NewRequest(http.MethodPost, "/upload_image", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return out
}

func postCover(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/generate_cover", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUploadImage_SameNameTwice(t *testing.T) {
	r, uploadDir := newTestRouter(t, nil, 0)
	content := []byte("\x89PNG\r\n\x1a\n")

	var paths []string
	for i := 0; i < 2; i++ {
		w := doUpload(t, r, "file", "poster.png", content)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
		}
		p := decodeBody(t, w)["filepath"]
		if !strings.HasPrefix(p, uploadDir) || !strings.HasSuffix(p, "_poster.png") {
			t.Errorf("unexpected filepath %q", p)
		}
		if _, err := os.Stat(p); err != nil {
			t.Errorf("uploaded file missing: %v", err)
		}
		paths = append(paths, p)
	}

	if paths[0] == paths[1] {
		t.Errorf("expected distinct paths, both were %s", paths[0])
	}
}

func TestUploadImage_NoFilePart(t *testing.T) {
	r, _ := newTestRouter(t, nil, 0)

	w := doUpload(t, r, "attachment", "poster.png", []byte("x"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	if msg := decodeBody(t, w)["error"]; msg != "No file part" {
		t.Errorf("unexpected error %q", msg)
	}
}

func TestUploadImage_NotMultipart(t *testing.T) {
	r, _ := newTestRouter(t, nil, 0)

	req := httptest.NewRequest(http.MethodPost, "/upload_image", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	if decodeBody(t, w)["error"] == "" {
		t.Error("expected error message")
	}
}

func TestUploadImage_EmptyFilename(t *testing.T) {
	r, _ := newTestRouter(t, nil, 0)

	w := doUpload(t, r, "file", "", []byte("x"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	if msg := decodeBody(t, w)["error"]; msg != "No selected file" {
		t.Errorf("unexpected error message %q", msg)
	}
}

func TestUploadImage_EmptyFilenameWithoutContentType(t *testing.T) {
	r, _ := newTestRouter(t, nil, 0)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename=""`)
	part, err := writer.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write([]byte("x")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload_image", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	if msg := decodeBody(t, w)["error"]; msg != "No selected file" {
		t.Errorf("unexpected error message %q", msg)
	}
}

func TestGenerateCover_ReturnsPNG(t *testing.T) {
	r, _ := newTestRouter(t, nil, 0)

	w := postCover(r, `{
		"libraryName": "Movies",
		"subTitle": "Collection",
		"theme": {"bgStyle": "#224466", "isDark": false},
		"layoutMode": "grid",
		"currentFont": {"family": "Inter"},
		"activeTextColor": "#ffffff",
		"titleX": 40, "titleY": 60, "titleGap": 10, "titleSize": 72
	}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("unexpected content type %q", ct)
	}
	if w.Header().Get("X-Cover-Path") == "" {
		t.Error("expected X-Cover-Path header")
	}

	img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 1200 {
		t.Fatalf("expected 800x1200, got %v", b)
	}
	if got, want := imaging.Clone(img).NRGBAAt(700, 1100), (color.NRGBA{0x22, 0x44, 0x66, 0xff}); got != want {
		t.Errorf("background pixel = %v, want %v", got, want)
	}
}

func TestGenerateCover_UnreachableBackdrop(t *testing.T) {
	r, _ := newTestRouter(t, nil, 0)

	w := postCover(r, `{"libraryName": "TV", "backdropUrl": "http://127.0.0.1:1/bd.jpg", "activeTextColor": "#fff"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
}

func TestGenerateCover_MalformedJSON(t *testing.T) {
	r, _ := newTestRouter(t, nil, 0)

	w := postCover(r, `{"libraryName": `)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	if decodeBody(t, w)["error"] == "" {
		t.Error("expected error message")
	}
}

func TestGenerateCover_FailureIs500(t *testing.T) {
	r, _ := newTestRouter(t, &fakeGenerator{err: errors.New("write cover: disk full")}, 0)

	w := postCover(r, `{}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", w.Code)
	}
	if msg := decodeBody(t, w)["error"]; msg != "write cover: disk full" {
		t.Errorf("unexpected error %q", msg)
	}
}

func TestGenerateCover_PanicIs500(t *testing.T) {
	r, _ := newTestRouter(t, &fakeGenerator{panic: "boom"}, 0)

	w := postCover(r, `{}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", w.Code)
	}
	if msg := decodeBody(t, w)["error"]; msg != "boom" {
		t.Errorf("unexpected error %q", msg)
	}
}

func TestGenerateCover_RateLimited(t *testing.T) {
	r, _ := newTestRouter(t, &fakeGenerator{err: errors.New("nope")}, 1)

	if w := postCover(r, `{}`); w.Code != http.StatusInternalServerError {
		t.Fatalf("expected first request to reach the generator, got %d", w.Code)
	}
	if w := postCover(r, `{}`); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", w.Code)
	}
}

func TestHealthAndCorrelationID(t *testing.T) {
	r, _ := newTestRouter(t, nil, 0)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Correlation-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if got := w.Header().Get("X-Correlation-ID"); got != "abc-123" {
		t.Errorf("expected correlation id echoed, got %q", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Header().Get("X-Correlation-ID") == "" {
		t.Error("expected generated correlation id")
	}
}

func TestQRHandler(t *testing.T) {
	r, _ := newTestRouter(t, nil, 0)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/qr?text=hello&size=200", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	if _, err := png.Decode(bytes.NewReader(w.Body.Bytes())); err != nil {
		t.Errorf("decode qr png: %v", err)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/qr", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing text, got %d", w.Code)
	}
}
