package files

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/inkpad/service/internal/response"
	"github.com/inkpad/service/internal/storage"
)

const (
	defaultURLExpiry = 3600
	maxURLExpiry     = 7 * 24 * 3600
)

var errBadKey = errors.New("invalid file key")

// Handler holds HTTP handlers for the /api endpoints.
type Handler struct {
	svc       *Service
	lg        *zap.Logger
	maxUpload int64
	now       func() time.Time
}

// NewHandler creates a new files Handler. maxUpload caps the request body of uploads.
func NewHandler(svc *Service, lg *zap.Logger, maxUpload int64) *Handler {
	return &Handler{svc: svc, lg: lg, maxUpload: maxUpload, now: time.Now}
}

// Routes registers the gateway endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/hello", h.Hello)
	r.Get("/buckets", h.ListBuckets)
	r.Get("/files", h.ListFiles)
	r.Post("/files/upload", h.Upload)
	r.Get("/files/{key}/url", h.FileURL)
	r.Get("/files/{key}/metadata", h.Metadata)
	r.Delete("/files/{key}", h.Delete)
}

// Hello godoc
//
//	@Summary	Liveness probe
//	@Tags		system
//	@Produce	json
//	@Success	200	{object}	HelloResponse
//	@Router		/hello [get]
func (h *Handler) Hello(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, HelloResponse{Message: "Hello from Inkpad!", Time: h.now().UnixMilli()})
}

// ListBuckets godoc
//
//	@Summary	List buckets
//	@Tags		buckets
//	@Produce	json
//	@Success	200	{object}	BucketsResponse
//	@Failure	500	{object}	response.ErrorBody
//	@Router		/buckets [get]
func (h *Handler) ListBuckets(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.svc.Buckets(r.Context())
	if err != nil {
		h.fail(w, r, "list buckets", "Failed to list buckets", err)
		return
	}
	response.OK(w, BucketsResponse{Buckets: buckets})
}

// ListFiles godoc
//
//	@Summary		List files
//	@Description	Without limit or continuationToken returns {files}. With either, returns one
//	@Description	page as {ListObjectsResponse}; pass nextToken back as continuationToken.
//	@Tags			files
//	@Produce		json
//	@Param			prefix				query		string	false	"Key prefix"
//	@Param			limit				query		int		false	"Page size (1-1000, default 100)"
//	@Param			continuationToken	query		string	false	"Token from the previous page"
//	@Success		200					{object}	PageResponse
//	@Failure		400					{object}	response.ErrorBody
//	@Failure		500					{object}	response.ErrorBody
//	@Router			/files [get]
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	_, hasLimit := q["limit"]
	_, hasToken := q["continuationToken"]

	opts := storage.ListOptions{
		Prefix:            q.Get("prefix"),
		ContinuationToken: q.Get("continuationToken"),
	}
	if hasLimit {
		n, err := strconv.Atoi(q.Get("limit"))
		if err != nil || n <= 0 {
			response.BadRequest(w, "limit must be a positive integer")
			return
		}
		opts.MaxKeys = n
	}

	page, err := h.svc.List(r.Context(), opts)
	if err != nil {
		h.fail(w, r, "list files", "Failed to list files", err)
		return
	}

	if hasLimit || hasToken {
		response.OK(w, PageResponse{ListObjectsResponse: page})
		return
	}
	response.OK(w, FilesResponse{Files: page.Objects})
}

// Upload godoc
//
//	@Summary		Upload a file
//	@Description	Stores the file under uploads/<unix-millis>-<filename> and returns its public URL.
//	@Tags			files
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"File to upload"
//	@Success		200		{object}	UploadResponse
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/files/upload [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.BadRequest(w, fmt.Sprintf("File exceeds the %s upload limit", humanize.IBytes(uint64(h.maxUpload))))
			return
		}
		response.BadRequest(w, "No file provided")
		return
	}
	defer file.Close()

	u, err := h.svc.Upload(r.Context(), file, header.Size, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		h.fail(w, r, "upload file", "Failed to upload file", err, zap.String("filename", header.Filename))
		return
	}

	h.lg.Info("file uploaded",
		zap.String("key", u.Key),
		zap.String("size", humanize.IBytes(uint64(u.Size))),
		zap.String("content_type", u.ContentType),
	)
	response.OK(w, UploadResponse{
		Message:  "File uploaded successfully",
		Key:      u.Key,
		Filename: u.Filename,
		Size:     u.Size,
		Type:     u.ContentType,
		URL:      u.URL,
	})
}

// FileURL godoc
//
//	@Summary	Get a signed URL
//	@Tags		files
//	@Produce	json
//	@Param		key		path		string	true	"Percent-encoded object key"
//	@Param		expires	query		int		false	"Lifetime in seconds (1-604800, default 3600)"
//	@Success	200		{object}	URLResponse
//	@Failure	400		{object}	response.ErrorBody
//	@Failure	404		{object}	response.ErrorBody
//	@Failure	500		{object}	response.ErrorBody
//	@Router		/files/{key}/url [get]
func (h *Handler) FileURL(w http.ResponseWriter, r *http.Request) {
	key, ok := h.key(w, r)
	if !ok {
		return
	}

	expires := defaultURLExpiry
	if raw := r.URL.Query().Get("expires"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxURLExpiry {
			response.BadRequest(w, fmt.Sprintf("expires must be between 1 and %d seconds", maxURLExpiry))
			return
		}
		expires = n
	}

	u, err := h.svc.SignedURL(r.Context(), key, time.Duration(expires)*time.Second)
	if err != nil {
		h.fail(w, r, "get file url", "Failed to get file URL", err, zap.String("key", key))
		return
	}
	response.OK(w, URLResponse{URL: u})
}

// Metadata godoc
//
//	@Summary	Get file metadata
//	@Tags		files
//	@Produce	json
//	@Param		key	path		string	true	"Percent-encoded object key"
//	@Success	200	{object}	MetadataResponse
//	@Failure	400	{object}	response.ErrorBody
//	@Failure	404	{object}	response.ErrorBody
//	@Failure	500	{object}	response.ErrorBody
//	@Router		/files/{key}/metadata [get]
func (h *Handler) Metadata(w http.ResponseWriter, r *http.Request) {
	key, ok := h.key(w, r)
	if !ok {
		return
	}

	md, err := h.svc.Metadata(r.Context(), key)
	if err != nil {
		h.fail(w, r, "get file metadata", "Failed to get file metadata", err, zap.String("key", key))
		return
	}
	response.OK(w, MetadataResponse{Metadata: md})
}

// Delete godoc
//
//	@Summary		Delete a file
//	@Description	Deleting a key that does not exist succeeds.
//	@Tags			files
//	@Produce		json
//	@Param			key	path		string	true	"Percent-encoded object key"
//	@Success		200	{object}	MessageResponse
//	@Failure		400	{object}	response.ErrorBody
//	@Failure		500	{object}	response.ErrorBody
//	@Router			/files/{key} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	key, ok := h.key(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), key); err != nil {
		h.fail(w, r, "delete file", "Failed to delete file", err, zap.String("key", key))
		return
	}
	response.OK(w, MessageResponse{Message: "File deleted successfully"})
}

// key returns the percent-decoded {key} path parameter, writing a 400 when it is unusable.
func (h *Handler) key(w http.ResponseWriter, r *http.Request) (string, bool) {
	key, err := decodeKey(chi.URLParam(r, "key"))
	if err != nil {
		response.BadRequest(w, "Invalid file key")
		return "", false
	}
	return key, true
}

func decodeKey(raw string) (string, error) {
	key, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errBadKey, err)
	}
	if key == "" {
		return "", errBadKey
	}
	return key, nil
}

// fail maps err to a status and body and logs it with its kind. Provider
// messages never reach the client.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op, message string, err error, fields ...zap.Field) {
	kind := errorKind(err)
	fields = append(fields,
		zap.String("op", op),
		zap.String("kind", kind),
		zap.String("request_id", chimw.GetReqID(r.Context())),
		zap.Error(err),
	)

	switch {
	case errors.Is(err, storage.ErrNotFound):
		h.lg.Warn("request failed", fields...)
		response.NotFound(w, "File not found")
	case errors.Is(err, storage.ErrInvalidToken):
		h.lg.Warn("request failed", fields...)
		response.BadRequest(w, "Invalid continuation token")
	default:
		h.lg.Error("request failed", fields...)
		response.InternalError(w, message)
	}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return "not_found"
	case errors.Is(err, storage.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, storage.ErrUploadFailed):
		return "upload_failed"
	case errors.Is(err, storage.ErrUnavailable):
		return "storage_unavailable"
	default:
		return "unknown"
	}
}
