package files

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/inkpad/service/internal/response"
	"github.com/inkpad/service/internal/storage"
)

// BlobHandler serves objects of a store that has no public endpoint of its
// own (the memory driver). Mount it on a wildcard route such as /blobs/*.
type BlobHandler struct {
	opener storage.Opener
	lg     *zap.Logger
}

// NewBlobHandler creates a BlobHandler for opener.
func NewBlobHandler(opener storage.Opener, lg *zap.Logger) *BlobHandler {
	return &BlobHandler{opener: opener, lg: lg}
}

func (h *BlobHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key, err := decodeKey(chi.URLParam(r, "*"))
	if err != nil {
		response.BadRequest(w, "Invalid file key")
		return
	}

	blob, err := h.opener.Open(r.Context(), key, r.URL.Query().Get(storage.SignatureParam))
	switch {
	case errors.Is(err, storage.ErrURLExpired):
		response.Forbidden(w, "Signed URL expired")
		return
	case errors.Is(err, storage.ErrBadSignature):
		h.lg.Warn("blob: bad signature", zap.String("key", key), zap.Error(err))
		response.Forbidden(w, "Invalid signature")
		return
	case errors.Is(err, storage.ErrNotFound):
		response.NotFound(w, "File not found")
		return
	case err != nil:
		h.lg.Error("blob: open failed", zap.String("key", key), zap.Error(err))
		response.InternalError(w, "Failed to read file")
		return
	}

	if blob.ContentType != "" {
		w.Header().Set("Content-Type", blob.ContentType)
	}
	w.Header().Set("ETag", `"`+blob.ETag+`"`)
	http.ServeContent(w, r, key, blob.LastModified, bytes.NewReader(blob.Data))
}
