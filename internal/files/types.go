package files

import "github.com/inkpad/service/internal/storage"

// BucketsResponse is the body of GET /api/buckets.
type BucketsResponse struct {
	Buckets []storage.Bucket `json:"buckets"`
}

// FilesResponse is the body of the non-paginated GET /api/files.
type FilesResponse struct {
	Files []storage.Object `json:"files"`
}

// PageResponse is the body of the paginated GET /api/files.
type PageResponse struct {
	ListObjectsResponse storage.Page `json:"ListObjectsResponse"`
}

// UploadResponse is the body of POST /api/files/upload.
type UploadResponse struct {
	Message  string `json:"message"`
	Key      string `json:"key"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
	URL      string `json:"url"`
}

// URLResponse is the body of GET /api/files/{key}/url.
type URLResponse struct {
	URL string `json:"url"`
}

// MetadataResponse is the body of GET /api/files/{key}/metadata.
type MetadataResponse struct {
	Metadata *storage.Metadata `json:"metadata"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// HelloResponse is the body of GET /api/hello.
type HelloResponse struct {
	Message string `json:"message"`
	Time    int64  `json:"time"` // unix milliseconds
}
