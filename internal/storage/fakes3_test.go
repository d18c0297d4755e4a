package storage

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

const fakeBucket = "assets"

type fakeObject struct {
	key         string
	size        int64
	etag        string
	contentType string
	modified    time.Time
}

// fakeS3 answers the handful of S3 REST calls the drivers make, path-style only.
type fakeS3 struct {
	mu       sync.Mutex
	objects  []fakeObject // kept sorted by key
	requests []string
}

func newFakeS3(t *testing.T, objects ...fakeObject) (*fakeS3, *httptest.Server) {
	t.Helper()
	f := &fakeS3{objects: objects}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path+"?"+r.URL.RawQuery)

	path := strings.Trim(r.URL.Path, "/")
	bucket, key, _ := strings.Cut(path, "/")
	q := r.URL.Query()

	switch {
	case bucket == "" && r.Method == http.MethodGet:
		f.listBuckets(w)
	case bucket != fakeBucket:
		writeS3Error(w, http.StatusNotFound, "NoSuchBucket", "bucket does not exist")
	case key == "" && r.Method == http.MethodHead:
		w.WriteHeader(http.StatusOK)
	case key == "" && r.Method == http.MethodPut && q.Has("policy"):
		w.WriteHeader(http.StatusNoContent)
	case key == "" && r.Method == http.MethodGet && q.Get("list-type") == "2":
		f.listObjects(w, q.Get("prefix"), q.Get("continuation-token"), q.Get("max-keys"))
	case key != "" && r.Method == http.MethodHead:
		f.headObject(w, key)
	case key != "" && r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	default:
		writeS3Error(w, http.StatusNotImplemented, "NotImplemented", r.Method+" "+r.URL.String())
	}
}

func (f *fakeS3) listBuckets(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/xml")
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<ListAllMyBucketsResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
<Owner><ID>owner</ID><DisplayName>owner</DisplayName></Owner>
<Buckets><Bucket><Name>%s</Name><CreationDate>2024-01-01T00:00:00.000Z</CreationDate></Bucket></Buckets>
</ListAllMyBucketsResult>`, fakeBucket)
}

func (f *fakeS3) listObjects(w http.ResponseWriter, prefix, token, maxKeys string) {
	matched := make([]fakeObject, 0, len(f.objects))
	for _, o := range f.objects {
		if strings.HasPrefix(o.key, prefix) {
			matched = append(matched, o)
		}
	}

	start := 0
	if token != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(token, "tok-"))
		if !strings.HasPrefix(token, "tok-") || err != nil || n > len(matched) {
			writeS3Error(w, http.StatusBadRequest, "InvalidArgument", "The continuation token provided is incorrect")
			return
		}
		start = n
	}
	limit, err := strconv.Atoi(maxKeys)
	if err != nil || limit <= 0 {
		limit = 1000
	}
	end := min(start+limit, len(matched))

	var b strings.Builder
	fmt.Fprintf(&b, `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">
<Name>%s</Name><Prefix>%s</Prefix><KeyCount>%d</KeyCount><MaxKeys>%d</MaxKeys>`,
		fakeBucket, prefix, end-start, limit)
	if end < len(matched) {
		fmt.Fprintf(&b, `<IsTruncated>true</IsTruncated><NextContinuationToken>tok-%d</NextContinuationToken>`, end)
	} else {
		b.WriteString(`<IsTruncated>false</IsTruncated>`)
	}
	for _, o := range matched[start:end] {
		fmt.Fprintf(&b, `<Contents><Key>%s</Key><LastModified>%s</LastModified><ETag>&quot;%s&quot;</ETag><Size>%d</Size><StorageClass>STANDARD</StorageClass></Contents>`,
			o.key, o.modified.UTC().Format("2006-01-02T15:04:05.000Z"), o.etag, o.size)
	}
	b.WriteString(`</ListBucketResult>`)

	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write([]byte(b.String()))
}

func (f *fakeS3) headObject(w http.ResponseWriter, key string) {
	for _, o := range f.objects {
		if o.key != key {
			continue
		}
		w.Header().Set("Content-Type", o.contentType)
		w.Header().Set("Content-Length", strconv.FormatInt(o.size, 10))
		w.Header().Set("ETag", `"`+o.etag+`"`)
		w.Header().Set("Last-Modified", o.modified.UTC().Format(http.TimeFormat))
		w.WriteHeader(http.StatusOK)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func writeS3Error(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>%s</Code><Message>%s</Message><RequestId>req</RequestId></Error>`, code, message)
}

func sampleObjects() []fakeObject {
	modified := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return []fakeObject{
		{key: "docs/readme.md", size: 12, etag: "e1", contentType: "text/markdown", modified: modified},
		{key: "uploads/1700000000000-a.png", size: 100, etag: "e2", contentType: "image/png", modified: modified},
		{key: "uploads/1700000000001-b.txt", size: 200, etag: "e3", contentType: "text/plain", modified: modified},
		{key: "uploads/1700000000002-c.jpg", size: 300, etag: "e4", contentType: "image/jpeg", modified: modified},
	}
}
