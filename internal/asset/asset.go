// Package asset maps uploaded files to the object keys and URLs embedded in
// document content.
package asset

import (
	"strconv"
	"strings"
	"time"
)

// KeyPrefix is the folder every upload is written under.
const KeyPrefix = "uploads/"

// Reference is the address of an uploaded file as embedded in document content.
type Reference struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// KeyFor returns the object key for filename uploaded at t:
// "uploads/<unix-millis>-<filename>". The filename is used verbatim, so two
// uploads of the same name within one millisecond share a key.
func KeyFor(t time.Time, filename string) string {
	return KeyPrefix + strconv.FormatInt(t.UnixMilli(), 10) + "-" + filename
}

// URLFor returns the public URL of key under publicBase.
func URLFor(publicBase, key string) string {
	return strings.TrimRight(publicBase, "/") + "/" + key
}
