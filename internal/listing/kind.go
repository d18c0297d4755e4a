package listing

import (
	"path"
	"strings"
)

// Kind classifies an object by its key's extension.
type Kind int

const (
	KindOther Kind = iota
	KindImage
	KindVideo
	KindAudio
	KindDocument
)

var kindExtensions = []struct {
	kind Kind
	exts []string
}{
	{KindImage, []string{"jpg", "jpeg", "png", "gif", "webp", "svg"}},
	{KindVideo, []string{"mp4", "avi", "mov", "wmv", "flv"}},
	{KindAudio, []string{"mp3", "wav", "flac", "aac"}},
	{KindDocument, []string{"txt", "md", "doc", "docx", "pdf"}},
}

var kindByExt = func() map[string]Kind {
	m := make(map[string]Kind)
	for _, group := range kindExtensions {
		for _, ext := range group.exts {
			m[ext] = group.kind
		}
	}
	return m
}()

// KindOf returns the kind of key, matching its extension case-insensitively.
// Keys without an extension are KindOther.
func KindOf(key string) Kind {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(key), "."))
	return kindByExt[ext]
}

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	case KindDocument:
		return "document"
	default:
		return "other"
	}
}
