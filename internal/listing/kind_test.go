package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inkpad/service/internal/storage"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		key  string
		want Kind
	}{
		{"uploads/1-a.png", KindImage},
		{"uploads/1-A.JPEG", KindImage},
		{"logo.svg", KindImage},
		{"clip.MOV", KindVideo},
		{"song.flac", KindAudio},
		{"notes.md", KindDocument},
		{"report.docx", KindDocument},
		{"archive.tar.gz", KindOther},
		{"README", KindOther},
		{"dir.png/file", KindOther},
		{"", KindOther},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.key))
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "image", KindImage.String())
	assert.Equal(t, "other", Kind(42).String())
}

func TestFilter_BeforeMerge(t *testing.T) {
	page := storage.NewPage(objects("a.png", "b.txt", "c.jpg"), "tok")

	var v View
	v.Apply(Images.Apply(page), false)

	assert.Equal(t, []string{"a.png", "c.jpg"}, keysOf(v.Objects))
	assert.Equal(t, "tok", v.NextToken)
	assert.True(t, v.IsTruncated)
}

func TestFilter_EmptyResultKeepsToken(t *testing.T) {
	page := storage.NewPage(objects("a.txt", "b.md"), "tok")

	got := Images.Apply(page)
	assert.Empty(t, got.Objects)
	assert.True(t, got.IsTruncated)
	assert.Equal(t, "tok", got.NextToken)
}

func TestFilter_NilKeepsEverything(t *testing.T) {
	var f Filter
	page := storage.NewPage(objects("a.txt"), "")
	assert.Equal(t, page, f.Apply(page))
}

func TestByKind(t *testing.T) {
	media := ByKind(KindVideo, KindAudio)
	got := media.Apply(storage.NewPage(objects("a.mp4", "b.png", "c.wav"), ""))
	assert.Equal(t, []string{"a.mp4", "c.wav"}, keysOf(got.Objects))
}
