package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/dustin/go-humanize"

	"github.com/inkpad/service/internal/listing"
	"github.com/inkpad/service/internal/storage"
)

// objectItem adapts a stored object to the list component.
type objectItem struct {
	obj storage.Object
}

func (i objectItem) Title() string { return i.obj.Key }

func (i objectItem) Description() string {
	return fmt.Sprintf("%s · %s · %s",
		listing.KindOf(i.obj.Key),
		humanize.IBytes(uint64(max(i.obj.Size, 0))),
		humanize.Time(i.obj.LastModified),
	)
}

func (i objectItem) FilterValue() string { return i.obj.Key }

func itemsFor(v listing.View) []list.Item {
	items := make([]list.Item, 0, len(v.Objects))
	for _, o := range v.Objects {
		items = append(items, objectItem{obj: o})
	}
	return items
}
