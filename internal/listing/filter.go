package listing

import "github.com/inkpad/service/internal/storage"

// Filter selects the objects a view shows. A nil Filter keeps everything.
type Filter func(storage.Object) bool

// Images keeps objects whose key has an image extension.
var Images = ByKind(KindImage)

// ByKind keeps objects of any of the given kinds.
func ByKind(kinds ...Kind) Filter {
	return func(o storage.Object) bool {
		k := KindOf(o.Key)
		for _, want := range kinds {
			if k == want {
				return true
			}
		}
		return false
	}
}

// Apply returns page with only the objects f keeps. The page's NextToken and
// IsTruncated are carried over unchanged, so pagination continues even when
// every object on the page was filtered out.
func (f Filter) Apply(page storage.Page) storage.Page {
	if f == nil {
		return page
	}
	kept := make([]storage.Object, 0, len(page.Objects))
	for _, o := range page.Objects {
		if f(o) {
			kept = append(kept, o)
		}
	}
	return storage.Page{
		Objects:     kept,
		NextToken:   page.NextToken,
		IsTruncated: page.IsTruncated,
	}
}
