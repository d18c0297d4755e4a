// Package listing implements the client side of the pagination contract:
// merging pages into a view, filtering before the merge, and serializing
// "load more" within one browsing session.
package listing

import "github.com/inkpad/service/internal/storage"

// View is the accumulated listing a browsing session displays.
type View struct {
	Objects     []storage.Object
	NextToken   string
	IsTruncated bool
}

// Apply merges page into the view. With appendPage false the view is
// replaced; with true the page's objects are appended in order, without
// deduplication. NextToken and IsTruncated always come from page.
func (v *View) Apply(page storage.Page, appendPage bool) {
	if appendPage {
		v.Objects = append(v.Objects, page.Objects...)
	} else {
		v.Objects = append([]storage.Object(nil), page.Objects...)
	}
	v.NextToken = page.NextToken
	v.IsTruncated = page.IsTruncated
}

// CanLoadMore reports whether a further page exists and can be requested.
func (v View) CanLoadMore() bool {
	return v.IsTruncated && v.NextToken != ""
}

// Remove drops key from the view and reports whether it was present.
func (v *View) Remove(key string) bool {
	for i, o := range v.Objects {
		if o.Key == key {
			v.Objects = append(v.Objects[:i], v.Objects[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no backing array with v.
func (v View) Clone() View {
	v.Objects = append([]storage.Object(nil), v.Objects...)
	return v
}
