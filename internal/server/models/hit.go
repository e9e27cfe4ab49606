package models

import "github.com/dmitrijs2005/securelinks/internal/server/token"

// Hit is one served view or download. FileIndex is nil for the document
// page.
type Hit struct {
	DocumentID uint64
	FileIndex  *uint32
	Kind       token.Kind
}

// WholeDocument is the file_index column value for document-page hits.
const WholeDocument = -1

// FileColumn maps FileIndex to its column value.
func (h Hit) FileColumn() int64 {
	if h.FileIndex == nil {
		return WholeDocument
	}
	return int64(*h.FileIndex)
}
