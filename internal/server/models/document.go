// Package models defines the server-side view of documents and their files.
// Documents are owned by the document subsystem; this package only carries
// the fields the link subsystem reads.
package models

import (
	"path"
	"strings"
)

// Visibility is the document-level access rule applied on top of a valid link.
type Visibility int16

const (
	// VisibilityPublic lets any holder of a valid link through.
	VisibilityPublic Visibility = 0
	// VisibilityRestricted requires the requester to be assigned to the document.
	VisibilityRestricted Visibility = 1
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityRestricted:
		return "restricted"
	default:
		return "unknown"
	}
}

// Document is a titled, ordered list of files.
type Document struct {
	ID         uint64
	Title      string
	Visibility Visibility
	// Files is ordered by position; a file's index in this slice is its
	// stable file index.
	Files []File
}

// File returns the file at index and whether it exists.
func (d *Document) File(index uint32) (File, bool) {
	if uint64(index) >= uint64(len(d.Files)) {
		return File{}, false
	}
	return d.Files[index], true
}

// File is one attachment of a document.
type File struct {
	// Name is the original upload name, untrusted.
	Name string
	// StorageKey locates the bytes in the blob source.
	StorageKey string
	// Size in bytes, 0 when unknown.
	Size int64
}

// Extension returns the lower-cased extension of the file name without the dot.
func (f File) Extension() string {
	ext := path.Ext(strings.ReplaceAll(f.Name, `\`, "/"))
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// DeliveryType is the hint derived from the file name: whether a browser
// can render the file inline.
type DeliveryType int

const (
	DeliveryBinary DeliveryType = iota
	DeliveryInline
)

var inlineExtensions = map[string]struct{}{
	"pdf":  {},
	"txt":  {},
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
	"webp": {},
	"bmp":  {},
}

// DeliveryType classifies the file by extension.
func (f File) DeliveryType() DeliveryType {
	if _, ok := inlineExtensions[f.Extension()]; ok {
		return DeliveryInline
	}
	return DeliveryBinary
}
