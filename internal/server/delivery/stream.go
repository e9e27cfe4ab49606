package delivery

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/securelinks/internal/common"
	"github.com/dmitrijs2005/securelinks/internal/server/access"
	"github.com/dmitrijs2005/securelinks/internal/server/blobs"
	"github.com/dmitrijs2005/securelinks/internal/server/models"
)

const chunkSize = 32 << 10

// Types served with their real Content-Type. Everything else goes out as
// application/octet-stream.
var contentTypes = map[string]string{
	"pdf":  "application/pdf",
	"txt":  "text/plain; charset=utf-8",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
}

func contentType(f models.File) string {
	if ct, ok := contentTypes[f.Extension()]; ok {
		return ct
	}
	return "application/octet-stream"
}

func contentDisposition(disposition string, res *access.Resolved, f models.File) string {
	name := sanitizeFilename(f.Name)
	if name == "" {
		name = placeholderFilename(res.Document.ID, *res.Payload.FileIndex)
	}
	if v := mime.FormatMediaType(disposition, map[string]string{"filename": name}); v != "" {
		return v
	}
	return mime.FormatMediaType(disposition, map[string]string{
		"filename": placeholderFilename(res.Document.ID, *res.Payload.FileIndex),
	})
}

func (rt *Router) serveFile(ctx context.Context, w http.ResponseWriter, r *http.Request, res *access.Resolved, f models.File, disposition string) {
	log := rt.logger.With("document_id", res.Document.ID, "file_index", *res.Payload.FileIndex)

	blob, err := rt.blobs.Open(ctx, f.StorageKey)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			log.Warn(ctx, "blob missing", "error", err.Error())
		} else {
			log.Error(ctx, "open blob failed", "error", err.Error())
		}
		rt.deny(w, r, &access.Denial{Reason: access.NotFound, Err: err})
		return
	}
	defer blob.Body.Close()

	h := w.Header()
	h.Set("Content-Type", contentType(f))
	h.Set("Content-Disposition", contentDisposition(disposition, res, f))
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("Cache-Control", "private, no-store")
	h.Set("Referrer-Policy", "no-referrer")
	if blob.Size >= 0 {
		h.Set("Content-Length", strconv.FormatInt(blob.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	// HEAD gets the headers only and is not a hit.
	if r.Method == http.MethodHead {
		return
	}

	rt.hits.Record(models.Hit{DocumentID: res.Document.ID, FileIndex: res.Payload.FileIndex, Kind: res.Payload.Kind})

	// the wrapper hides ReaderFrom so the copy goes through buf
	buf := make([]byte, chunkSize)
	n, err := io.CopyBuffer(struct{ io.Writer }{w}, blobs.WithContext(ctx, blob.Body), buf)
	if err != nil {
		log.Warn(ctx, "stream aborted",
			"reason", access.StreamError.String(),
			"bytes_sent", n,
			"error", err.Error())
		return
	}
	log.Debug(ctx, "file streamed", "bytes_sent", n, "disposition", disposition)
}
