// Package delivery serves verified secure links over HTTP: the document
// page with its per-file links, inline views and attachment downloads.
// Any refusal renders one of two pages, "Access Denied" or "Link Expired",
// always with status 200 and never with partial content.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/securelinks/internal/common"
	"github.com/dmitrijs2005/securelinks/internal/logging"
	"github.com/dmitrijs2005/securelinks/internal/server/access"
	"github.com/dmitrijs2005/securelinks/internal/server/blobs"
	"github.com/dmitrijs2005/securelinks/internal/server/models"
	"github.com/dmitrijs2005/securelinks/internal/server/token"
)

// Verifier resolves a raw token for a requester.
type Verifier interface {
	Verify(ctx context.Context, raw string, requester models.Requester) (*access.Resolved, error)
}

// LinkMinter builds the URL for an explicit payload.
type LinkMinter interface {
	Link(p token.Payload) (string, error)
}

// Recorder takes hits without blocking.
type Recorder interface {
	Record(hit models.Hit)
}

// RequesterFunc identifies the caller of a request.
type RequesterFunc func(r *http.Request) models.Requester

func anonymous(*http.Request) models.Requester { return models.Requester{} }

// Router holds the view and download handlers.
type Router struct {
	verifier  Verifier
	links     LinkMinter
	blobs     blobs.Source
	hits      Recorder
	requester RequesterFunc
	loginURL  string
	homeURL   string
	logger    logging.Logger
}

// Option configures optional Router collaborators.
type Option func(*Router)

// WithRequester sets how callers are identified; by default everyone is
// anonymous.
func WithRequester(fn RequesterFunc) Option {
	return func(rt *Router) { rt.requester = fn }
}

// WithPages sets the login and home targets of the denial page.
func WithPages(loginURL, homeURL string) Option {
	return func(rt *Router) {
		rt.loginURL = loginURL
		rt.homeURL = homeURL
	}
}

func NewRouter(v Verifier, links LinkMinter, src blobs.Source, hits Recorder, logger logging.Logger, opts ...Option) *Router {
	rt := &Router{
		verifier:  v,
		links:     links,
		blobs:     src,
		hits:      hits,
		requester: anonymous,
		loginURL:  "/login",
		homeURL:   "/",
		logger:    logger.With("module", "delivery"),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// View handles GET <view_path>?token=. A token without a file index gets
// the per-file breakdown; one with a file index streams that file, inline
// when the browser can render it.
func (rt *Router) View(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	res, err := rt.resolve(r, token.View)
	if err != nil {
		rt.deny(w, r, err)
		return
	}

	file, ok := res.File()
	if !ok {
		rt.serveDocument(w, r, res)
		return
	}

	disposition := "attachment"
	if file.DeliveryType() == models.DeliveryInline {
		disposition = "inline"
	}
	rt.serveFile(ctx, w, r, res, file, disposition)
}

// Download handles GET <download_path>?token=&file=. The file parameter is
// optional; when present it must name the file the token was minted for.
func (rt *Router) Download(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	res, err := rt.resolve(r, token.Download)
	if err != nil {
		rt.deny(w, r, err)
		return
	}

	if res.Payload.FileIndex == nil {
		rt.deny(w, r, rt.refuse(ctx, access.Malformed, errors.New("download token without file index")))
		return
	}

	if raw, present := r.URL.Query()[common.FileQueryParam]; present {
		idx, err := strconv.ParseUint(firstOf(raw), 10, 32)
		if err != nil || uint32(idx) != *res.Payload.FileIndex {
			rt.deny(w, r, rt.refuse(ctx, access.Malformed,
				fmt.Errorf("file parameter %q does not match token file %d", firstOf(raw), *res.Payload.FileIndex)))
			return
		}
	}

	file, _ := res.File()
	rt.serveFile(ctx, w, r, res, file, "attachment")
}

func (rt *Router) resolve(r *http.Request, kind token.Kind) (*access.Resolved, error) {
	raw := r.URL.Query().Get(common.TokenQueryParam)

	res, err := rt.verifier.Verify(r.Context(), raw, rt.requester(r))
	if err != nil {
		return nil, err
	}
	if res.Payload.Kind != kind {
		return nil, rt.refuse(r.Context(), access.Malformed, fmt.Errorf("%s token on %s route", res.Payload.Kind, kind))
	}
	return res, nil
}

func (rt *Router) serveDocument(w http.ResponseWriter, r *http.Request, res *access.Resolved) {
	ctx := r.Context()
	doc := res.Document

	data := documentData{Title: doc.Title, Files: make([]fileLinks, 0, len(doc.Files))}
	for i, f := range doc.Files {
		idx := token.Index(uint32(i))
		view, err := rt.links.Link(token.Payload{
			DocumentID: doc.ID, FileIndex: idx, Kind: token.View, ExpiresAt: res.Payload.ExpiresAt,
		})
		if err != nil {
			rt.fail(w, r, err)
			return
		}
		download, err := rt.links.Link(token.Payload{
			DocumentID: doc.ID, FileIndex: idx, Kind: token.Download, ExpiresAt: res.Payload.ExpiresAt,
		})
		if err != nil {
			rt.fail(w, r, err)
			return
		}

		name := sanitizeFilename(f.Name)
		if name == "" {
			name = placeholderFilename(doc.ID, uint32(i))
		}
		data.Files = append(data.Files, fileLinks{Name: name, ViewURL: view, DownloadURL: download})
	}

	if err := render(w, documentPage, data); err != nil {
		rt.logger.Error(ctx, "render document page", "document_id", doc.ID, "error", err.Error())
		return
	}
	if r.Method != http.MethodHead {
		rt.hits.Record(models.Hit{DocumentID: doc.ID, Kind: token.View})
	}
}

// deny renders the page matching err's outcome. Errors that are not
// denials are treated as malformed.
func (rt *Router) deny(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	reason, ok := access.ReasonOf(err)
	if !ok {
		reason = access.Malformed
	}

	page := deniedPage
	if reason.Outcome() == access.OutcomeExpired {
		page = expiredPage
	}

	if rerr := render(w, page, denialData{LoginURL: rt.loginURL, HomeURL: rt.homeURL}); rerr != nil {
		rt.logger.Error(ctx, "render denial page", "error", rerr.Error())
	}
}

// refuse builds and logs a denial raised by the router itself; the
// verifier logs its own.
func (rt *Router) refuse(ctx context.Context, reason access.Reason, err error) *access.Denial {
	rt.logger.Info(ctx, "link denied", "reason", reason.String(), "cause", err.Error())
	return &access.Denial{Reason: reason, Err: err}
}

// fail denies after logging an unexpected server-side error.
func (rt *Router) fail(w http.ResponseWriter, r *http.Request, err error) {
	rt.logger.Error(r.Context(), "serving link failed", "error", err.Error())
	rt.deny(w, r, &access.Denial{Reason: access.NotFound, Err: err})
}

func firstOf(v []string) string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}
