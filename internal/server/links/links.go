// Package links mints absolute secure URLs for documents and their files.
// Minting is pure string construction: it never touches storage, and
// without a ttl the same arguments always give the same URL.
package links

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/securelinks/internal/clock"
	"github.com/dmitrijs2005/securelinks/internal/common"
	"github.com/dmitrijs2005/securelinks/internal/server/token"
)

// Encoder is the part of token.Codec the generator needs.
type Encoder interface {
	Encode(p token.Payload) (string, error)
}

// Generator builds view and download URLs.
type Generator struct {
	codec       Encoder
	viewURL     *url.URL
	downloadURL *url.URL
	clock       clock.Clock
}

// NewGenerator joins baseURL with the route paths once; it fails on an
// unparsable or relative base URL.
func NewGenerator(codec Encoder, baseURL, viewPath, downloadPath string, clk clock.Clock) (*Generator, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("base url %q is not absolute", baseURL)
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Generator{
		codec:       codec,
		viewURL:     base.JoinPath(viewPath),
		downloadURL: base.JoinPath(downloadPath),
		clock:       clk,
	}, nil
}

// ViewLink returns the view URL for a document, or for one of its files
// when fileIndex is set. ttl <= 0 mints a link that never expires.
func (g *Generator) ViewLink(documentID uint64, fileIndex *uint32, ttl time.Duration) (string, error) {
	return g.Link(token.Payload{
		DocumentID: documentID,
		FileIndex:  fileIndex,
		Kind:       token.View,
		ExpiresAt:  g.expiry(ttl),
	})
}

// DownloadLink returns the download URL for one file of a document.
func (g *Generator) DownloadLink(documentID uint64, fileIndex uint32, ttl time.Duration) (string, error) {
	return g.Link(token.Payload{
		DocumentID: documentID,
		FileIndex:  token.Index(fileIndex),
		Kind:       token.Download,
		ExpiresAt:  g.expiry(ttl),
	})
}

// Link mints the URL for an explicit payload. The router uses it to hand
// out per-file links that keep the parent link's absolute expiry.
func (g *Generator) Link(p token.Payload) (string, error) {
	if p.Kind == token.Download && p.FileIndex == nil {
		return "", fmt.Errorf("download link for document %d needs a file index", p.DocumentID)
	}

	tok, err := g.codec.Encode(p)
	if err != nil {
		return "", err
	}

	target := *g.viewURL
	q := url.Values{}
	q.Set(common.TokenQueryParam, tok)
	if p.Kind == token.Download {
		target = *g.downloadURL
		q.Set(common.FileQueryParam, strconv.FormatUint(uint64(*p.FileIndex), 10))
	}
	target.RawQuery = q.Encode()
	return target.String(), nil
}

// expiry rounds up to whole seconds so a link never lives shorter than asked.
func (g *Generator) expiry(ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	secs := int64((ttl + time.Second - 1) / time.Second)
	return g.clock.Now().Unix() + secs
}
