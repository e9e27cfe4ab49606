// Package access turns an inbound raw token into either a resolved target
// or a typed denial.
//
// Checks run cheapest first: feature flag, signature, expiry and
// revocation need no document lookup, so scanners guessing tokens never
// reach storage or the permission subsystem.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/securelinks/internal/clock"
	"github.com/dmitrijs2005/securelinks/internal/common"
	"github.com/dmitrijs2005/securelinks/internal/cryptox"
	"github.com/dmitrijs2005/securelinks/internal/logging"
	"github.com/dmitrijs2005/securelinks/internal/server/models"
	"github.com/dmitrijs2005/securelinks/internal/server/token"
)

// Decoder is the part of token.Codec the verifier needs.
type Decoder interface {
	DecodeRaw(s string) (token.Payload, []byte, error)
}

// Documents resolves document metadata. Implementations return
// common.ErrorNotFound for unknown ids.
type Documents interface {
	GetDocument(ctx context.Context, id uint64) (*models.Document, error)
}

// Gate is the document subsystem's permission rule for restricted
// documents.
type Gate interface {
	IsAuthorized(ctx context.Context, doc *models.Document, requester models.Requester) (bool, error)
}

// Revocations is the optional deny-list of individual tokens, keyed by
// cryptox.Digest of the token's wire bytes.
type Revocations interface {
	IsRevoked(ctx context.Context, digest [cryptox.DigestSize]byte) (bool, error)
}

// Resolved is a verified link target.
type Resolved struct {
	Payload  token.Payload
	Document *models.Document
}

// File returns the addressed file; ok is false for whole-document links.
func (r *Resolved) File() (models.File, bool) {
	if r.Payload.FileIndex == nil {
		return models.File{}, false
	}
	return r.Document.File(*r.Payload.FileIndex)
}

// Verifier validates inbound tokens. It holds no mutable state and is safe
// for concurrent use.
type Verifier struct {
	flag        Flag
	codec       Decoder
	documents   Documents
	gate        Gate
	revocations Revocations
	clock       clock.Clock
	logger      logging.Logger
}

// Option configures optional Verifier collaborators.
type Option func(*Verifier)

// WithRevocations enables the per-token deny-list.
func WithRevocations(r Revocations) Option {
	return func(v *Verifier) { v.revocations = r }
}

// WithClock replaces the wall clock used for expiry.
func WithClock(c clock.Clock) Option {
	return func(v *Verifier) { v.clock = c }
}

// NewVerifier wires the verifier's collaborators.
func NewVerifier(flag Flag, codec Decoder, documents Documents, gate Gate, logger logging.Logger, opts ...Option) *Verifier {
	v := &Verifier{
		flag:      flag,
		codec:     codec,
		documents: documents,
		gate:      gate,
		clock:     clock.Real(),
		logger:    logger.With("module", "access"),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks raw and returns the resolved target or a *Denial.
func (v *Verifier) Verify(ctx context.Context, raw string, requester models.Requester) (*Resolved, error) {
	res, err := v.verify(ctx, raw, requester)
	if err != nil {
		var d *Denial
		if errors.As(err, &d) {
			v.logger.Info(ctx, "link denied", "reason", d.Reason.String(), "cause", errString(d.Err))
		}
		return nil, err
	}
	return res, nil
}

func (v *Verifier) verify(ctx context.Context, raw string, requester models.Requester) (*Resolved, error) {
	if !v.flag.Enabled() {
		return nil, deny(FeatureDisabled, nil)
	}

	p, wire, err := v.codec.DecodeRaw(raw)
	if err != nil {
		return nil, deny(Malformed, err)
	}

	if p.ExpiredAt(v.clock.Now().Unix()) {
		return nil, deny(Expired, common.ErrTokenExpired)
	}

	if v.revocations != nil {
		revoked, err := v.revocations.IsRevoked(ctx, cryptox.Digest(wire))
		if err != nil {
			return nil, deny(Revoked, fmt.Errorf("revocation lookup: %w", err))
		}
		if revoked {
			return nil, deny(Revoked, common.ErrTokenRevoked)
		}
	}

	doc, err := v.documents.GetDocument(ctx, p.DocumentID)
	if err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			v.logger.Error(ctx, "document lookup failed", "document_id", p.DocumentID, "error", err.Error())
		}
		return nil, deny(NotFound, err)
	}

	if p.FileIndex != nil {
		if _, ok := doc.File(*p.FileIndex); !ok {
			return nil, deny(NotFound, fmt.Errorf("document %d has no file %d", doc.ID, *p.FileIndex))
		}
	}

	if doc.Visibility != models.VisibilityPublic {
		ok, err := v.gate.IsAuthorized(ctx, doc, requester)
		if err != nil {
			v.logger.Error(ctx, "permission gate failed", "document_id", doc.ID, "error", err.Error())
			return nil, deny(Forbidden, err)
		}
		if !ok {
			return nil, deny(Forbidden, common.ErrorUnauthorized)
		}
	}

	return &Resolved{Payload: p, Document: doc}, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
