package grpc

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/securelinks/internal/common"
	"github.com/dmitrijs2005/securelinks/internal/cryptox"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	fieldDocumentID = "document_id"
	fieldFileIndex  = "file_index"
	fieldTTLSeconds = "ttl_seconds"
)

func (s *GRPCServer) MintViewLink(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	doc, fileIndex, ttl, err := parseMintRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	var idx *uint32
	if fileIndex != nil {
		v := uint32(*fileIndex)
		idx = &v
	}

	link, err := s.links.ViewLink(doc, idx, ttl)
	if err != nil {
		s.logger.Error(ctx, "mint view link", "document_id", doc, "error", err.Error())
		return nil, status.Error(codes.Internal, common.ErrorInternal.Error())
	}

	s.logger.Info(ctx, "View link minted", "document_id", doc, "admin", userIDFromContext(ctx), "ttl", ttl.String())
	return wrapperspb.String(link), nil
}

func (s *GRPCServer) MintDownloadLink(ctx context.Context, req *structpb.Struct) (*wrapperspb.StringValue, error) {
	doc, fileIndex, ttl, err := parseMintRequest(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if fileIndex == nil {
		return nil, status.Error(codes.InvalidArgument, "file_index is required")
	}

	link, err := s.links.DownloadLink(doc, uint32(*fileIndex), ttl)
	if err != nil {
		s.logger.Error(ctx, "mint download link", "document_id", doc, "error", err.Error())
		return nil, status.Error(codes.Internal, common.ErrorInternal.Error())
	}

	s.logger.Info(ctx, "Download link minted", "document_id", doc, "file_index", *fileIndex, "admin", userIDFromContext(ctx), "ttl", ttl.String())
	return wrapperspb.String(link), nil
}

func (s *GRPCServer) RevokeLink(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	raw := tokenFromInput(req.GetValue())

	p, wire, err := s.codec.DecodeRaw(raw)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, common.ErrInvalidToken.Error())
	}

	if err := s.revocations.Revoke(ctx, cryptox.Digest(wire)); err != nil {
		s.logger.Error(ctx, "revoke link", "document_id", p.DocumentID, "error", err.Error())
		return nil, status.Error(codes.Internal, common.ErrorInternal.Error())
	}

	s.logger.Info(ctx, "Link revoked", "document_id", p.DocumentID, "kind", p.Kind.String(), "admin", userIDFromContext(ctx))
	return &emptypb.Empty{}, nil
}

// tokenFromInput accepts either a bare token or a full link URL.
func tokenFromInput(in string) string {
	in = strings.TrimSpace(in)
	if !strings.Contains(in, "?") {
		return in
	}
	u, err := url.Parse(in)
	if err != nil {
		return in
	}
	return u.Query().Get(common.TokenQueryParam)
}

func parseMintRequest(req *structpb.Struct) (doc uint64, fileIndex *uint64, ttl time.Duration, err error) {
	fields := req.GetFields()

	doc, ok, err := uintField(fields, fieldDocumentID, 64)
	if err != nil {
		return 0, nil, 0, err
	}
	if !ok {
		return 0, nil, 0, fmt.Errorf("%s is required", fieldDocumentID)
	}

	idx, ok, err := uintField(fields, fieldFileIndex, 32)
	if err != nil {
		return 0, nil, 0, err
	}
	if ok {
		fileIndex = &idx
	}

	secs, ok, err := uintField(fields, fieldTTLSeconds, 32)
	if err != nil {
		return 0, nil, 0, err
	}
	if ok {
		ttl = time.Duration(secs) * time.Second
	}

	return doc, fileIndex, ttl, nil
}

// uintField reads an unsigned integer given either as a JSON number or, for
// values beyond 2^53, as a decimal string. Null counts as absent.
func uintField(fields map[string]*structpb.Value, name string, bits int) (uint64, bool, error) {
	v, ok := fields[name]
	if !ok {
		return 0, false, nil
	}

	switch k := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return 0, false, nil
	case *structpb.Value_NumberValue:
		f := k.NumberValue
		if f < 0 || f != math.Trunc(f) || f > (1<<53) || f > float64(uint64(1)<<bits-1) {
			return 0, false, fmt.Errorf("%s: %v is not a valid unsigned integer", name, f)
		}
		return uint64(f), true, nil
	case *structpb.Value_StringValue:
		n, err := strconv.ParseUint(k.StringValue, 10, bits)
		if err != nil {
			return 0, false, fmt.Errorf("%s: %q is not a valid unsigned integer", name, k.StringValue)
		}
		return n, true, nil
	default:
		return 0, false, fmt.Errorf("%s: unsupported value type", name)
	}
}
