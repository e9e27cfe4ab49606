package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/securelinks/internal/logging"
	"github.com/dmitrijs2005/securelinks/internal/server/token"
	"google.golang.org/grpc"
)

// Minter mints link URLs; implemented by links.Generator.
type Minter interface {
	ViewLink(documentID uint64, fileIndex *uint32, ttl time.Duration) (string, error)
	DownloadLink(documentID uint64, fileIndex uint32, ttl time.Duration) (string, error)
}

// Decoder recovers a token's wire bytes; implemented by token.Codec.
type Decoder interface {
	DecodeRaw(s string) (token.Payload, []byte, error)
}

// Revocations stores revoked token digests.
type Revocations interface {
	Revoke(ctx context.Context, digest [32]byte) error
}

type GRPCServer struct {
	address     string
	links       Minter
	codec       Decoder
	revocations Revocations
	logger      logging.Logger
	jwtSecret   []byte
}

func NewGRPCServer(a string, l logging.Logger, links Minter, codec Decoder, rv Revocations, secretKey string) *GRPCServer {
	return &GRPCServer{
		address:     a,
		logger:      l.With("module", "grpc_server"),
		links:       links,
		codec:       codec,
		revocations: rv,
		jwtSecret:   []byte(secretKey),
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))

	RegisterLinkServiceServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
