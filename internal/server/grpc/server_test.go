package grpc

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/securelinks/internal/clock"
	"github.com/dmitrijs2005/securelinks/internal/common"
	"github.com/dmitrijs2005/securelinks/internal/cryptox"
	"github.com/dmitrijs2005/securelinks/internal/logging"
	"github.com/dmitrijs2005/securelinks/internal/server/auth"
	"github.com/dmitrijs2005/securelinks/internal/server/links"
	"github.com/dmitrijs2005/securelinks/internal/server/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const jwtSecret = "jwt-secret"

type memRevocations struct {
	mu      sync.Mutex
	digests map[[32]byte]bool
	err     error
}

func (m *memRevocations) Revoke(_ context.Context, d [32]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.digests == nil {
		m.digests = map[[32]byte]bool{}
	}
	m.digests[d] = true
	return nil
}

type harness struct {
	client *LinkServiceClient
	codec  *token.Codec
	gen    *links.Generator
	clock  *clock.FakeClock
	rv     *memRevocations
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	codec, err := token.NewCodec([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	clk := clock.Fake(time.Unix(1_700_000_000, 0))
	gen, err := links.NewGenerator(codec, "https://docs.example.com", "/secure/view", "/secure/download", clk)
	require.NoError(t, err)
	rv := &memRevocations{}

	s := NewGRPCServer("bufnet", logging.Nop(), gen, codec, rv, jwtSecret)

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.serve(ctx, lis) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return &harness{client: NewLinkServiceClient(conn), codec: codec, gen: gen, clock: clk, rv: rv}
}

func adminCtx(t *testing.T) context.Context {
	t.Helper()
	tok, err := auth.GenerateAdminToken("ops", []byte(jwtSecret), time.Hour)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, tok)
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestMintViewLink(t *testing.T) {
	h := newHarness(t)
	ctx := adminCtx(t)

	got, err := h.client.MintViewLink(ctx, mustStruct(t, map[string]any{"document_id": 42}))
	require.NoError(t, err)
	want, err := h.gen.ViewLink(42, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, want, got.GetValue())

	// deterministic across calls
	again, err := h.client.MintViewLink(ctx, mustStruct(t, map[string]any{"document_id": 42}))
	require.NoError(t, err)
	assert.Equal(t, got.GetValue(), again.GetValue())
}

func TestMintViewLink_FileAndTTL(t *testing.T) {
	h := newHarness(t)

	got, err := h.client.MintViewLink(adminCtx(t), mustStruct(t, map[string]any{
		"document_id": "42", "file_index": 2, "ttl_seconds": 3600,
	}))
	require.NoError(t, err)

	want, err := h.gen.ViewLink(42, token.Index(2), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, want, got.GetValue())
}

func TestMintDownloadLink(t *testing.T) {
	h := newHarness(t)

	got, err := h.client.MintDownloadLink(adminCtx(t), mustStruct(t, map[string]any{"document_id": 42, "file_index": 1}))
	require.NoError(t, err)

	want, err := h.gen.DownloadLink(42, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, want, got.GetValue())
}

func TestMint_InvalidArguments(t *testing.T) {
	h := newHarness(t)
	ctx := adminCtx(t)

	bad := []map[string]any{
		{},
		{"document_id": -1},
		{"document_id": 1.5},
		{"document_id": "abc"},
		{"document_id": true},
		{"document_id": 1, "file_index": float64(1 << 33)},
		{"document_id": 1, "ttl_seconds": -5},
	}
	for _, m := range bad {
		_, err := h.client.MintViewLink(ctx, mustStruct(t, m))
		assert.Equal(t, codes.InvalidArgument, status.Code(err), "%v", m)
	}

	_, err := h.client.MintDownloadLink(ctx, mustStruct(t, map[string]any{"document_id": 1}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestMint_RequiresAdmin(t *testing.T) {
	h := newHarness(t)

	_, err := h.client.MintViewLink(context.Background(), mustStruct(t, map[string]any{"document_id": 1}))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestRevokeLink(t *testing.T) {
	h := newHarness(t)

	link, err := h.gen.DownloadLink(42, 0, 0)
	require.NoError(t, err)

	_, err = h.client.RevokeLink(adminCtx(t), wrapperspb.String(link))
	require.NoError(t, err)

	tok := tokenFromInput(link)
	_, wire, err := h.codec.DecodeRaw(tok)
	require.NoError(t, err)
	assert.True(t, h.rv.digests[cryptox.Digest(wire)])

	// bare tokens work too and revoking twice is fine
	_, err = h.client.RevokeLink(adminCtx(t), wrapperspb.String(tok))
	require.NoError(t, err)
	assert.Len(t, h.rv.digests, 1)
}

func TestRevokeLink_Errors(t *testing.T) {
	h := newHarness(t)

	_, err := h.client.RevokeLink(adminCtx(t), wrapperspb.String("garbage"))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	h.rv.err = errors.New("db down")
	link, _ := h.gen.ViewLink(1, nil, 0)
	_, err = h.client.RevokeLink(adminCtx(t), wrapperspb.String(link))
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.NotContains(t, status.Convert(err).Message(), "db down")
}

func TestTokenFromInput(t *testing.T) {
	assert.Equal(t, "abc", tokenFromInput(" abc "))
	assert.Equal(t, "abc", tokenFromInput("https://x.example/secure/view?token=abc"))
	assert.Equal(t, "abc", tokenFromInput("/secure/download?token=abc&file=1"))
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := newTestServer("secret")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop(), nil, nil, nil, "secret")

	if err := srv.Run(context.Background()); err == nil {
		t.Fatal("expected error from Run on bad address, got nil")
	}
}
