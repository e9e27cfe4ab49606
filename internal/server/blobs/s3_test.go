package blobs

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/securelinks/internal/common"
	"github.com/dmitrijs2005/securelinks/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGetter struct {
	out *s3.GetObjectOutput
	err error
	in  *s3.GetObjectInput
}

func (f *fakeGetter) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.in = in
	return f.out, f.err
}

func defaultConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	return cfg
}

func withS3Seams(t *testing.T, g objectGetter, cfgErr error) *s3.Options {
	t.Helper()
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig, newS3ClientFromConfig = origLoad, origNew
	})

	opts := &s3.Options{}
	loadDefaultAWSConfig = func(ctx context.Context, _ ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, cfgErr
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectGetter {
		for _, fn := range optFns {
			fn(opts)
		}
		return g
	}
	return opts
}

func TestNewS3Source_AppliesEndpoint(t *testing.T) {
	opts := withS3Seams(t, &fakeGetter{}, nil)

	cfg := defaultConfig()
	src, err := NewS3Source(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.S3Bucket, src.bucket)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, cfg.S3BaseEndpoint, *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)
}

func TestNewS3Source_ConfigError(t *testing.T) {
	withS3Seams(t, &fakeGetter{}, errors.New("no creds"))

	_, err := NewS3Source(context.Background(), defaultConfig())
	assert.ErrorContains(t, err, "load aws config: no creds")
}

func TestS3Source_Open(t *testing.T) {
	g := &fakeGetter{out: &s3.GetObjectOutput{
		Body:          io.NopCloser(strings.NewReader("hello")),
		ContentLength: aws.Int64(5),
	}}
	src := &S3Source{client: g, bucket: "documents"}

	b, err := src.Open(context.Background(), "docs/1/0")
	require.NoError(t, err)
	defer b.Body.Close()

	assert.Equal(t, int64(5), b.Size)
	assert.Equal(t, "documents", aws.ToString(g.in.Bucket))
	assert.Equal(t, "docs/1/0", aws.ToString(g.in.Key))
	body, _ := io.ReadAll(b.Body)
	assert.Equal(t, "hello", string(body))
}

func TestS3Source_Open_UnknownLength(t *testing.T) {
	src := &S3Source{client: &fakeGetter{out: &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(""))}}}

	b, err := src.Open(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), b.Size)
}

func TestS3Source_Open_NoSuchKey(t *testing.T) {
	src := &S3Source{client: &fakeGetter{err: &types.NoSuchKey{}}}

	_, err := src.Open(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestS3Source_Open_OtherError(t *testing.T) {
	src := &S3Source{client: &fakeGetter{err: errors.New("timeout")}}

	_, err := src.Open(context.Background(), "k")
	assert.ErrorContains(t, err, "timeout")
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}
