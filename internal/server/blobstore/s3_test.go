package blobstore

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
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/rackbook/internal/common"
)

type fakeS3 struct {
	getOut  *s3.GetObjectOutput
	getErr  error
	putOut  *s3.PutObjectOutput
	putErr  error
	headErr error

	lastGet *s3.GetObjectInput
	lastPut *s3.PutObjectInput
	putBody string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.lastGet = in
	return f.getOut, f.getErr
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.lastPut = in
	if in.Body != nil {
		b, _ := io.ReadAll(in.Body)
		f.putBody = string(b)
	}
	return f.putOut, f.putErr
}

func (f *fakeS3) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func TestS3Store_Get(t *testing.T) {
	f := &fakeS3{getOut: &s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(`[{"id":1}]`)),
		ETag: aws.String(`"etag-1"`),
	}}
	s := NewS3StoreWithClient(f, "rackbook", "prod/")

	obj, err := s.Get(context.Background(), "devices.json")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":1}]`, string(obj.Data))
	assert.Equal(t, `"etag-1"`, obj.Version)
	assert.Equal(t, "rackbook", aws.ToString(f.lastGet.Bucket))
	assert.Equal(t, "prod/devices.json", aws.ToString(f.lastGet.Key))
}

func TestS3Store_GetErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"typed no such key", &types.NoSuchKey{}, ErrNotFound},
		{"generic no such key", &smithy.GenericAPIError{Code: "NoSuchKey"}, ErrNotFound},
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, common.ErrStoreUnavailable},
		{"network", errors.New("dial tcp: connection refused"), common.ErrStoreUnavailable},
		{"deadline", context.DeadlineExceeded, common.ErrStoreUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewS3StoreWithClient(&fakeS3{getErr: tt.err}, "b", "")
			_, err := s.Get(context.Background(), "bookings.json")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestS3Store_PutConditional(t *testing.T) {
	f := &fakeS3{putOut: &s3.PutObjectOutput{ETag: aws.String(`"etag-2"`)}}
	s := NewS3StoreWithClient(f, "b", "")

	v, err := s.Put(context.Background(), "bookings.json", []byte(`[]`), PutOptions{IfMatch: `"etag-1"`})
	require.NoError(t, err)
	assert.Equal(t, `"etag-2"`, v)
	assert.Equal(t, `"etag-1"`, aws.ToString(f.lastPut.IfMatch))
	assert.Nil(t, f.lastPut.IfNoneMatch)
	assert.Equal(t, "application/json", aws.ToString(f.lastPut.ContentType))
	assert.Equal(t, `[]`, f.putBody)

	_, err = s.Put(context.Background(), "users.json", []byte(`[]`), PutOptions{IfNoneMatch: true})
	require.NoError(t, err)
	assert.Equal(t, "*", aws.ToString(f.lastPut.IfNoneMatch))
	assert.Nil(t, f.lastPut.IfMatch)

	_, err = s.Put(context.Background(), "devices.json", []byte(`[]`), PutOptions{})
	require.NoError(t, err)
	assert.Nil(t, f.lastPut.IfMatch)
	assert.Nil(t, f.lastPut.IfNoneMatch)
}

func TestS3Store_PutErrors(t *testing.T) {
	for _, code := range []string{"PreconditionFailed", "ConditionalRequestConflict"} {
		s := NewS3StoreWithClient(&fakeS3{putErr: &smithy.GenericAPIError{Code: code}}, "b", "")
		_, err := s.Put(context.Background(), "k", nil, PutOptions{IfMatch: "x"})
		assert.ErrorIs(t, err, common.ErrStaleWrite, code)
	}

	s := NewS3StoreWithClient(&fakeS3{putErr: errors.New("boom")}, "b", "")
	_, err := s.Put(context.Background(), "k", nil, PutOptions{})
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
}

func TestS3Store_Ping(t *testing.T) {
	assert.NoError(t, NewS3StoreWithClient(&fakeS3{}, "b", "").Ping(context.Background()))

	err := NewS3StoreWithClient(&fakeS3{headErr: &smithy.GenericAPIError{Code: "NotFound"}}, "b", "").Ping(context.Background())
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestNewS3Store_UsesConfigSeams(t *testing.T) {
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	var region string
	var hasCreds bool
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			_ = fn(&lo)
		}
		region = lo.Region
		hasCreds = lo.Credentials != nil
		return aws.Config{}, nil
	}

	var opts s3.Options
	fake := &fakeS3{}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) S3API {
		for _, fn := range optFns {
			fn(&opts)
		}
		return fake
	}

	s, err := NewS3Store(context.Background(), S3Options{
		AccessKey: "minio", SecretKey: "minio123", Region: "auto",
		BaseEndpoint: "http://127.0.0.1:9000", Bucket: "rackbook", UsePathStyle: true,
	})
	require.NoError(t, err)
	assert.Same(t, fake, s.client)
	assert.Equal(t, "auto", region)
	assert.True(t, hasCreds)
	assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)

	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no region")
	}
	_, err = NewS3Store(context.Background(), S3Options{})
	assert.ErrorContains(t, err, "no region")
}
