package s3store

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aussiebroadwan/vidtab/internal/accounts/media"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func TestNewAppliesConfig(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		require.Equal(t, "us-east-1", lo.Region)
		require.NotNil(t, lo.Credentials, "static credentials expected")
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	s, err := New(t.Context(), Config{
		Bucket:    "vidtab",
		Region:    "us-east-1",
		Endpoint:  "http://127.0.0.1:9000",
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
	})
	require.NoError(t, err)
	require.NotNil(t, opts.BaseEndpoint)
	require.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	require.True(t, opts.UsePathStyle)
	require.Equal(t, "http://127.0.0.1:9000/vidtab", s.baseURL)
}

func TestNewPropagatesConfigErrors(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })

	boom := errors.New("no region")
	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, boom
	}

	_, err := New(t.Context(), Config{Bucket: "vidtab"})
	require.ErrorIs(t, err, boom)

	_, err = New(t.Context(), Config{})
	require.Error(t, err)
}

func TestPut(t *testing.T) {
	fake := &fakeS3{}
	s := newStore(fake, Config{Bucket: "vidtab", PublicBaseURL: "https://cdn.example.com/"})

	url, err := s.Put(t.Context(), media.Upload{
		Kind:        media.KindCoverImage,
		Filename:    "cover.webp",
		ContentType: "image/webp",
		Size:        5,
		Body:        strings.NewReader("bytes"),
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "https://cdn.example.com/cover-images/"), url)
	require.True(t, strings.HasSuffix(url, ".webp"), url)

	require.Equal(t, "vidtab", aws.ToString(fake.in.Bucket))
	require.Equal(t, "image/webp", aws.ToString(fake.in.ContentType))
	require.Equal(t, int64(5), aws.ToInt64(fake.in.ContentLength))
	require.Equal(t, strings.TrimPrefix(url, "https://cdn.example.com/"), aws.ToString(fake.in.Key))
	require.Equal(t, "bytes", fake.body)
}

func TestPutErrors(t *testing.T) {
	boom := errors.New("access denied")
	s := newStore(&fakeS3{err: boom}, Config{Bucket: "vidtab", Region: "ap-southeast-2"})
	require.Equal(t, "https://vidtab.s3.ap-southeast-2.amazonaws.com", s.baseURL)

	_, err := s.Put(t.Context(), media.Upload{Kind: media.KindAvatar, Filename: "me.png", Size: -1, Body: strings.NewReader("x")})
	require.ErrorIs(t, err, boom)

	_, err = s.Put(t.Context(), media.Upload{Kind: media.KindAvatar, Filename: "me.png", Size: 0, Body: strings.NewReader("")})
	require.ErrorIs(t, err, media.ErrEmpty)
}

func TestPutStoresImageContentType(t *testing.T) {
	fake := &fakeS3{}
	s := newStore(fake, Config{Bucket: "vidtab", Region: "ap-southeast-2"})

	_, err := s.Put(t.Context(), media.Upload{
		Kind:        media.KindAvatar,
		Filename:    "me.JPG",
		ContentType: "text/html",
		Size:        3,
		Body:        strings.NewReader("jpg"),
	})
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", aws.ToString(fake.in.ContentType))

	fake.in = nil
	_, err = s.Put(t.Context(), media.Upload{Kind: media.KindAvatar, Filename: "evil.html", Size: 3, Body: strings.NewReader("<p>")})
	require.ErrorIs(t, err, media.ErrUnsupportedType)
	require.Nil(t, fake.in, "rejected uploads never reach the bucket")
}
