// Package s3 archives report artifacts in an S3 bucket or any
// S3-compatible endpoint.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"maintenance-backend/internal/shared/storage/object"
	"maintenance-backend/internal/shared/util"
)

type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Options selects the bucket. Endpoint switches to path-style addressing
// for MinIO and similar servers on the rig network.
type Options struct {
	Region   string
	Bucket   string
	Prefix   string
	KMSKeyID string
	Endpoint string
}

type Store struct {
	api    objectAPI
	bucket string
	prefix string
	kmsKey string
	now    func() time.Time
}

func New(ctx context.Context, opts Options) (object.ObjectStore, error) {
	if strings.TrimSpace(opts.Bucket) == "" {
		return nil, errors.New("s3 bucket is required")
	}
	var loaders []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loaders = append(loaders, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if ep := strings.TrimSpace(opts.Endpoint); ep != "" {
			o.BaseEndpoint = aws.String(ep)
			o.UsePathStyle = true
		}
	})
	return newStore(client, opts), nil
}

func newStore(api objectAPI, opts Options) *Store {
	return &Store{
		api:    api,
		bucket: opts.Bucket,
		prefix: strings.Trim(strings.TrimSpace(opts.Prefix), "/"),
		kmsKey: strings.TrimSpace(opts.KMSKeyID),
		now:    time.Now,
	}
}

// Save uploads r with server-side encryption. The original file name is
// kept in metadata so a later download gets a sensible name.
func (s *Store) Save(ctx context.Context, namespace string, fileName string, r io.Reader) (string, int64, string, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, "", err
	}
	key, err := object.NewKey(namespace, fileName, s.now())
	if err != nil {
		return "", 0, "", err
	}
	mimeType, body, err := object.Sniff(fileName, r)
	if err != nil {
		return "", 0, "", err
	}
	counted := &countingReader{r: body}

	input := &s3.PutObjectInput{
		Bucket:             aws.String(s.bucket),
		Key:                aws.String(s.objectKey(key)),
		Body:               counted,
		ContentType:        aws.String(mimeType),
		ContentDisposition: aws.String(util.ContentDisposition("attachment", fileName)),
		Metadata:           map[string]string{"namespace": namespace, "file-name": fileName},
	}
	input.ServerSideEncryption = s3types.ServerSideEncryptionAes256
	if s.kmsKey != "" {
		input.ServerSideEncryption = s3types.ServerSideEncryptionAwsKms
		input.SSEKMSKeyId = aws.String(s.kmsKey)
	}

	if _, err := s.api.PutObject(ctx, input); err != nil {
		return "", 0, "", fmt.Errorf("s3 put %s/%s: %w", s.bucket, aws.ToString(input.Key), err)
	}
	return key, counted.n, mimeType, nil
}

func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.Contains(key, "..") || strings.TrimSpace(key) == "" {
		return nil, object.ErrInvalidKey
	}
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	var missing *s3types.NoSuchKey
	if errors.As(err, &missing) {
		return nil, fmt.Errorf("%s: %w", key, object.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("s3 get %s/%s: %w", s.bucket, s.objectKey(key), err)
	}
	return out.Body, nil
}

func (s *Store) objectKey(key string) string {
	key = strings.TrimLeft(key, "/")
	switch {
	case s.prefix == "":
		return key
	case key == "":
		return s.prefix
	}
	return s.prefix + "/" + key
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

var _ object.ObjectStore = (*Store)(nil)
