package objectstore

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"strings"

	"github.com/absfs/credcrypt"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/pkg/errors"
)

// S3API is the subset of *s3.Client the store uses
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options configures the S3 client
type S3Options struct {
	Region          string
	Endpoint        string
	ForcePathStyle  bool
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// S3Store implements credcrypt.ObjectStore on S3 or an S3-compatible service
type S3Store struct {
	client S3API
}

var _ credcrypt.ObjectStore = (*S3Store)(nil)

// NewS3Client builds an S3 client from the default AWS config chain, with
// static credentials and a custom endpoint when given
func NewS3Client(ctx context.Context, opts S3Options) (*s3.Client, error) {
	loadOptions := []func(*config.LoadOptions) error{}
	if opts.Region != "" {
		loadOptions = append(loadOptions, config.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOptions = append(loadOptions, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, opts.SessionToken),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.ForcePathStyle
	}), nil
}

// NewS3Store creates a store backed by client
func NewS3Store(client S3API) *S3Store {
	return &S3Store{client: client}
}

// GetObject downloads an object with its metadata
func (s *S3Store) GetObject(ctx context.Context, ref credcrypt.ObjectRef) (*credcrypt.Object, error) {
	resp, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		return nil, wrapS3Error(err, "get", ref)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "read body of s3://%s/%s", ref.Bucket, ref.Key)
	}

	return &credcrypt.Object{
		ObjectInfo: credcrypt.ObjectInfo{
			Bucket:       ref.Bucket,
			Key:          ref.Key,
			ContentType:  aws.ToString(resp.ContentType),
			Metadata:     resp.Metadata,
			Size:         int64(len(body)),
			LastModified: aws.ToTime(resp.LastModified),
		},
		Body: body,
	}, nil
}

// HeadObject reads an object's metadata without its content
func (s *S3Store) HeadObject(ctx context.Context, ref credcrypt.ObjectRef) (*credcrypt.ObjectInfo, error) {
	resp, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		return nil, wrapS3Error(err, "head", ref)
	}

	return &credcrypt.ObjectInfo{
		Bucket:       ref.Bucket,
		Key:          ref.Key,
		ContentType:  aws.ToString(resp.ContentType),
		Metadata:     resp.Metadata,
		Size:         aws.ToInt64(resp.ContentLength),
		LastModified: aws.ToTime(resp.LastModified),
	}, nil
}

// PutObject uploads an object with its metadata
func (s *S3Store) PutObject(ctx context.Context, ref credcrypt.ObjectRef, obj *credcrypt.Object) error {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(ref.Bucket),
		Key:           aws.String(ref.Key),
		Body:          bytes.NewReader(obj.Body),
		ContentLength: aws.Int64(int64(len(obj.Body))),
		Metadata:      obj.Metadata,
	}
	if obj.ContentType != "" {
		input.ContentType = aws.String(obj.ContentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return errors.Wrapf(err, "put s3://%s/%s", ref.Bucket, ref.Key)
	}
	return nil
}

func wrapS3Error(err error, op string, ref credcrypt.ObjectRef) error {
	if isS3NotFound(err) {
		return errors.Wrapf(credcrypt.ErrObjectNotFound, "%s s3://%s/%s", op, ref.Bucket, ref.Key)
	}
	return errors.Wrapf(err, "%s s3://%s/%s", op, ref.Bucket, ref.Key)
}

func isS3NotFound(err error) bool {
	if err == nil {
		return false
	}
	var noSuchKey *types.NoSuchKey
	if stderrors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if stderrors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		code := strings.TrimSpace(apiErr.ErrorCode())
		return code == "NoSuchKey" || code == "NotFound" || code == "404"
	}
	return false
}
