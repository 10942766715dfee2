package remote

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/frond-ui/frond/internal/errors"
)

// S3API is the subset of the S3 client used by S3Source.
// Narrowed for testability; *s3.Client satisfies it.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source fetches JSON objects from an S3 bucket. Directive args are
// joined into the object key under the configured prefix:
// "$remote.s3.pages.home" with prefix "configs/" reads "configs/pages/home".
//
// Example:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	source := remote.NewS3Source(s3.NewFromConfig(cfg), "my-bucket", "configs/")
//	fetcher.RegisterSource("s3", source)
type S3Source struct {
	client S3API
	bucket string
	prefix string
}

// NewS3Source creates an S3Source reading from the given bucket and key prefix.
func NewS3Source(client S3API, bucket, prefix string) *S3Source {
	return &S3Source{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// Fetch implements Source.
func (s *S3Source) Fetch(ctx context.Context, d Directive) (any, error) {
	key := s.prefix + strings.Join(d.Args, "/")

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.New("E003").
			WithDetailf("Could not read s3://%s/%s", s.bucket, key).
			Wrap(err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.New("E003").Wrap(err)
	}

	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, errors.New("E003").
			WithDetailf("s3://%s/%s is not valid JSON", s.bucket, key).
			Wrap(err)
	}
	return value, nil
}
