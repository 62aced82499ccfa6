package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Config struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Endpoint  string
	Prefix    string
}

// objectPutter is the slice of the S3 API the archive needs.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archive writes dead letters as JSON objects into a bucket.
type S3Archive struct {
	cfg S3Config
	s3  objectPutter
}

func NewS3Archive(ctx context.Context, cfg S3Config) (*S3Archive, error) {
	if cfg.Region == "" || cfg.Bucket == "" {
		return nil, errors.New("s3 region and bucket are required")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = "dead-letters"
	}

	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(cfg.Region))

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		if parsed, err := url.Parse(endpoint); err == nil {
			endpoint = parsed.String()
		}
		opts = append(opts, config.WithEndpointResolverWithOptions(
			aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				if service == s3.ServiceID {
					return aws.Endpoint{URL: endpoint, SigningRegion: cfg.Region}, nil
				}
				return aws.Endpoint{}, &aws.EndpointNotFoundError{}
			}),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	return &S3Archive{cfg: cfg, s3: s3Client}, nil
}

// objectKey groups dead letters by topic and UTC day.
func (a *S3Archive) objectKey(letter DeadLetter) string {
	day := letter.ReceivedAt.UTC().Format("2006/01/02")
	return fmt.Sprintf("%s/%s/%s/%d-%s.json", a.cfg.Prefix, letter.Topic, day, letter.Partition, letter.MessageID)
}

func (a *S3Archive) Archive(ctx context.Context, letter DeadLetter) error {
	if a == nil {
		return errors.New("s3 archive not initialized")
	}
	body, err := json.Marshal(letter)
	if err != nil {
		return fmt.Errorf("marshal dead letter: %w", err)
	}

	key := a.objectKey(letter)
	_, err = a.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.cfg.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String("application/json"),
		Body:        bytes.NewReader(body),
	})
	if err != nil {
		return fmt.Errorf("put dead letter %s: %w", key, err)
	}
	return nil
}
