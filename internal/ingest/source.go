package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// ErrMissing is returned by a Source when the named file does not exist.
var ErrMissing = errors.New("file not found")

// Source hands the loader the raw CSV files by name.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	String() string
}

// DirSource reads files from a local folder.
type DirSource struct {
	Dir string
}

func (d DirSource) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(d.Dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrMissing
	}
	return f, err
}

func (d DirSource) String() string {
	return d.Dir
}

// S3Config holds the credentials for S3Source. Empty keys fall back to the
// default AWS credential chain.
type S3Config struct {
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
}

// S3Source reads files stored under a prefix of an S3 bucket.
type S3Source struct {
	Client s3iface.S3API
	Bucket string
	Prefix string
}

func NewS3Source(cfg S3Config) (*S3Source, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket name not configured")
	}

	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %v", err)
	}

	return &S3Source{Client: s3.New(sess), Bucket: cfg.Bucket, Prefix: cfg.Prefix}, nil
}

func (s *S3Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	out, err := s.Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var aerr awserr.Error
		if errors.As(err, &aerr) && (aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == "NotFound") {
			return nil, ErrMissing
		}
		return nil, fmt.Errorf("failed to fetch s3://%s/%s: %v", s.Bucket, s.key(name), err)
	}
	return out.Body, nil
}

func (s *S3Source) String() string {
	return fmt.Sprintf("s3://%s/%s", s.Bucket, s.Prefix)
}

func (s *S3Source) key(name string) string {
	if s.Prefix == "" {
		return name
	}
	return path.Join(s.Prefix, name)
}
