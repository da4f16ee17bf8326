// Package settings reads and writes the report's sender and recipient
// addresses, stored as plain-text objects in the notification bucket.
package settings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/go-playground/validator/v10"

	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/models"
)

var (
	ErrMissingAddress = errors.New("report address not configured")
	ErrInvalidAddress = errors.New("report address is not an email address")
)

// S3API is the subset of the S3 client used here.
type S3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Store struct {
	client   S3API
	bucket   string
	validate *validator.Validate
}

// NewS3Store builds a store on a real S3 client. endpoint is optional
// (LocalStack and friends need path-style addressing).
func NewS3Store(cfg aws.Config, bucket, endpoint string) *S3Store {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3StoreWithClient(client, bucket)
}

func NewS3StoreWithClient(client S3API, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket, validate: validator.New()}
}

// Addresses loads both report addresses. Either one missing is an error.
func (s *S3Store) Addresses(ctx context.Context) (models.Addresses, error) {
	sender, err := s.Get(ctx, models.RoleSender)
	if err != nil {
		return models.Addresses{}, err
	}
	recipient, err := s.Get(ctx, models.RoleRecipient)
	if err != nil {
		return models.Addresses{}, err
	}

	a := models.Addresses{Sender: sender, Recipient: recipient}
	if err := s.validate.Struct(a); err != nil {
		return models.Addresses{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return a, nil
}

// Get returns the address stored under role, with surrounding whitespace removed.
func (s *S3Store) Get(ctx context.Context, role models.Role) (string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(string(role)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return "", fmt.Errorf("%w: %s (s3://%s/%s)", ErrMissingAddress, role, s.bucket, role)
		}
		return "", fmt.Errorf("get %s address: %w", role, err)
	}
	defer out.Body.Close()

	b, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("read %s address: %w", role, err)
	}

	addr := strings.TrimSpace(string(b))
	if addr == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrMissingAddress, role)
	}
	return addr, nil
}

// Put replaces the address stored under role.
func (s *S3Store) Put(ctx context.Context, role models.Role, addr string) error {
	addr = strings.TrimSpace(addr)
	if err := s.validate.Var(addr, "required,email"); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidAddress, addr)
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(string(role)),
		Body:        strings.NewReader(addr),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("put %s address: %w", role, err)
	}
	return nil
}
