package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/MASAKi-cell/personstore/pkg/people"
)

// s3API is the subset of the S3 client the store uses.
// *s3.Client satisfies it.
type s3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store is a people.Service that keeps each person as a JSON object at
// <prefix><id>.json.
//
// Example usage:
//
//	client := s3.New(s3.Options{Region: "us-east-1"})
//	store := storage.NewS3Store(client, "my-bucket", "people/")
type S3Store struct {
	client s3API
	bucket string
	prefix string
}

// NewS3Store creates a new S3-backed store.
//
// Parameters:
//   - client: AWS S3 client from aws-sdk-go-v2
//   - bucket: S3 bucket name
//   - prefix: key prefix for person objects (e.g., "people/")
func NewS3Store(client s3API, bucket, prefix string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// List fetches every person object under the prefix.
func (s *S3Store) List(ctx context.Context) ([]people.Person, error) {
	var out []people.Person

	var continuation *string
	for {
		page, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(s.prefix),
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, fmt.Errorf("list people objects: %w", err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, ".json") {
				continue
			}
			p, err := s.getPerson(ctx, key)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}

		if page.NextContinuationToken == nil {
			break
		}
		continuation = page.NextContinuationToken
	}

	return out, nil
}

// Save writes the record to its object key and returns the stored version.
func (s *S3Store) Save(ctx context.Context, p people.Person, editID *int) (people.Person, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return people.Person{}, fmt.Errorf("encode person %d: %w", p.ID, err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(p.ID)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return people.Person{}, fmt.Errorf("put person %d: %w", p.ID, err)
	}

	return p, nil
}

func (s *S3Store) getPerson(ctx context.Context, key string) (people.Person, error) {
	obj, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return people.Person{}, fmt.Errorf("get person object %s: %w", key, err)
	}
	defer obj.Body.Close()

	data, err := io.ReadAll(obj.Body)
	if err != nil {
		return people.Person{}, fmt.Errorf("read person object %s: %w", key, err)
	}

	var p people.Person
	if err := json.Unmarshal(data, &p); err != nil {
		return people.Person{}, fmt.Errorf("decode person object %s: %w", key, err)
	}
	return p, nil
}

func (s *S3Store) key(id int) string {
	return fmt.Sprintf("%s%d.json", s.prefix, id)
}
