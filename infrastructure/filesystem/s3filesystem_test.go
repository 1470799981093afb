package filesystem

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memS3 struct {
	objects map[string][]byte
}

func (m *memS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(m.objects[*in.Key]))}, nil
}

func (m *memS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.objects[*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *memS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	out := &s3.ListObjectsV2Output{}
	for k := range m.objects {
		if in.Prefix == nil || strings.HasPrefix(k, *in.Prefix) {
			out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
		}
	}
	return out, nil
}

func TestBucketRoundTrip(t *testing.T) {
	store := &memS3{objects: map[string][]byte{}}
	b := NewBucket(store, "reports")

	require.NoError(t, b.WriteFile(context.Background(), "exports/a.xlsx", "application/octet-stream", []byte("xlsx")))
	require.NoError(t, b.WriteFile(context.Background(), "other/b.txt", "text/plain", []byte("b")))

	var buf bytes.Buffer
	require.NoError(t, b.ReadFile(context.Background(), "exports/a.xlsx", &buf))
	assert.Equal(t, "xlsx", buf.String())

	keys, err := b.ListFiles(context.Background(), "exports/")
	require.NoError(t, err)
	assert.Equal(t, []string{"exports/a.xlsx"}, keys)
}
