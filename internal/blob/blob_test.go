package blob

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachmentPath(t *testing.T) {
	p := AttachmentPath("c-1", "Invoice.PDF")
	assert.True(t, strings.HasPrefix(p, "c-1/"))
	assert.True(t, strings.HasSuffix(p, ".pdf"))
	assert.NotEqual(t, p, AttachmentPath("c-1", "Invoice.PDF"))
}

func TestPathFromURL(t *testing.T) {
	assert.Equal(t, "c-1/abc.pdf", PathFromURL("c-1/abc.pdf"))
	assert.Equal(t, "c-1/abc.pdf", PathFromURL("https://x.example.com/storage/v1/object/public/attachments/c-1/abc.pdf"))
}

func TestMapError(t *testing.T) {
	err := mapError("upload", &smithy.GenericAPIError{Code: "NoSuchBucket", Message: "The specified bucket does not exist"})
	assert.ErrorIs(t, err, ErrBucketNotFound)

	err = mapError("upload", &types.NoSuchBucket{})
	assert.ErrorIs(t, err, ErrBucketNotFound)

	err = mapError("sign", &smithy.GenericAPIError{Code: "NoSuchKey"})
	assert.ErrorIs(t, err, ErrObjectNotFound)

	boom := errors.New("dial tcp: refused")
	err = mapError("upload", boom)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrBucketNotFound)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory("attachments")

	require.NoError(t, m.Upload(ctx, "attachments", "c/1.txt", strings.NewReader("hello"), "text/plain"))
	data, ok := m.Object("attachments", "c/1.txt")
	require.True(t, ok)
	assert.Equal(t, "hello", string(data))

	url, err := m.SignedURL(ctx, "attachments", "c/1.txt", time.Hour)
	require.NoError(t, err)
	assert.Contains(t, url, "expires_in=3600")

	require.NoError(t, m.Remove(ctx, "attachments", []string{"c/1.txt"}))
	_, ok = m.Object("attachments", "c/1.txt")
	assert.False(t, ok)

	err = m.Upload(ctx, "missing", "x", strings.NewReader(""), "")
	assert.ErrorIs(t, err, ErrBucketNotFound)
}
