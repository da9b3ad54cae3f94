// Package blob stores attachment files in an S3-compatible bucket.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrBucketNotFound means the bucket has not been created. Callers show it as
// a setup hint rather than a failure.
var ErrBucketNotFound = errors.New("bucket not found")

var ErrObjectNotFound = errors.New("object not found")

type Store interface {
	Upload(ctx context.Context, bucket, objectPath string, body io.Reader, contentType string) error
	SignedURL(ctx context.Context, bucket, objectPath string, ttl time.Duration) (string, error)
	Remove(ctx context.Context, bucket string, paths []string) error
}

// AttachmentPath builds "{contractID}/{random}{ext}" from the uploaded file
// name.
func AttachmentPath(contractID, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))
	return fmt.Sprintf("%s/%s%s", contractID, uuid.NewString(), ext)
}

// PathFromURL accepts either a stored object path or a legacy full URL and
// returns the "{contractID}/{file}" object path.
func PathFromURL(fileURL string) string {
	if !strings.HasPrefix(fileURL, "http://") && !strings.HasPrefix(fileURL, "https://") {
		return fileURL
	}
	u, err := url.Parse(fileURL)
	if err != nil {
		return fileURL
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 {
		return strings.Join(parts, "/")
	}
	return parts[len(parts)-2] + "/" + parts[len(parts)-1]
}
