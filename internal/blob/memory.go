package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"
)

// Memory keeps objects in process. Buckets must be created first, as with a
// real object store.
type Memory struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
}

func NewMemory(buckets ...string) *Memory {
	m := &Memory{buckets: make(map[string]map[string][]byte)}
	for _, b := range buckets {
		m.buckets[b] = make(map[string][]byte)
	}
	return m
}

func (m *Memory) Upload(_ context.Context, bucket, objectPath string, body io.Reader, _ string) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	objects, ok := m.buckets[bucket]
	if !ok {
		return fmt.Errorf("upload %s/%s: %w", bucket, objectPath, ErrBucketNotFound)
	}
	objects[objectPath] = data
	return nil
}

func (m *Memory) SignedURL(_ context.Context, bucket, objectPath string, ttl time.Duration) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	objects, ok := m.buckets[bucket]
	if !ok {
		return "", fmt.Errorf("sign %s/%s: %w", bucket, objectPath, ErrBucketNotFound)
	}
	if _, ok := objects[objectPath]; !ok {
		return "", fmt.Errorf("sign %s/%s: %w", bucket, objectPath, ErrObjectNotFound)
	}
	u := url.URL{Scheme: "memory", Host: bucket, Path: "/" + objectPath}
	q := u.Query()
	q.Set("expires_in", fmt.Sprintf("%d", int(ttl.Seconds())))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (m *Memory) Remove(_ context.Context, bucket string, paths []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	objects, ok := m.buckets[bucket]
	if !ok {
		return fmt.Errorf("remove from %s: %w", bucket, ErrBucketNotFound)
	}
	for _, p := range paths {
		delete(objects, p)
	}
	return nil
}

// Object returns a stored object.
func (m *Memory) Object(bucket, objectPath string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.buckets[bucket][objectPath]
	return data, ok
}
