package blob

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	dErrors "cradle/pkg/domain-errors"
)

// MemoryStore is an in-memory Store for tests and dev without LocalStack.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data []byte
	meta Metadata
}

var _ Store = (*MemoryStore)(nil)

func NewMemory() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject)}
}

func (s *MemoryStore) Put(_ context.Context, key string, body io.Reader, size int64, contentType string) (Metadata, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return Metadata{}, fmt.Errorf("read object body: %w", err)
	}
	if size >= 0 && int64(len(data)) != size {
		return Metadata{}, dErrors.New(dErrors.CodeBadRequest, "object size mismatch")
	}

	sum := sha256.Sum256(data)
	meta := Metadata{
		Key:            key,
		Size:           int64(len(data)),
		ContentType:    contentType,
		ChecksumSHA256: base64.StdEncoding.EncodeToString(sum[:]),
		ETag:           fmt.Sprintf("%q", base64.RawURLEncoding.EncodeToString(sum[:8])),
		LastModified:   time.Now().UTC(),
	}

	s.mu.Lock()
	s.objects[key] = memoryObject{data: data, meta: meta}
	s.mu.Unlock()
	return meta, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (io.ReadCloser, Metadata, error) {
	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return nil, Metadata{}, dErrors.New(dErrors.CodeNotFound, "object not found")
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.meta, nil
}

func (s *MemoryStore) Head(_ context.Context, key string) (Metadata, error) {
	s.mu.RLock()
	obj, ok := s.objects[key]
	s.mu.RUnlock()
	if !ok {
		return Metadata{}, dErrors.New(dErrors.CodeNotFound, "object not found")
	}
	return obj.meta, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[key]; !ok {
		return dErrors.New(dErrors.CodeNotFound, "object not found")
	}
	delete(s.objects, key)
	return nil
}

func (s *MemoryStore) List(_ context.Context, prefix string) ([]Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var objects []Metadata
	for key, obj := range s.objects {
		if strings.HasPrefix(key, prefix) {
			objects = append(objects, obj.meta)
		}
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}
