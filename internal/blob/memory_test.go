package blob

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "cradle/pkg/domain-errors"
)

func TestMemoryPutGetRoundTrip(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	meta, err := s.Put(ctx, "tenants/default/uploads/report.csv", strings.NewReader("a,b,c\n"), 6, "text/csv")
	require.NoError(t, err)
	assert.Equal(t, int64(6), meta.Size)
	assert.Equal(t, "text/csv", meta.ContentType)
	assert.NotEmpty(t, meta.ChecksumSHA256)
	assert.NotEmpty(t, meta.ETag)

	body, got, err := s.Get(ctx, "tenants/default/uploads/report.csv")
	require.NoError(t, err)
	defer body.Close()
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "a,b,c\n", string(data))
	assert.Equal(t, meta.ChecksumSHA256, got.ChecksumSHA256)
}

func TestMemoryGetMissing(t *testing.T) {
	s := NewMemory()
	_, _, err := s.Get(context.Background(), "nope")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestMemorySizeMismatch(t *testing.T) {
	s := NewMemory()
	_, err := s.Put(context.Background(), "k", strings.NewReader("abc"), 99, "")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestMemoryDelete(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	_, err := s.Put(ctx, "k", strings.NewReader("abc"), 3, "")
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "k"))

	err = s.Delete(ctx, "k")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestMemoryListPrefix(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	for _, key := range []string{"uploads/a.txt", "uploads/b.txt", "exports/c.txt"} {
		_, err := s.Put(ctx, key, strings.NewReader("x"), 1, "")
		require.NoError(t, err)
	}

	uploads, err := s.List(ctx, "uploads/")
	require.NoError(t, err)
	require.Len(t, uploads, 2)
	assert.Equal(t, "uploads/a.txt", uploads[0].Key)

	all, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryChecksumChangesWithContent(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	first, err := s.Put(ctx, "k", strings.NewReader("one"), 3, "")
	require.NoError(t, err)
	second, err := s.Put(ctx, "k", strings.NewReader("two"), 3, "")
	require.NoError(t, err)
	assert.NotEqual(t, first.ChecksumSHA256, second.ChecksumSHA256)
}
