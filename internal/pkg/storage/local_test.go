package storage

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir(), "http://localhost:8080/uploads/")
	require.NoError(t, err)

	path, err := s.Upload(ctx, strings.NewReader("hello"), "certificates/u1/a.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "certificates/u1/a.pdf", path)

	ok, err := s.Exists(ctx, path)
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := s.Download(ctx, path)
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "hello", string(b))

	url, err := s.GetURL(ctx, path, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/uploads/certificates/u1/a.pdf", url)

	require.NoError(t, s.Delete(ctx, path))
	require.NoError(t, s.Delete(ctx, path))
	ok, err = s.Exists(ctx, path)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLocalStorage_TraversalStaysInside(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir(), "http://files")
	require.NoError(t, err)

	path, err := s.Upload(ctx, strings.NewReader("x"), "../../etc/escape.txt", "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "etc/escape.txt", path)

	_, err = s.Upload(ctx, strings.NewReader("x"), "..", "text/plain")
	assert.Error(t, err)
}
