package artifact

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"saas-commerce/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestFileStore_PutDedupesByContent(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, 1024)
	require.NoError(t, err)
	tenant := uuid.New()

	ref, err := store.Put(context.Background(), tenant, bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{64}\.png$`, ref)
	assert.True(t, store.Exists(tenant, ref))

	again, err := store.Put(context.Background(), tenant, bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, ref, again)

	entries, err := os.ReadDir(filepath.Join(dir, tenant.String()))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	rc, contentType, err := store.Open(tenant, ref)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)
	assert.Equal(t, "image/png", contentType)
}

func TestFileStore_RefsAreTenantScoped(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), 1024)
	require.NoError(t, err)
	owner, other := uuid.New(), uuid.New()

	ref, err := store.Put(context.Background(), owner, bytes.NewReader(pngHeader))
	require.NoError(t, err)

	assert.False(t, store.Exists(other, ref))
	_, _, err = store.Open(other, ref)
	assert.ErrorIs(t, err, model.ErrNotFound)

	// the same bytes uploaded by another tenant get their own copy
	otherRef, err := store.Put(context.Background(), other, bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, ref, otherRef)
	assert.True(t, store.Exists(other, otherRef))

	_, err = store.Put(context.Background(), uuid.Nil, bytes.NewReader(pngHeader))
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestFileStore_PDF(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), 1024)
	require.NoError(t, err)

	ref, err := store.Put(context.Background(), uuid.New(), strings.NewReader("%PDF-1.4\n%%EOF\n"))
	require.NoError(t, err)
	assert.Equal(t, ".pdf", filepath.Ext(ref))
}

func TestFileStore_Rejects(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), 16)
	require.NoError(t, err)
	tenant := uuid.New()

	_, err = store.Put(context.Background(), tenant, strings.NewReader("plain text is not a proof"))
	assert.ErrorIs(t, err, ErrTooLarge)
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = store.Put(context.Background(), tenant, strings.NewReader("#!/bin/sh\necho"))
	assert.ErrorIs(t, err, ErrUnsupported)

	_, _, err = store.Open(tenant, "../../etc/passwd")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, _, err = store.Open(tenant, strings.Repeat("a", 64)+".png")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.False(t, store.Exists(tenant, "nope"))
}
