package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"landmarket/server/internal/apperr"
	"landmarket/server/internal/authz"
	"landmarket/server/internal/models"
)

type MockObjectStore struct {
	mock.Mock
}

func (m *MockObjectStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, _ := io.ReadAll(r)
	args := m.Called(key, data, size, contentType)
	return args.Error(0)
}

func (m *MockObjectStore) URL(key string) string {
	return "https://cdn.example/" + key
}

var (
	seller = authz.Actor{ID: "s1", Role: models.RoleSeller}
	buyer  = authz.Actor{ID: "b1", Role: models.RoleBuyer}

	pngHeader = []byte("\x89PNG\x0D\x0A\x1A\x0A" + strings.Repeat("\x00", 32))
)

func newUploader(store ObjectStore) *Uploader {
	u := NewUploader(store, authz.NewGuard(nil), 1024)
	u.now = func() time.Time { return time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC) }
	return u
}

func TestUploadStoresSniffedType(t *testing.T) {
	store := &MockObjectStore{}
	store.On("Put", mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "uploads/2026/03/") && strings.HasSuffix(key, ".png")
	}), pngHeader, int64(len(pngHeader)), "image/png").Return(nil).Once()

	got, err := newUploader(store).Upload(context.Background(), seller, bytes.NewReader(pngHeader), int64(len(pngHeader)))
	require.NoError(t, err)
	assert.Equal(t, "image/png", got.ContentType)
	assert.Equal(t, "https://cdn.example/"+got.Key, got.URL)
	store.AssertExpectations(t)
}

func TestUploadPDF(t *testing.T) {
	pdf := []byte("%PDF-1.7\n1 0 obj\n")
	store := &MockObjectStore{}
	store.On("Put", mock.Anything, pdf, int64(len(pdf)), "application/pdf").Return(nil).Once()

	got, err := newUploader(store).Upload(context.Background(), seller, bytes.NewReader(pdf), int64(len(pdf)))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got.Key, ".pdf"))
}

func TestUploadRejections(t *testing.T) {
	store := &MockObjectStore{}
	u := newUploader(store)
	ctx := context.Background()

	_, err := u.Upload(ctx, buyer, bytes.NewReader(pngHeader), int64(len(pngHeader)))
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = u.Upload(ctx, authz.Actor{}, bytes.NewReader(pngHeader), int64(len(pngHeader)))
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	text := []byte("just some text")
	_, err = u.Upload(ctx, seller, bytes.NewReader(text), int64(len(text)))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = u.Upload(ctx, seller, bytes.NewReader(pngHeader), 4096)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = u.Upload(ctx, seller, bytes.NewReader(nil), 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadWithoutStore(t *testing.T) {
	u := NewUploader(nil, authz.NewGuard(nil), 1024)
	assert.False(t, u.Enabled())

	_, err := u.Upload(context.Background(), seller, bytes.NewReader(pngHeader), int64(len(pngHeader)))
	assert.ErrorIs(t, err, apperr.ErrUnavailable)
}
