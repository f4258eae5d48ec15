package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"yatube/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newUploader(t *testing.T, maxBytes int64) (*ImageUploader, *storage.LocalStorage) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return NewImageUploader(store, maxBytes), store
}

func TestUploadStoresImage(t *testing.T) {
	ctx := context.Background()
	uploader, store := newUploader(t, 1<<20)

	res, err := uploader.Upload(ctx, bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Key, ImagePrefix))
	assert.True(t, strings.HasSuffix(res.Key, ".png"))
	assert.Equal(t, "image/png", res.ContentType)

	ok, err := store.Exists(ctx, res.Key)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, uploader.Remove(ctx, res.Key))
	ok, err = store.Exists(ctx, res.Key)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, uploader.Remove(ctx, ""))
}

func TestUploadRejectsNonImages(t *testing.T) {
	uploader, _ := newUploader(t, 1<<20)

	_, err := uploader.Upload(context.Background(), strings.NewReader("just some text"))
	assert.ErrorIs(t, err, ErrNotImage)

	svg := `<svg xmlns="http://www.w3.org/2000/svg"><script>alert(1)</script></svg>`
	_, err = uploader.Upload(context.Background(), strings.NewReader(svg))
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestUploadRejectsLargeFiles(t *testing.T) {
	data := pngBytes(t)
	uploader, _ := newUploader(t, int64(len(data)-1))

	_, err := uploader.Upload(context.Background(), bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrImageTooLarge)
}
