package memory

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamevault/gamevault/internal/storage"
)

func TestUploadAndGetURL(t *testing.T) {
	store := New("http://localhost:8080")
	ctx := context.Background()

	result, err := store.Upload(ctx, &storage.UploadInput{
		Key:         "game-1/cover.jpg",
		ContentType: "image/jpeg",
		Size:        4,
		Data:        strings.NewReader("fake"),
	})

	require.NoError(t, err)
	assert.Equal(t, "game-1/cover.jpg", result.Key)
	assert.Equal(t, "http://localhost:8080/covers/game-1/cover.jpg", result.URL)

	url, err := store.GetURL(ctx, "game-1/cover.jpg")
	require.NoError(t, err)
	assert.Equal(t, result.URL, url)
}

func TestGetURL_Missing(t *testing.T) {
	store := New("http://localhost:8080")

	url, err := store.GetURL(context.Background(), "missing")
	assert.Empty(t, url)
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	store := New("http://localhost:8080")
	ctx := context.Background()

	_, err := store.Upload(ctx, &storage.UploadInput{
		Key:  "game-1/cover.png",
		Data: strings.NewReader("fake"),
	})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "game-1/cover.png"))
	assert.Error(t, store.Delete(ctx, "game-1/cover.png"))
}
