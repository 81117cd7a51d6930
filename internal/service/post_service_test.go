package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"cookfeed/internal/media"
	"cookfeed/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func validPostInput() CreatePostInput {
	return CreatePostInput{
		Author:      &models.User{ID: 7, Username: "alice"},
		Title:       "  Pancakes ",
		Description: "Fluffy",
		Ingredients: "flour, eggs, milk",
		Method:      "Mix and fry",
	}
}

func TestPostService_CreatePost(t *testing.T) {
	t.Parallel()
	var saved *models.Post
	repo := noopPostRepo()
	repo.createFn = func(_ context.Context, p *models.Post) error {
		saved = p
		return nil
	}
	svc := NewPostService(repo, nil)

	res, err := svc.CreatePost(context.Background(), validPostInput())
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "Pancakes", saved.Title)
	assert.Equal(t, "alice", saved.Username)
	require.NotNil(t, saved.UserID)
	assert.Equal(t, uint(7), *saved.UserID)
	assert.Equal(t, models.DefaultEmoji, saved.Emoji)
	assert.Empty(t, saved.Image)
	assert.Empty(t, res.ImageSkipped)
}

func TestPostService_CreatePostValidation(t *testing.T) {
	t.Parallel()
	svc := NewPostService(noopPostRepo(), nil)

	tests := []struct {
		name   string
		mutate func(*CreatePostInput)
		code   string
	}{
		{"no author", func(in *CreatePostInput) { in.Author = nil }, models.CodeUnauthorized},
		{"blank title", func(in *CreatePostInput) { in.Title = "   " }, models.CodeValidation},
		{"blank description", func(in *CreatePostInput) { in.Description = "" }, models.CodeValidation},
		{"blank ingredients", func(in *CreatePostInput) { in.Ingredients = "" }, models.CodeValidation},
		{"long title", func(in *CreatePostInput) { in.Title = strings.Repeat("a", 201) }, models.CodeValidation},
		{"long description", func(in *CreatePostInput) { in.Description = strings.Repeat("a", 501) }, models.CodeValidation},
		{"long ingredients", func(in *CreatePostInput) { in.Ingredients = strings.Repeat("a", 501) }, models.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validPostInput()
			tt.mutate(&in)
			_, err := svc.CreatePost(context.Background(), in)
			assertAppCode(t, err, tt.code)
		})
	}
}

func TestPostService_CreatePostLengthCountsRunes(t *testing.T) {
	t.Parallel()
	svc := NewPostService(noopPostRepo(), nil)
	in := validPostInput()
	in.Title = strings.Repeat("é", 200)

	_, err := svc.CreatePost(context.Background(), in)
	assert.NoError(t, err)
}

func TestPostService_CreatePostStoresImage(t *testing.T) {
	t.Parallel()
	up := &uploaderStub{ref: "20260101120000_cake.png"}
	svc := NewPostService(noopPostRepo(), up)
	in := validPostInput()
	in.Image = &media.Image{Filename: "cake.png", Data: pngBytes(t)}

	res, err := svc.CreatePost(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "20260101120000_cake.png", res.Post.Image)
	assert.Empty(t, res.ImageSkipped)
	require.Len(t, up.calls, 1)
	assert.Equal(t, "image/png", up.calls[0].ContentType)
}

func TestPostService_CreatePostUploadFailureKeepsPost(t *testing.T) {
	t.Parallel()
	created := false
	repo := noopPostRepo()
	repo.createFn = func(context.Context, *models.Post) error {
		created = true
		return nil
	}
	up := &uploaderStub{err: errors.New("bucket unreachable")}
	svc := NewPostService(repo, up)
	in := validPostInput()
	in.Image = &media.Image{Filename: "cake.png", Data: pngBytes(t)}

	res, err := svc.CreatePost(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Empty(t, res.Post.Image)
	assert.Equal(t, "image upload failed", res.ImageSkipped)
}

func TestPostService_CreatePostRejectsBadImage(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		img  media.Image
	}{
		{"disallowed extension", media.Image{Filename: "script.exe", Data: []byte("MZ")}},
		{"not an image", media.Image{Filename: "fake.png", Data: []byte("definitely text")}},
		{"empty", media.Image{Filename: "empty.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			up := &uploaderStub{ref: "unused"}
			svc := NewPostService(noopPostRepo(), up)
			in := validPostInput()
			img := tt.img
			in.Image = &img

			res, err := svc.CreatePost(context.Background(), in)
			require.NoError(t, err)
			assert.Empty(t, res.Post.Image)
			assert.Equal(t, "unsupported image type", res.ImageSkipped)
			assert.Empty(t, up.calls, "uploader must not be called")
		})
	}
}

func TestPostService_CreatePostWithoutUploader(t *testing.T) {
	t.Parallel()
	svc := NewPostService(noopPostRepo(), nil)
	in := validPostInput()
	in.Image = &media.Image{Filename: "cake.png", Data: pngBytes(t)}

	res, err := svc.CreatePost(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, res.Post.Image)
	assert.Equal(t, "image uploads are disabled", res.ImageSkipped)
}

func TestPostService_CreatePostRepositoryError(t *testing.T) {
	t.Parallel()
	repo := noopPostRepo()
	repo.createFn = func(context.Context, *models.Post) error {
		return models.NewInternalError(errors.New("disk full"))
	}
	svc := NewPostService(repo, nil)

	_, err := svc.CreatePost(context.Background(), validPostInput())
	assertAppCode(t, err, models.CodeInternal)
}

func TestPostService_ReactToPost(t *testing.T) {
	t.Parallel()
	count := 0
	repo := noopPostRepo()
	repo.incrementFn = func(context.Context, uint) (int, error) {
		count++
		return count, nil
	}
	svc := NewPostService(repo, nil)

	var last int
	for range 3 {
		n, err := svc.ReactToPost(context.Background(), 1)
		require.NoError(t, err)
		last = n
	}
	assert.Equal(t, 3, last)

	repo.incrementFn = func(_ context.Context, id uint) (int, error) {
		return 0, models.NewNotFoundError("Post", id)
	}
	_, err := svc.ReactToPost(context.Background(), 404)
	assertAppCode(t, err, models.CodeNotFound)
}
