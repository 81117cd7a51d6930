package service

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"cookfeed/internal/media"
	"cookfeed/internal/middleware"
	"cookfeed/internal/models"
	"cookfeed/internal/observability"
	"cookfeed/internal/repository"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 500
	maxIngredientsLen = 500
	maxEmojiLen       = 10
)

type PostService struct {
	posts    repository.PostRepository
	uploader media.Uploader
}

type CreatePostInput struct {
	Author      *models.User
	Title       string
	Description string
	Ingredients string
	Method      string
	Emoji       string
	Image       *media.Image
}

// CreatePostResult reports the new post and, when an image was supplied but
// not stored, why it was dropped.
type CreatePostResult struct {
	Post         *models.Post
	ImageSkipped string
}

// NewPostService wires the post rules. uploader may be nil, in which case
// images are never stored.
func NewPostService(posts repository.PostRepository, uploader media.Uploader) *PostService {
	return &PostService{posts: posts, uploader: uploader}
}

func (s *PostService) ListPosts(ctx context.Context) ([]models.Post, error) {
	return s.posts.List(ctx)
}

// CreatePost persists a post owned by in.Author. Image problems never fail
// the call: the post is stored without an image and the reason is returned.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*CreatePostResult, error) {
	if in.Author == nil || in.Author.ID == 0 {
		return nil, models.NewUnauthorizedError("Login required")
	}

	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	ingredients := strings.TrimSpace(in.Ingredients)
	method := strings.TrimSpace(in.Method)
	emoji := strings.TrimSpace(in.Emoji)

	switch {
	case title == "":
		return nil, models.NewValidationError("Title is required")
	case description == "":
		return nil, models.NewValidationError("Description is required")
	case ingredients == "":
		return nil, models.NewValidationError("Ingredients are required")
	case utf8.RuneCountInString(title) > maxTitleLen:
		return nil, models.NewValidationError("Title too long (max 200 characters)")
	case utf8.RuneCountInString(description) > maxDescriptionLen:
		return nil, models.NewValidationError("Description too long (max 500 characters)")
	case utf8.RuneCountInString(ingredients) > maxIngredientsLen:
		return nil, models.NewValidationError("Ingredients too long (max 500 characters)")
	case utf8.RuneCountInString(emoji) > maxEmojiLen:
		return nil, models.NewValidationError("Emoji too long")
	}
	if emoji == "" {
		emoji = models.DefaultEmoji
	}

	authorID := in.Author.ID
	post := &models.Post{
		UserID:      &authorID,
		Username:    in.Author.Username,
		Title:       title,
		Description: description,
		Ingredients: ingredients,
		Method:      method,
		Emoji:       emoji,
	}

	result := &CreatePostResult{Post: post}
	if in.Image != nil {
		ref, reason := s.storeImage(ctx, *in.Image)
		post.Image = ref
		result.ImageSkipped = reason
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return result, nil
}

// storeImage returns the stored reference, or "" and a user-facing reason.
func (s *PostService) storeImage(ctx context.Context, img media.Image) (string, string) {
	backend := "none"
	if s.uploader != nil {
		backend = s.uploader.Backend()
	}

	format, err := media.Check(img)
	if err != nil {
		observability.MediaUploads.WithLabelValues(backend, "rejected").Inc()
		middleware.Logger.WarnContext(ctx, "post image rejected",
			slog.String("filename", img.Filename), slog.String("error", err.Error()))
		return "", "unsupported image type"
	}
	if s.uploader == nil {
		observability.MediaUploads.WithLabelValues(backend, "skipped").Inc()
		return "", "image uploads are disabled"
	}
	if img.ContentType == "" || !strings.HasPrefix(img.ContentType, "image/") {
		img.ContentType = media.ContentTypeFor(format)
	}

	ctx, span := observability.StartSpan(ctx, "media", "Upload")
	ref, err := s.uploader.Upload(ctx, img)
	observability.EndSpan(span, err)
	if err != nil {
		observability.MediaUploads.WithLabelValues(backend, "failed").Inc()
		middleware.Logger.ErrorContext(ctx, "post image upload failed, saving post without image",
			slog.String("backend", backend), slog.String("error", err.Error()))
		return "", "image upload failed"
	}

	observability.MediaUploads.WithLabelValues(backend, "ok").Inc()
	return ref, ""
}

// ReactToPost adds one reaction and returns the new total. Repeated
// reactions from the same caller all count.
func (s *PostService) ReactToPost(ctx context.Context, id uint) (int, error) {
	n, err := s.posts.IncrementReactions(ctx, id)
	if err != nil {
		return 0, err
	}
	observability.PostReactions.Inc()
	return n, nil
}
