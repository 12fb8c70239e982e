package service

import (
	"context"
	"mime/multipart"
	"strings"
	"unicode/utf8"

	"pulse/internal/models"
	"pulse/internal/observability"
	"pulse/internal/repository"
)

// MaxPostContentLength bounds post text in characters.
const MaxPostContentLength = 10000

type PostService struct {
	posts   repository.PostRepository
	uploads Uploader
}

type CreatePostInput struct {
	UserID  uint
	Content string
	Image   *multipart.FileHeader
}

func NewPostService(posts repository.PostRepository, uploads Uploader) *PostService {
	return &PostService{posts: posts, uploads: uploads}
}

// Feed lists all posts newest first, scoped to viewerID (0 for anonymous).
func (s *PostService) Feed(ctx context.Context, viewerID uint, page models.Page) ([]models.PostView, error) {
	return s.posts.Feed(ctx, viewerID, page)
}

func (s *PostService) GetPost(ctx context.Context, postID, viewerID uint) (*models.PostView, error) {
	return s.posts.GetView(ctx, postID, viewerID)
}

// ListByUser lists one author's posts. An unknown author yields an empty list.
func (s *PostService) ListByUser(ctx context.Context, userID, viewerID uint, page models.Page) ([]models.PostView, error) {
	return s.posts.ListByUser(ctx, userID, viewerID, page)
}

// CreatePost stores the optional image first and discards it again if the
// insert fails.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.PostView, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" && in.Image == nil {
		return nil, models.NewValidationError("Post must have content or an image")
	}
	if utf8.RuneCountInString(content) > MaxPostContentLength {
		return nil, models.NewValidationError("Content too long (max 10000 characters)")
	}

	post := &models.Post{UserID: in.UserID}
	if content != "" {
		post.Content = &content
	}

	if in.Image != nil {
		path, err := s.uploads.Store(ctx, UploadPostImage, in.UserID, in.Image)
		if err != nil {
			recordOutcome("post", observability.OutcomeCreated, err)
			return nil, err
		}
		post.ImagePath = &path
	}

	if err := s.posts.Create(ctx, post); err != nil {
		if post.ImagePath != nil {
			s.uploads.Discard(ctx, *post.ImagePath)
		}
		recordOutcome("post", observability.OutcomeCreated, err)
		return nil, err
	}
	recordOutcome("post", observability.OutcomeCreated, nil)

	return s.posts.GetView(ctx, post.ID, in.UserID)
}

// DeletePost removes a post owned by userID. Someone else's post reports
// NOT_FOUND. The stored image is discarded after the delete commits.
func (s *PostService) DeletePost(ctx context.Context, postID, userID uint) (*models.Post, error) {
	post, err := s.posts.DeleteOwned(ctx, postID, userID)
	recordOutcome("post", observability.OutcomeRemoved, err)
	if err != nil {
		return nil, err
	}
	if post.ImagePath != nil {
		s.uploads.Discard(ctx, *post.ImagePath)
	}
	return post, nil
}
