package server

import (
	"mime/multipart"
	"strings"

	"pulse/internal/models"
	"pulse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetFeed godoc
// @Summary Global feed, newest first
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param requestingUserId query int false "Legacy viewer id; the token identity always wins"
// @Param offset query int false "Offset"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {array} models.PostView
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	if _, err := parseOptionalQueryID(c, "requestingUserId"); err != nil {
		return nil
	}
	page := parsePagination(c, defaultPageLimit)

	posts, err := s.postService.Feed(c.UserContext(), identity(c).UserID, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// CreatePost godoc
// @Summary Publish a post
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param content formData string false "Text content"
// @Param image formData file false "Image"
// @Success 201 {object} models.PostView
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	image, err := optionalFile(c, "image")
	if err != nil {
		return respondError(c, err)
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:  identity(c).UserID,
		Content: c.FormValue("content"),
		Image:   image,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetUserPosts godoc
// @Summary One author's posts, newest first
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Author ID"
// @Param offset query int false "Offset"
// @Param limit query int false "Page size (max 100)"
// @Success 200 {array} models.PostView
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /posts/user/{userId} [get]
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}
	page := optionalPagination(c, defaultPageLimit)

	posts, err := s.postService.ListByUser(c.UserContext(), userID, identity(c).UserID, page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}

// GetPost godoc
// @Summary Single post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} models.PostView
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), postID, identity(c).UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// DeletePost godoc
// @Summary Delete one of your posts
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} DeletePostResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.DeletePost(c.UserContext(), postID, identity(c).UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(DeletePostResponse{Message: "Post deleted successfully", Post: post})
}

// LikePost godoc
// @Summary Like a post
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param postId path int true "Post ID"
// @Success 201 {object} LikeResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /posts/{postId}/like [post]
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return nil
	}

	like, err := s.likeService.AddLike(c.UserContext(), postID, identity(c).UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(LikeResponse{Message: "Post liked successfully!", Like: like})
}

// UnlikePost godoc
// @Summary Remove your like
// @Tags likes
// @Produce json
// @Security BearerAuth
// @Param postId path int true "Post ID"
// @Success 200 {object} LikeResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{postId}/like [delete]
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	postID, err := parseID(c, "postId")
	if err != nil {
		return nil
	}

	like, err := s.likeService.RemoveLike(c.UserContext(), postID, identity(c).UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(LikeResponse{Message: "Post unliked successfully!", Like: like})
}

// optionalFile returns the uploaded file under field, or nil when the request
// carries none.
func optionalFile(c *fiber.Ctx, field string) (*multipart.FileHeader, error) {
	contentType := strings.ToLower(string(c.Request().Header.ContentType()))
	if !strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
		return nil, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, models.NewValidationError("Invalid multipart form")
	}
	files := form.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	return files[0], nil
}
