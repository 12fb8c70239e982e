package server

import (
	"strings"

	"pulse/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SearchUsers godoc
// @Summary Search users by username
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param q query string true "Substring of the username (at least 2 characters)"
// @Success 200 {array} models.UserSearchResult
// @Failure 400 {object} models.ErrorResponse
// @Router /users/search [get]
func (s *Server) SearchUsers(c *fiber.Ctx) error {
	results, err := s.userService.SearchUsers(c.UserContext(), c.Query("q"), identity(c).UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(results)
}

// GetUserProfile godoc
// @Summary A user's profile with follower, following and post counts
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} ProfileResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	profileID, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	viewer := identity(c)
	profile, err := s.userService.GetProfile(c.UserContext(), profileID, viewer.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(newProfileResponse(profile, profileID == viewer.UserID))
}

// UpdateProfile godoc
// @Summary Update your username, bio or profile picture
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param username formData string false "New username"
// @Param bio formData string false "New bio"
// @Param profilePic formData file false "New profile picture"
// @Success 200 {object} UpdateProfileResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/profile [put]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	pic, err := optionalFile(c, "profilePic")
	if err != nil {
		return respondError(c, err)
	}

	in := service.UpdateProfileInput{ProfilePic: pic}
	if v, ok := formField(c, "username"); ok {
		in.Username = &v
	}
	if v, ok := formField(c, "bio"); ok {
		in.Bio = &v
	}

	user, err := s.userService.UpdateProfile(c.UserContext(), identity(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(UpdateProfileResponse{
		Message: "Profile updated successfully!",
		User:    newUserResponse(user),
	})
}

// FollowUser godoc
// @Summary Follow a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User to follow"
// @Success 200 {object} FollowResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /users/{userId}/follow [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	targetID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	follow, err := s.followService.Follow(c.UserContext(), identity(c).UserID, targetID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(FollowResponse{Message: "User followed successfully!", Follow: follow})
}

// UnfollowUser godoc
// @Summary Stop following a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param userId path int true "User to unfollow"
// @Success 200 {object} FollowResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{userId}/follow [delete]
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	targetID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	follow, err := s.followService.Unfollow(c.UserContext(), identity(c).UserID, targetID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(FollowResponse{Message: "User unfollowed successfully!", Follow: follow})
}

// formField reports a text field from a multipart, urlencoded or JSON body.
// ok is false when the client did not send the field at all.
func formField(c *fiber.Ctx, name string) (string, bool) {
	contentType := strings.ToLower(string(c.Request().Header.ContentType()))
	if strings.HasPrefix(contentType, fiber.MIMEApplicationJSON) {
		var body map[string]*string
		if err := c.BodyParser(&body); err != nil || body[name] == nil {
			return "", false
		}
		return *body[name], true
	}

	if strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return "", false
		}
		values, ok := form.Value[name]
		if !ok || len(values) == 0 {
			return "", false
		}
		return values[0], true
	}

	if !c.Request().PostArgs().Has(name) {
		return "", false
	}
	return c.FormValue(name), true
}
