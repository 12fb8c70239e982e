package server

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"pulse/internal/auth"
	"pulse/internal/middleware"
	"pulse/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

const (
	defaultPageLimit   = 10
	maxPaginationLimit = 100
)

// parsePagination reads limit and offset. A missing, malformed or
// non-positive limit becomes defaultLimit; anything above
// maxPaginationLimit is capped. Negative offsets become 0.
func parsePagination(c *fiber.Ctx, defaultLimit int) models.Page {
	limit := c.QueryInt("limit", defaultLimit)
	switch {
	case limit <= 0:
		limit = defaultLimit
	case limit > maxPaginationLimit:
		limit = maxPaginationLimit
	}
	return models.Page{Limit: limit, Offset: max(c.QueryInt("offset", 0), 0)}
}

// optionalPagination returns an unbounded page unless the client supplied
// limit or offset.
func optionalPagination(c *fiber.Ctx, defaultLimit int) models.Page {
	if c.Query("limit") == "" && c.Query("offset") == "" {
		return models.Page{}
	}
	return parsePagination(c, defaultLimit)
}

// paramLabels names route and query parameters in validation messages.
var paramLabels = map[string]string{
	"id":               "ID",
	"userId":           "user ID",
	"postId":           "post ID",
	"requestingUserId": "requesting user ID",
}

func paramLabel(param string) string {
	if label, ok := paramLabels[param]; ok {
		return label
	}
	return param
}

// rejectParam writes the 400 for a malformed id parameter.
func rejectParam(c *fiber.Ctx, param string) error {
	_ = models.RespondWithError(c, fiber.StatusBadRequest,
		models.NewValidationError("Invalid "+paramLabel(param)))
	return errResponseWritten
}

// parseID reads a positive id from the route. On failure the 400 is already
// written and the caller returns nil.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		return 0, rejectParam(c, param)
	}
	return uint(id), nil
}

// parseOptionalQueryID accepts an absent query id and rejects a malformed one.
func parseOptionalQueryID(c *fiber.Ctx, param string) (uint, error) {
	raw := strings.TrimSpace(c.Query(param))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, rejectParam(c, param)
	}
	return uint(id), nil
}

// identity returns the caller verified by AuthRequired. Routes behind the
// gate always have one.
func identity(c *fiber.Ctx) auth.Identity {
	id, _ := middleware.IdentityFromCtx(c)
	return id
}

// statusFor maps an application error to its HTTP status.
func statusFor(err error) int {
	return models.HTTPStatus(err)
}

// respondError writes err in the standard error shape. Server-side failures
// are logged with their cause; the client only sees the generic message.
func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request error",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}
	return models.RespondWithError(c, status, err)
}

// codeForStatus picks the error code for a bare *fiber.Error.
func codeForStatus(status int) string {
	switch {
	case status == fiber.StatusUnauthorized:
		return models.CodeUnauthorized
	case status == fiber.StatusNotFound || status == fiber.StatusMethodNotAllowed:
		return models.CodeNotFound
	case status == fiber.StatusServiceUnavailable:
		return models.CodeServiceUnavailable
	case status >= fiber.StatusInternalServerError:
		return models.CodeInternal
	default:
		return models.CodeValidation
	}
}

// handleError is the app-wide ErrorHandler. It renders stray *fiber.Error
// values (unknown route, oversized body) and anything a handler returned
// instead of writing.
func handleError(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		if fe.Code >= fiber.StatusInternalServerError {
			return respondError(c, models.NewInternalError(fe))
		}
		return models.RespondWithError(c, fe.Code, &models.AppError{
			Code:    codeForStatus(fe.Code),
			Message: fe.Message,
		})
	}
	return respondError(c, err)
}
