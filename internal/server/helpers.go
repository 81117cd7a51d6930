package server

import (
	"errors"
	"strings"

	"cookfeed/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+param))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

func isProbePath(path string) bool {
	return strings.HasPrefix(path, "/health/") || path == "/metrics"
}

// wantsJSON reports whether a form endpoint was called by a JSON client.
func wantsJSON(c *fiber.Ctx) bool {
	return c.Is("json") || strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON)
}

// render adds the layout fields every page needs.
func (s *Server) render(c *fiber.Ctx, view, title string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["Title"] = title
	data["CurrentUser"] = currentUser(c)
	data["Flash"] = s.popFlash(c)
	return c.Render(view, data)
}

// errorMessage is the user-facing text of err.
func errorMessage(err error) string {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Something went wrong"
}
