package server

import (
	"errors"

	"cookfeed/internal/models"
	"cookfeed/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type chatRequest struct {
	Message string `json:"message"`
}

// chatError keeps the {error, reply: null} shape the page script expects.
func chatError(c *fiber.Ctx, err error) error {
	body := fiber.Map{
		"error": errorMessage(err),
		"reply": nil,
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		body["code"] = appErr.Code
	}
	return c.Status(models.StatusFor(err)).JSON(body)
}

// Chat handles POST /api/chat
// @Summary Ask the assistant
// @Description Errors keep the {error, code, reply: null} shape.
// @Tags chat
// @Accept json
// @Produce json
// @Param request body server.chatRequest true "Message"
// @Success 200 {object} object{reply=string}
// @Failure 400 {object} object{error=string,code=string,reply=string}
// @Failure 502 {object} object{error=string,code=string,reply=string}
// @Failure 503 {object} object{error=string,code=string,reply=string}
// @Router /chat [post]
func (s *Server) Chat(c *fiber.Ctx) error {
	if !s.chatService.Configured() {
		return chatError(c, models.NewServiceUnavailableError("The assistant is not configured"))
	}

	var req chatRequest
	if err := validation.DecodeJSON(c.Body(), &req); err != nil {
		return chatError(c, err)
	}

	reply, err := s.chatService.Chat(c.UserContext(), req.Message)
	if err != nil {
		return chatError(c, err)
	}
	return c.JSON(fiber.Map{"reply": reply})
}
