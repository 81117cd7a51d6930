package server

import (
	"cookfeed/internal/models"
	"cookfeed/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type addItemRequest struct {
	Text string `json:"text" validate:"notblank,max=200"`
}

// ShoppingPage handles GET /shopping. Items are loaded by the page script.
func (s *Server) ShoppingPage(c *fiber.Ctx) error {
	return s.render(c, "shopping", "Shopping list", fiber.Map{
		"MaxLen": models.ShoppingItemMaxLen,
	})
}

// ListItems handles GET /api/items
// @Summary List shopping items
// @Tags shopping
// @Produce json
// @Success 200 {array} models.ShoppingItem
// @Failure 500 {object} models.ErrorResponse
// @Router /items [get]
func (s *Server) ListItems(c *fiber.Ctx) error {
	items, err := s.shoppingService.ListItems(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(items)
}

// AddItem handles POST /api/items with a {"text": "..."} body.
// @Summary Add a shopping item
// @Tags shopping
// @Accept json
// @Produce json
// @Param request body server.addItemRequest true "Item"
// @Success 201 {object} models.ShoppingItem
// @Failure 400 {object} models.ErrorResponse
// @Router /items [post]
func (s *Server) AddItem(c *fiber.Ctx) error {
	var req addItemRequest
	if err := validation.DecodeJSON(c.Body(), &req); err != nil {
		return models.RespondWithAppError(c, err)
	}

	item, err := s.shoppingService.AddItem(c.UserContext(), req.Text)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

// ToggleItem handles PUT /api/items/:id
// @Summary Toggle a shopping item
// @Tags shopping
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} models.ShoppingItem
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /items/{id} [put]
func (s *Server) ToggleItem(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	item, err := s.shoppingService.ToggleItem(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(item)
}

// DeleteItem handles DELETE /api/items/:id
// @Summary Delete a shopping item
// @Tags shopping
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /items/{id} [delete]
func (s *Server) DeleteItem(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.shoppingService.DeleteItem(c.UserContext(), id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "deleted"})
}
