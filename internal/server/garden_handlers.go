package server

import (
	"cookfeed/internal/garden"

	"github.com/gofiber/fiber/v2"
)

type plantView struct {
	garden.Plant
	ImageURL string
}

type plantGroup struct {
	Category string
	Plants   []garden.Plant
}

func plantImageURL(p garden.Plant) string {
	if p.IsRemoteImage() {
		return p.Image
	}
	return "/static/" + p.Image
}

// GardeningPage handles GET /gardening
func (s *Server) GardeningPage(c *fiber.Ctx) error {
	plants := s.catalog.Plants()
	views := make([]plantView, 0, len(plants))
	for _, p := range plants {
		views = append(views, plantView{Plant: p, ImageURL: plantImageURL(p)})
	}
	return s.render(c, "gardening", "Gardening", fiber.Map{"Plants": views})
}

// GardenSetupPage handles GET /garden-setup. Plants are grouped by category
// in catalog order.
func (s *Server) GardenSetupPage(c *fiber.Ctx) error {
	var groups []plantGroup
	index := map[string]int{}
	for _, p := range s.catalog.Plants() {
		i, ok := index[p.Category]
		if !ok {
			i = len(groups)
			index[p.Category] = i
			groups = append(groups, plantGroup{Category: p.Category})
		}
		groups[i].Plants = append(groups[i].Plants, p)
	}
	return s.render(c, "garden_setup", "Garden setup", fiber.Map{"Groups": groups})
}

// GetGardening handles GET /api/gardening
// @Summary Gardening catalog
// @Tags gardening
// @Produce json
// @Success 200 {array} garden.Plant
// @Router /gardening [get]
func (s *Server) GetGardening(c *fiber.Ctx) error {
	return c.JSON(s.catalog.Plants())
}
