package server

import (
	"log/slog"
	"net/url"

	"cookfeed/internal/middleware"
	"cookfeed/internal/models"
	"cookfeed/internal/service"
	"cookfeed/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type registerForm struct {
	Username string `json:"username" form:"username" validate:"notblank,max=80"`
	Email    string `json:"email" form:"email" validate:"notblank,max=120,email"`
	Password string `json:"password" form:"password" validate:"notblank"`
}

type loginForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Next     string `json:"next" form:"next"`
}

// RegisterPage handles GET /register
func (s *Server) RegisterPage(c *fiber.Ctx) error {
	return s.render(c, "register", "Register", fiber.Map{
		"Username": c.Query("username"),
		"Email":    c.Query("email"),
	})
}

// Register handles POST /register. Form posts redirect with a flash message,
// JSON clients get {id} or an error body.
func (s *Server) Register(c *fiber.Ctx) error {
	var form registerForm
	err := c.BodyParser(&form)
	if err != nil {
		err = models.NewValidationError("Invalid request body")
	} else {
		err = validation.Struct(&form)
	}

	var user *models.User
	if err == nil {
		user, err = s.authService.Register(c.UserContext(), service.RegisterInput{
			Username: form.Username,
			Email:    form.Email,
			Password: form.Password,
		})
	}
	if err == nil {
		err = s.startSession(c, user.ID, "Welcome, "+user.Username+"!")
	}

	if err != nil {
		if wantsJSON(c) {
			return models.RespondWithAppError(c, err)
		}
		s.flash(c, "error", errorMessage(err))
		back := url.Values{"username": {form.Username}, "email": {form.Email}}
		return c.Redirect("/register?"+back.Encode(), fiber.StatusSeeOther)
	}

	middleware.Logger.InfoContext(c.UserContext(), "user registered", slog.Uint64("user_id", uint64(user.ID)))
	if wantsJSON(c) {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": user.ID, "username": user.Username})
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

// LoginPage handles GET /login
func (s *Server) LoginPage(c *fiber.Ctx) error {
	return s.render(c, "login", "Log in", fiber.Map{
		"Next":     validation.SafeRedirect(c.Query("next")),
		"Username": c.Query("username"),
	})
}

// Login handles POST /login and redirects to a safe `next` target.
func (s *Server) Login(c *fiber.Ctx) error {
	var form loginForm
	if err := c.BodyParser(&form); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if form.Next == "" {
		form.Next = c.Query("next")
	}
	next := validation.SafeRedirect(form.Next)

	user, err := s.authService.Login(c.UserContext(), form.Username, form.Password)
	if err == nil {
		err = s.startSession(c, user.ID, "Logged in as "+user.Username+".")
	}
	if err != nil {
		if wantsJSON(c) {
			return models.RespondWithAppError(c, err)
		}
		s.flash(c, "error", errorMessage(err))
		back := url.Values{"next": {next}, "username": {form.Username}}
		return c.Redirect("/login?"+back.Encode(), fiber.StatusSeeOther)
	}

	if wantsJSON(c) {
		return c.JSON(fiber.Map{"id": user.ID, "username": user.Username, "redirect": next})
	}
	return c.Redirect(next, fiber.StatusSeeOther)
}

// Logout handles GET /logout. It always succeeds.
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.endSession(c); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "logout: session not destroyed", slog.String("error", err.Error()))
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

// ProfilePage handles GET /profile
func (s *Server) ProfilePage(c *fiber.Ctx) error {
	profile, err := s.authService.Profile(c.UserContext(), currentUser(c).ID)
	if err != nil {
		return err
	}

	posts := make([]postView, 0, len(profile.Posts))
	for i := range profile.Posts {
		posts = append(posts, s.newPostView(&profile.Posts[i]))
	}
	return s.render(c, "profile", profile.Username, fiber.Map{
		"Profile": profile,
		"Posts":   posts,
	})
}
