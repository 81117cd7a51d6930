package server

import (
	"crypto/sha256"
	"encoding/base64"
	"log/slog"
	"net/url"
	"strings"

	"cookfeed/internal/cache"
	"cookfeed/internal/config"
	"cookfeed/internal/middleware"
	"cookfeed/internal/models"
	"cookfeed/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/redis/go-redis/v9"
)

const (
	sessionCookie = "cookfeed_session"

	sessionUserID        = "user_id"
	sessionFlashCategory = "flash_category"
	sessionFlashMessage  = "flash_message"

	localCurrentUser = "currentUser"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

func newSessionStore(cfg *config.Config, rdb *redis.Client) *session.Store {
	sc := session.Config{
		Expiration:     cfg.SessionTTL(),
		KeyLookup:      "cookie:" + sessionCookie,
		CookieHTTPOnly: true,
		CookieSecure:   cfg.IsProduction(),
		CookieSameSite: "Lax",
	}
	if rdb != nil {
		sc.Storage = cache.NewSessionStorage(rdb)
	}
	return session.New(sc)
}

// cookieKey derives the 32 byte AES key encryptcookie expects from SECRET_KEY.
func cookieKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// loadSession resolves the logged-in user, if any, into locals. Sessions that
// point at a deleted user are treated as anonymous.
func (s *Server) loadSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if isProbePath(c.Path()) || strings.HasPrefix(c.Path(), "/static/") {
			return c.Next()
		}

		sess, err := s.sessions.Get(c)
		if err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "session load failed", slog.String("error", err.Error()))
			return c.Next()
		}

		uid, ok := sess.Get(sessionUserID).(uint)
		if !ok || uid == 0 {
			return c.Next()
		}

		user, err := s.authService.CurrentUser(c.UserContext(), uid)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}
		if user == nil {
			return c.Next()
		}

		c.Locals(middleware.LocalUserID, user.ID)
		c.Locals(localCurrentUser, user)
		return c.Next()
	}
}

// currentUser returns the user loaded by loadSession, or nil.
func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localCurrentUser).(*models.User)
	return user
}

// startSession binds userID to a fresh session id and queues a welcome flash.
// The session store reads the request cookie, so a session may only be saved
// once per request after its id changes.
func (s *Server) startSession(c *fiber.Ctx, userID uint, welcome string) error {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := sess.Regenerate(); err != nil {
		return models.NewInternalError(err)
	}
	sess.Set(sessionUserID, userID)
	if welcome != "" {
		sess.Set(sessionFlashCategory, "success")
		sess.Set(sessionFlashMessage, welcome)
	}
	if err := sess.Save(); err != nil {
		return models.NewInternalError(err)
	}
	c.Locals(middleware.LocalUserID, userID)
	return nil
}

// endSession removes the session from the store and expires the cookie. It is
// safe to call without a session.
func (s *Server) endSession(c *fiber.Ctx) error {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return models.NewInternalError(err)
	}
	if err := sess.Destroy(); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// flash stores a message for the next page render. Failures are logged only.
func (s *Server) flash(c *fiber.Ctx, category, message string) {
	sess, err := s.sessions.Get(c)
	if err == nil {
		sess.Set(sessionFlashCategory, category)
		sess.Set(sessionFlashMessage, message)
		err = sess.Save()
	}
	if err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "flash not stored", slog.String("error", err.Error()))
	}
}

// popFlash returns and clears the pending flash message.
func (s *Server) popFlash(c *fiber.Ctx) *Flash {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return nil
	}
	msg, _ := sess.Get(sessionFlashMessage).(string)
	if msg == "" {
		return nil
	}
	category, _ := sess.Get(sessionFlashCategory).(string)
	sess.Delete(sessionFlashMessage)
	sess.Delete(sessionFlashCategory)
	if err := sess.Save(); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "flash not cleared", slog.String("error", err.Error()))
	}
	return &Flash{Category: category, Message: msg}
}

// loginURL builds /login?next=<path+query> for the current request.
func loginURL(c *fiber.Ctx) string {
	return "/login?next=" + url.QueryEscape(validation.SafeRedirect(c.OriginalURL()))
}

// PageLoginRequired redirects anonymous visitors to the login page.
func (s *Server) PageLoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) == nil {
			s.flash(c, "info", "Please log in to continue.")
			return c.Redirect(loginURL(c), fiber.StatusFound)
		}
		return c.Next()
	}
}

// APILoginRequired answers anonymous API calls with 401 and the login URL.
func (s *Server) APILoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":    "Login required",
				"code":     models.CodeUnauthorized,
				"redirect": loginURL(c),
			})
		}
		return c.Next()
	}
}
