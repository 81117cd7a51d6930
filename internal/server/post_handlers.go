package server

import (
	"io"
	"mime/multipart"
	"sort"
	"strings"
	"time"

	"cookfeed/internal/media"
	"cookfeed/internal/models"
	"cookfeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

// postView is a post prepared for the templates.
type postView struct {
	ID          uint
	Title       string
	Description string
	Ingredients string
	Method      string
	Emoji       string
	Author      string
	ImageURL    string
	Reactions   int
	CreatedAt   time.Time
}

func (s *Server) newPostView(p *models.Post) postView {
	return postView{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Ingredients: p.Ingredients,
		Method:      p.Method,
		Emoji:       p.DisplayEmoji(),
		Author:      p.AuthorName(),
		ImageURL:    postImageURL(p),
		Reactions:   p.Reactions,
		CreatedAt:   p.CreatedAt,
	}
}

// postImageURL maps the stored reference to a browser URL. Local uploads are
// stored as bare file names and served under /uploads.
func postImageURL(p *models.Post) string {
	switch {
	case p.Image == "":
		return ""
	case p.HasRemoteImage():
		return p.Image
	default:
		return "/uploads/" + p.Image
	}
}

// feedPost is the public JSON shape of a post. Owner details beyond the
// display name stay server side.
type feedPost struct {
	ID          uint      `json:"id"`
	UserID      *uint     `json:"user_id,omitempty"`
	Username    string    `json:"username"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Ingredients string    `json:"ingredients"`
	Method      string    `json:"method,omitempty"`
	Emoji       string    `json:"emoji"`
	Image       string    `json:"image,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Reactions   int       `json:"reactions"`
	CreatedAt   time.Time `json:"created_at"`
}

func newFeedPost(p *models.Post) feedPost {
	return feedPost{
		ID:          p.ID,
		UserID:      p.UserID,
		Username:    p.Username,
		Author:      p.AuthorName(),
		Title:       p.Title,
		Description: p.Description,
		Ingredients: p.Ingredients,
		Method:      p.Method,
		Emoji:       p.DisplayEmoji(),
		Image:       p.Image,
		ImageURL:    postImageURL(p),
		Reactions:   p.Reactions,
		CreatedAt:   p.CreatedAt,
	}
}

// IndexPage handles GET /
func (s *Server) IndexPage(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.UserContext())
	if err != nil {
		return err
	}
	views := make([]postView, 0, len(posts))
	for i := range posts {
		views = append(views, s.newPostView(&posts[i]))
	}
	return s.render(c, "index", "Recipes", fiber.Map{"Posts": views})
}

// NewPostPage handles GET /new
func (s *Server) NewPostPage(c *fiber.Ctx) error {
	exts := make([]string, 0, len(media.AllowedExtensions))
	for ext := range media.AllowedExtensions {
		exts = append(exts, "."+ext)
	}
	sort.Strings(exts)
	return s.render(c, "new_post", "New recipe", fiber.Map{
		"DefaultEmoji": models.DefaultEmoji,
		"Accept":       strings.Join(exts, ","),
	})
}

// ListPosts handles GET /api/posts
// @Summary List posts
// @Description Every post, newest first. Owners appear by display name only.
// @Tags posts
// @Produce json
// @Success 200 {array} server.feedPost
// @Failure 500 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) ListPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	out := make([]feedPost, 0, len(posts))
	for i := range posts {
		out = append(out, newFeedPost(&posts[i]))
	}
	return c.JSON(out)
}

// CreatePost handles POST /api/posts (multipart form with an optional image file).
// @Summary Create a post
// @Description Image problems never fail the request; the reason comes back as image_warning.
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Recipe title"
// @Param description formData string true "Short description"
// @Param ingredients formData string true "Ingredients"
// @Param method formData string false "Method"
// @Param emoji formData string false "Emoji"
// @Param image formData file false "Photo (png, jpg, jpeg, gif, webp)"
// @Success 201 {object} object{message=string,id=int,image_warning=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} object{error=string,code=string,redirect=string}
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	in := service.CreatePostInput{
		Author:      currentUser(c),
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Ingredients: c.FormValue("ingredients"),
		Method:      c.FormValue("method"),
		Emoji:       c.FormValue("emoji"),
	}

	// A missing file part, or a urlencoded body, means no image.
	if fh, err := c.FormFile("image"); err == nil && fh.Filename != "" {
		img, rerr := readUpload(fh)
		if rerr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Could not read uploaded image"))
		}
		in.Image = img
	}

	res, err := s.postService.CreatePost(c.UserContext(), in)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	body := fiber.Map{"message": "created", "id": res.Post.ID}
	if res.ImageSkipped != "" {
		body["image_warning"] = res.ImageSkipped
	}
	return c.Status(fiber.StatusCreated).JSON(body)
}

func readUpload(fh *multipart.FileHeader) (*media.Image, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &media.Image{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Data:        data,
	}, nil
}

// ReactToPost handles POST /api/posts/:id/react
// @Summary React to a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} object{reactions=int}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/react [post]
func (s *Server) ReactToPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	n, err := s.postService.ReactToPost(c.UserContext(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"reactions": n})
}
