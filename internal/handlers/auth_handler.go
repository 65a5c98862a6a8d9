package handlers

import (
	"errors"
	"net/url"
	"strings"

	"folio/internal/middleware"
	"folio/internal/oauth"
	"folio/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for authentication and the caller's profile.
type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
	provider    oauth.Provider
	states      oauth.StateStore
	frontendURL string
	validate    *validator.Validate
	log         *zap.Logger
}

// OAuthOptions wires the Google sign-in routes. A nil Provider disables them.
type OAuthOptions struct {
	Provider    oauth.Provider
	States      oauth.StateStore
	FrontendURL string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, userService *services.UserService, opts OAuthOptions, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		provider:    opts.Provider,
		states:      opts.States,
		frontendURL: opts.FrontendURL,
		validate:    newValidator(),
		log:         log,
	}
}

// RegisterRoutes registers the authentication routes. requireAuth guards the profile routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Get("/google", h.HandleGoogleLogin)
	authRoutes.Get("/google/callback", h.HandleGoogleCallback)
	authRoutes.Put("/update", requireAuth, h.HandleUpdateProfile)
	authRoutes.Get("/me", requireAuth, h.HandleMe)
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	FullName     string `json:"fullName" validate:"required" msg:"Full name is required"`
	Email        string `json:"email" validate:"required,email" msg:"Please include a valid email"`
	Password     string `json:"password" validate:"min=6" msg:"Password must be 6 or more characters"`
	Phone        string `json:"phone"`
	Location     string `json:"location"`
	ProfileImage string `json:"profileImage"`
}

// HandleRegister creates a password account and answers with a Bearer token.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, h.log, err)
	}
	if errs := validateRequest(h.validate, &req); errs != nil {
		return respondValidation(c, errs)
	}

	token, err := h.authService.Register(c.UserContext(), services.RegisterInput{
		FullName:     req.FullName,
		Email:        req.Email,
		Password:     req.Password,
		Phone:        req.Phone,
		Location:     req.Location,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"token": token,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" msg:"Please include a valid email"`
	Password string `json:"password" validate:"required" msg:"Password is required"`
}

// HandleLogin verifies credentials and answers with a Bearer token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c, h.log, err)
	}
	if errs := validateRequest(h.validate, &req); errs != nil {
		return respondValidation(c, errs)
	}

	token, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return respondError(c, h.log, err)
	}

	return c.JSON(fiber.Map{
		"token": token,
	})
}

// HandleGoogleLogin starts the OAuth handshake by redirecting to Google.
func (h *AuthHandler) HandleGoogleLogin(c *fiber.Ctx) error {
	if h.provider == nil {
		return h.oauthFailure(c, errors.New("google sign-in is not configured"))
	}

	state := oauth.NewState()
	if err := h.states.Save(c.UserContext(), state); err != nil {
		return h.oauthFailure(c, err)
	}
	return c.Redirect(h.provider.AuthURL(state), fiber.StatusFound)
}

// HandleGoogleCallback completes the handshake and redirects to the front end
// with the Bearer token in the token query parameter.
func (h *AuthHandler) HandleGoogleCallback(c *fiber.Ctx) error {
	if h.provider == nil {
		return h.oauthFailure(c, errors.New("google sign-in is not configured"))
	}
	if reason := c.Query("error"); reason != "" {
		return h.oauthFailure(c, errors.New("provider denied sign-in: "+reason))
	}

	ctx := c.UserContext()
	if err := h.states.Consume(ctx, c.Query("state")); err != nil {
		return h.oauthFailure(c, err)
	}

	profile, err := h.provider.Exchange(ctx, c.Query("code"))
	if err != nil {
		return h.oauthFailure(c, err)
	}

	token, err := h.authService.HandleProviderCallback(ctx, profile)
	if err != nil {
		return h.oauthFailure(c, err)
	}

	target, err := withToken(h.frontendURL, token)
	if err != nil {
		return h.oauthFailure(c, err)
	}
	return c.Redirect(target, fiber.StatusFound)
}

// withToken appends token=<token> to base, escaping the space of the Bearer scheme as %20.
func withToken(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	param := "token=" + url.PathEscape(token)
	if u.RawQuery == "" {
		u.RawQuery = param
	} else {
		u.RawQuery += "&" + param
	}
	return u.String(), nil
}

func (h *AuthHandler) oauthFailure(c *fiber.Ctx, err error) error {
	h.log.Error("google sign-in failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).SendString("Server error")
}

// UpdateProfileRequest represents the JSON or multipart body of a profile update.
type UpdateProfileRequest struct {
	FullName     string `json:"fullName" form:"fullName"`
	Phone        string `json:"phone" form:"phone"`
	Location     string `json:"location" form:"location"`
	ProfileImage string `json:"profileImage" form:"profileImage"`
}

// HandleUpdateProfile applies a partial profile update, uploading the
// profileImage file when the request is multipart.
func (h *AuthHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized"})
	}

	var req UpdateProfileRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return respondBadBody(c, h.log, err)
		}
	}

	var file *services.ImageFile
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		fh, err := c.FormFile("profileImage")
		if err == nil {
			f, err := fh.Open()
			if err != nil {
				return respondBadBody(c, h.log, err)
			}
			defer f.Close()
			file = &services.ImageFile{Name: fh.Filename, Reader: f}
		}
	}

	user, err := h.userService.UpdateProfile(c.UserContext(), identity, services.ProfileUpdate{
		FullName:     req.FullName,
		Phone:        req.Phone,
		Location:     req.Location,
		ProfileImage: req.ProfileImage,
	}, file)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(user)
}

// HandleMe returns the caller's account.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized"})
	}

	user, err := h.userService.GetProfile(c.UserContext(), identity)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(user)
}
