package handlers

import (
	"net/url"

	"folio/internal/middleware"
	"folio/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PortfolioHandler handles HTTP requests for portfolios.
type PortfolioHandler struct {
	portfolioService *services.PortfolioService
	validate         *validator.Validate
	log              *zap.Logger
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolioService *services.PortfolioService, log *zap.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: portfolioService,
		validate:         newValidator(),
		log:              log,
	}
}

// RegisterRoutes registers the portfolio routes. Every route except the
// public lookup is guarded by requireAuth.
func (h *PortfolioHandler) RegisterRoutes(router fiber.Router, requireAuth fiber.Handler) {
	portfolioRoutes := router.Group("/portfolio")
	portfolioRoutes.Get("/public/:fullname/:title", h.GetPublicPortfolio)
	portfolioRoutes.Post("/create", requireAuth, h.CreatePortfolio)
	portfolioRoutes.Put("/update/:id", requireAuth, h.UpdatePortfolio)
	portfolioRoutes.Delete("/delete/:id", requireAuth, h.DeletePortfolio)
	portfolioRoutes.Get("/:id", requireAuth, h.GetPortfolio)
	portfolioRoutes.Get("/", requireAuth, h.GetAllPortfolios)
}

// createPortfolioRequest adds the create-only title rule to the shared body.
type createPortfolioRequest struct {
	Title string `json:"title" validate:"required" msg:"Title is required"`
}

// CreatePortfolio handles POST /portfolio/create.
func (h *PortfolioHandler) CreatePortfolio(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized"})
	}

	var in services.PortfolioInput
	if err := c.BodyParser(&in); err != nil {
		return respondBadBody(c, h.log, err)
	}
	if errs := validateRequest(h.validate, &createPortfolioRequest{Title: in.Title}); errs != nil {
		return respondValidation(c, errs)
	}

	portfolio, err := h.portfolioService.Create(c.UserContext(), identity, in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(portfolio)
}

// UpdatePortfolio handles PUT /portfolio/update/:id.
func (h *PortfolioHandler) UpdatePortfolio(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized"})
	}

	var in services.PortfolioInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return respondBadBody(c, h.log, err)
		}
	}

	portfolio, err := h.portfolioService.Update(c.UserContext(), identity, c.Params("id"), in)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(portfolio)
}

// GetPortfolio handles GET /portfolio/:id.
func (h *PortfolioHandler) GetPortfolio(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized"})
	}

	portfolio, err := h.portfolioService.Get(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(portfolio)
}

// GetAllPortfolios handles GET /portfolio.
func (h *PortfolioHandler) GetAllPortfolios(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized"})
	}

	portfolios, err := h.portfolioService.List(c.UserContext(), identity)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(portfolios)
}

// DeletePortfolio handles DELETE /portfolio/delete/:id.
func (h *PortfolioHandler) DeletePortfolio(c *fiber.Ctx) error {
	identity, ok := middleware.CurrentUser(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not authorized"})
	}

	if err := h.portfolioService.Delete(c.UserContext(), identity, c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"message": "Portfolio deleted",
	})
}

// GetPublicPortfolio handles GET /portfolio/public/:fullname/:title without authentication.
func (h *PortfolioHandler) GetPublicPortfolio(c *fiber.Ctx) error {
	portfolio, err := h.portfolioService.GetPublic(c.UserContext(), pathParam(c, "fullname"), pathParam(c, "title"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(portfolio)
}

// pathParam returns the percent-decoded value of a route parameter.
func pathParam(c *fiber.Ctx, name string) string {
	raw := c.Params(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
