package handlers

import (
	"expensebuddy/internal/auth"
	"expensebuddy/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles HTTP requests for registration and login.
type AuthHandler struct {
	authService *services.AuthService
	tokens      *auth.TokenManager
	validate    *validator.Validate
	log         logrus.FieldLogger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, tokens *auth.TokenManager, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		tokens:      tokens,
		validate:    validator.New(),
		log:         log,
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
}

// CredentialsRequest represents the request body for register and login.
type CredentialsRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	session, err := h.authService.Register(c.UserContext(), req.Username, req.Password)
	if err != nil {
		h.log.WithError(err).WithField("username", req.Username).Warn("Registration failed")
		return serviceError(c, "Registration failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Registration successful",
		"user_id":  session.UserID,
		"username": session.Username,
	})
}

// HandleLogin authenticates a user and issues a session token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req CredentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	session, err := h.authService.Authenticate(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return serviceError(c, "Authentication failed", err)
	}

	token, err := h.tokens.Generate(session)
	if err != nil {
		h.log.WithError(err).Error("Failed to issue token")
		return serviceError(c, "Authentication failed", err)
	}

	return c.JSON(fiber.Map{
		"message":  "Welcome " + session.Username + "!",
		"token":    token,
		"user_id":  session.UserID,
		"username": session.Username,
	})
}
