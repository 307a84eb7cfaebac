package handlers

import (
	"errors"
	"fmt"
	"log"

	"catalog/internal/models"
	"catalog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler exposes account registration and token issuing for catalog editors.
type AuthHandler struct {
	auth     *services.AuthService
	validate *validator.Validate
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth, validate: validator.New()}
}

// RegisterRoutes mounts /auth/register and /auth/login under router.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	group := router.Group("/auth")
	group.Post("/register", h.HandleRegister)
	group.Post("/login", h.HandleLogin)
}

// HandleRegister creates an account and answers 201 with the stored user, password omitted.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var user models.User
	if err := c.BodyParser(&user); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if err := h.check(user); err != nil {
		return invalid(c, err)
	}

	if err := h.auth.RegisterUser(&user); err != nil {
		if errors.Is(err, models.ErrUsernameTaken) || errors.Is(err, models.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Account already exists",
				"error":   err.Error(),
			})
		}
		log.Printf("Error registering %s: %v", user.Username, err)
		return internalError(c, "Could not register user", err)
	}

	log.Printf("Registered catalog user %s (ID: %d)", user.Username, user.ID)
	user.Password = ""
	return c.Status(fiber.StatusCreated).JSON(user)
}

type credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin exchanges credentials for a bearer token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var creds credentials
	if err := c.BodyParser(&creds); err != nil {
		return badRequest(c, "Invalid request body", err)
	}
	if err := h.check(creds); err != nil {
		return invalid(c, err)
	}

	token, err := h.auth.LoginUser(creds.Username, creds.Password)
	if err != nil {
		log.Printf("Login failed for %s: %v", creds.Username, err)
		if !errors.Is(err, services.ErrInvalidCredentials) {
			return internalError(c, "Could not issue token", err)
		}
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid username or password",
		})
	}
	return c.JSON(fiber.Map{
		"token":      token,
		"token_type": "Bearer",
	})
}

func (h *AuthHandler) check(body interface{}) error {
	return h.validate.Struct(body)
}

// invalid answers 400 with one message per failing field.
func invalid(c *fiber.Ctx, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return badRequest(c, "Validation failed", err)
	}
	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields[fe.Field()] = fmt.Sprintf("failed on '%s'", fe.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  fields,
	})
}
