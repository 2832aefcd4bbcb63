package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/colegio-api/internal/application/auth"
	"github.com/jhoicas/colegio-api/internal/application/dto"
)

// AuthHandler maneja el login del personal.
type AuthHandler struct {
	uc   *auth.AuthUseCase
	errs errorWriter
}

// NewAuthHandler construye el handler de auth.
func NewAuthHandler(uc *auth.AuthUseCase, errs errorWriter) *AuthHandler {
	return &AuthHandler{uc: uc, errs: errs}
}

// Login godoc
// @Summary      Iniciar sesión
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body  dto.LoginRequest  true  "email, password"
// @Success      200   {object}  dto.LoginResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in dto.LoginRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.Login(c.Context(), in)
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}
