package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/colegio-api/internal/application/dto"
	"github.com/jhoicas/colegio-api/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// errorWriter traduce errores de dominio a dto.ErrorResponse.
// Los errores no mapeados se registran y salen como INTERNAL; la causa solo se expone si exposeCause.
type errorWriter struct {
	log         zerolog.Logger
	exposeCause bool
}

func (w errorWriter) write(c *fiber.Ctx, err error) error {
	status, code := classify(err)
	if status == fiber.StatusInternalServerError {
		w.log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("error no controlado")
		msg := "error interno"
		if w.exposeCause {
			msg = err.Error()
		}
		return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: err.Error()})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidChecksum):
		return fiber.StatusUnauthorized, "INVALID_CHECKSUM"
	case errors.Is(err, domain.ErrReconciliationUnmatched):
		return fiber.StatusNotFound, "UNMATCHED"
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrReconciliationAmbiguous):
		return fiber.StatusConflict, "AMBIGUOUS"
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}

// ── Binding ──────────────────────────────────────────────────────────────────

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}

// bindJSON parsea y valida el body. Si devuelve false la respuesta de error ya fue escrita.
func bindJSON(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, invalidBody(c)
	}
	return validateStruct(c, out)
}

func validateStruct(c *fiber.Ctx, in any) (bool, error) {
	if err := validate.Struct(in); err != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
	}
	return true, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
