package http

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/colegio-api/internal/application/dto"
)

// Cabeceras de los clientes máquina a máquina.
const (
	HeaderCronToken = "X-Cron-Token"
	HeaderBankKey   = "X-Bank-Key"
)

// RequireSharedKey exige que la cabecera header traiga exactamente expected.
// Si expected está vacío la ruta queda cerrada (401) hasta que se configure.
func RequireSharedKey(header, expected string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		got := c.Get(header)
		if expected == "" || got == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "MISSING_KEY",
				Message: "cabecera " + header + " requerida",
			})
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(expected)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Code:    "INVALID_KEY",
				Message: "credencial inválida",
			})
		}
		return c.Next()
	}
}
