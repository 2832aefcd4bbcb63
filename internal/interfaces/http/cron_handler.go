package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/colegio-api/internal/application/dto"
	"github.com/jhoicas/colegio-api/internal/application/finance"
)

// CronHandler tareas programadas invocadas por un cron externo (cabecera X-Cron-Token).
type CronHandler struct {
	pensions *finance.PensionUseCase
	lateFees *finance.LateFeeUseCase
	errs     errorWriter
}

// NewCronHandler construye el handler.
func NewCronHandler(pensions *finance.PensionUseCase, lateFees *finance.LateFeeUseCase, errs errorWriter) *CronHandler {
	return &CronHandler{pensions: pensions, lateFees: lateFees, errs: errs}
}

// Pensions genera la pensión del mes para los años escolares activos.
// Query opcional: month, year (por defecto el mes en curso).
// POST /api/cron/pensions
func (h *CronHandler) Pensions(c *fiber.Ctx) error {
	out, err := h.pensions.GenerateForActiveYears(c.Context(), c.QueryInt("month", 0), c.QueryInt("year", 0))
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}

// LateFees aplica la mora a los cargos vencidos.
// Query opcional: as_of=YYYY-MM-DD (por defecto hoy).
// POST /api/cron/late-fees
func (h *CronHandler) LateFees(c *fiber.Ctx) error {
	var asOf time.Time
	if s := c.Query("as_of"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "as_of debe tener formato YYYY-MM-DD"})
		}
		asOf = t
	}
	out, err := h.lateFees.ApplyLateFees(c.Context(), asOf)
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}
