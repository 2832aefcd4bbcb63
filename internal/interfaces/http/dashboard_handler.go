package http

import (
	"github.com/gofiber/fiber/v2"
	appanalytics "github.com/jhoicas/colegio-api/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del tablero de tesorería.
type DashboardHandler struct {
	uc   *appanalytics.DashboardUseCase
	errs errorWriter
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase, errs errorWriter) *DashboardHandler {
	return &DashboardHandler{uc: uc, errs: errs}
}

// GetSummary devuelve lo recaudado hoy y en el mes, la deuda abierta y los cargos vencidos.
// GET /api/finance/dashboard
//
// No requiere parámetros; las fechas se calculan en el servidor con la zona horaria del colegio.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.uc.GetSummary(c.Context())
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(summary)
}
