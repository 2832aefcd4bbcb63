package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/colegio-api/internal/application/academic"
	"github.com/jhoicas/colegio-api/internal/application/dto"
)

// SchoolYearHandler calendario académico (lectura y alta).
type SchoolYearHandler struct {
	uc   *academic.SchoolYearUseCase
	errs errorWriter
}

// NewSchoolYearHandler construye el handler.
func NewSchoolYearHandler(uc *academic.SchoolYearUseCase, errs errorWriter) *SchoolYearHandler {
	return &SchoolYearHandler{uc: uc, errs: errs}
}

// Create registra un año escolar.
// POST /api/school-years
func (h *SchoolYearHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSchoolYearRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List devuelve los años escolares con el flag active calculado hoy.
// GET /api/school-years
func (h *SchoolYearHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context())
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}
