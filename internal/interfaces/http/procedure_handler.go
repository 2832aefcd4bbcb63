package http

import (
	"path"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/afero"

	"github.com/jhoicas/colegio-api/internal/application/dto"
	"github.com/jhoicas/colegio-api/internal/application/finance"
)

// attachmentOpener lectura de adjuntos guardados (lo implementa storage.AttachmentStore).
type attachmentOpener interface {
	Open(p string) (afero.File, error)
}

// ProcedureHandler catálogo de trámites y solicitudes.
type ProcedureHandler struct {
	types    *finance.ProcedureTypeUseCase
	requests *finance.ProcedureRequestUseCase
	files    attachmentOpener
	errs     errorWriter
}

// NewProcedureHandler construye el handler.
func NewProcedureHandler(types *finance.ProcedureTypeUseCase, requests *finance.ProcedureRequestUseCase, files attachmentOpener, errs errorWriter) *ProcedureHandler {
	return &ProcedureHandler{types: types, requests: requests, files: files, errs: errs}
}

// ── Tipos de trámite ─────────────────────────────────────────────────────────

// CreateType POST /api/finance/procedure-types
func (h *ProcedureHandler) CreateType(c *fiber.Ctx) error {
	var in dto.ProcedureTypeRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.types.Create(c.Context(), in)
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateType PUT /api/finance/procedure-types/:id
func (h *ProcedureHandler) UpdateType(c *fiber.Ctx) error {
	var in dto.ProcedureTypeRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.types.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}

// ListTypes GET /api/finance/procedure-types?active=true
func (h *ProcedureHandler) ListTypes(c *fiber.Ctx) error {
	out, err := h.types.List(c.Context(), c.QueryBool("active", false))
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}

// ── Solicitudes ──────────────────────────────────────────────────────────────

// Submit registra una solicitud. Form multipart: student_id, procedure_type_id, grade_id, comment, archivo (opcional).
// POST /api/finance/requests
func (h *ProcedureHandler) Submit(c *fiber.Ctx) error {
	var in dto.SubmitRequestInput
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	if ok, err := validateStruct(c, &in); !ok {
		return err
	}

	// Peticiones sin archivo (o JSON) llegan con att == nil.
	var att *finance.Attachment
	if fh, err := c.FormFile("archivo"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return h.errs.write(c, err)
		}
		defer f.Close()
		att = &finance.Attachment{Filename: fh.Filename, Size: fh.Size, Content: f}
	}

	out, err := h.requests.Submit(c.Context(), in, att)
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Review aprueba o rechaza una solicitud pagada (o rechaza una pendiente de pago).
// POST /api/finance/requests/:id/review
func (h *ProcedureHandler) Review(c *fiber.Ctx) error {
	var in dto.ReviewRequestInput
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.requests.Review(c.Context(), c.Params("id"), in)
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}

// GetRequest GET /api/finance/requests/:id
func (h *ProcedureHandler) GetRequest(c *fiber.Ctx) error {
	out, err := h.requests.Get(c.Context(), c.Params("id"))
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}

// ListByStudent GET /api/finance/students/:id/requests
func (h *ProcedureHandler) ListByStudent(c *fiber.Ctx) error {
	out, err := h.requests.ListByStudent(c.Context(), c.Params("id"))
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}

// Attachment descarga el archivo adjunto de una solicitud.
// GET /api/finance/requests/:id/attachment
func (h *ProcedureHandler) Attachment(c *fiber.Ctx) error {
	req, err := h.requests.Get(c.Context(), c.Params("id"))
	if err != nil {
		return h.errs.write(c, err)
	}
	if req.Attachment == "" {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "la solicitud no tiene adjunto"})
	}
	f, err := h.files.Open(req.Attachment)
	if err != nil {
		return h.errs.write(c, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return h.errs.write(c, err)
	}
	c.Attachment(path.Base(req.Attachment))
	// fasthttp cierra el stream al terminar de enviarlo.
	return c.SendStream(f, int(info.Size()))
}
