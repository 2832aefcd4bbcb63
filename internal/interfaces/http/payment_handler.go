package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/colegio-api/internal/application/dto"
	"github.com/jhoicas/colegio-api/internal/application/finance"
)

// PaymentHandler ledger de pagos: cargos manuales, confirmación en caja, anulación y comprobante.
type PaymentHandler struct {
	payments *finance.PaymentUseCase
	receipts *finance.ReceiptUseCase
	errs     errorWriter
}

// NewPaymentHandler construye el handler.
func NewPaymentHandler(payments *finance.PaymentUseCase, receipts *finance.ReceiptUseCase, errs errorWriter) *PaymentHandler {
	return &PaymentHandler{payments: payments, receipts: receipts, errs: errs}
}

type voidRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// Create POST /api/finance/payments
func (h *PaymentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePaymentRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.payments.CreateManual(c.Context(), GetUserID(c), in)
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get GET /api/finance/payments/:id
func (h *PaymentHandler) Get(c *fiber.Ctx) error {
	out, err := h.payments.Get(c.Context(), c.Params("id"))
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}

// ListByStudent GET /api/finance/students/:id/payments?limit=20&offset=0
func (h *PaymentHandler) ListByStudent(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return invalidBody(c)
	}
	page.DefaultPage()
	if ok, err := validateStruct(c, &page); !ok {
		return err
	}
	out, err := h.payments.ListByStudent(c.Context(), c.Params("id"), page)
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}

// Confirm confirma el pago en caja. Un segundo intento devuelve 409.
// POST /api/finance/payments/:id/confirm
func (h *PaymentHandler) Confirm(c *fiber.Ctx) error {
	out, err := h.payments.ConfirmManual(c.Context(), c.Params("id"))
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}

// Void POST /api/finance/payments/:id/void
func (h *PaymentHandler) Void(c *fiber.Ctx) error {
	var in voidRequest
	if len(c.Body()) > 0 {
		if ok, err := bindJSON(c, &in); !ok {
			return err
		}
	}
	out, err := h.payments.Void(c.Context(), c.Params("id"), in.Reason)
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}

// Receipt descarga el comprobante PDF de un pago confirmado.
// GET /api/finance/payments/:id/receipt
func (h *PaymentHandler) Receipt(c *fiber.Ctx) error {
	pdf, filename, err := h.receipts.DownloadReceipt(c.Context(), c.Params("id"))
	if err != nil {
		return h.errs.write(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}

// ── Pensiones y exoneraciones ────────────────────────────────────────────────

// BillingHandler operaciones de facturación masiva o puntual sobre pensiones.
type BillingHandler struct {
	pensions     *finance.PensionUseCase
	revisions    *finance.PriceRevisionUseCase
	exonerations *finance.ExonerationUseCase
	errs         errorWriter
}

// NewBillingHandler construye el handler.
func NewBillingHandler(pensions *finance.PensionUseCase, revisions *finance.PriceRevisionUseCase, exonerations *finance.ExonerationUseCase, errs errorWriter) *BillingHandler {
	return &BillingHandler{pensions: pensions, revisions: revisions, exonerations: exonerations, errs: errs}
}

// GeneratePension genera la pensión de un alumno para un mes.
// 201 si se creó el cargo; 200 con el outcome en cualquier otro caso (ya existía, fuera de sesión...).
// POST /api/finance/pensions/generate
func (h *BillingHandler) GeneratePension(c *fiber.Ctx) error {
	var in dto.GeneratePensionRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	outcome, p, err := h.pensions.GenerateMonthlyPension(c.Context(), finance.PensionInput{
		StudentID:    in.StudentID,
		EnrollmentID: in.EnrollmentID,
		PlanType:     in.PlanType,
		Month:        in.Month,
		Year:         in.Year,
	})
	if err != nil {
		return h.errs.write(c, err)
	}
	out := dto.GeneratePensionResponse{Outcome: string(outcome)}
	if p != nil {
		out.Payment = finance.ToPaymentResponse(p)
	}
	if outcome == finance.OutcomeCreated {
		return c.Status(fiber.StatusCreated).JSON(out)
	}
	return c.JSON(out)
}

// RevisePending actualiza el monto de los cargos pendientes desde un mes.
// POST /api/finance/pensions/revise
func (h *BillingHandler) RevisePending(c *fiber.Ctx) error {
	var in dto.RevisePendingRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.revisions.RevisePendingAmounts(c.Context(), in)
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}

// CreateExoneration POST /api/finance/exonerations
func (h *BillingHandler) CreateExoneration(c *fiber.Ctx) error {
	var in dto.CreateExonerationRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.exonerations.Create(c.Context(), in)
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
