package http

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/colegio-api/internal/application/dto"
	"github.com/jhoicas/colegio-api/internal/application/finance"
)

// BankHandler pasarela con el banco recaudador.
type BankHandler struct {
	uc   *finance.ReconciliationUseCase
	errs errorWriter
}

// NewBankHandler construye el handler.
func NewBankHandler(uc *finance.ReconciliationUseCase, errs errorWriter) *BankHandler {
	return &BankHandler{uc: uc, errs: errs}
}

// Notification recibe la confirmación de un pago realizado en el banco.
// La autenticación es el checksum del payload; el cuerpo crudo se guarda para auditoría.
// POST /api/bank/notifications
func (h *BankHandler) Notification(c *fiber.Ctx) error {
	raw := append([]byte(nil), c.Body()...)
	var in dto.BankNotificationRequest
	if err := json.Unmarshal(raw, &in); err != nil {
		return invalidBody(c)
	}
	if ok, err := validateStruct(c, &in); !ok {
		return err
	}
	out, err := h.uc.HandleNotification(c.Context(), in, raw)
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}

// Debts devuelve las deudas abiertas de un alumno por DNI.
// GET /api/bank/debts/:dni
func (h *BankHandler) Debts(c *fiber.Ctx) error {
	out, err := h.uc.DebtInquiry(c.Context(), c.Params("dni"))
	if err != nil {
		return h.errs.write(c, err)
	}
	return c.JSON(out)
}
