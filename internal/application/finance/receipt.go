package finance

import (
	"context"
	"fmt"

	"github.com/jhoicas/colegio-api/internal/domain"
	"github.com/jhoicas/colegio-api/internal/domain/entity"
	"github.com/jhoicas/colegio-api/internal/domain/repository"
)

// ReceiptUseCase genera el comprobante PDF de un pago confirmado.
type ReceiptUseCase struct {
	payments  repository.PaymentRepository
	students  repository.StudentRepository
	generator ReceiptPDFGenerator
}

// NewReceiptUseCase construye el caso de uso inyectando sus dependencias.
func NewReceiptUseCase(payments repository.PaymentRepository, students repository.StudentRepository, generator ReceiptPDFGenerator) *ReceiptUseCase {
	return &ReceiptUseCase{payments: payments, students: students, generator: generator}
}

// DownloadReceipt devuelve (pdfBytes, filename).
//
// Retorna:
//   - domain.ErrNotFound     si el pago o el alumno no existen.
//   - domain.ErrInvalidInput si el pago no está PAGADO.
func (uc *ReceiptUseCase) DownloadReceipt(ctx context.Context, paymentID string) ([]byte, string, error) {
	// ── 1. Cargar pago ────────────────────────────────────────────────────────
	p, err := uc.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: obtener pago: %w", err)
	}
	if p == nil {
		return nil, "", domain.ErrNotFound
	}

	// ── 2. Solo pagos confirmados ─────────────────────────────────────────────
	if p.Status != entity.PaymentPaid || p.PaidAt == nil {
		return nil, "", fmt.Errorf("%w: el pago está en estado %s, solo se emite comprobante de pagos confirmados",
			domain.ErrInvalidInput, p.Status)
	}

	// ── 3. Cargar alumno ──────────────────────────────────────────────────────
	st, err := uc.students.GetByID(ctx, p.StudentID)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: obtener alumno: %w", err)
	}
	if st == nil {
		return nil, "", fmt.Errorf("%w: alumno", domain.ErrNotFound)
	}

	// ── 4. Generar PDF ────────────────────────────────────────────────────────
	pdfBytes, err := uc.generator.GenerateReceiptPDF(ctx, p, st)
	if err != nil {
		return nil, "", fmt.Errorf("comprobante: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("comprobante_%s.pdf", p.ID), nil
}
