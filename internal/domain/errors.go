package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrUserNotFound = errors.New("usuario no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")

	// Variantes de conflicto: errors.Is(err, ErrConflict) también es true.
	ErrAlreadyProcessed  = fmt.Errorf("%w: el pago ya fue procesado", ErrConflict)
	ErrInvalidTransition = fmt.Errorf("%w: transición de estado no permitida", ErrConflict)

	ErrAttachmentRejected = fmt.Errorf("%w: archivo adjunto no permitido", ErrInvalidInput)

	// Conciliación bancaria
	ErrInvalidChecksum         = errors.New("checksum de la notificación bancaria inválido")
	ErrReconciliationUnmatched = fmt.Errorf("%w: no existe un pago pendiente que coincida con la notificación", ErrNotFound)
	ErrReconciliationAmbiguous = fmt.Errorf("%w: varios pagos pendientes coinciden con la notificación", ErrConflict)
)
