// Package bank integra el webhook del banco recaudador.
package bank

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/jhoicas/colegio-api/internal/application/dto"
	"github.com/jhoicas/colegio-api/internal/domain"
)

// HMACVerifier valida el checksum HMAC-SHA256 (hex) que firma el banco.
type HMACVerifier struct {
	secret []byte
}

// NewHMACVerifier construye el verificador con la clave compartida.
func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

// Verify devuelve domain.ErrInvalidChecksum si falta, no coincide o no hay clave configurada.
func (v *HMACVerifier) Verify(n dto.BankNotificationRequest) error {
	if len(v.secret) == 0 || n.Checksum == "" {
		return domain.ErrInvalidChecksum
	}
	got, err := hex.DecodeString(strings.ToLower(strings.TrimSpace(n.Checksum)))
	if err != nil {
		return domain.ErrInvalidChecksum
	}
	if !hmac.Equal(got, v.mac(n)) {
		return domain.ErrInvalidChecksum
	}
	return nil
}

// Sign calcula el checksum que el banco envía para la notificación.
func (v *HMACVerifier) Sign(n dto.BankNotificationRequest) string {
	return hex.EncodeToString(v.mac(n))
}

// CanonicalString id_transaccion|dni|monto(2 decimales)|fecha_operacion|codigo_operacion|canal|referencia.
// Sin referencia el último campo va vacío.
func CanonicalString(n dto.BankNotificationRequest) string {
	return strings.Join([]string{
		n.TransactionID,
		n.DNI,
		n.AmountPaid.StringFixed(2),
		n.OperatedAt,
		n.OperationCode,
		n.Channel,
		n.Reference,
	}, "|")
}

func (v *HMACVerifier) mac(n dto.BankNotificationRequest) []byte {
	h := hmac.New(sha256.New, v.secret)
	h.Write([]byte(CanonicalString(n)))
	return h.Sum(nil)
}
