package bank_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/colegio-api/internal/application/dto"
	"github.com/jhoicas/colegio-api/internal/domain"
	"github.com/jhoicas/colegio-api/internal/infrastructure/bank"
)

func sample() dto.BankNotificationRequest {
	return dto.BankNotificationRequest{
		TransactionID: "TX-0001",
		DNI:           "70000001",
		AmountPaid:    decimal.RequireFromString("305"),
		OperatedAt:    "2026-04-02 09:15:00",
		OperationCode: "778812",
		Channel:       "AGENTE",
	}
}

func TestCanonicalString(t *testing.T) {
	assert.Equal(t, "TX-0001|70000001|305.00|2026-04-02 09:15:00|778812|AGENTE|", bank.CanonicalString(sample()))

	n := sample()
	n.Reference = "pay-42"
	assert.Equal(t, "TX-0001|70000001|305.00|2026-04-02 09:15:00|778812|AGENTE|pay-42", bank.CanonicalString(n))
}

func TestVerify_FirmaDelBanco(t *testing.T) {
	n := sample()
	mac := hmac.New(sha256.New, []byte("clave"))
	mac.Write([]byte(bank.CanonicalString(n)))
	n.Checksum = strings.ToUpper(hex.EncodeToString(mac.Sum(nil)))

	v := bank.NewHMACVerifier("clave")
	assert.NoError(t, v.Verify(n), "el hex se acepta en mayúsculas")
	assert.Equal(t, strings.ToLower(n.Checksum), v.Sign(n))
}

func TestVerify_Rechazos(t *testing.T) {
	v := bank.NewHMACVerifier("clave")
	n := sample()
	n.Checksum = v.Sign(n)

	tampered := n
	tampered.AmountPaid = decimal.RequireFromString("30.50")
	assert.ErrorIs(t, v.Verify(tampered), domain.ErrInvalidChecksum)

	tampered = n
	tampered.Reference = "otro-pago"
	assert.ErrorIs(t, v.Verify(tampered), domain.ErrInvalidChecksum, "la referencia va firmada")

	referenced := sample()
	referenced.Reference = "pay-42"
	referenced.Checksum = v.Sign(referenced)
	assert.NoError(t, v.Verify(referenced))
	referenced.Reference = ""
	assert.ErrorIs(t, v.Verify(referenced), domain.ErrInvalidChecksum, "quitar la referencia invalida la firma")

	missing := n
	missing.Checksum = ""
	assert.ErrorIs(t, v.Verify(missing), domain.ErrInvalidChecksum)

	notHex := n
	notHex.Checksum = "zz"
	assert.ErrorIs(t, v.Verify(notHex), domain.ErrInvalidChecksum)

	assert.ErrorIs(t, bank.NewHMACVerifier("").Verify(n), domain.ErrInvalidChecksum, "sin clave configurada nada es válido")
	assert.ErrorIs(t, bank.NewHMACVerifier("otra").Verify(n), domain.ErrInvalidChecksum)
}
