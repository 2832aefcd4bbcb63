package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/colegio-api/internal/application/dto"
	"github.com/jhoicas/colegio-api/internal/domain"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrInvalidChecksum, 401, "INVALID_CHECKSUM"},
		{domain.ErrReconciliationUnmatched, 404, "UNMATCHED"},
		{domain.ErrReconciliationAmbiguous, 409, "AMBIGUOUS"},
		{domain.ErrUserNotFound, 401, "UNAUTHORIZED"},
		{domain.ErrNotFound, 404, "NOT_FOUND"},
		{domain.ErrForbidden, 403, "FORBIDDEN"},
		{domain.ErrDuplicate, 409, "DUPLICATE"},
		{domain.ErrAlreadyProcessed, 409, "CONFLICT"},
		{domain.ErrInvalidTransition, 409, "CONFLICT"},
		{domain.ErrAttachmentRejected, 400, "VALIDATION"},
		{fmt.Errorf("pago: %w", domain.ErrInvalidInput), 400, "VALIDATION"},
		{errors.New("conexión perdida"), 500, "INTERNAL"},
	}
	for _, tc := range cases {
		status, code := classify(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.code, code, tc.err.Error())
	}
}

func writeErr(t *testing.T, w errorWriter, err error) dto.ErrorResponse {
	t.Helper()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return w.write(c, err) })
	resp, e := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	require.NoError(t, e)
	defer resp.Body.Close()
	var out dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestErrorWriter_OcultaCausaInterna(t *testing.T) {
	cause := errors.New("pq: relation payments does not exist")

	out := writeErr(t, errorWriter{log: zerolog.Nop()}, cause)
	assert.Equal(t, "INTERNAL", out.Code)
	assert.Equal(t, "error interno", out.Message)

	out = writeErr(t, errorWriter{log: zerolog.Nop(), exposeCause: true}, cause)
	assert.Equal(t, cause.Error(), out.Message, "en desarrollo se expone la causa")

	out = writeErr(t, errorWriter{log: zerolog.Nop()}, domain.ErrReconciliationUnmatched)
	assert.Equal(t, "UNMATCHED", out.Code)
	assert.Equal(t, domain.ErrReconciliationUnmatched.Error(), out.Message, "los errores de dominio siempre llevan su mensaje")
}
