package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/colegio-api/internal/app"
	"github.com/jhoicas/colegio-api/internal/application/dto"
	"github.com/jhoicas/colegio-api/internal/domain/entity"
	"github.com/jhoicas/colegio-api/internal/infrastructure/bank"
	"github.com/jhoicas/colegio-api/internal/infrastructure/memory"
	"github.com/jhoicas/colegio-api/internal/infrastructure/storage"
	apphttp "github.com/jhoicas/colegio-api/internal/interfaces/http"
	"github.com/jhoicas/colegio-api/pkg/config"
)

// ──────────────────────────────────────────────────────────────────────────────
// Entorno: API completa sobre el store en memoria, reloj real en UTC.
// El año escolar empieza en enero del año pasado y no tiene cierre: siempre está activo
// y abril del año en curso cae dentro de la sesión.
// ──────────────────────────────────────────────────────────────────────────────

const (
	bankSecret = "clave-webhook"
	bankKey    = "clave-banco"
	cronToken  = "token-cron"
	studentDNI = "71234567"
)

type apiEnv struct {
	srv      *fiber.App
	store    *memory.Store
	verifier *bank.HMACVerifier
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()
	cfg := &config.Config{
		App:     config.AppConfig{Env: "test", Timezone: "UTC", SchoolName: "I.E. San Martín", SchoolRUC: "20123456789"},
		JWT:     config.JWTConfig{Secret: testJWTSecret, Expiration: 60, Issuer: testIssuer},
		Finance: config.FinanceConfig{LateFee: decimal.RequireFromString("5"), AttachmentExts: []string{".pdf", ".png"}, AttachmentMaxMB: 1},
		Bank:    config.BankConfig{WebhookSecret: bankSecret, APIKey: bankKey, AmbiguityPolicy: "reject"},
		Cron:    config.CronConfig{Token: cronToken},
		Store:   config.StoreConfig{Driver: "memory"},
	}
	store := memory.NewStore()
	c, err := app.Build(cfg, app.MemoryRepositories(store), storage.NewAttachmentStore(afero.NewMemMapFs()), zerolog.Nop())
	require.NoError(t, err)

	srv := fiber.New()
	apphttp.Router(srv, apphttp.RouterDeps{
		AuthUC:          c.Auth,
		SchoolYearUC:    c.SchoolYears,
		ProcedureTypeUC: c.ProcedureType,
		RequestUC:       c.Requests,
		PaymentUC:       c.Payments,
		ReceiptUC:       c.Receipts,
		PensionUC:       c.Pensions,
		LateFeeUC:       c.LateFees,
		RevisionUC:      c.Revisions,
		ExonerationUC:   c.Exonerations,
		ReconcileUC:     c.Reconcile,
		DashboardUC:     c.Dashboard,
		Attachments:     c.Attachments,
		JWTSecret:       testJWTSecret,
		CronToken:       cronToken,
		BankKey:         bankKey,
		Log:             zerolog.Nop(),
	})

	ctx := testContext(t)
	start := time.Date(thisYear()-1, time.January, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SchoolYears().Create(ctx, &entity.SchoolYear{ID: "209901", StartDate: start, Type: entity.PeriodRegular}))
	store.SeedStudent(&entity.Student{ID: "stu-1", DNI: studentDNI, FirstNames: "Lucía", LastNames: "Huamán"})
	require.NoError(t, store.Enrollments().Create(ctx, &entity.Enrollment{
		ID: "enr-1", StudentID: "stu-1", SchoolYearID: "209901", GradeID: "3P",
		Status: entity.EnrollmentEnrolled, PlanType: entity.PeriodRegular, EnrolledAt: start,
	}))
	require.NoError(t, store.ProcedureTypes().Create(ctx, &entity.ProcedureType{
		ID: "pt-pension", Name: "PENSION REGULAR", Cost: decimal.RequireFromString("300"),
		Scope: entity.ScopeAll, Period: entity.PeriodRegular, Active: true,
	}))
	require.NoError(t, store.ProcedureTypes().Create(ctx, &entity.ProcedureType{
		ID: "pt-cert", Name: "Certificado de estudios", Cost: decimal.RequireFromString("25"),
		Scope: entity.ScopeAll, Period: entity.PeriodBoth, Active: true,
	}))

	return &apiEnv{srv: srv, store: store, verifier: bank.NewHMACVerifier(bankSecret)}
}

func (e *apiEnv) do(t *testing.T, method, target string, body any, headers map[string]string) *http.Response {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		r = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, r)
	if r != nil && req.Header.Get(fiber.HeaderContentType) == "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := e.srv.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func thisYear() int { return time.Now().UTC().Year() }

func asRole(t *testing.T, role string) map[string]string {
	return map[string]string{"Authorization": tokenForRole(t, role)}
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func errorCode(t *testing.T, resp *http.Response) string {
	return decode[dto.ErrorResponse](t, resp).Code
}

func (e *apiEnv) signed(txID, amount, reference string) dto.BankNotificationRequest {
	n := dto.BankNotificationRequest{
		TransactionID: txID,
		DNI:           studentDNI,
		AmountPaid:    decimal.RequireFromString(amount),
		OperatedAt:    time.Now().UTC().Format("2006-01-02 15:04:05"),
		OperationCode: "OP-" + txID,
		Channel:       "VENTANILLA",
		Reference:     reference,
	}
	n.Checksum = e.verifier.Sign(n)
	return n
}

// ──────────────────────────────────────────────────────────────────────────────
// Auth y roles
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_Login(t *testing.T) {
	e := newAPI(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("clave123"), bcrypt.MinCost)
	require.NoError(t, err)
	e.store.SeedUser(&entity.User{ID: "u-1", Email: "caja@colegio.pe", PasswordHash: string(hash), Role: entity.RoleTesoreria, Status: "active"})

	resp := e.do(t, http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "Caja@Colegio.pe", Password: "clave123"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode[dto.LoginResponse](t, resp)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, entity.RoleTesoreria, login.User.Role)

	resp = e.do(t, http.MethodGet, "/api/finance/dashboard", nil, map[string]string{"Authorization": "Bearer " + login.Token})
	assert.Equal(t, http.StatusOK, resp.StatusCode, "el token emitido abre las rutas de tesorería")

	resp = e.do(t, http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "caja@colegio.pe", Password: "otra"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, resp))

	resp = e.do(t, http.MethodPost, "/api/auth/login", dto.LoginRequest{Email: "no-es-email", Password: "x"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, resp))
}

func TestRouter_Roles(t *testing.T) {
	e := newAPI(t)

	resp := e.do(t, http.MethodGet, "/api/finance/dashboard", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/finance/dashboard", nil, asRole(t, entity.RoleSecretaria))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "secretaría no ve el tablero")

	resp = e.do(t, http.MethodGet, "/api/finance/procedure-types", nil, asRole(t, entity.RoleSecretaria))
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/finance/procedure-types", dto.ProcedureTypeRequest{Name: "Traslado", Cost: decimal.NewFromInt(40)}, asRole(t, entity.RoleTesoreria))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "solo admin edita el catálogo")

	resp = e.do(t, http.MethodPost, "/api/finance/procedure-types", dto.ProcedureTypeRequest{Name: "Traslado", Cost: decimal.NewFromInt(40)}, asRole(t, entity.RoleAdmin))
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/school-years", nil, asRole(t, entity.RoleSecretaria))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	years := decode[[]dto.SchoolYearResponse](t, resp)
	require.Len(t, years, 1)
	assert.True(t, years[0].Active)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cron
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_CronRequiereToken(t *testing.T) {
	e := newAPI(t)

	resp := e.do(t, http.MethodPost, "/api/cron/pensions", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_KEY", errorCode(t, resp))

	resp = e.do(t, http.MethodPost, "/api/cron/pensions", nil, map[string]string{apphttp.HeaderCronToken: "otro"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_KEY", errorCode(t, resp))

	resp = e.do(t, http.MethodPost, "/api/cron/pensions", nil, asRole(t, entity.RoleAdmin))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "un JWT no reemplaza el token de cron")
}

func TestRouter_CronPensionesYMoras(t *testing.T) {
	e := newAPI(t)
	cron := map[string]string{apphttp.HeaderCronToken: cronToken}

	target := fmt.Sprintf("/api/cron/pensions?month=4&year=%d", thisYear())
	resp := e.do(t, http.MethodPost, target, nil, cron)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sum := decode[dto.GenerationSummary](t, resp)
	assert.Equal(t, 1, sum.Created)

	resp = e.do(t, http.MethodPost, target, nil, cron)
	sum = decode[dto.GenerationSummary](t, resp)
	assert.Equal(t, 0, sum.Created)
	assert.Equal(t, 1, sum.Existing)

	resp = e.do(t, http.MethodPost, "/api/cron/late-fees?as_of=2100-01-01", nil, cron)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	fees := decode[dto.LateFeeResult](t, resp)
	assert.Equal(t, int64(1), fees.Affected)
	assert.Equal(t, "5.00", fees.Fee.StringFixed(2))

	resp = e.do(t, http.MethodPost, "/api/cron/late-fees?as_of=01-01-2100", nil, cron)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Banco
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_BancoConsultaYNotificacion(t *testing.T) {
	e := newAPI(t)
	resp := e.do(t, http.MethodPost, "/api/finance/pensions/generate", dto.GeneratePensionRequest{
		StudentID: "stu-1", EnrollmentID: "enr-1", PlanType: entity.PeriodRegular, Month: 4, Year: thisYear(),
	}, asRole(t, entity.RoleTesoreria))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	gen := decode[dto.GeneratePensionResponse](t, resp)
	require.NotNil(t, gen.Payment)

	resp = e.do(t, http.MethodGet, "/api/bank/debts/"+studentDNI, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/bank/debts/"+studentDNI, nil, map[string]string{apphttp.HeaderBankKey: bankKey})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	debts := decode[dto.DebtInquiryResponse](t, resp)
	require.Len(t, debts.Debts, 1)
	assert.Equal(t, gen.Payment.ID, debts.Debts[0].Reference)
	assert.Equal(t, "300.00", debts.TotalDebt.StringFixed(2))

	resp = e.do(t, http.MethodGet, "/api/bank/debts/00000000", nil, map[string]string{apphttp.HeaderBankKey: bankKey})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	bad := e.signed("tx-1", "300.00", "")
	bad.Checksum = strings.Repeat("0", 64)
	resp = e.do(t, http.MethodPost, "/api/bank/notifications", bad, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_CHECKSUM", errorCode(t, resp))

	resp = e.do(t, http.MethodPost, "/api/bank/notifications", e.signed("tx-2", "123.00", ""), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "UNMATCHED", errorCode(t, resp))

	resp = e.do(t, http.MethodPost, "/api/bank/notifications", e.signed("tx-3", "300.00", debts.Debts[0].Reference), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.BankNotificationResponse](t, resp)
	assert.Equal(t, entity.NotificationProcessed, out.Status)
	assert.Equal(t, gen.Payment.ID, out.PaymentID)

	resp = e.do(t, http.MethodPost, "/api/bank/notifications", e.signed("tx-3", "300.00", debts.Debts[0].Reference), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[dto.BankNotificationResponse](t, resp).Replayed)

	stored, err := e.store.BankNotifications().GetByTransactionID(testContext(t), "tx-3")
	require.NoError(t, err)
	assert.Contains(t, stored.RawPayload, `"id_transaccion":"tx-3"`, "se guarda el cuerpo crudo")
}

func TestRouter_BancoCuerpoInvalido(t *testing.T) {
	e := newAPI(t)

	resp := e.do(t, http.MethodPost, "/api/bank/notifications", []byte("{no es json"), nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", errorCode(t, resp))

	resp = e.do(t, http.MethodPost, "/api/bank/notifications", map[string]string{"id_transaccion": "tx"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, resp))
}

// ──────────────────────────────────────────────────────────────────────────────
// Pagos
// ──────────────────────────────────────────────────────────────────────────────

func TestRouter_PagoManualConfirmacionYComprobante(t *testing.T) {
	e := newAPI(t)
	treasury := asRole(t, entity.RoleTesoreria)

	resp := e.do(t, http.MethodPost, "/api/finance/payments", dto.CreatePaymentRequest{
		StudentID: "stu-1", Concept: "Uniforme", Amount: decimal.RequireFromString("80"), DueDate: "2030-01-31",
	}, treasury)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	p := decode[dto.PaymentResponse](t, resp)
	assert.Equal(t, "UNIFORME", p.Concept)

	resp = e.do(t, http.MethodGet, "/api/finance/payments/"+p.ID+"/receipt", nil, treasury)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "sin comprobante para pagos pendientes")

	resp = e.do(t, http.MethodPost, "/api/finance/payments/"+p.ID+"/confirm", nil, treasury)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(entity.PaymentPaid), decode[dto.PaymentResponse](t, resp).Status)

	resp = e.do(t, http.MethodPost, "/api/finance/payments/"+p.ID+"/confirm", nil, treasury)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", errorCode(t, resp))

	resp = e.do(t, http.MethodGet, "/api/finance/payments/"+p.ID+"/receipt", nil, asRole(t, entity.RoleSecretaria))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "comprobante_"+p.ID+".pdf")
	pdf, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	resp = e.do(t, http.MethodGet, "/api/finance/students/stu-1/payments?limit=10", nil, treasury)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[dto.PaymentListResponse](t, resp)
	assert.Equal(t, 1, list.Page.Total)
	assert.Equal(t, 10, list.Page.Limit)

	resp = e.do(t, http.MethodGet, "/api/finance/students/stu-1/payments?limit=500", nil, treasury)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = e.do(t, http.MethodGet, "/api/finance/payments/no-existe", nil, treasury)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", errorCode(t, resp))
}

func TestRouter_GenerarPensionDevuelveOutcome(t *testing.T) {
	e := newAPI(t)
	in := dto.GeneratePensionRequest{StudentID: "stu-1", EnrollmentID: "enr-1", PlanType: entity.PeriodRegular, Month: 4, Year: thisYear()}

	resp := e.do(t, http.MethodPost, "/api/finance/pensions/generate", in, asRole(t, entity.RoleAdmin))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = e.do(t, http.MethodPost, "/api/finance/pensions/generate", in, asRole(t, entity.RoleAdmin))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.GeneratePensionResponse](t, resp)
	assert.Equal(t, "ALREADY_EXISTS", out.Outcome)
	assert.Nil(t, out.Payment)

	in.Month = 13
	resp = e.do(t, http.MethodPost, "/api/finance/pensions/generate", in, asRole(t, entity.RoleAdmin))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Solicitudes con adjunto
// ──────────────────────────────────────────────────────────────────────────────

func multipartRequest(t *testing.T, fields map[string]string, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if filename != "" {
		fw, err := w.CreateFormFile("archivo", filename)
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf, w.FormDataContentType()
}

func TestRouter_SolicitudConAdjunto(t *testing.T) {
	e := newAPI(t)
	fields := map[string]string{"student_id": "stu-1", "procedure_type_id": "pt-cert", "comment": "para traslado"}

	body, ct := multipartRequest(t, fields, "dni.pdf", "%PDF-1.4 dni")
	resp := e.do(t, http.MethodPost, "/api/finance/requests", body.Bytes(), map[string]string{
		"Authorization":          tokenForRole(t, entity.RoleSecretaria),
		fiber.HeaderContentType: ct,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	req := decode[dto.ProcedureRequestResponse](t, resp)
	assert.Equal(t, string(entity.RequestPendingPayment), req.Status)
	require.NotNil(t, req.Payment)
	assert.Equal(t, "25.00", req.Payment.Total.StringFixed(2))

	resp = e.do(t, http.MethodGet, fmt.Sprintf("/api/finance/requests/%s/attachment", req.ID), nil, asRole(t, entity.RoleSecretaria))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 dni", string(got))

	resp = e.do(t, http.MethodPost, "/api/finance/requests/"+req.ID+"/review", dto.ReviewRequestInput{Decision: "RECHAZADO", Response: "falta foto"}, asRole(t, entity.RoleTesoreria))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "tesorería no revisa solicitudes")

	resp = e.do(t, http.MethodPost, "/api/finance/requests/"+req.ID+"/review", dto.ReviewRequestInput{Decision: "RECHAZADO", Response: "falta foto"}, asRole(t, entity.RoleSecretaria))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	reviewed := decode[dto.ProcedureRequestResponse](t, resp)
	assert.Equal(t, string(entity.RequestRejected), reviewed.Status)
	assert.Equal(t, string(entity.PaymentVoid), reviewed.Payment.Status)

	body, ct = multipartRequest(t, fields, "foto.gif", "GIF89a")
	resp = e.do(t, http.MethodPost, "/api/finance/requests", body.Bytes(), map[string]string{
		"Authorization":          tokenForRole(t, entity.RoleSecretaria),
		fiber.HeaderContentType: ct,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", errorCode(t, resp))
}

// testContext mirrors testing.T.Context (Go 1.24+): a context canceled when the test finishes.
func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
