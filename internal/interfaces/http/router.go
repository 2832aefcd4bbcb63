package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	appanalytics "github.com/jhoicas/colegio-api/internal/application/analytics"
	"github.com/jhoicas/colegio-api/internal/application/academic"
	"github.com/jhoicas/colegio-api/internal/application/auth"
	"github.com/jhoicas/colegio-api/internal/application/finance"
	"github.com/jhoicas/colegio-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC          *auth.AuthUseCase
	SchoolYearUC    *academic.SchoolYearUseCase
	ProcedureTypeUC *finance.ProcedureTypeUseCase
	RequestUC       *finance.ProcedureRequestUseCase
	PaymentUC       *finance.PaymentUseCase
	ReceiptUC       *finance.ReceiptUseCase
	PensionUC       *finance.PensionUseCase
	LateFeeUC       *finance.LateFeeUseCase
	RevisionUC      *finance.PriceRevisionUseCase
	ExonerationUC   *finance.ExonerationUseCase
	ReconcileUC     *finance.ReconciliationUseCase
	DashboardUC     *appanalytics.DashboardUseCase
	Attachments     attachmentOpener

	JWTSecret string
	CronToken string
	BankKey   string

	Log         zerolog.Logger
	ExposeError bool // APP_ENV=development: el detalle de errores internos viaja en la respuesta
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	errs := errorWriter{log: deps.Log, exposeCause: deps.ExposeError}
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, errs)
	api.Post("/auth/login", authHandler.Login)

	// Banco: la notificación se autentica con el checksum, la consulta de deuda con X-Bank-Key
	bankHandler := NewBankHandler(deps.ReconcileUC, errs)
	bank := api.Group("/bank")
	bank.Post("/notifications", bankHandler.Notification)
	bank.Get("/debts/:dni", RequireSharedKey(HeaderBankKey, deps.BankKey), bankHandler.Debts)

	// Cron externo
	cronHandler := NewCronHandler(deps.PensionUC, deps.LateFeeUC, errs)
	cron := api.Group("/cron", RequireSharedKey(HeaderCronToken, deps.CronToken))
	cron.Post("/pensions", cronHandler.Pensions)
	cron.Post("/late-fees", cronHandler.LateFees)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	anyStaff := RequireRole(entity.RoleAdmin, entity.RoleTesoreria, entity.RoleSecretaria)
	treasury := RequireRole(entity.RoleAdmin, entity.RoleTesoreria)
	reviewers := RequireRole(entity.RoleAdmin, entity.RoleSecretaria)
	adminOnly := RequireRole(entity.RoleAdmin)

	// Calendario
	syHandler := NewSchoolYearHandler(deps.SchoolYearUC, errs)
	protected.Get("/school-years", anyStaff, syHandler.List)
	protected.Post("/school-years", adminOnly, syHandler.Create)

	fin := protected.Group("/finance")

	// Catálogo de trámites y solicitudes
	procHandler := NewProcedureHandler(deps.ProcedureTypeUC, deps.RequestUC, deps.Attachments, errs)
	fin.Get("/procedure-types", anyStaff, procHandler.ListTypes)
	fin.Post("/procedure-types", adminOnly, procHandler.CreateType)
	fin.Put("/procedure-types/:id", adminOnly, procHandler.UpdateType)
	fin.Post("/requests", anyStaff, procHandler.Submit)
	fin.Get("/requests/:id", anyStaff, procHandler.GetRequest)
	fin.Get("/requests/:id/attachment", anyStaff, procHandler.Attachment)
	fin.Post("/requests/:id/review", reviewers, procHandler.Review)
	fin.Get("/students/:id/requests", anyStaff, procHandler.ListByStudent)

	// Pagos
	payHandler := NewPaymentHandler(deps.PaymentUC, deps.ReceiptUC, errs)
	fin.Post("/payments", treasury, payHandler.Create)
	fin.Get("/payments/:id", treasury, payHandler.Get)
	fin.Get("/payments/:id/receipt", anyStaff, payHandler.Receipt)
	fin.Post("/payments/:id/confirm", treasury, payHandler.Confirm)
	fin.Post("/payments/:id/void", treasury, payHandler.Void)
	fin.Get("/students/:id/payments", treasury, payHandler.ListByStudent)

	// Pensiones
	billingHandler := NewBillingHandler(deps.PensionUC, deps.RevisionUC, deps.ExonerationUC, errs)
	fin.Post("/pensions/generate", treasury, billingHandler.GeneratePension)
	fin.Post("/pensions/revise", treasury, billingHandler.RevisePending)
	fin.Post("/exonerations", treasury, billingHandler.CreateExoneration)

	// Tablero
	dashHandler := NewDashboardHandler(deps.DashboardUC, errs)
	fin.Get("/dashboard", treasury, dashHandler.GetSummary)
}
