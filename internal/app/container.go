// Package app arma las dependencias (repositorios, casos de uso) compartidas por los binarios.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/colegio-api/internal/application/academic"
	appanalytics "github.com/jhoicas/colegio-api/internal/application/analytics"
	"github.com/jhoicas/colegio-api/internal/application/auth"
	"github.com/jhoicas/colegio-api/internal/application/finance"
	"github.com/jhoicas/colegio-api/internal/domain/repository"
	"github.com/jhoicas/colegio-api/internal/infrastructure/bank"
	"github.com/jhoicas/colegio-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/colegio-api/internal/infrastructure/pdf"
	"github.com/jhoicas/colegio-api/internal/infrastructure/postgres"
	"github.com/jhoicas/colegio-api/internal/infrastructure/storage"
	"github.com/jhoicas/colegio-api/pkg/config"
)

// Repositories puertos de persistencia resueltos según STORE_DRIVER.
type Repositories struct {
	Tx            finance.TxRunner
	SchoolYears   repository.SchoolYearRepository
	Students      repository.StudentRepository
	Users         repository.UserRepository
	Enrollments   repository.EnrollmentRepository
	Exonerations  repository.ExonerationRepository
	Procedures    repository.ProcedureTypeRepository
	Requests      repository.ProcedureRequestRepository
	Payments      repository.PaymentRepository
	Notifications repository.BankNotificationRepository
	Analytics     repository.AnalyticsRepository
}

// Container casos de uso listos para el router o el scheduler.
type Container struct {
	Repos       Repositories
	Attachments *storage.AttachmentStore

	Auth          *auth.AuthUseCase
	SchoolYears   *academic.SchoolYearUseCase
	Provisioner   *academic.SeatProvisioner
	ProcedureType *finance.ProcedureTypeUseCase
	Requests      *finance.ProcedureRequestUseCase
	Payments      *finance.PaymentUseCase
	Receipts      *finance.ReceiptUseCase
	Pensions      *finance.PensionUseCase
	LateFees      *finance.LateFeeUseCase
	Revisions     *finance.PriceRevisionUseCase
	Exonerations  *finance.ExonerationUseCase
	Reconcile     *finance.ReconciliationUseCase
	Dashboard     *appanalytics.DashboardUseCase
}

// OpenRepositories conecta el backend configurado. close libera el pool (no-op en memoria).
func OpenRepositories(ctx context.Context, cfg *config.Config, log zerolog.Logger) (Repositories, func(), error) {
	switch cfg.Store.Driver {
	case "memory":
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		return MemoryRepositories(memory.NewStore()), func() {}, nil
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return Repositories{}, nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		return Repositories{
			Tx:            postgres.NewTxRunner(pool),
			SchoolYears:   postgres.NewSchoolYearRepository(pool),
			Students:      postgres.NewStudentRepository(pool),
			Users:         postgres.NewUserRepository(pool),
			Enrollments:   postgres.NewEnrollmentRepository(pool),
			Exonerations:  postgres.NewExonerationRepository(pool),
			Procedures:    postgres.NewProcedureTypeRepository(pool),
			Requests:      postgres.NewProcedureRequestRepository(pool),
			Payments:      postgres.NewPaymentRepository(pool),
			Notifications: postgres.NewBankNotificationRepository(pool),
			Analytics:     postgres.NewAnalyticsRepository(pool),
		}, pool.Close, nil
	default:
		return Repositories{}, nil, fmt.Errorf("STORE_DRIVER no soportado: %q", cfg.Store.Driver)
	}
}

// MemoryRepositories expone un memory.Store como Repositories.
func MemoryRepositories(s *memory.Store) Repositories {
	return Repositories{
		Tx:            s,
		SchoolYears:   s.SchoolYears(),
		Students:      s.Students(),
		Users:         s.Users(),
		Enrollments:   s.Enrollments(),
		Exonerations:  s.Exonerations(),
		Procedures:    s.ProcedureTypes(),
		Requests:      s.ProcedureRequests(),
		Payments:      s.Payments(),
		Notifications: s.BankNotifications(),
		Analytics:     s.Analytics(),
	}
}

// Build arma los casos de uso sobre repos. attachments puede ser nil: se usa FINANCE_ATTACHMENT_DIR.
func Build(cfg *config.Config, repos Repositories, attachments *storage.AttachmentStore, log zerolog.Logger) (*Container, error) {
	loc := cfg.App.Location()
	clock := finance.SystemClock(loc)

	if attachments == nil {
		var err error
		attachments, err = storage.NewDiskAttachmentStore(cfg.Finance.AttachmentDir)
		if err != nil {
			return nil, fmt.Errorf("directorio de adjuntos: %w", err)
		}
	}

	provisioner := academic.NewSeatProvisioner(repos.SchoolYears, repos.Enrollments, clock)
	pensions := finance.NewPensionUseCase(
		repos.SchoolYears, repos.Enrollments, repos.Procedures, repos.Exonerations, repos.Payments,
		clock, log,
	)
	policy := finance.AttachmentPolicy{
		AllowedExts: cfg.Finance.AttachmentExts,
		MaxBytes:    int64(cfg.Finance.AttachmentMaxMB) << 20,
	}
	receiptGen := infrapdf.NewReceiptGenerator(infrapdf.School{
		Name: cfg.App.SchoolName,
		RUC:  cfg.App.SchoolRUC,
	}, loc)

	return &Container{
		Repos:       repos,
		Attachments: attachments,
		Auth: auth.NewAuthUseCase(repos.Users, auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		}),
		SchoolYears:   academic.NewSchoolYearUseCase(repos.SchoolYears, clock),
		Provisioner:   provisioner,
		ProcedureType: finance.NewProcedureTypeUseCase(repos.Procedures, clock),
		Requests: finance.NewProcedureRequestUseCase(
			repos.Tx, repos.Students, repos.Procedures, repos.Requests, repos.Payments,
			attachments, policy, clock, log,
		),
		Payments: finance.NewPaymentUseCase(
			repos.Tx, repos.Payments, repos.Students, repos.Enrollments, repos.Requests,
			provisioner, pensions, clock, log,
		),
		Receipts:     finance.NewReceiptUseCase(repos.Payments, repos.Students, receiptGen),
		Pensions:     pensions,
		LateFees:     finance.NewLateFeeUseCase(repos.Payments, cfg.Finance.LateFee, clock, log),
		Revisions:    finance.NewPriceRevisionUseCase(repos.SchoolYears, repos.Payments, clock, log),
		Exonerations: finance.NewExonerationUseCase(repos.Enrollments, repos.Exonerations, clock),
		Reconcile: finance.NewReconciliationUseCase(
			repos.Tx, repos.Students, repos.Payments, repos.Notifications, repos.Requests, repos.Enrollments,
			bank.NewHMACVerifier(cfg.Bank.WebhookSecret), finance.ParseAmbiguityPolicy(cfg.Bank.AmbiguityPolicy),
			provisioner, pensions, clock, log,
		),
		Dashboard: appanalytics.NewDashboardUseCase(repos.Analytics, clock),
	}, nil
}
