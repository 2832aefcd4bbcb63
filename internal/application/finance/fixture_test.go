package finance_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/colegio-api/internal/application/academic"
	"github.com/jhoicas/colegio-api/internal/application/dto"
	"github.com/jhoicas/colegio-api/internal/application/finance"
	"github.com/jhoicas/colegio-api/internal/domain/entity"
	"github.com/jhoicas/colegio-api/internal/infrastructure/bank"
	"github.com/jhoicas/colegio-api/internal/infrastructure/memory"
	"github.com/jhoicas/colegio-api/internal/infrastructure/storage"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture: colegio con el año 202601 (marzo a diciembre), un alumno matriculado
// y la tarifa de pensión REGULAR en 300.00. Todo sobre el store en memoria.
// ──────────────────────────────────────────────────────────────────────────────

const (
	testSecret    = "secreto-del-banco"
	testYearID    = "202601"
	testStudentID = "stu-1"
	testDNI       = "70000001"
	testEnrollID  = "enr-1"
)

type fixture struct {
	ctx      context.Context
	store    *memory.Store
	fs       afero.Fs
	files    *storage.AttachmentStore
	verifier *bank.HMACVerifier
	now      time.Time

	pensions   *finance.PensionUseCase
	lateFees   *finance.LateFeeUseCase
	revisions  *finance.PriceRevisionUseCase
	payments   *finance.PaymentUseCase
	requests   *finance.ProcedureRequestUseCase
	procTypes  *finance.ProcedureTypeUseCase
	reconcile  *finance.ReconciliationUseCase
	exonerate  *finance.ExonerationUseCase
	provisions *academic.SeatProvisioner
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// newFixture arma el escenario con "hoy" = now.
func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	f := &fixture{
		ctx:      context.Background(),
		store:    memory.NewStore(),
		fs:       afero.NewMemMapFs(),
		verifier: bank.NewHMACVerifier(testSecret),
		now:      now,
	}
	f.files = storage.NewAttachmentStore(f.fs)

	end := day(2026, time.December, 20)
	require.NoError(t, f.store.SchoolYears().Create(f.ctx, &entity.SchoolYear{
		ID: testYearID, StartDate: day(2026, time.March, 1), EndDate: &end, Type: entity.PeriodRegular,
	}))
	f.store.SeedStudent(&entity.Student{ID: testStudentID, DNI: testDNI, FirstNames: "Lucía", LastNames: "Huamán Soto"})
	require.NoError(t, f.store.Enrollments().Create(f.ctx, &entity.Enrollment{
		ID: testEnrollID, StudentID: testStudentID, SchoolYearID: testYearID, GradeID: "3P",
		Status: entity.EnrollmentEnrolled, PlanType: entity.PeriodRegular, EnrolledAt: day(2026, time.February, 15),
	}))
	require.NoError(t, f.store.ProcedureTypes().Create(f.ctx, &entity.ProcedureType{
		ID: "pt-pension", Name: "Pensión Regular", Cost: money("300.00"),
		Scope: entity.ScopeAll, Period: entity.PeriodRegular, Active: true,
	}))

	f.build(f.store)
	return f
}

// build instancia los casos de uso. tx permite envolver el runner transaccional.
func (f *fixture) build(tx finance.TxRunner) {
	s := f.store
	clock := func() time.Time { return f.now }
	log := zerolog.Nop()

	f.provisions = academic.NewSeatProvisioner(s.SchoolYears(), s.Enrollments(), clock)
	f.pensions = finance.NewPensionUseCase(s.SchoolYears(), s.Enrollments(), s.ProcedureTypes(), s.Exonerations(), s.Payments(), clock, log)
	f.lateFees = finance.NewLateFeeUseCase(s.Payments(), decimal.Zero, clock, log)
	f.revisions = finance.NewPriceRevisionUseCase(s.SchoolYears(), s.Payments(), clock, log)
	f.payments = finance.NewPaymentUseCase(tx, s.Payments(), s.Students(), s.Enrollments(), s.ProcedureRequests(), f.provisions, f.pensions, clock, log)
	f.requests = finance.NewProcedureRequestUseCase(tx, s.Students(), s.ProcedureTypes(), s.ProcedureRequests(), s.Payments(), f.files,
		finance.AttachmentPolicy{MaxBytes: 1 << 20}, clock, log)
	f.procTypes = finance.NewProcedureTypeUseCase(s.ProcedureTypes(), clock)
	f.reconcile = finance.NewReconciliationUseCase(tx, s.Students(), s.Payments(), s.BankNotifications(), s.ProcedureRequests(), s.Enrollments(),
		f.verifier, finance.PolicyReject, f.provisions, f.pensions, clock, log)
	f.exonerate = finance.NewExonerationUseCase(s.Enrollments(), s.Exonerations(), clock)
}

func (f *fixture) pension(t *testing.T, month int) *entity.Payment {
	t.Helper()
	outcome, p, err := f.pensions.GenerateMonthlyPension(f.ctx, finance.PensionInput{
		StudentID: testStudentID, EnrollmentID: testEnrollID, PlanType: entity.PeriodRegular, Month: month, Year: 2026,
	})
	require.NoError(t, err)
	require.Equal(t, finance.OutcomeCreated, outcome)
	require.NotNil(t, p)
	return p
}

func (f *fixture) payment(t *testing.T, id string) *entity.Payment {
	t.Helper()
	p, err := f.store.Payments().GetByID(f.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p
}

// notification arma una notificación firmada con la clave del banco.
func (f *fixture) notification(txID, dni, amount, reference string) dto.BankNotificationRequest {
	n := dto.BankNotificationRequest{
		TransactionID: txID,
		DNI:           dni,
		AmountPaid:    money(amount),
		OperatedAt:    "2026-04-02 09:15:00",
		OperationCode: "OP-" + txID,
		Channel:       "AGENTE",
		Reference:     reference,
	}
	n.Checksum = f.verifier.Sign(n)
	return n
}
