package academic_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/colegio-api/internal/application/academic"
	"github.com/jhoicas/colegio-api/internal/application/dto"
	"github.com/jhoicas/colegio-api/internal/domain"
	"github.com/jhoicas/colegio-api/internal/domain/entity"
	"github.com/jhoicas/colegio-api/internal/infrastructure/memory"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixed(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestSchoolYear_CreateYListaConActivoCalculado(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	uc := academic.NewSchoolYearUseCase(store.SchoolYears(), fixed(day(2026, time.April, 1)))

	out, err := uc.Create(ctx, dto.CreateSchoolYearRequest{
		ID: "202601", StartDate: "2026-03-02", EndDate: "2026-12-18", Type: entity.PeriodRegular,
		EnrollmentStart: "2026-01-05", EnrollmentEnd: "2026-02-27",
	})
	require.NoError(t, err)
	assert.True(t, out.Active)
	assert.Equal(t, "2026-01-05", out.EnrollmentStart)

	_, err = uc.Create(ctx, dto.CreateSchoolYearRequest{ID: "202502", StartDate: "2026-01-05", EndDate: "2026-02-27", Type: entity.PeriodSummer})
	require.NoError(t, err)

	list, err := uc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "202601", list[0].ID, "el más reciente primero")
	assert.True(t, list[0].Active)
	assert.False(t, list[1].Active, "el verano ya terminó")

	_, err = uc.Create(ctx, dto.CreateSchoolYearRequest{ID: "202601", StartDate: "2026-03-02", Type: entity.PeriodRegular})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestSchoolYear_CreateValidaciones(t *testing.T) {
	ctx := context.Background()
	uc := academic.NewSchoolYearUseCase(memory.NewStore().SchoolYears(), fixed(day(2026, time.April, 1)))

	cases := []dto.CreateSchoolYearRequest{
		{ID: "2026", StartDate: "2026-03-02", Type: entity.PeriodRegular},
		{ID: "202601", StartDate: "2026-03-02", Type: "ANUAL"},
		{ID: "202601", StartDate: "02/03/2026", Type: entity.PeriodRegular},
		{ID: "202601", StartDate: "2026-03-02", EndDate: "2026-01-01", Type: entity.PeriodRegular},
		{ID: "202601", StartDate: "2026-03-02", Type: entity.PeriodRegular, EnrollmentStart: "2026-01-05"},
		{ID: "202601", StartDate: "2026-03-02", Type: entity.PeriodRegular, EnrollmentStart: "2026-02-05", EnrollmentEnd: "2026-01-05"},
	}
	for i, in := range cases {
		_, err := uc.Create(ctx, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "caso %d", i)
	}
}

func TestProvisionSeat_PrefiereVentanaDeInscripcion(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	regularEnd := day(2026, time.December, 18)
	encStart, encEnd := day(2026, time.October, 1), day(2026, time.November, 30)
	require.NoError(t, store.SchoolYears().Create(ctx, &entity.SchoolYear{
		ID: "202601", StartDate: day(2026, time.March, 2), EndDate: &regularEnd, Type: entity.PeriodRegular,
	}))
	require.NoError(t, store.SchoolYears().Create(ctx, &entity.SchoolYear{
		ID: "202701", StartDate: day(2027, time.March, 1), Type: entity.PeriodRegular,
		EnrollmentStart: &encStart, EnrollmentEnd: &encEnd,
	}))

	p := academic.NewSeatProvisioner(store.SchoolYears(), store.Enrollments(), fixed(day(2026, time.October, 15)))
	enr, err := p.ProvisionSeat(ctx, "stu-1", "2P")
	require.NoError(t, err)
	require.NotNil(t, enr)
	assert.Equal(t, "202701", enr.SchoolYearID, "inscripción abierta para el año siguiente")
	assert.Equal(t, entity.EnrollmentEnrolled, enr.Status)
	assert.Equal(t, entity.PeriodRegular, enr.PlanType)

	again, err := p.ProvisionSeat(ctx, "stu-1", "")
	require.NoError(t, err)
	assert.Equal(t, enr.ID, again.ID, "idempotente")

	p = academic.NewSeatProvisioner(store.SchoolYears(), store.Enrollments(), fixed(day(2026, time.June, 1)))
	enr, err = p.ProvisionSeat(ctx, "stu-2", "3P")
	require.NoError(t, err)
	require.NotNil(t, enr)
	assert.Equal(t, "202601", enr.SchoolYearID, "sin ventana abierta usa el año regular activo")
}

func TestProvisionSeat_SinAnioDestino(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	p := academic.NewSeatProvisioner(store.SchoolYears(), store.Enrollments(), fixed(day(2026, time.June, 1)))

	enr, err := p.ProvisionSeat(ctx, "stu-1", "1P")
	require.NoError(t, err)
	assert.Nil(t, enr)

	require.NoError(t, store.SchoolYears().Create(ctx, &entity.SchoolYear{
		ID: "202601", StartDate: day(2026, time.March, 2), Type: entity.PeriodRegular,
	}))
	_, err = p.ProvisionSeat(ctx, "stu-1", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "una matrícula nueva exige grado")
}
