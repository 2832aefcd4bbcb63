package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/colegio-api/internal/domain"
	"github.com/jhoicas/colegio-api/internal/domain/entity"
	"github.com/jhoicas/colegio-api/internal/domain/finance"
	"github.com/jhoicas/colegio-api/internal/domain/repository"
)

// ── Catálogo de trámites ─────────────────────────────────────────────────────

type ProcedureTypeRepo struct{ v view }

var _ repository.ProcedureTypeRepository = (*ProcedureTypeRepo)(nil)

// seatTaken equivale al índice único parcial sobre nombres con VACANTE.
func seatTaken(st *state, p *entity.ProcedureType) bool {
	if !finance.IsSeatReservation(p.Name) {
		return false
	}
	for _, other := range st.procedures {
		if other.ID != p.ID && finance.IsSeatReservation(other.Name) {
			return true
		}
	}
	return false
}

func (r *ProcedureTypeRepo) Create(_ context.Context, p *entity.ProcedureType) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.procedures[p.ID]; ok || seatTaken(st, p) {
			return domain.ErrDuplicate
		}
		c := *p
		st.procedures[p.ID] = &c
		return nil
	})
}

func (r *ProcedureTypeRepo) Update(_ context.Context, p *entity.ProcedureType) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.procedures[p.ID]; !ok {
			return domain.ErrNotFound
		}
		if seatTaken(st, p) {
			return domain.ErrDuplicate
		}
		c := *p
		st.procedures[p.ID] = &c
		return nil
	})
}

func (r *ProcedureTypeRepo) GetByID(_ context.Context, id string) (*entity.ProcedureType, error) {
	var out *entity.ProcedureType
	err := r.v.with(func(st *state) error {
		if p, ok := st.procedures[id]; ok {
			c := *p
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *ProcedureTypeRepo) list(filter func(p *entity.ProcedureType) bool) ([]*entity.ProcedureType, error) {
	var out []*entity.ProcedureType
	err := r.v.with(func(st *state) error {
		for _, p := range st.procedures {
			if filter(p) {
				c := *p
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *ProcedureTypeRepo) List(_ context.Context, onlyActive bool) ([]*entity.ProcedureType, error) {
	return r.list(func(p *entity.ProcedureType) bool { return !onlyActive || p.Active })
}

func (r *ProcedureTypeRepo) ListActiveByPeriod(_ context.Context, period string) ([]*entity.ProcedureType, error) {
	return r.list(func(p *entity.ProcedureType) bool {
		return p.Active && (p.Period == period || p.Period == entity.PeriodBoth)
	})
}

// ── Solicitudes ──────────────────────────────────────────────────────────────

type ProcedureRequestRepo struct{ v view }

var _ repository.ProcedureRequestRepository = (*ProcedureRequestRepo)(nil)

func (r *ProcedureRequestRepo) Create(_ context.Context, req *entity.ProcedureRequest) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.requests[req.ID]; ok {
			return domain.ErrDuplicate
		}
		c := *req
		st.requests[req.ID] = &c
		return nil
	})
}

func (r *ProcedureRequestRepo) GetByID(_ context.Context, id string) (*entity.ProcedureRequest, error) {
	var out *entity.ProcedureRequest
	err := r.v.with(func(st *state) error {
		if req, ok := st.requests[id]; ok {
			c := *req
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *ProcedureRequestRepo) ListByStudent(_ context.Context, studentID string) ([]*entity.ProcedureRequest, error) {
	var out []*entity.ProcedureRequest
	err := r.v.with(func(st *state) error {
		for _, req := range st.requests {
			if req.StudentID == studentID {
				c := *req
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RequestedAt.Equal(out[j].RequestedAt) {
			return out[i].RequestedAt.After(out[j].RequestedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, err
}

func (r *ProcedureRequestRepo) UpdateStatus(_ context.Context, id string, from, to entity.RequestStatus, adminResponse string) (bool, error) {
	updated := false
	err := r.v.with(func(st *state) error {
		req, ok := st.requests[id]
		if !ok || req.Status != from {
			return nil
		}
		req.Status = to
		if adminResponse != "" {
			req.AdminResponse = adminResponse
		}
		req.UpdatedAt = time.Now()
		updated = true
		return nil
	})
	return updated, err
}

// ── Ledger de pagos ──────────────────────────────────────────────────────────

type PaymentRepo struct{ v view }

var _ repository.PaymentRepository = (*PaymentRepo)(nil)

func samePension(a, b *entity.Payment) bool {
	return a.Kind == entity.ChargePension && b.Kind == entity.ChargePension &&
		a.StudentID == b.StudentID && a.PeriodYear == b.PeriodYear && a.PeriodMonth == b.PeriodMonth
}

func (r *PaymentRepo) Create(_ context.Context, p *entity.Payment) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.payments[p.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range st.payments {
			if samePension(other, p) {
				return domain.ErrDuplicate
			}
		}
		c := *p
		st.payments[p.ID] = &c
		return nil
	})
}

func (r *PaymentRepo) GetByID(_ context.Context, id string) (*entity.Payment, error) {
	var out *entity.Payment
	err := r.v.with(func(st *state) error {
		if p, ok := st.payments[id]; ok {
			c := *p
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *PaymentRepo) ExistsPension(_ context.Context, studentID string, year, month int) (bool, error) {
	found := false
	err := r.v.with(func(st *state) error {
		probe := &entity.Payment{Kind: entity.ChargePension, StudentID: studentID, PeriodYear: year, PeriodMonth: month}
		for _, p := range st.payments {
			if samePension(p, probe) {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

// list devuelve copias ordenadas por vencimiento, creación e id.
func (r *PaymentRepo) list(filter func(p *entity.Payment) bool) ([]*entity.Payment, error) {
	var out []*entity.Payment
	err := r.v.with(func(st *state) error {
		for _, p := range st.payments {
			if filter(p) {
				c := *p
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.DueDate.Equal(b.DueDate) {
			return a.DueDate.Before(b.DueDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out, err
}

func (r *PaymentRepo) ListByStudent(_ context.Context, studentID string) ([]*entity.Payment, error) {
	return r.list(func(p *entity.Payment) bool { return p.StudentID == studentID })
}

func (r *PaymentRepo) ListByRequest(_ context.Context, requestID string) ([]*entity.Payment, error) {
	return r.list(func(p *entity.Payment) bool { return p.RequestID == requestID })
}

func (r *PaymentRepo) ListOpenByStudent(_ context.Context, studentID string) ([]*entity.Payment, error) {
	return r.list(func(p *entity.Payment) bool { return p.StudentID == studentID && p.Status.IsOpen() })
}

func (r *PaymentRepo) ListOpenByStudentAndTotal(_ context.Context, studentID string, total decimal.Decimal) ([]*entity.Payment, error) {
	return r.list(func(p *entity.Payment) bool {
		return p.StudentID == studentID && p.Status.IsOpen() && p.Total.Equal(total)
	})
}

func (r *PaymentRepo) ApplyLateFees(_ context.Context, asOf time.Time, fee decimal.Decimal) (int64, error) {
	var n int64
	err := r.v.with(func(st *state) error {
		now := time.Now()
		for _, p := range st.payments {
			if p.Status == entity.PaymentPending && p.DueDate.Before(asOf) && p.LateFee.IsZero() {
				p.LateFee = fee
				p.Total = p.Amount.Add(fee)
				p.UpdatedAt = now
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *PaymentRepo) RevisePendingAmounts(_ context.Context, f repository.RevisionFilter, newAmount decimal.Decimal) (int64, error) {
	var n int64
	needle := strings.ToUpper(f.ConceptFilter)
	err := r.v.with(func(st *state) error {
		now := time.Now()
		for _, p := range st.payments {
			if p.Status != entity.PaymentPending || int(p.DueDate.Month()) < f.MonthFrom {
				continue
			}
			if !strings.Contains(strings.ToUpper(p.Concept), needle) {
				continue
			}
			enr, ok := st.enrollments[p.EnrollmentID]
			if !ok || enr.SchoolYearID != f.SchoolYearID {
				continue
			}
			p.Amount = newAmount
			p.Total = newAmount.Add(p.LateFee)
			p.UpdatedAt = now
			n++
		}
		return nil
	})
	return n, err
}

func (r *PaymentRepo) MarkPaid(_ context.Context, id string, s entity.Settlement) (bool, error) {
	updated := false
	err := r.v.with(func(st *state) error {
		p, ok := st.payments[id]
		if !ok || !p.Status.IsOpen() {
			return nil
		}
		paidAt := s.PaidAt
		p.Status = entity.PaymentPaid
		p.PaidAt = &paidAt
		p.BankCode = s.BankCode
		p.BankPayload = s.BankPayload
		p.UpdatedAt = time.Now()
		updated = true
		return nil
	})
	return updated, err
}

func (r *PaymentRepo) MarkVoid(_ context.Context, id string, at time.Time) (bool, error) {
	updated := false
	err := r.v.with(func(st *state) error {
		p, ok := st.payments[id]
		if !ok || !p.Status.IsOpen() {
			return nil
		}
		p.Status = entity.PaymentVoid
		p.UpdatedAt = at
		updated = true
		return nil
	})
	return updated, err
}

// ── Notificaciones bancarias ─────────────────────────────────────────────────

type BankNotificationRepo struct{ v view }

var _ repository.BankNotificationRepository = (*BankNotificationRepo)(nil)

func (r *BankNotificationRepo) Create(_ context.Context, n *entity.BankNotification) error {
	return r.v.with(func(st *state) error {
		for _, other := range st.notifications {
			if other.TransactionID == n.TransactionID {
				return domain.ErrDuplicate
			}
		}
		c := *n
		st.notifications[n.ID] = &c
		return nil
	})
}

func (r *BankNotificationRepo) GetByTransactionID(_ context.Context, transactionID string) (*entity.BankNotification, error) {
	var out *entity.BankNotification
	err := r.v.with(func(st *state) error {
		for _, n := range st.notifications {
			if n.TransactionID == transactionID {
				c := *n
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *BankNotificationRepo) UpdateResult(_ context.Context, id, status, paymentID, errMsg string, processedAt time.Time) error {
	return r.v.with(func(st *state) error {
		n, ok := st.notifications[id]
		if !ok {
			return domain.ErrNotFound
		}
		n.Status = status
		n.PaymentID = paymentID
		n.Error = errMsg
		at := processedAt
		n.ProcessedAt = &at
		return nil
	})
}

// ── Analítica ────────────────────────────────────────────────────────────────

type AnalyticsRepo struct{ v view }

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

func (r *AnalyticsRepo) CollectedBetween(_ context.Context, from, to time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	err := r.v.with(func(st *state) error {
		for _, p := range st.payments {
			if p.Status == entity.PaymentPaid && p.PaidAt != nil && !p.PaidAt.Before(from) && !p.PaidAt.After(to) {
				sum = sum.Add(p.Total)
			}
		}
		return nil
	})
	return sum, err
}

func (r *AnalyticsRepo) OpenDebt(_ context.Context) (decimal.Decimal, int64, error) {
	sum := decimal.Zero
	var n int64
	err := r.v.with(func(st *state) error {
		for _, p := range st.payments {
			if p.Status.IsOpen() {
				sum = sum.Add(p.Total)
				n++
			}
		}
		return nil
	})
	return sum, n, err
}

func (r *AnalyticsRepo) OverdueCount(_ context.Context, asOf time.Time) (int64, error) {
	var n int64
	err := r.v.with(func(st *state) error {
		for _, p := range st.payments {
			if p.Status.IsOpen() && p.DueDate.Before(asOf) {
				n++
			}
		}
		return nil
	})
	return n, err
}
