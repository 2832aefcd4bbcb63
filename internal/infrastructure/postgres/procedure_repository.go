package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/colegio-api/internal/domain"
	"github.com/jhoicas/colegio-api/internal/domain/entity"
	"github.com/jhoicas/colegio-api/internal/domain/repository"
)

var (
	_ repository.ProcedureTypeRepository    = (*ProcedureTypeRepo)(nil)
	_ repository.ProcedureRequestRepository = (*ProcedureRequestRepo)(nil)
)

// ProcedureTypeRepo catálogo de trámites.
type ProcedureTypeRepo struct {
	q Querier
}

// NewProcedureTypeRepository construye el adaptador.
func NewProcedureTypeRepository(q Querier) *ProcedureTypeRepo {
	return &ProcedureTypeRepo{q: q}
}

const procedureTypeColumns = `id, name, cost, requirements, scope, period, active, created_at, updated_at`

func scanProcedureType(row pgx.Row) (*entity.ProcedureType, error) {
	var p entity.ProcedureType
	var req *string
	if err := row.Scan(&p.ID, &p.Name, &p.Cost, &req, &p.Scope, &p.Period, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Requirements = deref(req)
	return &p, nil
}

// Create inserta el trámite; uq_procedure_types_seat rechaza una segunda reserva de vacante.
func (r *ProcedureTypeRepo) Create(ctx context.Context, p *entity.ProcedureType) error {
	query := `
		INSERT INTO procedure_types (` + procedureTypeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Cost, nullIfEmpty(p.Requirements), p.Scope, p.Period, p.Active, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert procedure_type: %w", err)
	}
	return nil
}

func (r *ProcedureTypeRepo) Update(ctx context.Context, p *entity.ProcedureType) error {
	query := `
		UPDATE procedure_types
		SET name = $2, cost = $3, requirements = $4, scope = $5, period = $6, active = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Cost, nullIfEmpty(p.Requirements), p.Scope, p.Period, p.Active, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update procedure_type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProcedureTypeRepo) GetByID(ctx context.Context, id string) (*entity.ProcedureType, error) {
	query := `SELECT ` + procedureTypeColumns + ` FROM procedure_types WHERE id = $1`
	p, err := scanProcedureType(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get procedure_type: %w", err)
	}
	return p, nil
}

func (r *ProcedureTypeRepo) List(ctx context.Context, onlyActive bool) ([]*entity.ProcedureType, error) {
	query := `
		SELECT ` + procedureTypeColumns + `
		FROM procedure_types
		WHERE ($1 = false OR active)
		ORDER BY name, id`
	return r.list(ctx, query, onlyActive)
}

func (r *ProcedureTypeRepo) ListActiveByPeriod(ctx context.Context, period string) ([]*entity.ProcedureType, error) {
	query := `
		SELECT ` + procedureTypeColumns + `
		FROM procedure_types
		WHERE active AND period IN ($1, $2)
		ORDER BY name, id`
	return r.list(ctx, query, period, entity.PeriodBoth)
}

func (r *ProcedureTypeRepo) list(ctx context.Context, query string, args ...any) ([]*entity.ProcedureType, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list procedure_types: %w", err)
	}
	defer rows.Close()
	var out []*entity.ProcedureType
	for rows.Next() {
		p, err := scanProcedureType(rows)
		if err != nil {
			return nil, fmt.Errorf("scan procedure_type: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ProcedureRequestRepo solicitudes de trámite.
type ProcedureRequestRepo struct {
	q Querier
}

// NewProcedureRequestRepository construye el adaptador.
func NewProcedureRequestRepository(q Querier) *ProcedureRequestRepo {
	return &ProcedureRequestRepo{q: q}
}

const procedureRequestColumns = `id, student_id, procedure_type_id, grade_id, status, attachment, comment, admin_response, requested_at, updated_at`

func scanProcedureRequest(row pgx.Row) (*entity.ProcedureRequest, error) {
	var r entity.ProcedureRequest
	var grade, att, comment, resp *string
	if err := row.Scan(&r.ID, &r.StudentID, &r.ProcedureTypeID, &grade, &r.Status, &att, &comment, &resp, &r.RequestedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	r.GradeID, r.Attachment, r.Comment, r.AdminResponse = deref(grade), deref(att), deref(comment), deref(resp)
	return &r, nil
}

func (r *ProcedureRequestRepo) Create(ctx context.Context, req *entity.ProcedureRequest) error {
	query := `
		INSERT INTO procedure_requests (` + procedureRequestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		req.ID, req.StudentID, req.ProcedureTypeID, nullIfEmpty(req.GradeID), req.Status,
		nullIfEmpty(req.Attachment), nullIfEmpty(req.Comment), nullIfEmpty(req.AdminResponse),
		req.RequestedAt, req.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert procedure_request: %w", err)
	}
	return nil
}

func (r *ProcedureRequestRepo) GetByID(ctx context.Context, id string) (*entity.ProcedureRequest, error) {
	query := `SELECT ` + procedureRequestColumns + ` FROM procedure_requests WHERE id = $1`
	req, err := scanProcedureRequest(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get procedure_request: %w", err)
	}
	return req, nil
}

func (r *ProcedureRequestRepo) ListByStudent(ctx context.Context, studentID string) ([]*entity.ProcedureRequest, error) {
	query := `
		SELECT ` + procedureRequestColumns + `
		FROM procedure_requests
		WHERE student_id = $1
		ORDER BY requested_at DESC, id DESC`
	rows, err := r.q.Query(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("list procedure_requests: %w", err)
	}
	defer rows.Close()
	var out []*entity.ProcedureRequest
	for rows.Next() {
		req, err := scanProcedureRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan procedure_request: %w", err)
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// UpdateStatus compare-and-set sobre el estado.
func (r *ProcedureRequestRepo) UpdateStatus(ctx context.Context, id string, from, to entity.RequestStatus, adminResponse string) (bool, error) {
	query := `
		UPDATE procedure_requests
		SET status = $3, admin_response = COALESCE($4, admin_response), updated_at = now()
		WHERE id = $1 AND status = $2`
	tag, err := r.q.Exec(ctx, query, id, from, to, nullIfEmpty(adminResponse))
	if err != nil {
		return false, fmt.Errorf("update procedure_request status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
