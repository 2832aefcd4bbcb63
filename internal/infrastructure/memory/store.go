// Package memory implementa los puertos de persistencia en memoria (STORE_DRIVER=memory y tests).
//
// Un único mutex protege el estado. RunFinance toma el lock, trabaja sobre una copia y la publica
// solo si fn termina sin error, lo que da atomicidad todo-o-nada. Dentro de fn deben usarse
// exclusivamente los repositorios de TxRepos: los repositorios del Store vuelven a tomar el lock.
package memory

import (
	"context"
	"sync"

	appfinance "github.com/jhoicas/colegio-api/internal/application/finance"
	"github.com/jhoicas/colegio-api/internal/domain/entity"
)

type state struct {
	years         map[string]*entity.SchoolYear
	students      map[string]*entity.Student
	users         map[string]*entity.User
	enrollments   map[string]*entity.Enrollment
	exonerations  map[string]*entity.Exoneration
	procedures    map[string]*entity.ProcedureType
	requests      map[string]*entity.ProcedureRequest
	payments      map[string]*entity.Payment
	notifications map[string]*entity.BankNotification
}

func newState() *state {
	return &state{
		years:         map[string]*entity.SchoolYear{},
		students:      map[string]*entity.Student{},
		users:         map[string]*entity.User{},
		enrollments:   map[string]*entity.Enrollment{},
		exonerations:  map[string]*entity.Exoneration{},
		procedures:    map[string]*entity.ProcedureType{},
		requests:      map[string]*entity.ProcedureRequest{},
		payments:      map[string]*entity.Payment{},
		notifications: map[string]*entity.BankNotification{},
	}
}

func cloneMap[T any](m map[string]*T) map[string]*T {
	out := make(map[string]*T, len(m))
	for k, v := range m {
		c := *v
		out[k] = &c
	}
	return out
}

func (s *state) clone() *state {
	return &state{
		years:         cloneMap(s.years),
		students:      cloneMap(s.students),
		users:         cloneMap(s.users),
		enrollments:   cloneMap(s.enrollments),
		exonerations:  cloneMap(s.exonerations),
		procedures:    cloneMap(s.procedures),
		requests:      cloneMap(s.requests),
		payments:      cloneMap(s.payments),
		notifications: cloneMap(s.notifications),
	}
}

// Store estado compartido de todos los repositorios en memoria.
type Store struct {
	mu sync.Mutex
	st *state
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{st: newState()}
}

// view acceso al estado: el de una transacción en curso o el publicado (con lock).
type view struct {
	s  *Store
	tx *state
}

func (v view) with(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	return fn(v.s.st)
}

// SeedStudent registra un alumno (el motor solo lee alumnos).
func (s *Store) SeedStudent(st *entity.Student) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *st
	s.st.students[st.ID] = &c
}

// SeedUser registra un usuario administrativo.
func (s *Store) SeedUser(u *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *u
	s.st.users[u.ID] = &c
}

// Repositorios sin transacción.

func (s *Store) SchoolYears() *SchoolYearRepo             { return &SchoolYearRepo{view{s: s}} }
func (s *Store) Students() *StudentRepo                   { return &StudentRepo{view{s: s}} }
func (s *Store) Users() *UserRepo                         { return &UserRepo{view{s: s}} }
func (s *Store) Enrollments() *EnrollmentRepo             { return &EnrollmentRepo{view{s: s}} }
func (s *Store) Exonerations() *ExonerationRepo           { return &ExonerationRepo{view{s: s}} }
func (s *Store) ProcedureTypes() *ProcedureTypeRepo       { return &ProcedureTypeRepo{view{s: s}} }
func (s *Store) ProcedureRequests() *ProcedureRequestRepo { return &ProcedureRequestRepo{view{s: s}} }
func (s *Store) Payments() *PaymentRepo                   { return &PaymentRepo{view{s: s}} }
func (s *Store) BankNotifications() *BankNotificationRepo { return &BankNotificationRepo{view{s: s}} }
func (s *Store) Analytics() *AnalyticsRepo                { return &AnalyticsRepo{view{s: s}} }

// RunFinance implementa finance.TxRunner.
func (s *Store) RunFinance(ctx context.Context, fn func(r appfinance.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.st.clone()
	v := view{s: s, tx: work}
	err := fn(appfinance.TxRepos{
		Payments:      &PaymentRepo{v},
		Requests:      &ProcedureRequestRepo{v},
		Procedures:    &ProcedureTypeRepo{v},
		Enrollments:   &EnrollmentRepo{v},
		Exonerations:  &ExonerationRepo{v},
		Notifications: &BankNotificationRepo{v},
	})
	if err != nil {
		return err
	}
	s.st = work
	return nil
}

var _ appfinance.TxRunner = (*Store)(nil)
