package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/colegio-api/internal/domain"
	"github.com/jhoicas/colegio-api/internal/domain/entity"
	"github.com/jhoicas/colegio-api/internal/domain/repository"
)

// ── Años escolares ───────────────────────────────────────────────────────────

type SchoolYearRepo struct{ v view }

var _ repository.SchoolYearRepository = (*SchoolYearRepo)(nil)

func (r *SchoolYearRepo) Create(_ context.Context, y *entity.SchoolYear) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.years[y.ID]; ok {
			return domain.ErrDuplicate
		}
		c := *y
		st.years[y.ID] = &c
		return nil
	})
}

func (r *SchoolYearRepo) GetByID(_ context.Context, id string) (*entity.SchoolYear, error) {
	var out *entity.SchoolYear
	err := r.v.with(func(st *state) error {
		if y, ok := st.years[id]; ok {
			c := *y
			out = &c
		}
		return nil
	})
	return out, err
}

// List ordena por fecha de inicio descendente (el más reciente primero).
func (r *SchoolYearRepo) List(_ context.Context) ([]*entity.SchoolYear, error) {
	var out []*entity.SchoolYear
	err := r.v.with(func(st *state) error {
		for _, y := range st.years {
			c := *y
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, err
}

// ── Alumnos y usuarios ───────────────────────────────────────────────────────

type StudentRepo struct{ v view }

var _ repository.StudentRepository = (*StudentRepo)(nil)

func (r *StudentRepo) GetByID(_ context.Context, id string) (*entity.Student, error) {
	var out *entity.Student
	err := r.v.with(func(st *state) error {
		if s, ok := st.students[id]; ok {
			c := *s
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *StudentRepo) GetByDNI(_ context.Context, dni string) (*entity.Student, error) {
	var out *entity.Student
	err := r.v.with(func(st *state) error {
		for _, s := range st.students {
			if s.DNI == dni {
				c := *s
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

type UserRepo struct{ v view }

var _ repository.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.v.with(func(st *state) error {
		for _, u := range st.users {
			if u.Email == email {
				c := *u
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

// ── Matrículas y exoneraciones ───────────────────────────────────────────────

type EnrollmentRepo struct{ v view }

var _ repository.EnrollmentRepository = (*EnrollmentRepo)(nil)

func (r *EnrollmentRepo) Create(_ context.Context, e *entity.Enrollment) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.enrollments[e.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range st.enrollments {
			if other.StudentID == e.StudentID && other.SchoolYearID == e.SchoolYearID &&
				other.Status == entity.EnrollmentEnrolled && e.Status == entity.EnrollmentEnrolled {
				return domain.ErrDuplicate
			}
		}
		c := *e
		st.enrollments[e.ID] = &c
		return nil
	})
}

func (r *EnrollmentRepo) GetByID(_ context.Context, id string) (*entity.Enrollment, error) {
	var out *entity.Enrollment
	err := r.v.with(func(st *state) error {
		if e, ok := st.enrollments[id]; ok {
			c := *e
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *EnrollmentRepo) enrolled(filter func(e *entity.Enrollment) bool) ([]*entity.Enrollment, error) {
	var out []*entity.Enrollment
	err := r.v.with(func(st *state) error {
		for _, e := range st.enrollments {
			if e.Status == entity.EnrollmentEnrolled && filter(e) {
				c := *e
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EnrolledAt.Equal(out[j].EnrolledAt) {
			return out[i].EnrolledAt.Before(out[j].EnrolledAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *EnrollmentRepo) ListEnrolledBySchoolYear(_ context.Context, schoolYearID string) ([]*entity.Enrollment, error) {
	return r.enrolled(func(e *entity.Enrollment) bool { return e.SchoolYearID == schoolYearID })
}

func (r *EnrollmentRepo) GetLatestEnrolledByStudent(_ context.Context, studentID string) (*entity.Enrollment, error) {
	list, err := r.enrolled(func(e *entity.Enrollment) bool { return e.StudentID == studentID })
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[len(list)-1], nil
}

func (r *EnrollmentRepo) GetEnrolledByStudentAndYear(_ context.Context, studentID, schoolYearID string) (*entity.Enrollment, error) {
	list, err := r.enrolled(func(e *entity.Enrollment) bool {
		return e.StudentID == studentID && e.SchoolYearID == schoolYearID
	})
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

type ExonerationRepo struct{ v view }

var _ repository.ExonerationRepository = (*ExonerationRepo)(nil)

func (r *ExonerationRepo) Create(_ context.Context, e *entity.Exoneration) error {
	return r.v.with(func(st *state) error {
		if _, ok := st.exonerations[e.ID]; ok {
			return domain.ErrDuplicate
		}
		c := *e
		st.exonerations[e.ID] = &c
		return nil
	})
}

func (r *ExonerationRepo) ListActiveByEnrollment(_ context.Context, enrollmentID string) ([]*entity.Exoneration, error) {
	var out []*entity.Exoneration
	err := r.v.with(func(st *state) error {
		for _, e := range st.exonerations {
			if e.EnrollmentID == enrollmentID && e.Active {
				c := *e
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}
