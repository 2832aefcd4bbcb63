package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de matrícula.
const (
	EnrollmentEnrolled    = "MATRICULADO"
	EnrollmentWithdrawn   = "RETIRADO"
	EnrollmentTransferred = "TRASLADADO"
)

// Enrollment vincula un alumno con grado/sección y año escolar.
type Enrollment struct {
	ID           string
	StudentID    string
	SchoolYearID string
	GradeID      string
	SectionID    string // vacío si aún no se asigna sección
	Status       string // MATRICULADO, RETIRADO, TRASLADADO
	PlanType     string // REGULAR, VERANO
	EnrolledAt   time.Time
}

// Exoneration descuento sobre un concepto de una matrícula (ej. PENSION al 50%).
type Exoneration struct {
	ID              string
	EnrollmentID    string
	Reason          string
	Concept         string
	DiscountPercent decimal.Decimal // 0..100
	Active          bool
	ApprovedAt      time.Time
}
