package entity

import "time"

// Tipos de año escolar / periodo académico.
const (
	PeriodRegular = "REGULAR"
	PeriodSummer  = "VERANO"
	PeriodBoth    = "AMBOS" // solo aplica a tipos de trámite
)

// SchoolYear representa un año escolar (id de 6 caracteres, ej. "202601").
// El flag "activo" no se persiste: se calcula al leer con IsActiveOn.
type SchoolYear struct {
	ID              string
	StartDate       time.Time
	EndDate         *time.Time // nil = sin fecha de cierre definida
	Type            string     // REGULAR, VERANO
	EnrollmentStart *time.Time // ventana de inscripción (opcional)
	EnrollmentEnd   *time.Time
	CreatedAt       time.Time
}

// IsActiveOn indica si la fecha cae dentro de [inicio, fin] del año escolar.
func (y *SchoolYear) IsActiveOn(day time.Time) bool {
	d := DateOf(day)
	if d.Before(DateOf(y.StartDate)) {
		return false
	}
	if y.EndDate != nil && d.After(DateOf(*y.EndDate)) {
		return false
	}
	return true
}

// EnrollmentOpenOn indica si la ventana de inscripción incluye la fecha.
func (y *SchoolYear) EnrollmentOpenOn(day time.Time) bool {
	if y.EnrollmentStart == nil || y.EnrollmentEnd == nil {
		return false
	}
	d := DateOf(day)
	return !d.Before(DateOf(*y.EnrollmentStart)) && !d.After(DateOf(*y.EnrollmentEnd))
}

// DateOf normaliza un instante a fecha civil (00:00 UTC), formato de las columnas DATE.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
