// Package finance contiene las reglas puras del motor de cobranzas: calendario de
// pensiones, selección de tarifa y normalización de nombres de trámites.
package finance

import (
	"fmt"
	"time"

	"github.com/jhoicas/colegio-api/internal/domain/entity"
)

var monthNamesES = [...]string{
	"ENERO", "FEBRERO", "MARZO", "ABRIL", "MAYO", "JUNIO",
	"JULIO", "AGOSTO", "SEPTIEMBRE", "OCTUBRE", "NOVIEMBRE", "DICIEMBRE",
}

// MonthNameES nombre del mes en mayúsculas ("MARZO"). Vacío si el mes es inválido.
func MonthNameES(month int) string {
	if month < 1 || month > 12 {
		return ""
	}
	return monthNamesES[month-1]
}

// PensionConcept concepto legible de la pensión: "PENSION MARZO 2026".
// Es solo descriptivo; la idempotencia usa (alumno, PENSION, año, mes).
func PensionConcept(month, year int) string {
	return fmt.Sprintf("PENSION %s %d", MonthNameES(month), year)
}

// ValidPeriod valida mes 1..12 y un año razonable.
func ValidPeriod(month, year int) bool {
	return month >= 1 && month <= 12 && year >= 2000 && year <= 2100
}

// FirstOfMonth primer día del mes (fecha civil).
func FirstOfMonth(month, year int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

// LastDayOfMonth último día calendario del mes: vencimiento de la pensión.
func LastDayOfMonth(month, year int) time.Time {
	return FirstOfMonth(month, year).AddDate(0, 1, -1)
}

// InSession indica si el mes cae en [mes de inicio, mes de fin] del año escolar.
// Se comparan primeros de mes, así una clausura a mitad de diciembre incluye diciembre.
func InSession(year *entity.SchoolYear, month, calendarYear int) bool {
	probe := FirstOfMonth(month, calendarYear)
	start := FirstOfMonth(int(year.StartDate.Month()), year.StartDate.Year())
	if probe.Before(start) {
		return false
	}
	if year.EndDate != nil {
		end := FirstOfMonth(int(year.EndDate.Month()), year.EndDate.Year())
		if probe.After(end) {
			return false
		}
	}
	return true
}
