package entity

// Student alumno (solo lectura para el motor de cobranzas).
type Student struct {
	ID         string
	UserID     string // usuario responsable (opcional)
	DNI        string // documento nacional de identidad, clave en la conciliación bancaria
	FirstNames string
	LastNames  string
}

// FullName devuelve "Apellidos, Nombres".
func (s *Student) FullName() string {
	if s.LastNames == "" {
		return s.FirstNames
	}
	return s.LastNames + ", " + s.FirstNames
}
