package finance

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Claves de trámites con comportamiento especial.
const (
	PensionKey         = "PENSION"
	SeatReservationKey = "VACANTE"
)

// NormalizeName mayúsculas y sin tildes: "Pensión Regular" -> "PENSION REGULAR".
func NormalizeName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToUpper(strings.TrimSpace(out))
}

// NameContains compara sin distinguir mayúsculas ni tildes.
func NameContains(name, key string) bool {
	return strings.Contains(NormalizeName(name), NormalizeName(key))
}

// IsSeatReservation true si el nombre o concepto corresponde a reserva de vacante.
func IsSeatReservation(nameOrConcept string) bool {
	return NameContains(nameOrConcept, SeatReservationKey)
}
