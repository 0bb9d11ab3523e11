package animals

import "time"

// AdultAge es la edad (años cumplidos) a partir de la cual un animal es adulto.
const AdultAge = 2

// Age calcula años cumplidos a la fecha today. Se compara por fecha de calendario,
// sin horas. Sin fecha de nacimiento o con fecha futura => 0.
func Age(dob *time.Time, today time.Time) int {
	if dob == nil {
		return 0
	}

	by, bm, bd := dob.Date()
	ty, tm, td := today.Date()

	born := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	now := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	if born.After(now) {
		return 0
	}

	age := ty - by
	if tm < bm || (tm == bm && td < bd) {
		age--
	}
	return age
}

// IsAdult: true si age >= AdultAge.
func IsAdult(age int) bool {
	return age >= AdultAge
}
