package paginate

import "strconv"

var ordinals = [...]string{
	1:  "الأول",
	2:  "الثاني",
	3:  "الثالث",
	4:  "الرابع",
	5:  "الخامس",
	6:  "السادس",
	7:  "السابع",
	8:  "الثامن",
	9:  "التاسع",
	10: "العاشر",
	11: "الحادي عشر",
	12: "الثاني عشر",
	13: "الثالث عشر",
	14: "الرابع عشر",
	15: "الخامس عشر",
	16: "السادس عشر",
	17: "السابع عشر",
	18: "الثامن عشر",
	19: "التاسع عشر",
	20: "العشرون",
}

// Ordinal returns the Arabic ordinal word for n. Past twenty it falls back to
// "الـ n".
func Ordinal(n int) string {
	switch {
	case n <= 0:
		return strconv.Itoa(n)
	case n < len(ordinals):
		return ordinals[n]
	default:
		return "الـ " + strconv.Itoa(n)
	}
}
