package vec

// FloorDiv делит a на b с округлением вниз (b > 0).
// В отличие от оператора /, FloorDiv(-1, 16) == -1, а не 0.
func FloorDiv(a, b int) int {
	q := a / b
	if a%b < 0 {
		q--
	}
	return q
}

// FloorMod возвращает неотрицательный остаток от деления a на b (b > 0).
// Всегда выполняется FloorDiv(a, b)*b + FloorMod(a, b) == a.
func FloorMod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
