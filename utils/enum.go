package utils

// CycleEnum steps current by direction through the values 0..count-1,
// wrapping at both ends
func CycleEnum[T ~int](current T, direction int, count int) T {
	if count <= 0 {
		return current
	}
	next := (int(current) + direction) % count
	if next < 0 {
		next += count
	}
	return T(next)
}
