package common

func Lerp(a, b, t float32) float32 {
	return a + t*(b-a)
}

// Approach moves cur toward target by t of the remaining distance and snaps
// once within eps.
func Approach(cur, target, t, eps float32) float32 {
	next := Lerp(cur, target, t)
	if d := target - next; d < eps && d > -eps {
		return target
	}
	return next
}
