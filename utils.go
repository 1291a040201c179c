package spaziale

import "golang.org/x/exp/constraints"

// byte2String convert register bytes to string, stop at the first NUL
func byte2String(data []byte) string {
	for i, b := range data {
		if b == 0x00 {
			return string(data[:i])
		}
	}
	return string(data)
}

func min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}
