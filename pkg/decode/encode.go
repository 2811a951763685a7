package decode

import (
	"strconv"
)

// EncodeYesNo is the inverse of YesNo for columns that store 0 or 1.
// Any other value is unrepresentable.
func EncodeYesNo(n int) (string, bool) {
	switch n {
	case 0:
		return "no", true
	case 1:
		return "yes", true
	default:
		return "", false
	}
}

// EncodeLoadOrder is the inverse of LoadOrder. Negative values other
// than -1 are unrepresentable.
func EncodeLoadOrder(n int) (string, bool) {
	switch {
	case n == 0:
		return "first", true
	case n == -1:
		return "last", true
	case n > 0:
		return strconv.Itoa(n), true
	default:
		return "", false
	}
}

func EncodeInteger(n int) string {
	return strconv.Itoa(n)
}
