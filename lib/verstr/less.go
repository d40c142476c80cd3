package verstr

import (
	"strings"
)

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// splitNumber returns the leading run of digits without leading zeroes and
// the rest of text.
func splitNumber(text string) (string, string) {
	index := 0
	for index < len(text) && isDigit(text[index]) {
		index++
	}
	number := strings.TrimLeft(text[:index], "0")
	return number, text[index:]
}

func less(left, right string) bool {
	for len(left) > 0 && len(right) > 0 {
		if isDigit(left[0]) && isDigit(right[0]) {
			var leftNumber, rightNumber string
			leftNumber, left = splitNumber(left)
			rightNumber, right = splitNumber(right)
			if len(leftNumber) != len(rightNumber) {
				return len(leftNumber) < len(rightNumber)
			}
			if leftNumber != rightNumber {
				return leftNumber < rightNumber
			}
			continue
		}
		if left[0] != right[0] {
			return left[0] < right[0]
		}
		left, right = left[1:], right[1:]
	}
	return len(left) < len(right)
}
