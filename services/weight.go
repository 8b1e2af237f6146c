package services

import (
	"math"
	"strconv"
	"strings"
)

// ParseWeight evaluates a weight expression: non-negative integers joined
// by "+", e.g. "40+60". Whitespace around terms is ignored.
func ParseWeight(expr string) (int, error) {
	if strings.TrimSpace(expr) == "" {
		return 0, &ValidationError{Field: "weight", Value: expr, Reason: "empty weight expression"}
	}
	total := 0
	for _, term := range strings.Split(expr, "+") {
		term = strings.TrimSpace(term)
		if term == "" || !isDigits(term) {
			return 0, &ValidationError{Field: "weight", Value: expr, Reason: "expected non-negative integers joined by '+'"}
		}
		n, err := strconv.Atoi(term)
		if err != nil || n > math.MaxInt32-total {
			return 0, &ValidationError{Field: "weight", Value: expr, Reason: "weight out of range"}
		}
		total += n
	}
	return total, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
