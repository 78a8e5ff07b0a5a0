// Package barcode validates and completes EAN-13 payloads. Rendering the
// scannable image is left to the delivery layer's imaging utility; this
// package only deals in digits.
package barcode

import "fmt"

const (
	payloadLen = 12
	codeLen    = 13
)

// ErrInvalidPayload signals a payload that is not exactly 12 digits.
var ErrInvalidPayload = fmt.Errorf("ean13 payload must be %d digits", payloadLen)

// CheckDigit computes the EAN-13 check digit for a 12-digit payload.
// Digits at even index weigh ×1 and odd index ×3.
func CheckDigit(payload string) (int, error) {
	if len(payload) != payloadLen || !digitsOnly(payload) {
		return 0, ErrInvalidPayload
	}
	total := 0
	for i, r := range payload {
		d := int(r - '0')
		if i%2 == 1 {
			d *= 3
		}
		total += d
	}
	return (10 - total%10) % 10, nil
}

// Complete appends the check digit to a 12-digit payload.
func Complete(payload string) (string, error) {
	check, err := CheckDigit(payload)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d", payload, check), nil
}

// IsValid reports whether code is a well-formed EAN-13 with a correct
// check digit. Format problems fail before the check-digit comparison.
func IsValid(code string) bool {
	if len(code) != codeLen || !digitsOnly(code) {
		return false
	}
	check, err := CheckDigit(code[:payloadLen])
	if err != nil {
		return false
	}
	return int(code[codeLen-1]-'0') == check
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
