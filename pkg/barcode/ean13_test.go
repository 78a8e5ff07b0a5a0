package barcode

import (
	"fmt"
	"testing"
)

func TestCheckDigitKnownPayload(t *testing.T) {
	check, err := CheckDigit("400638133393")
	if err != nil {
		t.Fatalf("check digit: %v", err)
	}
	if check != 1 {
		t.Fatalf("expected check digit 1 got %d", check)
	}
}

func TestCompleteKnownPayload(t *testing.T) {
	code, err := Complete("400638133393")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if code != "4006381333931" {
		t.Fatalf("expected 4006381333931 got %s", code)
	}
	if !IsValid(code) {
		t.Fatal("completed code must validate")
	}
}

func TestIsValidRejectsTamperedCheckDigit(t *testing.T) {
	if IsValid("4006381333932") {
		t.Fatal("tampered check digit must fail")
	}
}

func TestIsValidRejectsBadFormatBeforeMath(t *testing.T) {
	cases := []string{
		"",
		"123",
		"40063813339",     // 11 digits
		"40063813339312",  // 14 digits
		"40063813339a1",   // non-numeric
		"40063813-3931",   // punctuation
	}
	for _, code := range cases {
		if IsValid(code) {
			t.Fatalf("expected %q invalid", code)
		}
	}
}

func TestCheckDigitRejectsBadPayload(t *testing.T) {
	for _, payload := range []string{"", "4006381333931", "40063813339x"} {
		if _, err := CheckDigit(payload); err == nil {
			t.Fatalf("expected error for payload %q", payload)
		}
	}
}

func TestCompleteThenValidateProperty(t *testing.T) {
	payloads := []string{
		"000000000000",
		"999999999999",
		"123456789012",
		"400638133393",
		"590123412345",
	}
	for _, payload := range payloads {
		code, err := Complete(payload)
		if err != nil {
			t.Fatalf("complete %s: %v", payload, err)
		}
		if !IsValid(code) {
			t.Fatalf("completed %s must validate", code)
		}
		// every other final digit must fail
		for d := 0; d < 10; d++ {
			tampered := fmt.Sprintf("%s%d", payload, d)
			if tampered == code {
				continue
			}
			if IsValid(tampered) {
				t.Fatalf("tampered %s must fail", tampered)
			}
		}
	}
}
