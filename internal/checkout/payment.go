package checkout

import (
	"strings"
)

type PaymentMethod string

const (
	MethodCard PaymentMethod = "card"
	MethodUPI  PaymentMethod = "upi"
	MethodCOD  PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCard, MethodUPI, MethodCOD:
		return true
	}
	return false
}

// CardDetails are checked for presence only. Nothing is charged.
type CardDetails struct {
	Number string `json:"number" validate:"required"`
	Name   string `json:"name" validate:"required"`
	Expiry string `json:"expiry" validate:"required"`
	CVC    string `json:"cvc" validate:"required"`
}

func (c CardDetails) formatted() CardDetails {
	return CardDetails{
		Number: FormatCardNumber(c.Number),
		Name:   strings.TrimSpace(c.Name),
		Expiry: FormatExpiry(c.Expiry),
		CVC:    FormatCVC(c.CVC),
	}
}

// FormatCardNumber keeps up to 16 digits and groups them in fours.
func FormatCardNumber(raw string) string {
	d := digits(raw, 16)

	var b strings.Builder
	for i, r := range d {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatExpiry keeps up to 4 digits and inserts the MM/YY slash once the month is typed.
func FormatExpiry(raw string) string {
	d := digits(raw, 4)
	if len(d) >= 2 {
		return d[:2] + "/" + d[2:]
	}
	return d
}

func FormatCVC(raw string) string {
	return digits(raw, 4)
}

func digits(raw string, limit int) string {
	var b strings.Builder
	for _, r := range raw {
		if b.Len() == limit {
			break
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
