package checkout

import (
	"fmt"
	"strings"
)

type ShippingDetails struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Address  string `json:"address" validate:"required"`
	City     string `json:"city" validate:"required"`
	Pincode  string `json:"pincode" validate:"required"`
}

func (d ShippingDetails) trimmed() ShippingDetails {
	return ShippingDetails{
		FullName: strings.TrimSpace(d.FullName),
		Email:    strings.TrimSpace(d.Email),
		Address:  strings.TrimSpace(d.Address),
		City:     strings.TrimSpace(d.City),
		Pincode:  strings.TrimSpace(d.Pincode),
	}
}

// FormatAddress renders the single-line address stored on orders.
func (d ShippingDetails) FormatAddress() string {
	return fmt.Sprintf("%s, %s - %s", d.Address, d.City, d.Pincode)
}
