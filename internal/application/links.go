package application

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/currency"
)

// NormalizeCurrency upper-cases code and checks it is an ISO 4217 currency.
func NormalizeCurrency(code string) (string, error) {
	unit, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return "", fmt.Errorf("unknown currency %q: %w", code, err)
	}
	return unit.String(), nil
}

// currencySymbol returns the display symbol for the currencies the portal
// prices in, falling back to "$".
func currencySymbol(code string) string {
	switch code {
	case "NGN":
		return "₦"
	case "USD":
		return "$"
	case "GBP":
		return "£"
	case "EUR":
		return "€"
	}
	return "$"
}

// FormatPrice renders price as "<symbol><amount> <CODE>".
func FormatPrice(price float64, currencyCode string) string {
	return fmt.Sprintf("%s%.2f %s", currencySymbol(currencyCode), price, currencyCode)
}

// NormalizePhoneNumber keeps only the ASCII digits of a phone number,
// dropping "+", spaces, dashes and brackets.
func NormalizePhoneNumber(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// WhatsAppLink builds a wa.me link to phone with an optional prefilled message.
func WhatsAppLink(phone, message string) (string, error) {
	digits := NormalizePhoneNumber(phone)
	if digits == "" {
		return "", newValidationError("whatsapp_number", "a WhatsApp number is required")
	}
	link := "https://wa.me/" + digits
	if message != "" {
		link += "?text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	}
	return link, nil
}

// AsoebiOrderMessage is the prefilled message for ordering item.
func AsoebiOrderMessage(item AsoebiItem) string {
	return fmt.Sprintf("I would like to order the %s asoebi for %s.", item.Title, FormatPrice(item.Price, item.Currency))
}

// AsoebiOrderLink builds the WhatsApp deep link for ordering item.
func AsoebiOrderLink(item AsoebiItem, phone string) (string, error) {
	return WhatsAppLink(phone, AsoebiOrderMessage(item))
}
