package enums

import "fmt"

// ProviderKind selects the outbound messaging transport for a tenant.
type ProviderKind string

const (
	ProviderWhatsApp ProviderKind = "whatsapp"
	ProviderTelegram ProviderKind = "telegram"
)

var validProviderKinds = []ProviderKind{
	ProviderWhatsApp,
	ProviderTelegram,
}

// String implements fmt.Stringer.
func (p ProviderKind) String() string {
	return string(p)
}

// IsValid reports whether the value is a known ProviderKind.
func (p ProviderKind) IsValid() bool {
	for _, candidate := range validProviderKinds {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseProviderKind converts raw input into a ProviderKind.
func ParseProviderKind(value string) (ProviderKind, error) {
	for _, candidate := range validProviderKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid provider kind %q", value)
}
