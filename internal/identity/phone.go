package identity

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/rotaops/fleetline-backend/pkg/config"
)

// Candidates enumerates every stored encoding that may represent the same
// physical phone number as raw: the bare national digits, the same with the
// country prefix, a visually punctuated form, and the 8/9-digit mobile
// variants (the extra leading "9" after the area code was introduced mid-way
// through the numbering plan, so legacy records carry both lengths).
//
// Returns nil when raw cannot be reduced to a plausible national number.
func Candidates(raw string, cfg config.PhoneConfig) []string {
	digits := digitsOnly(raw)
	areaLen := cfg.AreaCodeLength
	if areaLen <= 0 {
		areaLen = 2
	}

	if strings.HasPrefix(digits, cfg.CountryCode) && len(digits) > areaLen+9 {
		digits = strings.TrimPrefix(digits, cfg.CountryCode)
	}

	if len(digits) < areaLen+8 || len(digits) > areaLen+9 {
		return nil
	}

	area := digits[:areaLen]
	subscriber := digits[areaLen:]

	variants := []string{subscriber}
	switch {
	case len(subscriber) == 8:
		variants = append(variants, "9"+subscriber)
	case len(subscriber) == 9 && strings.HasPrefix(subscriber, "9"):
		variants = append(variants, subscriber[1:])
	}

	var out []string
	seen := make(map[string]struct{})
	push := func(candidate string) {
		if _, ok := seen[candidate]; ok {
			return
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
	}

	for _, v := range variants {
		push(area + v)
		push(cfg.CountryCode + area + v)
		push(punctuate(cfg.CountryCode, area, v))
	}
	return out
}

func digitsOnly(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// punctuate renders the conventional display form, e.g. "+55 (11) 99999-8888".
func punctuate(countryCode, area, subscriber string) string {
	split := len(subscriber) - 4
	return fmt.Sprintf("+%s (%s) %s-%s", countryCode, area, subscriber[:split], subscriber[split:])
}
