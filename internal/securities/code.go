// Package securities canonicalizes heterogeneous security identifiers into a
// single comparable key space and routes them to quote venues.
//
// Fund disclosures and quote feeds disagree on how they spell a security:
// "600519", "600519.SH", "sh600519", "HK00700", "0700.HK" and friends all
// name the same two stocks. Canonical form: a fixed-width 6-digit numeric
// string for mainland securities, a fixed-width 5-digit numeric string for
// Hong Kong. The empty string is the explicit invalid sentinel and must never
// be used as a lookup key.
package securities

import "strings"

// Venue prefixes understood by the quote provider.
const (
	VenueShanghai = "sh"
	VenueShenzhen = "sz"
	VenueBeijing  = "bj"
	VenueHongKong = "hk"
)

// hkMarker is the case-insensitive prefix marking a Hong Kong listing in raw
// source strings ("hk00700", "HK.00700").
const hkMarker = "hk"

// digitsOnly strips everything that is not an ASCII digit.
func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// padLeft zero-pads s to width, keeping the last width digits when longer.
func padLeft(s string, width int) string {
	if len(s) > width {
		s = s[len(s)-width:]
	}
	for len(s) < width {
		s = "0" + s
	}
	return s
}

// Normalize canonicalizes a raw security code. Malformed input never fails;
// it degrades to the empty sentinel.
//
//   - HK-prefixed input: digits only, zero-padded to 5.
//   - Otherwise digits only; 6 or more digits keep the last 6 (drops
//     exchange prefixes and instrument suffixes); exactly 5 digits with a
//     leading zero are kept as-is (HK-like); anything else passes through,
//     possibly empty.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if strings.HasPrefix(strings.ToLower(s), hkMarker) {
		digits := digitsOnly(s)
		if digits == "" {
			return ""
		}
		return padLeft(digits, 5)
	}

	digits := digitsOnly(s)
	switch {
	case len(digits) >= 6:
		return digits[len(digits)-6:]
	case len(digits) == 5 && digits[0] == '0':
		return digits
	default:
		return digits
	}
}

// NormalizeHK forces a raw code to the 5-digit zero-padded Hong Kong form,
// regardless of what Normalize would have produced. Used when a holding is
// known to be HK-listed by name or code pattern.
func NormalizeHK(raw string) string {
	digits := digitsOnly(raw)
	if digits == "" {
		return ""
	}
	return padLeft(digits, 5)
}

// IsHongKong reports whether a security is Hong Kong listed, judging by the
// code shape (5 digits leading zero), an explicit HK prefix on the raw code,
// or a Hong Kong marker in the display name.
func IsHongKong(code, name string) bool {
	c := strings.TrimSpace(code)
	if strings.HasPrefix(strings.ToLower(c), hkMarker) {
		return true
	}
	digits := digitsOnly(c)
	if len(digits) == 5 && digits[0] == '0' && len(c) == len(digits) {
		return true
	}
	n := strings.ToUpper(name)
	return strings.Contains(name, "港") || strings.Contains(n, "HK")
}

// VenueKey maps a canonical code to its venue-prefixed quote provider key.
// The second return is false for unroutable codes, which callers silently
// exclude from quote requests.
func VenueKey(code string) (string, bool) {
	switch {
	case len(code) == 6:
		switch code[0] {
		case '6':
			return VenueShanghai + code, true
		case '0', '3':
			return VenueShenzhen + code, true
		case '8', '4', '9':
			return VenueBeijing + code, true
		}
	case len(code) == 5:
		return VenueHongKong + code, true
	}
	return "", false
}
