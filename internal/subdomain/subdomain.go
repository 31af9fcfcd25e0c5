// Package subdomain parses request hosts into tenant labels and validates
// candidate labels. Everything here is pure; the reserved set is injected.
package subdomain

import (
	"fmt"
	"math/rand/v2"
	"net"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	MinLength = 3
	MaxLength = 63

	suffixDigits = 4
)

// Reasons reported by InvalidLabelError.
const (
	ReasonTooShort       = "too_short"
	ReasonTooLong        = "too_long"
	ReasonInvalidChars   = "invalid_characters"
	ReasonHyphenBoundary = "hyphen_boundary"
	ReasonReserved       = "reserved"
)

// InvalidLabelError explains why a label cannot be assigned.
type InvalidLabelError struct {
	Label  string
	Reason string
}

func (e *InvalidLabelError) Error() string {
	switch e.Reason {
	case ReasonTooShort:
		return fmt.Sprintf("subdomain %q must be at least %d characters", e.Label, MinLength)
	case ReasonTooLong:
		return fmt.Sprintf("subdomain %q must be at most %d characters", e.Label, MaxLength)
	case ReasonInvalidChars:
		return fmt.Sprintf("subdomain %q may only contain lowercase letters, digits and hyphens", e.Label)
	case ReasonHyphenBoundary:
		return fmt.Sprintf("subdomain %q cannot start or end with a hyphen", e.Label)
	case ReasonReserved:
		return fmt.Sprintf("subdomain %q is reserved", e.Label)
	}
	return fmt.Sprintf("subdomain %q is invalid", e.Label)
}

// Codec validates labels against a reserved set fixed at construction.
type Codec struct {
	reserved map[string]struct{}
}

func NewCodec(reserved []string) *Codec {
	set := make(map[string]struct{}, len(reserved))
	for _, r := range reserved {
		r = strings.ToLower(strings.TrimSpace(r))
		if r != "" {
			set[r] = struct{}{}
		}
	}
	return &Codec{reserved: set}
}

// IsReserved reports whether label is in the reserved set.
func (c *Codec) IsReserved(label string) bool {
	_, ok := c.reserved[label]
	return ok
}

// Validate returns nil for an assignable label or an *InvalidLabelError.
func (c *Codec) Validate(label string) error {
	if len(label) < MinLength {
		return &InvalidLabelError{Label: label, Reason: ReasonTooShort}
	}
	if len(label) > MaxLength {
		return &InvalidLabelError{Label: label, Reason: ReasonTooLong}
	}
	for i := 0; i < len(label); i++ {
		if !isLabelByte(label[i]) {
			return &InvalidLabelError{Label: label, Reason: ReasonInvalidChars}
		}
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return &InvalidLabelError{Label: label, Reason: ReasonHyphenBoundary}
	}
	if c.IsReserved(label) {
		return &InvalidLabelError{Label: label, Reason: ReasonReserved}
	}
	return nil
}

// ExtractLabel returns the tenant label for host under root. The bare root
// and www.root have no label; neither does a host whose leftmost label is www.
func ExtractLabel(host, root string) (string, bool) {
	host = normalizeHost(host)
	root = normalizeHost(root)
	if host == "" || host == root || host == "www."+root {
		return "", false
	}

	rest := host
	if root != "" && strings.HasSuffix(host, "."+root) {
		rest = strings.TrimSuffix(host, "."+root)
	}
	label := rest
	if i := strings.IndexByte(rest, '.'); i >= 0 {
		label = rest[:i]
	}
	if label == "" || label == "www" {
		return "", false
	}
	return label, true
}

// IsUnderRoot reports whether host is root itself or any subdomain of it.
func IsUnderRoot(host, root string) bool {
	host = normalizeHost(host)
	root = normalizeHost(root)
	if root == "" {
		return false
	}
	return host == root || strings.HasSuffix(host, "."+root)
}

// normalizeHost lower-cases host and removes any port, IPv6 brackets included.
func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	return strings.TrimSuffix(host, ".")
}

// Slugify turns free text into a label candidate. Existing hyphens are kept
// as-is so that already-valid labels come back unchanged.
func Slugify(text string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		strings.ToLower(text),
	)
	if err != nil {
		folded = strings.ToLower(text)
	}

	var b strings.Builder
	lastHyphen := false
	for _, r := range folded {
		switch {
		case r < 128 && isLabelByte(byte(r)) && r != '-':
			b.WriteRune(r)
			lastHyphen = false
		case r == '-':
			b.WriteByte('-')
			lastHyphen = true
		default:
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > MaxLength {
		slug = strings.TrimRight(slug[:MaxLength], "-")
	}
	return slug
}

// EnsureMinLength pads a short label with random digits.
func EnsureMinLength(label string, n int) string {
	for len(label) < n {
		label += randomDigits(suffixDigits)
	}
	return label
}

// WithRandomSuffix appends "-NNNN", trimming label so the result stays valid length.
func WithRandomSuffix(label string) string {
	suffix := "-" + randomDigits(suffixDigits)
	if len(label)+len(suffix) > MaxLength {
		label = strings.TrimRight(label[:MaxLength-len(suffix)], "-")
	}
	return label + suffix
}

func randomDigits(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(strconv.Itoa(rand.IntN(10)))
	}
	return b.String()
}

func isLabelByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-'
}
