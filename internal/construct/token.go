package construct

import (
	"strings"
)

// Token wraps a Terraform expression as an interpolation string, e.g.
// Token("aws_vpc.vpc.id") == "${aws_vpc.vpc.id}". Tokens travel through
// configuration structs as ordinary strings and are resolved by Terraform.
func Token(expr string) string {
	return "${" + expr + "}"
}

// IsToken reports whether s contains at least one interpolation.
func IsToken(s string) bool {
	return strings.Contains(s, "${")
}

// IsWholeToken reports whether s is exactly one interpolation and returns
// the wrapped expression.
func IsWholeToken(s string) (string, bool) {
	if !strings.HasPrefix(s, "${") || !strings.HasSuffix(s, "}") {
		return "", false
	}
	inner := s[2 : len(s)-1]
	if strings.Contains(inner, "${") || strings.Contains(inner, "}") {
		return "", false
	}
	return inner, true
}

// Join concatenates literal strings and tokens into a single template string.
func Join(parts ...string) string {
	return strings.Join(parts, "")
}

// SanitizeName converts a construct id to a Terraform identifier. Letters,
// digits, '_' and '-' are kept; anything else becomes '_', and an id that
// does not start with a letter or '_' is prefixed with '_'.
func SanitizeName(id string) string {
	var b strings.Builder
	for i, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9', r == '-':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
