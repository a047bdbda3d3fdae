package evidence

import "strings"

// piiKeyDenylist names the detail keys that must never reach a
// persisted or logged evidence record. Keys are compared after
// normalization (lowercased, separators stripped), so "credit_card",
// "creditCard", and "CREDIT-CARD" all match.
var piiKeyDenylist = map[string]struct{}{
	"email":       {},
	"phone":       {},
	"phonenumber": {},
	"ssn":         {},
	"creditcard":  {},
	"cardnumber":  {},
	"password":    {},
	"token":       {},
	"apikey":      {},
	"secret":      {},
	"name":        {},
	"firstname":   {},
	"lastname":    {},
	"fullname":    {},
	"address":     {},
	"street":      {},
	"dob":         {},
	"dateofbirth": {},
	"ipaddress":   {},
	"ip":          {},
}

// StripPIIKeys returns a deep copy of v with every denylisted key
// removed from object values, recursively. Non-object values pass
// through unchanged.
func StripPIIKeys(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			if denied(k) {
				continue
			}
			out[k] = StripPIIKeys(inner)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(val))
		for k, inner := range val {
			if denied(k) {
				continue
			}
			out[k] = inner
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = StripPIIKeys(inner)
		}
		return out
	default:
		return v
	}
}

func denied(key string) bool {
	_, ok := piiKeyDenylist[normalizeKey(key)]
	return ok
}

func normalizeKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range strings.ToLower(key) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
