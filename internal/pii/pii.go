// Package pii scans free text for personally-identifiable information.
// Detection is pure: no I/O, deterministic, same input always yields the
// same findings.
package pii

import (
	"regexp"
	"sort"
	"strings"
)

// Type classifies a finding.
type Type string

const (
	TypeEmail      Type = "email"
	TypePhone      Type = "phone"
	TypeSSN        Type = "ssn"
	TypeCreditCard Type = "credit_card"
	TypeAddress    Type = "address"
)

// Types lists all categories the detector knows, in a stable order.
var Types = []Type{TypeEmail, TypePhone, TypeSSN, TypeCreditCard, TypeAddress}

// Finding is one matched span of sensitive text. Value is the matched
// substring exactly as it appears in the input, no reformatting.
// Findings are transient: they must never be persisted.
type Finding struct {
	Type  Type
	Value string
	Start int
	End   int
}

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

	// Digit groups separated by -, . or space, optionally parenthesized
	// area code and a leading +<country code>. Contiguous digit runs are
	// left to the SSN and credit-card matchers.
	phoneRe = regexp.MustCompile(`(?:\+\d{1,3}[\s.\-]?)?(?:\(\d{3}\)|\d{3})[\s.\-]\d{3}[\s.\-]\d{4}`)

	ssnDashedRe = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	ssnPlainRe  = regexp.MustCompile(`\b\d{9}\b`)

	// Candidate card numbers: 13-19 digits, optionally grouped by single
	// spaces or dashes. Luhn-invalid candidates are not findings.
	cardRe = regexp.MustCompile(`\b\d(?:[ \-]?\d){12,18}\b`)
)

// StreetSuffixes is the starting set of recognized street-suffix words.
// Extensible without changing the detector's contract.
var StreetSuffixes = []string{
	"Street", "St", "Avenue", "Ave", "Boulevard", "Blvd", "Road", "Rd",
	"Drive", "Dr", "Lane", "Ln", "Court", "Ct", "Circle", "Cir", "Way",
	"Place", "Pl", "Terrace", "Parkway", "Pkwy",
}

var addressRe = regexp.MustCompile(
	`(?i)\b\d+\s+[A-Za-z]+(?:\s+[A-Za-z]+)?\s+(?:` + strings.Join(StreetSuffixes, "|") + `)\b`)

// Detect scans text for all PII categories and returns findings ordered
// by position in the input. Overlapping candidates are resolved in favor
// of the earliest (then longest) match, so returned spans never overlap.
func Detect(text string) []Finding {
	var found []Finding
	found = append(found, matchRe(text, emailRe, TypeEmail)...)
	found = append(found, matchRe(text, phoneRe, TypePhone)...)
	found = append(found, detectSSN(text)...)
	found = append(found, detectCreditCard(text)...)
	found = append(found, matchRe(text, addressRe, TypeAddress)...)

	sort.Slice(found, func(i, j int) bool {
		if found[i].Start != found[j].Start {
			return found[i].Start < found[j].Start
		}
		return found[i].End > found[j].End
	})

	out := found[:0]
	lastEnd := -1
	for _, f := range found {
		if f.Start < lastEnd {
			continue
		}
		out = append(out, f)
		lastEnd = f.End
	}
	return out
}

func matchRe(text string, re *regexp.Regexp, t Type) []Finding {
	var out []Finding
	for _, loc := range re.FindAllStringIndex(text, -1) {
		out = append(out, Finding{
			Type:  t,
			Value: text[loc[0]:loc[1]],
			Start: loc[0],
			End:   loc[1],
		})
	}
	return out
}

func detectSSN(text string) []Finding {
	var out []Finding
	for _, re := range []*regexp.Regexp{ssnDashedRe, ssnPlainRe} {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			v := text[loc[0]:loc[1]]
			if !validSSNArea(v[:3]) {
				continue
			}
			out = append(out, Finding{Type: TypeSSN, Value: v, Start: loc[0], End: loc[1]})
		}
	}
	return out
}

// validSSNArea rejects the area numbers never issued: 000, 666, 900-999.
func validSSNArea(area string) bool {
	if area == "000" || area == "666" {
		return false
	}
	return area[0] != '9'
}

func detectCreditCard(text string) []Finding {
	var out []Finding
	for _, loc := range cardRe.FindAllStringIndex(text, -1) {
		v := text[loc[0]:loc[1]]
		digits := stripSeparators(v)
		if len(digits) < 13 || len(digits) > 19 {
			continue
		}
		if !luhnValid(digits) {
			continue
		}
		out = append(out, Finding{Type: TypeCreditCard, Value: v, Start: loc[0], End: loc[1]})
	}
	return out
}

func stripSeparators(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
