// Package redact replaces PII findings in free text with typed tokens
// and produces an auditable report of what was removed.
//
// Reports carry the finding type and position but never the raw matched
// value: the detector's output exists only transiently during redaction.
package redact

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/RealRichai/alertgate/internal/pii"
)

// Config selects which PII categories are active. Disabled categories
// appear in neither the redacted text nor the report, as if the detector
// never found them.
type Config struct {
	Email      bool
	Phone      bool
	SSN        bool
	CreditCard bool
	Address    bool
}

// AllCategories returns a Config with every category enabled.
func AllCategories() Config {
	return Config{Email: true, Phone: true, SSN: true, CreditCard: true, Address: true}
}

func (c Config) enabled(t pii.Type) bool {
	switch t {
	case pii.TypeEmail:
		return c.Email
	case pii.TypePhone:
		return c.Phone
	case pii.TypeSSN:
		return c.SSN
	case pii.TypeCreditCard:
		return c.CreditCard
	case pii.TypeAddress:
		return c.Address
	}
	return false
}

// Entry records one redaction without the raw value.
type Entry struct {
	Type     pii.Type `json:"type"`
	Position int      `json:"position"`
}

// Report is the auditable outcome of one Redact call. Immutable.
type Report struct {
	ID              string    `json:"id"`
	OriginalHash    string    `json:"original_hash"`
	RedactedContent string    `json:"redacted_content"`
	Entries         []Entry   `json:"entries"`
	TotalRedactions int       `json:"total_redactions"`
	CreatedAt       time.Time `json:"created_at"`
}

// Redactor applies PII detection and substitution.
type Redactor struct {
	cfg Config
}

// New creates a Redactor with the given category configuration.
func New(cfg Config) *Redactor {
	return &Redactor{cfg: cfg}
}

// Redact scans text and replaces each active-category finding with a
// token of the form [<TYPE>_REDACTED]. Spans are taken from the original
// string before any substitution, so earlier replacements never shift
// later matches.
func (r *Redactor) Redact(text string) (string, *Report) {
	var spans []pii.Finding
	for _, f := range pii.Detect(text) {
		if r.cfg.enabled(f.Type) {
			spans = append(spans, f)
		}
	}

	var b strings.Builder
	entries := make([]Entry, 0, len(spans))
	last := 0
	for _, f := range spans {
		b.WriteString(text[last:f.Start])
		b.WriteString(token(f.Type))
		last = f.End
		entries = append(entries, Entry{Type: f.Type, Position: f.Start})
	}
	b.WriteString(text[last:])

	sum := sha256.Sum256([]byte(text))
	report := &Report{
		ID:              ulid.Make().String(),
		OriginalHash:    hex.EncodeToString(sum[:]),
		RedactedContent: b.String(),
		Entries:         entries,
		TotalRedactions: len(entries),
		CreatedAt:       time.Now().UTC(),
	}
	return report.RedactedContent, report
}

// Message is a role-tagged piece of conversation content.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RedactMessages redacts each message and returns the new messages plus
// reports for only those messages that had at least one redaction.
func (r *Redactor) RedactMessages(msgs []Message) ([]Message, []*Report) {
	out := make([]Message, len(msgs))
	var reports []*Report
	for i, m := range msgs {
		content, rep := r.Redact(m.Content)
		out[i] = Message{Role: m.Role, Content: content}
		if rep.TotalRedactions > 0 {
			reports = append(reports, rep)
		}
	}
	return out, reports
}

func token(t pii.Type) string {
	return "[" + strings.ToUpper(string(t)) + "_REDACTED]"
}
