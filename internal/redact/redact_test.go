package redact

import (
	"strings"
	"testing"

	"github.com/RealRichai/alertgate/internal/pii"
)

func TestRedact_Email(t *testing.T) {
	t.Parallel()

	r := New(AllCategories())
	content, report := r.Redact("Email me at john@example.com")

	if content != "Email me at [EMAIL_REDACTED]" {
		t.Errorf("content = %q", content)
	}
	if report.TotalRedactions != 1 {
		t.Errorf("totalRedactions = %d, want 1", report.TotalRedactions)
	}
	if len(report.Entries) != 1 || report.Entries[0].Type != pii.TypeEmail {
		t.Errorf("entries = %v, want one email entry", report.Entries)
	}
}

func TestRedact_LuhnInvalidCardUntouched(t *testing.T) {
	t.Parallel()

	r := New(AllCategories())
	in := "Card: 4111-1111-1111-1112"
	content, report := r.Redact(in)

	if content != in {
		t.Errorf("content = %q, want input unchanged", content)
	}
	if report.TotalRedactions != 0 {
		t.Errorf("totalRedactions = %d, want 0", report.TotalRedactions)
	}
}

func TestRedact_MultipleSpansNoOffsetShift(t *testing.T) {
	t.Parallel()

	r := New(AllCategories())
	content, report := r.Redact("a@b.io then 555-123-4567 then 123-45-6789 end")

	want := "[EMAIL_REDACTED] then [PHONE_REDACTED] then [SSN_REDACTED] end"
	if content != want {
		t.Errorf("content = %q, want %q", content, want)
	}
	if report.TotalRedactions != 3 {
		t.Errorf("totalRedactions = %d, want 3", report.TotalRedactions)
	}
}

func TestRedact_ReportDoesNotCarryRawValues(t *testing.T) {
	t.Parallel()

	r := New(AllCategories())
	_, report := r.Redact("ssn is 123-45-6789")

	for _, e := range report.Entries {
		if e.Type != pii.TypeSSN {
			t.Errorf("entry type = %q, want ssn", e.Type)
		}
	}
	if strings.Contains(report.RedactedContent, "123-45-6789") {
		t.Error("redacted content leaks the raw value")
	}
}

func TestRedact_FreshIDStableHash(t *testing.T) {
	t.Parallel()

	r := New(AllCategories())
	_, rep1 := r.Redact("first input a@b.io")
	_, rep2 := r.Redact("second input c@d.io")
	_, rep3 := r.Redact("first input a@b.io")

	if rep1.ID == rep2.ID {
		t.Error("reports for different calls share an ID")
	}
	if rep1.ID == rep3.ID {
		t.Error("reports for identical inputs share an ID")
	}
	if rep1.OriginalHash == rep2.OriginalHash {
		t.Error("different inputs yielded the same hash")
	}
	if rep1.OriginalHash != rep3.OriginalHash {
		t.Error("identical inputs yielded different hashes")
	}
}

func TestRedact_DisabledCategory(t *testing.T) {
	t.Parallel()

	cfg := AllCategories()
	cfg.Email = false
	r := New(cfg)

	in := "reach a@b.io or 555-123-4567"
	content, report := r.Redact(in)

	if !strings.Contains(content, "a@b.io") {
		t.Error("disabled email category was redacted")
	}
	if !strings.Contains(content, "[PHONE_REDACTED]") {
		t.Error("enabled phone category was not redacted")
	}
	if report.TotalRedactions != 1 {
		t.Errorf("totalRedactions = %d, want 1", report.TotalRedactions)
	}
	for _, e := range report.Entries {
		if e.Type == pii.TypeEmail {
			t.Error("disabled category appears in report")
		}
	}
}

func TestRedactMessages_OnlyRedactedContribute(t *testing.T) {
	t.Parallel()

	r := New(AllCategories())
	msgs := []Message{
		{Role: "user", Content: "my email is a@b.io"},
		{Role: "assistant", Content: "understood, nothing sensitive here"},
		{Role: "user", Content: "card 4111 1111 1111 1111"},
	}

	out, reports := r.RedactMessages(msgs)

	if len(out) != 3 {
		t.Fatalf("messages = %d, want 3", len(out))
	}
	if out[0].Content != "my email is [EMAIL_REDACTED]" {
		t.Errorf("msg[0] = %q", out[0].Content)
	}
	if out[1].Content != msgs[1].Content {
		t.Errorf("clean message was altered: %q", out[1].Content)
	}
	if out[2].Content != "card [CREDIT_CARD_REDACTED]" {
		t.Errorf("msg[2] = %q", out[2].Content)
	}
	if len(reports) != 2 {
		t.Fatalf("reports = %d, want 2 (clean message contributes none)", len(reports))
	}
}
