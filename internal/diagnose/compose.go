// Package diagnose turns classifier output into human-readable diagnoses
// and flat context bundles for the chat assistant.
package diagnose

import (
	"fmt"
	"strings"
	"time"

	"github.com/zylker/failwatch/internal/classify"
	"github.com/zylker/failwatch/pkg/models"
)

// Intent captures what the caller asked for, detected from free text.
// Each flag is tested independently; a query can carry several intents.
type Intent struct {
	RootCause bool
	Fix       bool
	Trace     bool
	Pattern   bool
}

// All reports whether every section should be included, which is the
// fallback when no specific intent was detected.
func (i Intent) All() bool {
	return !i.RootCause && !i.Fix && !i.Trace && !i.Pattern
}

var intentKeywords = map[string][]string{
	"root_cause": {"root cause", "why", "cause", "reason"},
	"fix":        {"fix", "resolve", "solution", "remediat", "how do i", "suggest"},
	"trace":      {"trace", "stack", "frame", "walkthrough"},
	"pattern":    {"known", "pattern", "signature", "seen before", "similar"},
}

// DetectIntent runs the independent keyword tests against a free-text
// query. An empty query (or one matching nothing) yields the zero Intent,
// which callers treat as "include everything".
func DetectIntent(query string) Intent {
	q := strings.ToLower(query)
	contains := func(kind string) bool {
		for _, kw := range intentKeywords[kind] {
			if strings.Contains(q, kw) {
				return true
			}
		}
		return false
	}
	return Intent{
		RootCause: contains("root_cause"),
		Fix:       contains("fix"),
		Trace:     contains("trace"),
		Pattern:   contains("pattern"),
	}
}

const (
	noMessageFallback = "No error message available for this record."
	noTraceFallback   = "No exception trace available for this record."
)

// Compose produces a structured diagnosis for a record, tailored to the
// intent detected in the caller's free-text query. Pure and deterministic:
// same record and query, same diagnosis.
func Compose(rec models.FailureRecord, query string) models.Diagnosis {
	intent := DetectIntent(query)
	all := intent.All()
	matches := classify.Classify(rec)

	d := models.Diagnosis{
		Severity: models.SeverityInfo,
		Sections: []models.DiagnosisSection{},
		Metadata: metadata(rec),
	}

	if len(matches) > 0 {
		primary := matches[0]
		d.Severity = primary.Severity
		d.Headline = fmt.Sprintf("%s (%s)", primary.Title, primary.Severity)
	} else {
		d.Headline = "No known failure pattern matched"
		body := noMessageFallback
		if rec.ErrorMessage != "" {
			body = rec.ErrorMessage
		}
		d.Sections = append(d.Sections, models.DiagnosisSection{
			Title: "Unclassified Failure",
			Body:  body,
		})
	}

	for _, m := range matches {
		if all || intent.RootCause {
			d.Sections = append(d.Sections, models.DiagnosisSection{
				Title: "Root Cause: " + m.Title,
				Body:  m.RootCause,
			})
		}
		if all || intent.Fix {
			d.Sections = append(d.Sections, models.DiagnosisSection{
				Title: "Suggested Fix: " + m.Title,
				Body:  m.Fix,
			})
		}
		if all || intent.Pattern {
			d.Sections = append(d.Sections, models.DiagnosisSection{
				Title: "Pattern Signature: " + m.Title,
				Body:  fmt.Sprintf("Known pattern %q, severity %s.", m.Title, m.Severity),
			})
		}
	}

	if all || intent.Trace {
		d.Sections = append(d.Sections, traceSection(rec))
	}

	return d
}

func traceSection(rec models.FailureRecord) models.DiagnosisSection {
	frames := classify.ExtractStackFrames(rec.ExceptionTrace, classify.MaxStackFrames)
	if len(frames) == 0 {
		return models.DiagnosisSection{Title: "Stack Trace", Body: noTraceFallback}
	}

	var b strings.Builder
	for _, f := range frames {
		b.WriteString(strings.TrimSpace(f))
		b.WriteString("\n")
	}
	if classes := classify.ExtractClassNames(rec.ExceptionTrace); len(classes) > 0 {
		b.WriteString("Classes involved: ")
		b.WriteString(strings.Join(classes, ", "))
	}
	return models.DiagnosisSection{Title: "Stack Trace", Body: strings.TrimSpace(b.String())}
}

func metadata(rec models.FailureRecord) map[string]string {
	md := map[string]string{
		"id":            rec.ID,
		"application":   rec.Name,
		"tenant_id":     rec.TenantID,
		"org_id":        orDefault(stringOrEmpty(rec.OrgID), "unknown"),
		"flow_type":     rec.FlowType,
		"source_module": rec.SourceModule,
		"thread_id":     rec.ThreadID,
		"request_id":    rec.RequestID,
		"status_code":   rec.StatusCode,
		"server_name":   rec.ServerName,
		"changeset":     rec.Changeset,
		"build_id":      rec.BuildID,
	}
	if ts := rec.EffectiveTime(); ts != nil {
		md["requested_at"] = ts.UTC().Format(time.RFC3339)
	}
	return md
}

// bundleFields is the fixed ordering of identity fields in the context
// bundle. Determinism matters: the bundle is cached and diffed downstream.
var bundleFields = []struct {
	label string
	get   func(models.FailureRecord) string
}{
	{"Record ID", func(r models.FailureRecord) string { return r.ID }},
	{"Application", func(r models.FailureRecord) string { return r.Name }},
	{"Tenant (ZOID)", func(r models.FailureRecord) string { return r.TenantID }},
	{"Organization (ZUID)", func(r models.FailureRecord) string { return stringOrEmpty(r.OrgID) }},
	{"Flow Type", func(r models.FailureRecord) string { return r.FlowType }},
	{"Source Module", func(r models.FailureRecord) string { return r.SourceModule }},
	{"Thread ID", func(r models.FailureRecord) string { return r.ThreadID }},
	{"Request ID", func(r models.FailureRecord) string { return r.RequestID }},
	{"Status Code", func(r models.FailureRecord) string { return r.StatusCode }},
	{"Server", func(r models.FailureRecord) string { return r.ServerName }},
	{"Changeset", func(r models.FailureRecord) string { return r.Changeset }},
	{"Build", func(r models.FailureRecord) string { return r.BuildID }},
	{"Requested At", func(r models.FailureRecord) string {
		if ts := r.EffectiveTime(); ts != nil {
			return ts.UTC().Format(time.RFC3339)
		}
		return ""
	}},
}

// ContextBundle renders a record as deterministic plain text for an
// external reasoning collaborator: identity fields, the three free-text
// fields ("N/A" when missing), classifier matches, stack frames, and
// class names. No synthesis happens here; the remote model does that.
func ContextBundle(rec models.FailureRecord) string {
	var b strings.Builder

	b.WriteString("=== Failure Record ===\n")
	for _, f := range bundleFields {
		fmt.Fprintf(&b, "%s: %s\n", f.label, orDefault(f.get(rec), "N/A"))
	}

	b.WriteString("\n=== Error Message ===\n")
	b.WriteString(orDefault(rec.ErrorMessage, "N/A"))
	b.WriteString("\n\n=== Exception Reason ===\n")
	b.WriteString(orDefault(rec.ExceptionReason, "N/A"))
	b.WriteString("\n\n=== Exception Trace ===\n")
	b.WriteString(orDefault(rec.ExceptionTrace, "N/A"))

	b.WriteString("\n\n=== Matched Signatures ===\n")
	matches := classify.Classify(rec)
	if len(matches) == 0 {
		b.WriteString("none\n")
	}
	for _, m := range matches {
		fmt.Fprintf(&b, "- %s [%s]: %s\n", m.Title, m.Severity, m.RootCause)
	}

	b.WriteString("\n=== Stack Frames ===\n")
	frames := classify.ExtractStackFrames(rec.ExceptionTrace, classify.MaxStackFrames)
	if len(frames) == 0 {
		b.WriteString("none\n")
	}
	for _, f := range frames {
		b.WriteString(strings.TrimSpace(f))
		b.WriteString("\n")
	}

	b.WriteString("\n=== Classes ===\n")
	classes := classify.ExtractClassNames(rec.ExceptionTrace)
	if len(classes) == 0 {
		b.WriteString("none\n")
	} else {
		b.WriteString(strings.Join(classes, ", "))
		b.WriteString("\n")
	}

	return b.String()
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
