package models

// Severity levels for signature rules, highest first.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
	SeverityLow      = "low"
	SeverityInfo     = "info"
)

// SignatureRule maps a set of exception-text patterns to a diagnosis.
// The rule table is read-only shared state declared once at process start;
// table order encodes priority.
// The compiled patterns live with the table in the classify package; this
// struct is the part consumers see.
type SignatureRule struct {
	Title     string `json:"title"`
	RootCause string `json:"root_cause"`
	Fix       string `json:"fix"`
	Severity  string `json:"severity"`
}

// Diagnosis is the structured output of the composer's interactive mode.
type Diagnosis struct {
	Severity string             `json:"severity"`
	Headline string             `json:"headline"`
	Sections []DiagnosisSection `json:"sections"`
	Metadata map[string]string  `json:"metadata"`
}

// DiagnosisSection is one titled block of a diagnosis.
type DiagnosisSection struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}
