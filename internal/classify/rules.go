// Package classify matches failure-record exception text against a static
// library of known-error signatures.
package classify

import (
	"regexp"

	"github.com/zylker/failwatch/pkg/models"
)

// rule pairs the consumer-visible diagnosis metadata with its compiled
// patterns. A rule matches when any pattern matches anywhere in the corpus.
type rule struct {
	models.SignatureRule
	patterns []*regexp.Regexp
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

// ruleTable is the ordered signature library. Table order encodes
// priority: earlier entries are checked and listed first, and callers
// treat the first match as primary. Static domain knowledge, never
// mutated at runtime.
var ruleTable = []rule{
	{
		SignatureRule: models.SignatureRule{
			Title:     "Null Pointer Exception",
			RootCause: "Code dereferenced a null reference, usually an upstream response field that was assumed present.",
			Fix:       "Add a null guard before the dereference and verify the upstream contract for the missing field.",
			Severity:  models.SeverityHigh,
		},
		patterns: compile(`NullPointerException`, `(?i)null pointer`, `invalid memory address or nil pointer`),
	},
	{
		SignatureRule: models.SignatureRule{
			Title:     "Out Of Memory",
			RootCause: "The serving process exhausted its heap, typically from an unbounded collection or oversized payload.",
			Fix:       "Inspect recent payload sizes and heap dumps; cap collection growth or raise the instance memory limit.",
			Severity:  models.SeverityCritical,
		},
		patterns: compile(`OutOfMemoryError`, `(?i)out of memory`, `(?i)java heap space`),
	},
	{
		SignatureRule: models.SignatureRule{
			Title:     "Stack Overflow",
			RootCause: "Unbounded recursion, often a cyclic data structure fed to a recursive serializer.",
			Fix:       "Find the recursive call in the top frames and add a depth guard or cycle check.",
			Severity:  models.SeverityCritical,
		},
		patterns: compile(`StackOverflowError`, `(?i)stack overflow`),
	},
	{
		SignatureRule: models.SignatureRule{
			Title:     "Deadlock Detected",
			RootCause: "Two or more workers acquired locks in conflicting order.",
			Fix:       "Capture a thread dump and enforce a global lock-acquisition order across the involved resources.",
			Severity:  models.SeverityCritical,
		},
		patterns: compile(`(?i)deadlock`),
	},
	{
		SignatureRule: models.SignatureRule{
			Title:     "Database Connection Failure",
			RootCause: "The database was unreachable or its connection pool was exhausted at request time.",
			Fix:       "Check database availability and pool saturation; retry transient failures with backoff.",
			Severity:  models.SeverityHigh,
		},
		patterns: compile(`SQLException`, `(?i)connection (refused|reset)`, `(?i)too many connections`, `(?i)connection pool (exhausted|timeout)`),
	},
	{
		SignatureRule: models.SignatureRule{
			Title:     "Request Timeout",
			RootCause: "A downstream call exceeded its deadline.",
			Fix:       "Identify the slow dependency from the trace and tune its timeout or add a fallback.",
			Severity:  models.SeverityMedium,
		},
		patterns: compile(`SocketTimeoutException`, `(?i)timed? ?out`, `(?i)deadline exceeded`),
	},
	{
		SignatureRule: models.SignatureRule{
			Title:     "Upstream Server Error",
			RootCause: "A dependency returned a 5xx response.",
			Fix:       "Correlate with the dependency's own failure logs; the fault is on the remote side.",
			Severity:  models.SeverityHigh,
		},
		patterns: compile(`(?i)status(?: code)?[ :=]+5\d\d`, `(?i)internal server error`, `(?i)bad gateway`, `(?i)service unavailable`),
	},
	{
		SignatureRule: models.SignatureRule{
			Title:     "Rate Limited",
			RootCause: "A dependency throttled the request volume.",
			Fix:       "Honor the Retry-After header and smooth the request rate with client-side throttling.",
			Severity:  models.SeverityMedium,
		},
		patterns: compile(`(?i)status(?: code)?[ :=]+429`, `(?i)too many requests`, `(?i)rate limit`),
	},
	{
		SignatureRule: models.SignatureRule{
			Title:     "Authorization Failure",
			RootCause: "Credentials were missing, expired, or lacked the required scope.",
			Fix:       "Verify the token used for the call and its scopes; rotate expired credentials.",
			Severity:  models.SeverityMedium,
		},
		patterns: compile(`(?i)status(?: code)?[ :=]+40[13]`, `(?i)unauthori[sz]ed`, `(?i)permission denied`, `(?i)forbidden`),
	},
	{
		SignatureRule: models.SignatureRule{
			Title:     "Resource Not Found",
			RootCause: "The request referenced an entity or file that no longer exists.",
			Fix:       "Check whether the referenced resource was deleted or the identifier is stale.",
			Severity:  models.SeverityLow,
		},
		patterns: compile(`(?i)status(?: code)?[ :=]+404`, `FileNotFoundException`, `(?i)no such file`),
	},
	{
		SignatureRule: models.SignatureRule{
			Title:     "Serialization Failure",
			RootCause: "A payload did not match the expected shape during encoding or decoding.",
			Fix:       "Diff the offending payload against the schema; look for a recent producer-side change.",
			Severity:  models.SeverityMedium,
		},
		patterns: compile(`JSONException`, `ClassCastException`, `(?i)json parse`, `(?i)unexpected token`, `(?i)cannot unmarshal`),
	},
	{
		SignatureRule: models.SignatureRule{
			Title:     "Invalid Input",
			RootCause: "A caller-supplied value failed validation or conversion.",
			Fix:       "Tighten input validation at the entry point so the bad value is rejected before processing.",
			Severity:  models.SeverityLow,
		},
		patterns: compile(`NumberFormatException`, `IllegalArgumentException`, `(?i)validation failed`),
	},
	{
		SignatureRule: models.SignatureRule{
			Title:     "Index Out Of Bounds",
			RootCause: "Code indexed past the end of a collection, usually after an unexpected empty result.",
			Fix:       "Guard the access with a length check and handle the empty-result case explicitly.",
			Severity:  models.SeverityMedium,
		},
		patterns: compile(`IndexOutOfBoundsException`, `(?i)index out of range`),
	},
}
