package classify

import (
	"regexp"
	"strings"

	"github.com/zylker/failwatch/pkg/models"
)

// Extraction caps. Frames are truncated, not filtered by relevance.
const (
	MaxStackFrames = 8
	MaxClassNames  = 6
)

// Classify matches a record's exception text against the signature table.
// Returns the matched rules in table order (possibly empty, never nil);
// callers treat the first entry as the primary diagnosis.
func Classify(rec models.FailureRecord) []models.SignatureRule {
	corpus := Corpus(rec)
	matches := []models.SignatureRule{}
	if strings.TrimSpace(corpus) == "" {
		return matches
	}

	for _, r := range ruleTable {
		for _, p := range r.patterns {
			if p.MatchString(corpus) {
				matches = append(matches, r.SignatureRule)
				break
			}
		}
	}
	return matches
}

// Corpus synthesizes the searchable exception text for a record: trace,
// message, and reason joined with newlines, each defaulting to empty.
func Corpus(rec models.FailureRecord) string {
	return rec.ExceptionTrace + "\n" + rec.ErrorMessage + "\n" + rec.ExceptionReason
}

// Frame shapes: a "at ..." marker line, or a bare "identifier(file:line)".
var (
	reFrameMarker = regexp.MustCompile(`^\s*at\s+\S`)
	reFrameShape  = regexp.MustCompile(`^\s*[\w$.]+\(.+:\d+\)`)
	reFrameClass  = regexp.MustCompile(`\bat\s+([\w$]+(?:\.[\w$]+)*)\.[\w$<>]+\(`)
	reFramePath   = regexp.MustCompile(`\bat\s+([\w$]+(?:\.[\w$]+)+)`)
)

// ExtractStackFrames returns up to max lines of trace that look like stack
// frames, verbatim and in original order. max <= 0 falls back to
// MaxStackFrames.
func ExtractStackFrames(trace string, max int) []string {
	if max <= 0 {
		max = MaxStackFrames
	}
	frames := []string{}
	for _, line := range strings.Split(trace, "\n") {
		if !reFrameMarker.MatchString(line) && !reFrameShape.MatchString(line) {
			continue
		}
		frames = append(frames, line)
		if len(frames) == max {
			break
		}
	}
	return frames
}

// ExtractClassNames scans frame lines for dotted-path identifiers after
// the frame marker and collects the simple class names (last path segment
// before the method), deduplicated in first-seen order, capped at
// MaxClassNames.
func ExtractClassNames(trace string) []string {
	names := []string{}
	seen := map[string]bool{}

	for _, line := range strings.Split(trace, "\n") {
		if !reFrameMarker.MatchString(line) {
			continue
		}
		path := ""
		if m := reFrameClass.FindStringSubmatch(line); m != nil {
			path = m[1]
		} else if m := reFramePath.FindStringSubmatch(line); m != nil {
			path = m[1]
		}
		if path == "" {
			continue
		}

		segments := strings.Split(path, ".")
		name := segments[len(segments)-1]
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
		if len(names) == MaxClassNames {
			break
		}
	}
	return names
}
