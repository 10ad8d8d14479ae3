// Package normalize reconciles raw upstream records with drifting field
// names into canonical FailureRecords.
package normalize

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/zylker/failwatch/pkg/models"
)

// The four fixed upstream feeds are structurally identical; only the
// source name tells them apart. Source identity overrides any embedded
// flow field.
var sourceFlows = map[string]string{
	"publishfailure": models.FlowPublish,
	"signupfailure":  models.FlowSignup,
	"invitefailure":  models.FlowInvite,
	"upgradefailure": models.FlowUpgrade,
}

// Alternate spellings observed across the upstream feeds, in lookup order.
var (
	idKeys        = []string{"id", "ID", "record_id", "recordId", "ROWID"}
	nameKeys      = []string{"name", "Name", "app_name", "appName", "application"}
	tenantKeys    = []string{"ZOID", "zoid", "zo_id", "tenant_id", "tenantId"}
	orgKeys       = []string{"ZUID", "zuid", "zu_id", "org_id", "orgId"}
	threadKeys    = []string{"thread_id", "threadId", "THREAD_ID", "thread"}
	requestKeys   = []string{"request_id", "requestId", "REQUEST_ID"}
	statusKeys    = []string{"status_code", "statusCode", "status", "http_status"}
	serverKeys    = []string{"server_name", "serverName", "server", "host"}
	changesetKeys = []string{"changeset", "change_set", "CHANGESET"}
	buildKeys     = []string{"build_id", "buildId", "build_label", "BUILD_ID"}
	createdKeys   = []string{"CREATEDTIME", "created_time", "created_at", "createdAt"}
	requestedKeys = []string{"requested_time", "requested_at", "requestedAt", "request_time"}
	traceKeys     = []string{"exception_trace", "exceptionTrace", "stack_trace", "stackTrace", "trace"}
	messageKeys   = []string{"error_message", "errorMessage", "message", "msg"}
	reasonKeys    = []string{"exception_reason", "exceptionReason", "reason"}
	flowKeys      = []string{"flow_type", "flowType", "flow", "FLOW_TYPE"}
)

// firstPresent returns the first value found under the candidate keys that
// is non-nil and, for strings, non-empty. Best effort: missing fields are
// never an error.
func firstPresent(raw map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// stringField resolves the candidate keys to a string, stringifying
// numeric values. Returns "" when no candidate is present.
func stringField(raw map[string]any, keys []string) string {
	v, ok := firstPresent(raw, keys)
	if !ok {
		return ""
	}
	return stringify(v)
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		// encoding/json decodes all numbers as float64
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// timeField resolves the candidate keys to a timestamp, or nil when absent
// or unparseable.
func timeField(raw map[string]any, keys []string) *time.Time {
	v, ok := firstPresent(raw, keys)
	if !ok {
		return nil
	}
	return parseTime(v)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"02-Jan-2006 15:04:05",
}

func parseTime(v any) *time.Time {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				ts = ts.UTC()
				return &ts
			}
		}
		if epoch, err := strconv.ParseInt(s, 10, 64); err == nil {
			return epochTime(epoch)
		}
		return nil
	case float64:
		return epochTime(int64(t))
	default:
		return nil
	}
}

// epochTime interprets an integer as epoch millis when it is too large to
// be a plausible epoch-seconds value.
func epochTime(epoch int64) *time.Time {
	if epoch <= 0 {
		return nil
	}
	var ts time.Time
	if epoch > 1e12 {
		ts = time.UnixMilli(epoch).UTC()
	} else {
		ts = time.Unix(epoch, 0).UTC()
	}
	return &ts
}

// inferFlowType resolves the flow type for a raw record. Precedence:
// source identity for the four fixed feeds, then any embedded flow field
// (matched case-insensitively against the known flow names, passing
// unrecognized values through trimmed), then the "Publish" fallback.
//
// The Publish fallback is an established policy the grouping behavior
// depends on; do not change it to "Unknown" without product sign-off.
func inferFlowType(raw map[string]any, sourceModule string) string {
	if flow, ok := sourceFlows[strings.ToLower(strings.TrimSpace(sourceModule))]; ok {
		return flow
	}

	v, ok := firstPresent(raw, flowKeys)
	if !ok {
		return models.FlowPublish
	}
	s := strings.TrimSpace(stringify(v))
	if s == "" {
		return models.FlowPublish
	}

	for _, known := range []string{models.FlowPublish, models.FlowSignup, models.FlowInvite, models.FlowUpgrade} {
		if strings.EqualFold(s, known) {
			return known
		}
	}
	return s
}
