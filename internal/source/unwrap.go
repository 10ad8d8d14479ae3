package source

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ParsePayload unwraps a raw upstream payload into a Page. The serverless
// envelope nests JSON-encoded strings up to three levels deep
// (envelope → output → details/data); each level is speculatively parsed
// with tryParse and passed through unchanged when it is not a JSON string.
// The final shape is either a bare array of records or an object exposing
// a "data" array and an "info.more_records" flag (bool or stringified
// bool). Any parse failure at any level degrades to an empty page.
func ParsePayload(raw []byte) Page {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return Page{}
	}
	v = tryParse(v)

	if m, ok := v.(map[string]any); ok {
		if out, present := m["output"]; present {
			v = tryParse(out)
		}
	}
	if m, ok := v.(map[string]any); ok {
		if det, present := m["details"]; present {
			v = tryParse(det)
		}
	}

	switch t := v.(type) {
	case []any:
		return Page{Records: toRecords(t)}
	case map[string]any:
		arr, ok := tryParse(t["data"]).([]any)
		if !ok {
			return Page{}
		}
		return Page{
			Records: toRecords(arr),
			HasMore: moreRecords(t["info"]),
		}
	default:
		return Page{}
	}
}

// tryParse attempts one "JSON string → value" unwrap step. Non-string
// values and unparseable strings pass through unchanged.
func tryParse(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	var parsed any
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		return v
	}
	return parsed
}

func toRecords(arr []any) []map[string]any {
	records := make([]map[string]any, 0, len(arr))
	for _, el := range arr {
		if m, ok := el.(map[string]any); ok {
			records = append(records, m)
		}
	}
	return records
}

// moreRecords reads info.more_records, tolerating a bool, a stringified
// bool, or a missing/garbled info block (which means no more pages).
func moreRecords(info any) bool {
	m, ok := tryParse(info).(map[string]any)
	if !ok {
		return false
	}
	switch t := m["more_records"].(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(strings.ToLower(t)))
		return err == nil && b
	default:
		return false
	}
}
