package normalize

import (
	"github.com/zylker/failwatch/pkg/models"
)

// Defaults applied when a raw record carries no usable value.
const (
	DefaultName     = "Unknown"
	DefaultTenantID = "unknown"
)

// Normalize builds a canonical FailureRecord from a raw upstream record.
// Pure value construction: it never fails, and missing fields resolve to
// the documented defaults. sourceModule is the provenance tag of the feed
// the record came from.
func Normalize(raw map[string]any, sourceModule string) models.FailureRecord {
	rec := models.FailureRecord{
		ID:           stringField(raw, idKeys),
		Name:         stringField(raw, nameKeys),
		TenantID:     stringField(raw, tenantKeys),
		ThreadID:     stringField(raw, threadKeys),
		RequestID:    stringField(raw, requestKeys),
		StatusCode:   stringField(raw, statusKeys),
		ServerName:   stringField(raw, serverKeys),
		Changeset:    stringField(raw, changesetKeys),
		BuildID:      stringField(raw, buildKeys),
		FlowType:     inferFlowType(raw, sourceModule),
		SourceModule: sourceModule,

		CreatedAt:   timeField(raw, createdKeys),
		RequestedAt: timeField(raw, requestedKeys),

		ExceptionTrace:  stringField(raw, traceKeys),
		ErrorMessage:    stringField(raw, messageKeys),
		ExceptionReason: stringField(raw, reasonKeys),
	}

	if rec.Name == "" {
		rec.Name = DefaultName
	}
	if rec.TenantID == "" {
		rec.TenantID = DefaultTenantID
	}
	if org := stringField(raw, orgKeys); org != "" {
		rec.OrgID = &org
	}
	if rec.RequestedAt == nil {
		rec.RequestedAt = rec.CreatedAt
	}

	return rec
}
