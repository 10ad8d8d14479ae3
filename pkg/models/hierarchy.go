package models

import "time"

// The drill-down hierarchy groups a flat record collection four levels
// deep: application name, tenant (ZOID), flow type, organization (ZUID).
// Trees are derived, disposable views rebuilt from scratch whenever the
// underlying collection changes.
//
// Invariants at every level: Count equals the sum of child counts; nodes
// are sorted by LatestAt descending with nil timestamps last.

// ApplicationNode is the root grouping level, keyed by application name.
type ApplicationNode struct {
	Name     string         `json:"name"`
	Tenants  []TenantNode   `json:"tenants"`
	Count    int            `json:"count"`
	LatestAt *time.Time     `json:"latest_at,omitempty"`
	Sample   *FailureRecord `json:"sample,omitempty"`
}

// TenantNode groups an application's failures by tenant.
type TenantNode struct {
	TenantID string         `json:"tenant_id"`
	Flows    []FlowNode     `json:"flows"`
	Count    int            `json:"count"`
	LatestAt *time.Time     `json:"latest_at,omitempty"`
	Sample   *FailureRecord `json:"sample,omitempty"`
}

// FlowNode groups a tenant's failures by flow type.
type FlowNode struct {
	FlowType string     `json:"flow_type"`
	Orgs     []OrgNode  `json:"orgs"`
	Count    int        `json:"count"`
	LatestAt *time.Time `json:"latest_at,omitempty"`
}

// OrgNode is the leaf level holding the records themselves, sorted by
// requestedAt descending.
type OrgNode struct {
	OrgID    string          `json:"org_id"`
	Records  []FailureRecord `json:"records"`
	Count    int             `json:"count"`
	LatestAt *time.Time      `json:"latest_at,omitempty"`
}
