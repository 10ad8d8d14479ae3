// Package hierarchy groups flat failure-record collections into the
// four-level drill-down tree served to the dashboard.
package hierarchy

import (
	"sort"
	"time"

	"github.com/zylker/failwatch/internal/normalize"
	"github.com/zylker/failwatch/pkg/models"
)

// Accumulators keep first-seen insertion order so repeated builds over the
// same input produce structurally identical trees.
type orgAcc struct {
	records []models.FailureRecord
}

type flowAcc struct {
	orgs  map[string]*orgAcc
	order []string
}

type tenantAcc struct {
	flows  map[string]*flowAcc
	order  []string
	sample models.FailureRecord
}

type appAcc struct {
	tenants map[string]*tenantAcc
	order   []string
	sample  models.FailureRecord
}

// Build groups records by application name, tenant id, flow type, and org
// id, with additive counts and every level sorted by latest requestedAt
// descending (nil timestamps last, stable). Empty input yields an empty
// forest. Idempotent: the tree is a derived view, never mutated in place.
func Build(records []models.FailureRecord) []models.ApplicationNode {
	apps := map[string]*appAcc{}
	appOrder := []string{}

	for _, rec := range records {
		app, ok := apps[rec.Name]
		if !ok {
			app = &appAcc{tenants: map[string]*tenantAcc{}, sample: rec}
			apps[rec.Name] = app
			appOrder = append(appOrder, rec.Name)
		}

		tenant, ok := app.tenants[rec.TenantID]
		if !ok {
			tenant = &tenantAcc{flows: map[string]*flowAcc{}, sample: rec}
			app.tenants[rec.TenantID] = tenant
			app.order = append(app.order, rec.TenantID)
		}

		flow, ok := tenant.flows[rec.FlowType]
		if !ok {
			flow = &flowAcc{orgs: map[string]*orgAcc{}}
			tenant.flows[rec.FlowType] = flow
			tenant.order = append(tenant.order, rec.FlowType)
		}

		orgID := normalize.DefaultTenantID
		if rec.OrgID != nil && *rec.OrgID != "" {
			orgID = *rec.OrgID
		}
		org, ok := flow.orgs[orgID]
		if !ok {
			org = &orgAcc{}
			flow.orgs[orgID] = org
			flow.order = append(flow.order, orgID)
		}
		org.records = append(org.records, rec)
	}

	forest := make([]models.ApplicationNode, 0, len(appOrder))
	for _, name := range appOrder {
		forest = append(forest, buildApplication(name, apps[name]))
	}
	sort.SliceStable(forest, func(i, j int) bool {
		return laterThan(forest[i].LatestAt, forest[j].LatestAt)
	})
	return forest
}

func buildApplication(name string, acc *appAcc) models.ApplicationNode {
	node := models.ApplicationNode{Name: name, Tenants: make([]models.TenantNode, 0, len(acc.order))}
	sample := acc.sample
	node.Sample = &sample

	for _, tenantID := range acc.order {
		tenant := buildTenant(tenantID, acc.tenants[tenantID])
		node.Count += tenant.Count
		node.LatestAt = latest(node.LatestAt, tenant.LatestAt)
		node.Tenants = append(node.Tenants, tenant)
	}
	sort.SliceStable(node.Tenants, func(i, j int) bool {
		return laterThan(node.Tenants[i].LatestAt, node.Tenants[j].LatestAt)
	})
	return node
}

func buildTenant(tenantID string, acc *tenantAcc) models.TenantNode {
	node := models.TenantNode{TenantID: tenantID, Flows: make([]models.FlowNode, 0, len(acc.order))}
	sample := acc.sample
	node.Sample = &sample

	for _, flowType := range acc.order {
		flow := buildFlow(flowType, acc.flows[flowType])
		node.Count += flow.Count
		node.LatestAt = latest(node.LatestAt, flow.LatestAt)
		node.Flows = append(node.Flows, flow)
	}
	sort.SliceStable(node.Flows, func(i, j int) bool {
		return laterThan(node.Flows[i].LatestAt, node.Flows[j].LatestAt)
	})
	return node
}

func buildFlow(flowType string, acc *flowAcc) models.FlowNode {
	node := models.FlowNode{FlowType: flowType, Orgs: make([]models.OrgNode, 0, len(acc.order))}

	for _, orgID := range acc.order {
		org := buildOrg(orgID, acc.orgs[orgID])
		node.Count += org.Count
		node.LatestAt = latest(node.LatestAt, org.LatestAt)
		node.Orgs = append(node.Orgs, org)
	}
	sort.SliceStable(node.Orgs, func(i, j int) bool {
		return laterThan(node.Orgs[i].LatestAt, node.Orgs[j].LatestAt)
	})
	return node
}

func buildOrg(orgID string, acc *orgAcc) models.OrgNode {
	records := make([]models.FailureRecord, len(acc.records))
	copy(records, acc.records)
	sort.SliceStable(records, func(i, j int) bool {
		return laterThan(records[i].EffectiveTime(), records[j].EffectiveTime())
	})

	node := models.OrgNode{OrgID: orgID, Records: records, Count: len(records)}
	for i := range records {
		node.LatestAt = latest(node.LatestAt, records[i].EffectiveTime())
	}
	return node
}

// laterThan orders timestamps descending with nil last. Records with no
// timestamp at all sort after any timestamped one and never panic the
// comparator.
func laterThan(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.After(*b)
}

func latest(a, b *time.Time) *time.Time {
	if laterThan(b, a) {
		return b
	}
	return a
}
