package deeplink

import (
	"net/url"
	"strings"
	"testing"

	"github.com/zylker/failwatch/pkg/models"
)

const base = "https://logs.zylker.internal"

// parseQuery extracts the decoded query and range parameters from a
// generated URL.
func parseQuery(t *testing.T, raw string) (query, dateRange string) {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("invalid url %q: %v", raw, err)
	}
	return u.Query().Get("query"), u.Query().Get("range")
}

func TestSearchURL_PublishFlow(t *testing.T) {
	b := NewBuilder(base)
	raw := b.SearchURL(models.FlowPublish, "thr-9", "req-42")

	if !strings.HasPrefix(raw, base+"/search?") {
		t.Fatalf("unexpected prefix: %q", raw)
	}
	query, dateRange := parseQuery(t, raw)
	want := `class:"com.zylker.publish.PublishPipeline" AND method:"executePublish" AND thread:"thr-9" AND request:"req-42" AND module:"publish"`
	if query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	if dateRange != "last2days" {
		t.Errorf("range = %q, want last2days", dateRange)
	}
}

func TestSearchURL_FlowTemplates(t *testing.T) {
	cases := []struct {
		flow      string
		class     string
		dateRange string
	}{
		{models.FlowPublish, "com.zylker.publish.PublishPipeline", "last2days"},
		{models.FlowSignup, "com.zylker.accounts.SignupHandler", "last2days"},
		{models.FlowInvite, "com.zylker.accounts.InviteService", "last7days"},
		{models.FlowUpgrade, "com.zylker.billing.PlanUpgradeWorker", "last7days"},
	}
	b := NewBuilder(base)
	for _, tc := range cases {
		t.Run(tc.flow, func(t *testing.T) {
			query, dateRange := parseQuery(t, b.SearchURL(tc.flow, "t", "r"))
			if !strings.Contains(query, `class:"`+tc.class+`"`) {
				t.Errorf("query %q missing class %q", query, tc.class)
			}
			if dateRange != tc.dateRange {
				t.Errorf("range = %q, want %q", dateRange, tc.dateRange)
			}
		})
	}
}

func TestSearchURL_UnknownFlowUsesDefault(t *testing.T) {
	b := NewBuilder(base)
	query, dateRange := parseQuery(t, b.SearchURL("Migration", "", ""))

	want := `class:"com.zylker.core.RequestDispatcher" AND method:"dispatch"`
	if query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	if dateRange != "last2days" {
		t.Errorf("range = %q, want last2days", dateRange)
	}
}

func TestSearchURL_EmptyIDsDropClauses(t *testing.T) {
	b := NewBuilder(base)
	query, _ := parseQuery(t, b.SearchURL(models.FlowSignup, "", "req-1"))

	if strings.Contains(query, "thread:") {
		t.Errorf("query %q should not contain a thread clause", query)
	}
	if !strings.Contains(query, `request:"req-1"`) {
		t.Errorf("query %q missing request clause", query)
	}
}

func TestNewBuilder_TrimsTrailingSlash(t *testing.T) {
	b := NewBuilder(base + "/")
	raw := b.SearchURL(models.FlowPublish, "", "")
	if strings.Contains(raw, "//search") {
		t.Errorf("double slash in %q", raw)
	}
}
