// Package deeplink builds log-search URLs for the external log-search
// system. Pure string formatting over three record fields; no dependency
// on the rest of the data model.
package deeplink

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/zylker/failwatch/pkg/models"
)

// template fixes the search parameters for one flow type: the handler
// class and method the flow runs through, the date-range token the search
// UI expects, and an extra filter clause.
type template struct {
	class     string
	method    string
	dateToken string
	extra     string
}

var flowTemplates = map[string]template{
	models.FlowPublish: {
		class:     "com.zylker.publish.PublishPipeline",
		method:    "executePublish",
		dateToken: "last2days",
		extra:     `module:"publish"`,
	},
	models.FlowSignup: {
		class:     "com.zylker.accounts.SignupHandler",
		method:    "completeSignup",
		dateToken: "last2days",
		extra:     `module:"accounts"`,
	},
	models.FlowInvite: {
		class:     "com.zylker.accounts.InviteService",
		method:    "dispatchInvite",
		dateToken: "last7days",
		extra:     `module:"accounts"`,
	},
	models.FlowUpgrade: {
		class:     "com.zylker.billing.PlanUpgradeWorker",
		method:    "applyUpgrade",
		dateToken: "last7days",
		extra:     `module:"billing"`,
	},
}

// defaultTemplate covers passthrough flow types with no fixed template.
var defaultTemplate = template{
	class:     "com.zylker.core.RequestDispatcher",
	method:    "dispatch",
	dateToken: "last2days",
}

// Builder constructs search URLs against one deployment of the log-search
// system. All methods are pure functions with no side effects.
type Builder struct {
	baseURL string
}

// NewBuilder creates a Builder. baseURL is the search UI root, without a
// trailing slash.
func NewBuilder(baseURL string) Builder {
	return Builder{baseURL: strings.TrimRight(baseURL, "/")}
}

// SearchURL returns the fully-formed log-search URL for a record's flow
// type, thread id, and request id. Empty thread/request ids simply drop
// their clause.
func (b Builder) SearchURL(flowType, threadID, requestID string) string {
	tpl, ok := flowTemplates[flowType]
	if !ok {
		tpl = defaultTemplate
	}

	clauses := []string{
		fmt.Sprintf(`class:"%s"`, tpl.class),
		fmt.Sprintf(`method:"%s"`, tpl.method),
	}
	if threadID != "" {
		clauses = append(clauses, fmt.Sprintf(`thread:"%s"`, threadID))
	}
	if requestID != "" {
		clauses = append(clauses, fmt.Sprintf(`request:"%s"`, requestID))
	}
	if tpl.extra != "" {
		clauses = append(clauses, tpl.extra)
	}

	params := url.Values{
		"query": {strings.Join(clauses, " AND ")},
		"range": {tpl.dateToken},
	}
	return fmt.Sprintf("%s/search?%s", b.baseURL, params.Encode())
}
