package client

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Dashboard is a party's view of one claim.
type Dashboard struct {
	ExternalID  string            `json:"external_id"`
	Viewer      string            `json:"viewer"`
	State       string            `json:"state"`
	Terminal    bool              `json:"terminal"`
	Rule        string            `json:"rule"`
	Narrative   Narrative         `json:"narrative"`
	EvaluatedAt time.Time         `json:"evaluated_at"`
	Links       map[string]string `json:"links,omitempty"`
}

type Narrative struct {
	Key    string          `json:"key"`
	Params NarrativeParams `json:"params"`
}

// NarrativeParams mirrors the server's narrative parameters. Dates are
// YYYY-MM-DD and amounts are pence.
type NarrativeParams struct {
	ClaimantName   string    `json:"claimant_name,omitempty"`
	DefendantName  string    `json:"defendant_name,omitempty"`
	OtherPartyName string    `json:"other_party_name,omitempty"`
	PaidAmount     *int64    `json:"paid_amount,omitempty"`
	PaidDate       string    `json:"paid_date,omitempty"`
	RespondedOn    string    `json:"responded_on,omitempty"`
	Deadline       *Deadline `json:"deadline,omitempty"`
	PausedSince    string    `json:"paused_since,omitempty"`
	Documents      []string  `json:"documents,omitempty"`
}

// Deadline is a deadline date and the instant it lapses after.
type Deadline struct {
	Date   string    `json:"date"`
	Cutoff time.Time `json:"cutoff"`
}

// Rule is one row of the classification precedence table.
type Rule struct {
	Priority int      `json:"priority"`
	Name     string   `json:"name"`
	States   []string `json:"states"`
}

// Viewer is the party a dashboard is rendered for.
type Viewer string

const (
	Claimant  Viewer = "claimant"
	Defendant Viewer = "defendant"
)

// GetDashboard fetches the stored claim's dashboard. A zero now lets the
// server use its own clock.
func (c *Client) GetDashboard(ctx context.Context, externalID string, viewer Viewer, now time.Time) (*Dashboard, error) {
	var d Dashboard
	path := "/api/v1/claims/" + url.PathEscape(externalID) + "/dashboard?" + dashboardQuery(viewer, now)
	if err := c.do(ctx, http.MethodGet, path, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Classify classifies record without storing it. record is any value that
// encodes to the claim record JSON document, such as a json.RawMessage.
func (c *Client) Classify(ctx context.Context, record interface{}, viewer Viewer, now time.Time) (*Dashboard, error) {
	var d Dashboard
	if err := c.do(ctx, http.MethodPost, "/api/v1/dashboard/classify?"+dashboardQuery(viewer, now), record, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Rules fetches the precedence table.
func (c *Client) Rules(ctx context.Context) ([]Rule, error) {
	var body struct {
		Rules []Rule `json:"rules"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/states", nil, &body); err != nil {
		return nil, err
	}
	return body.Rules, nil
}

func dashboardQuery(viewer Viewer, now time.Time) string {
	q := url.Values{}
	q.Set("viewer", string(viewer))
	if !now.IsZero() {
		q.Set("now", now.Format(time.RFC3339))
	}
	return q.Encode()
}
