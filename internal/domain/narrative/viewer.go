// Package narrative chooses what each party is told about a claim. Selection
// is a table lookup keyed by lifecycle state, viewer and a handful of
// sub-flags read off the record; the result is a message key plus structured
// parameters. Literal wording lives with the renderer.
package narrative

import (
	"strings"

	"github.com/turtacn/claimtrack/internal/domain/claim"
	"github.com/turtacn/claimtrack/pkg/errors"
)

// Viewer is the party looking at the dashboard.
type Viewer string

const (
	ViewerClaimant  Viewer = "CLAIMANT"
	ViewerDefendant Viewer = "DEFENDANT"
)

// Viewers lists both viewers.
func Viewers() []Viewer { return []Viewer{ViewerClaimant, ViewerDefendant} }

// IsValid reports whether v is a known viewer.
func (v Viewer) IsValid() bool { return v == ViewerClaimant || v == ViewerDefendant }

func (v Viewer) String() string { return string(v) }

// Party returns the claim party the viewer is.
func (v Viewer) Party() claim.Party {
	if v == ViewerDefendant {
		return claim.PartyDefendant
	}
	return claim.PartyClaimant
}

// Other returns the opposing party.
func (v Viewer) Other() claim.Party {
	if v == ViewerDefendant {
		return claim.PartyClaimant
	}
	return claim.PartyDefendant
}

// keySegment is the viewer's segment in a narrative key.
func (v Viewer) keySegment() string {
	return strings.ToLower(string(v))
}

// ParseViewer parses a viewer name case-insensitively.
func ParseViewer(s string) (Viewer, error) {
	v := Viewer(strings.ToUpper(strings.TrimSpace(s)))
	if !v.IsValid() {
		return "", errors.InvalidParam("viewer must be claimant or defendant").WithDetail("viewer=" + s)
	}
	return v, nil
}
