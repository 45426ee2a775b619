package narrative

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/claimtrack/internal/domain/claim"
	"github.com/turtacn/claimtrack/internal/testutil"
	"github.com/turtacn/claimtrack/pkg/errors"
)

func TestTable_EveryPairEndsWithCatchAll(t *testing.T) {
	for _, state := range claim.States() {
		for _, v := range Viewers() {
			var last *entry
			for i := range table {
				if table[i].state == state && table[i].viewer == v {
					last = &table[i]
				}
			}
			require.NotNil(t, last, "no rows for %s/%s", state, v)
			assert.True(t, last.when.isCatchAll(), "%s/%s does not end with a catch-all", state, v)
		}
	}
}

func TestTable_NoRowIsShadowed(t *testing.T) {
	for i, e := range table {
		for _, earlier := range table[:i] {
			if earlier.state == e.state && earlier.viewer == e.viewer && earlier.when.isCatchAll() {
				t.Errorf("row %q for %s/%s follows a catch-all", e.key, e.state, e.viewer)
			}
		}
	}
}

func TestSelect_MissingRowIsUnmapped(t *testing.T) {
	s := &Selector{
		deadlines: testutil.Evaluator(),
		rows: []entry{
			{state: claim.StateAwaitingResponse, viewer: ViewerClaimant, when: match{moreTime: yes}, key: "awaitingResponse.moreTimeRequested"},
		},
	}

	_, err := s.Select(claim.StateAwaitingResponse, testutil.NewRecord(), ViewerClaimant)
	require.Error(t, err)
	assert.True(t, errors.IsUnmappedNarrative(err))
	assert.Contains(t, err.Error(), "more_time=false")

	d, err := s.Select(claim.StateAwaitingResponse, testutil.NewRecord(testutil.WithMoreTimeRequested()), ViewerClaimant)
	require.NoError(t, err)
	assert.Equal(t, "dashboard.claimant.awaitingResponse.moreTimeRequested", d.Key)
}

func TestTri(t *testing.T) {
	assert.True(t, anyValue.admits(true))
	assert.True(t, anyValue.admits(false))
	assert.True(t, yes.admits(true))
	assert.False(t, yes.admits(false))
	assert.True(t, no.admits(false))
	assert.False(t, no.admits(true))
}
