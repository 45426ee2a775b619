package claim_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/claimtrack/internal/domain/claim"
)

func TestParseDate(t *testing.T) {
	d, err := claim.ParseDate("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, claim.Date{Year: 2024, Month: time.March, Day: 15}, d)
	assert.Equal(t, "2024-03-15", d.String())

	_, err = claim.ParseDate("15/03/2024")
	assert.Error(t, err)
}

func TestDate_Arithmetic(t *testing.T) {
	d := claim.NewDate(2024, time.February, 28)

	assert.Equal(t, claim.NewDate(2024, time.February, 29), d.AddDays(1))
	assert.Equal(t, claim.NewDate(2024, time.March, 1), d.AddDays(2))
	assert.Equal(t, claim.NewDate(2024, time.March, 1), claim.NewDate(2024, time.February, 30))
	assert.True(t, d.Before(d.AddDays(1)))
	assert.False(t, d.Before(d))
	assert.True(t, claim.NewDate(2023, time.December, 31).Before(d))
	assert.True(t, claim.Date{}.IsZero())
	assert.False(t, d.IsZero())
}

func TestDate_JSON(t *testing.T) {
	type holder struct {
		Due      claim.Date  `json:"due"`
		Optional *claim.Date `json:"optional,omitempty"`
	}

	var h holder
	require.NoError(t, json.Unmarshal([]byte(`{"due":"2024-03-15"}`), &h))
	assert.Equal(t, claim.NewDate(2024, time.March, 15), h.Due)
	assert.Nil(t, h.Optional)

	require.NoError(t, json.Unmarshal([]byte(`{"due":"2024-03-15T23:30:00Z"}`), &h))
	assert.Equal(t, claim.NewDate(2024, time.March, 15), h.Due)

	out, err := json.Marshal(h)
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":"2024-03-15"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"due":"not a date"}`), &h))

	var zero holder
	out, err = json.Marshal(zero)
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":""}`, string(out))
	h = holder{Due: claim.NewDate(2024, time.March, 15)}
	require.NoError(t, json.Unmarshal(out, &h))
	assert.True(t, h.Due.IsZero())
}

func TestDate_YAML(t *testing.T) {
	var h struct {
		Due claim.Date `yaml:"due"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("due: \"2024-03-15\"\n"), &h))
	assert.Equal(t, claim.NewDate(2024, time.March, 15), h.Due)
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "30.00", claim.Money(3000).String())
	assert.Equal(t, "0.05", claim.Money(5).String())
	assert.Equal(t, "1234.56", claim.Money(123456).String())
	assert.Equal(t, "-0.50", claim.Money(-50).String())
	assert.Equal(t, int64(12), claim.Money(1250).Pounds())
	assert.Equal(t, int64(50), claim.Money(1250).Pence())
}
