package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/claimtrack/internal/infrastructure/database/postgres"
	"github.com/turtacn/claimtrack/internal/infrastructure/monitoring/logging"
)

type fakeMigrator struct {
	state  postgres.MigrationState
	calls  []string
	steps  int
	closed bool
}

func (f *fakeMigrator) Up() error {
	f.calls = append(f.calls, "up")
	f.state.Version = 3
	return nil
}

func (f *fakeMigrator) Down(steps int) error {
	f.calls = append(f.calls, "down")
	f.steps = steps
	f.state.Version -= uint(steps)
	return nil
}

func (f *fakeMigrator) Status() (postgres.MigrationState, error) { return f.state, nil }

func (f *fakeMigrator) Force(version int) error {
	f.calls = append(f.calls, "force")
	f.state = postgres.MigrationState{Version: uint(version)}
	return nil
}

func (f *fakeMigrator) Close() error {
	f.closed = true
	return nil
}

func useFakeMigrator(t *testing.T, state postgres.MigrationState) (*fakeMigrator, *string) {
	t.Helper()
	t.Setenv("CLAIMTRACK_DATABASE_USER", "claimtrack")
	t.Setenv("CLAIMTRACK_DATABASE_PASSWORD", "secret")

	fake := &fakeMigrator{state: state}
	var dsn string
	orig := openMigrator
	openMigrator = func(d, _ string, _ logging.Logger) (schemaMigrator, error) {
		dsn = d
		return fake, nil
	}
	t.Cleanup(func() { openMigrator = orig })
	return fake, &dsn
}

func TestMigrate_Up(t *testing.T) {
	fake, dsn := useFakeMigrator(t, postgres.MigrationState{})

	out, _, err := execute(t, "", "migrate", "up")
	require.NoError(t, err)
	assert.Equal(t, "schema version 3\n", out)
	assert.Equal(t, []string{"up"}, fake.calls)
	assert.True(t, fake.closed)
	assert.Contains(t, *dsn, "claimtrack:secret@localhost:5432/claimtrack")
}

func TestMigrate_DownSteps(t *testing.T) {
	fake, _ := useFakeMigrator(t, postgres.MigrationState{Version: 3})

	out, _, err := execute(t, "", "migrate", "down", "--steps", "2")
	require.NoError(t, err)
	assert.Equal(t, 2, fake.steps)
	assert.Equal(t, "schema version 1\n", out)
}

func TestMigrate_StatusDirtyJSON(t *testing.T) {
	useFakeMigrator(t, postgres.MigrationState{Version: 2, Dirty: true})

	out, _, err := execute(t, "", "migrate", "status", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":2,"dirty":true}`, out)
}

func TestMigrate_Force(t *testing.T) {
	fake, _ := useFakeMigrator(t, postgres.MigrationState{Version: 2, Dirty: true})

	out, _, err := execute(t, "", "migrate", "force", "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"force"}, fake.calls)
	assert.Equal(t, "schema version 1\n", out)

	_, _, err = execute(t, "", "migrate", "force", "one")
	assert.Error(t, err)
}

func TestMigrate_InvalidConfig(t *testing.T) {
	useFakeMigrator(t, postgres.MigrationState{})
	t.Setenv("CLAIMTRACK_DATABASE_USER", "")

	_, _, err := execute(t, "", "migrate", "status")
	assert.Error(t, err)
}
