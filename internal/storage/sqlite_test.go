package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alvmarrod/redfish-verify/internal/validate"
)

func TestSaveAndLoadRun(t *testing.T) {
	store, err := NewStorage(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	defer store.Close()

	started := time.Now().Add(-time.Minute).UTC().Truncate(time.Second)
	run := Run{
		RunID:      "run-0001",
		Host:       "https://10.0.0.5",
		StartedAt:  started,
		FinishedAt: started.Add(45 * time.Second),
		Passed:     2,
		Failed:     1,
		Warned:     0,
	}

	records := []validate.Record{
		{Identifier: "/redfish/v1", DeclaredType: "ServiceRoot.v1_5_0.ServiceRoot", Verdict: validate.VerdictPass, Detail: "Pass"},
		{Identifier: "/redfish/v1/Chassis/1", DeclaredType: "Chassis.v1_0_0.Chassis", Verdict: validate.VerdictPass, Detail: "Pass"},
		{Identifier: "/redfish/v1/Broken", Verdict: validate.VerdictFail, Detail: "failed to fetch resource '/redfish/v1/Broken': status 500"},
	}

	require.NoError(t, store.SaveRun(run, records))

	loaded, err := store.GetRun("run-0001")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, run.Host, loaded.Host)
	assert.Equal(t, run.Passed, loaded.Passed)
	assert.Equal(t, run.Failed, loaded.Failed)

	results, err := store.GetResults("run-0001")
	require.NoError(t, err)
	require.Len(t, results, 3)
	// Visit order survives the round trip
	assert.Equal(t, records, results)
}

func TestGetRunMissing(t *testing.T) {
	store, err := NewStorage(filepath.Join(t.TempDir(), "archive.db"))
	require.NoError(t, err)
	defer store.Close()

	run, err := store.GetRun("nope")
	require.NoError(t, err)
	assert.Nil(t, run)
}
