package report

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alvmarrod/redfish-verify/internal/validate"
)

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()

	summary := Summary{
		Host:        "https://10.0.0.5",
		User:        "admin",
		OpenAPIPath: "openapi.yaml",
		ToolVersion: "1.0.0",
		GeneratedAt: time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		Passed:      2,
		Failed:      1,
		Warned:      1,
	}

	records := []validate.Record{
		{Identifier: "/redfish/v1/Systems/1", Verdict: validate.VerdictPass, Detail: "Pass"},
		{Identifier: "/redfish/v1", Verdict: validate.VerdictPass, Detail: "Pass"},
		{Identifier: "", Verdict: validate.VerdictFail, Detail: "resource at '/redfish/v1/Orphan' is missing the required @odata.id and/or @odata.type property"},
		{Identifier: "/redfish/v1/Oem/Thing", Verdict: validate.VerdictWarning, Detail: "type 'Oem.v1.Thing' was not found in the specification"},
	}

	path, err := Write(dir, summary, records)
	require.NoError(t, err)
	assert.Equal(t, "RedfishURITestReport_03_15_2024_103000.html", path[len(dir)+1:])

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(content)

	assert.Contains(t, html, "Pass: 2, Fail: 1, Warning: 1")
	assert.Contains(t, html, "https://10.0.0.5")
	assert.Contains(t, html, "/redfish/v1/Systems/1")
	assert.Contains(t, html, "Warning: type &#39;Oem.v1.Thing&#39; was not found in the specification")
	assert.Contains(t, html, "(no identifier)")
}

func TestBuildRowsSortsOrphansLast(t *testing.T) {
	records := []validate.Record{
		{Identifier: "", Verdict: validate.VerdictFail, Detail: "missing"},
		{Identifier: "/redfish/v1/B", Verdict: validate.VerdictPass, Detail: "Pass"},
		{Identifier: "/redfish/v1/A", Verdict: validate.VerdictPass, Detail: "Pass"},
	}

	rows := buildRows(records)
	require.Len(t, rows, 3)
	assert.Equal(t, "/redfish/v1/A", rows[0].Identifier)
	assert.Equal(t, "/redfish/v1/B", rows[1].Identifier)
	assert.Equal(t, "(no identifier)", rows[2].Identifier)
}

func TestWriteCreatesMissingDirectory(t *testing.T) {
	dir := t.TempDir() + "/nested/logs"

	summary := Summary{GeneratedAt: time.Now()}
	path, err := Write(dir, summary, nil)
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
