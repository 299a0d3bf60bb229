package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/alvmarrod/redfish-verify/internal/validate"
)

// Summary carries the run-level fields shown in the report header
type Summary struct {
	Host        string
	User        string
	OpenAPIPath string
	ToolVersion string
	GeneratedAt time.Time
	Passed      int
	Failed      int
	Warned      int
}

type row struct {
	Identifier string
	Verdict    validate.Verdict
	Detail     string
	CSSClass   string
}

type reportData struct {
	Summary Summary
	Rows    []row
}

const reportTemplate = `<html>
  <head>
    <title>Redfish URI Test Summary</title>
    <style>
      .pass {background-color:#99EE99}
      .fail {background-color:#EE9999}
      .warn {background-color:#EEEE99}
      .center {text-align:center;}
      .title {background-color:#DDDDDD; border: 1pt solid; padding: 8px}
      body {background-color:lightgrey; border: 1pt solid; text-align:center; margin-left:auto; margin-right:auto}
      th {text-align:center; background-color:beige; border: 1pt solid}
      td {text-align:left; background-color:white; border: 1pt solid; word-wrap:break-word;}
      table {width:90%; margin: 0px auto; table-layout:fixed;}
    </style>
  </head>
  <body>
  <table>
    <tr>
      <th>
        <h2>Redfish URI Test Report</h2>
        Tool Version: {{.Summary.ToolVersion}}<br/>
        {{.Summary.GeneratedAt.Format "Mon Jan 2 15:04:05 2006"}}<br/>
      </th>
    </tr>
    <tr>
      <th>
        System: {{.Summary.Host}}, User: {{.Summary.User}}<br/>
        OpenAPI Specification: {{.Summary.OpenAPIPath}}<br/>
      </th>
    </tr>
    <tr>
      <td>
        <center><b>Results Summary</b></center>
        <center>Pass: {{.Summary.Passed}}, Fail: {{.Summary.Failed}}, Warning: {{.Summary.Warned}}</center>
      </td>
    </tr>
    {{if .Rows}}
    <tr><td><table>
      {{range .Rows}}
      <tr>
        <td>{{.Identifier}}</td>
        <td class="{{.CSSClass}} center" width="30%">{{if eq .Detail "Pass"}}Pass{{else}}{{.Verdict}}: {{.Detail}}{{end}}</td>
      </tr>
      {{end}}
    </table></td></tr>
    {{end}}
  </table>
  </body>
</html>
`

// Write renders the HTML report into dir (created if missing) and returns
// the written file's path. Records are listed sorted by identifier, with
// identifier-less records last.
func Write(dir string, summary Summary, records []validate.Record) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	rows := buildRows(records)

	tmpl, err := template.New("report").Parse(reportTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse report template: %w", err)
	}

	name := summary.GeneratedAt.Format("RedfishURITestReport_01_02_2006_150405.html")
	path := filepath.Join(dir, name)

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer out.Close()

	if err := tmpl.Execute(out, reportData{Summary: summary, Rows: rows}); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	return path, nil
}

func buildRows(records []validate.Record) []row {
	rows := make([]row, 0, len(records))
	for _, rec := range records {
		identifier := rec.Identifier
		if identifier == "" {
			identifier = "(no identifier)"
		}
		rows = append(rows, row{
			Identifier: identifier,
			Verdict:    rec.Verdict,
			Detail:     rec.Detail,
			CSSClass:   cssClass(rec.Verdict),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		// Orphans sort last
		if rows[i].Identifier == "(no identifier)" || rows[j].Identifier == "(no identifier)" {
			return rows[j].Identifier == "(no identifier)" && rows[i].Identifier != "(no identifier)"
		}
		return rows[i].Identifier < rows[j].Identifier
	})

	return rows
}

func cssClass(v validate.Verdict) string {
	switch v {
	case validate.VerdictPass:
		return "pass"
	case validate.VerdictWarning:
		return "warn"
	default:
		return "fail"
	}
}
