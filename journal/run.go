package journal

import (
	"bytes"
	"os"
	"text/template"
	"time"
)

// RunReport summarizes one finished run.
type RunReport struct {
	RunID   string
	Created time.Time
	Profile string
	Dataset string

	Start time.Time
	End   time.Time

	InitialCash float64
	FinalCash   float64
	FinalEquity float64
	RealizedPL  float64

	Intents    int
	Accepted   int
	Rejected   int
	RejectedBy map[string]int // by reason

	MaxDrawdown float64 // fraction
	Halted      bool

	Notes []string
}

// ReturnPct is the equity change over the run in percent.
func (r RunReport) ReturnPct() float64 {
	if r.InitialCash == 0 {
		return 0
	}
	return 100 * (r.FinalEquity - r.InitialCash) / r.InitialCash
}

var runOrgFuncs = template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var runOrgTemplate = template.Must(template.New("run").Funcs(runOrgFuncs).Parse(RunOrgTemplate))

// FormatRunOrg renders the report as an Org-mode entry.
func (r RunReport) FormatRunOrg() (string, error) {
	var buf bytes.Buffer
	if err := runOrgTemplate.Execute(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r RunReport) WriteOrg(path string) error {
	s, err := r.FormatRunOrg()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s), 0644)
}

const RunOrgTemplate = `* RUN: {{.Profile}} {{if .Dataset}}{{.Dataset}}{{else}}(dataset?){{end}}
:PROPERTIES:
:RUN_ID:       {{.RunID}}
:PROFILE:      {{.Profile}}
:DATASET:      {{.Dataset}}
:START_DATE:   {{.Start.Format "2006-01-02"}}
:END_DATE:     {{.End.Format "2006-01-02"}}
:START_CASH:   {{printf "%.2f" .InitialCash}}
:END_CASH:     {{printf "%.2f" .FinalCash}}
:END_EQUITY:   {{printf "%.2f" .FinalEquity}}
:RETURN_PCT:   {{printf "%.2f" .ReturnPct}}
:MAX_DD_PCT:   {{printf "%.2f" (mul100 .MaxDrawdown)}}
:INTENTS:      {{.Intents}}
:ACCEPTED:     {{.Accepted}}
:REJECTED:     {{.Rejected}}
:HALTED:       {{if .Halted}}yes{{else}}no{{end}}
:CREATED:      [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Performance Summary
- Realized P/L:     *{{printf "%.2f" .RealizedPL}}*
- Return:           *{{printf "%.2f" .ReturnPct}}%*
- Max Drawdown:     *{{printf "%.2f" (mul100 .MaxDrawdown)}}%*
{{- if .RejectedBy }}

** Rejections
| Reason | Count |
|--------+-------|
{{- range $reason, $n := .RejectedBy }}
| {{$reason}} | {{$n}} |
{{- end }}
{{- end }}
{{- if .Notes }}

** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
