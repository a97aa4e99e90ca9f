package health

import (
	"context"
	"encoding/json"
	"io"
	"time"
)

// Report is the JSON view of one aggregated run.
type Report struct {
	Status    Status        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
	Checks    []CheckReport `json:"checks"`
}

// CheckReport is one checker's entry in a Report.
type CheckReport struct {
	Name     string         `json:"name"`
	Status   Status         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Report runs every checker and builds a report in registration order.
func (a *Aggregator) Report(ctx context.Context) Report {
	results := a.CheckAll(ctx)

	rep := Report{
		Status:    Overall(results),
		Timestamp: time.Now().UTC(),
		Checks:    make([]CheckReport, 0, len(results)),
	}
	for _, name := range a.Names() {
		r, ok := results[name]
		if !ok {
			continue
		}
		cr := CheckReport{
			Name:     name,
			Status:   r.Status,
			Message:  r.Message,
			Duration: r.Duration.String(),
			Details:  r.Details,
		}
		if r.Error != nil {
			cr.Error = r.Error.Error()
		}
		rep.Checks = append(rep.Checks, cr)
	}
	return rep
}

// WriteJSON writes r as indented JSON.
func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
