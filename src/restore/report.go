package restore

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"
)

// Status summarizes a whole run.
type Status string

const (
	// StatusSuccess: every action succeeded.
	StatusSuccess Status = "success"
	// StatusPartial: one or more non-required actions failed; the plan
	// still ran to completion.
	StatusPartial Status = "partial"
	// StatusAborted: a required action failed and the remaining actions
	// were not attempted.
	StatusAborted Status = "aborted"
)

// ActionResult records the outcome of one executed action.
type ActionResult struct {
	Action   Action        `json:"action"`
	Err      string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// OK reports whether the action succeeded.
func (r ActionResult) OK() bool { return r.Err == "" }

// Report is the executor's output: one result per attempted action, in
// submission order. It is immutable once returned.
type Report struct {
	Results []ActionResult `json:"results"`
	Status  Status         `json:"status"`
	// Unverified is set when the restored archive carried no checksum.
	Unverified bool `json:"unverified,omitempty"`
}

// RequiredFailures counts failed required actions (0 or 1: the first one
// aborts the run).
func (r *Report) RequiredFailures() int {
	n := 0
	for _, res := range r.Results {
		if !res.OK() && res.Action.Required {
			n++
		}
	}
	return n
}

// RenderTable writes a human-readable summary.
func (r *Report) RenderTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ACTION\tTARGET\tOUTCOME\tDURATION\tERROR")
	for _, res := range r.Results {
		outcome := "ok"
		if !res.OK() {
			outcome = "failed"
			if !res.Action.Required {
				outcome = "failed (skipped)"
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			res.Action.Kind, res.Action.Target, outcome,
			res.Duration.Round(time.Millisecond), res.Err)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	verified := ""
	if r.Unverified {
		verified = " (archive unverified: no checksum published)"
	}
	_, err := fmt.Fprintf(w, "overall: %s%s\n", r.Status, verified)
	return err
}

// RenderJSON writes the report as indented JSON.
func (r *Report) RenderJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
