package restore

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func sampleReport() *Report {
	return &Report{
		Status:     StatusPartial,
		Unverified: true,
		Results: []ActionResult{
			{Action: Action{Kind: InstallPackage, Target: "nginx"}, Duration: 1200 * time.Millisecond},
			{Action: Action{Kind: InstallPackage, Target: "ghost-pkg"}, Err: "no candidate", Duration: 80 * time.Millisecond},
			{Action: Action{Kind: RestartService, Target: "nginx", Required: true}, Duration: 300 * time.Millisecond},
		},
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleReport().RenderTable(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"failed (skipped)", "no candidate", "overall: partial", "archive unverified"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderJSON_RoundTripsStatus(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleReport().RenderJSON(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Status != StatusPartial || !decoded.Unverified || len(decoded.Results) != 3 {
		t.Fatalf("decoded = %+v", decoded)
	}
}

func TestRequiredFailures(t *testing.T) {
	r := sampleReport()
	if got := r.RequiredFailures(); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
	r.Results = append(r.Results, ActionResult{
		Action: Action{Kind: RestartService, Target: "n8n", Required: true},
		Err:    "unit failed",
	})
	if got := r.RequiredFailures(); got != 1 {
		t.Fatalf("got %d, want 1", got)
	}
}
