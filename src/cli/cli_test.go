package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"n8n-restore/src/backend"
	"n8n-restore/src/credential"
	"n8n-restore/src/restore"
	"n8n-restore/src/version"
)

func TestParseMenuChoice(t *testing.T) {
	cases := map[string]menuChoice{
		"1":   choiceRestoreMinimal,
		"2":   choiceRestoreFull,
		"3":   choiceListBackups,
		"4":   choiceCredentials,
		"5":   choicePackages,
		"6\n": choiceExit,
		" 3 ": choiceListBackups,
	}
	for in, want := range cases {
		got, err := parseMenuChoice(in)
		if err != nil || got != want {
			t.Errorf("parseMenuChoice(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	for _, in := range []string{"", "0", "7", "x"} {
		if _, err := parseMenuChoice(in); err == nil {
			t.Errorf("parseMenuChoice(%q) accepted", in)
		}
	}
}

func TestMenuCmd_ExitImmediately(t *testing.T) {
	var stdout, stderr bytes.Buffer
	root := NewRootCmd(strings.NewReader("6\n"), &stdout, &stderr)
	root.SetArgs([]string{"menu"})
	if err := root.Execute(); err != nil {
		t.Fatalf("menu exit: %v", err)
	}
	if !strings.Contains(stdout.String(), "1) Restore configuration and services (minimal)") {
		t.Fatalf("menu not rendered:\n%s", stdout.String())
	}
}

func TestMenuCmd_InvalidSelectionKeepsRunning(t *testing.T) {
	var stdout, stderr bytes.Buffer
	root := NewRootCmd(strings.NewReader("9\n6\n"), &stdout, &stderr)
	root.SetArgs([]string{"menu"})
	if err := root.Execute(); err != nil {
		t.Fatalf("menu: %v", err)
	}
	if !strings.Contains(stderr.String(), "invalid selection") {
		t.Fatalf("missing selection error:\n%s", stderr.String())
	}
}

func TestVersionCmd(t *testing.T) {
	var stdout, stderr bytes.Buffer
	root := NewRootCmd(strings.NewReader(""), &stdout, &stderr)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(stdout.String()) != version.Version {
		t.Fatalf("version output = %q", stdout.String())
	}
}

func TestRootCmd_ContextReachesOperations(t *testing.T) {
	t.Setenv(credential.EnvGitHubToken, "tok")
	t.Setenv(EnvGitHubRepo, "acme/server-backups")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	root := NewRootCmd(strings.NewReader(""), io.Discard, io.Discard)
	root.SetArgs([]string{"list", "--backend", "github", "--yes"})
	err := root.ExecuteContext(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestResolveBackendKind_EnvFallback(t *testing.T) {
	t.Setenv(EnvBackend, "github")
	kind, err := resolveBackendKind("")
	if err != nil || kind != backend.KindGitHub {
		t.Fatalf("kind = %v, %v", kind, err)
	}
	kind, err = resolveBackendKind("drive")
	if err != nil || kind != backend.KindDrive {
		t.Fatalf("flag should win: %v, %v", kind, err)
	}
	t.Setenv(EnvBackend, "")
	if _, err := resolveBackendKind(""); err == nil {
		t.Fatal("expected error when nothing selects a backend")
	}
}

func TestRenderPlan(t *testing.T) {
	var out bytes.Buffer
	renderPlan(&out, []restore.Action{
		{Kind: restore.InstallPackage, Target: "nginx"},
		{Kind: restore.RestartService, Target: "nginx", Required: true},
	})
	s := out.String()
	if !strings.Contains(s, "Restoration plan (2 actions):") {
		t.Fatalf("missing header:\n%s", s)
	}
	if !strings.Contains(s, "install nginx") || !strings.Contains(s, "failure tolerated") {
		t.Fatalf("plan lines missing:\n%s", s)
	}
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	ok, err := confirm(globalOptions{}, strings.NewReader("y\n"), &out, "Proceed?")
	if err != nil || !ok {
		t.Fatalf("y answer: %v %v", ok, err)
	}
	ok, err = confirm(globalOptions{}, strings.NewReader("\n"), &out, "Proceed?")
	if err != nil || ok {
		t.Fatalf("default must decline: %v %v", ok, err)
	}
	ok, err = confirm(globalOptions{Yes: true}, strings.NewReader(""), &out, "Proceed?")
	if err != nil || !ok {
		t.Fatalf("--yes must accept: %v %v", ok, err)
	}
	ok, err = confirm(globalOptions{DryRun: true, Yes: true}, strings.NewReader(""), &out, "Proceed?")
	if err != nil || ok {
		t.Fatalf("--dry-run must decline: %v %v", ok, err)
	}
}
