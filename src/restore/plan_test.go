package restore

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestPlan_EndToEndScenario(t *testing.T) {
	tree := t.TempDir()
	writeTreeFile(t, tree, "etc/nginx/nginx.conf")
	writeTreeFile(t, tree, "root/.n8n/config")

	plan := NewPlanner().Plan(tree, []string{"nginx", "postgresql"})

	want := []Action{
		{Kind: InstallPackage, Target: "nginx"},
		{Kind: InstallPackage, Target: "postgresql"},
		{Kind: PlaceFile, Source: filepath.Join(tree, "etc/nginx"), Target: "/etc/nginx", Required: true},
		{Kind: PlaceFile, Source: filepath.Join(tree, "root/.n8n"), Target: "/root/.n8n", Required: true},
		{Kind: RestartService, Target: "postgresql", Required: true},
		{Kind: RestartService, Target: "n8n", Required: true},
		{Kind: RestartService, Target: "nginx", Required: true},
	}
	if !reflect.DeepEqual(plan, want) {
		t.Fatalf("plan mismatch:\ngot  %#v\nwant %#v", plan, want)
	}
}

func TestPlan_Deterministic(t *testing.T) {
	tree := t.TempDir()
	writeTreeFile(t, tree, "etc/nginx/nginx.conf")
	writeTreeFile(t, tree, "etc/netplan/01-net.yaml")
	writeTreeFile(t, tree, "root/.env")

	p := NewPlanner()
	pkgs := []string{"curl", "postgresql", "nginx"}
	first := p.Plan(tree, pkgs)
	for i := 0; i < 5; i++ {
		if got := p.Plan(tree, pkgs); !reflect.DeepEqual(got, first) {
			t.Fatalf("plan changed on call %d:\ngot  %#v\nwant %#v", i, got, first)
		}
	}
}

func TestPlan_PackageInstallsAreNotRequired(t *testing.T) {
	plan := NewPlanner().Plan(t.TempDir(), []string{"nginx"})
	for _, a := range plan {
		switch a.Kind {
		case InstallPackage:
			if a.Required {
				t.Errorf("install %s marked required", a.Target)
			}
		case PlaceFile, RestartService:
			if !a.Required {
				t.Errorf("%s not marked required", a)
			}
		}
	}
}

func TestPlan_IgnoresPathsOutsideAllowList(t *testing.T) {
	tree := t.TempDir()
	writeTreeFile(t, tree, "etc/passwd")
	writeTreeFile(t, tree, "usr/local/bin/evil")

	plan := NewPlanner().Plan(tree, nil)
	for _, a := range plan {
		if a.Kind == PlaceFile {
			t.Fatalf("unexpected place action for non-allow-listed path: %s", a)
		}
	}
}

func TestPlan_PostCommandsRunLastAndAreNotRequired(t *testing.T) {
	p := NewPlanner()
	p.PostCommands = []string{"ufw reload", "certbot renew -q"}
	plan := p.Plan(t.TempDir(), []string{"nginx"})

	last := plan[len(plan)-1]
	if last.Kind != RunCommand || last.Target != "certbot renew -q" || last.Required {
		t.Fatalf("unexpected final action: %#v", last)
	}
	if plan[len(plan)-2].Target != "ufw reload" {
		t.Fatalf("post commands out of order: %#v", plan[len(plan)-2])
	}
}

func TestPlan_RestartOrderIsDatabaseFirst(t *testing.T) {
	plan := NewPlanner().Plan(t.TempDir(), nil)
	var restarts []string
	for _, a := range plan {
		if a.Kind == RestartService {
			restarts = append(restarts, a.Target)
		}
	}
	if strings.Join(restarts, ",") != "postgresql,n8n,nginx" {
		t.Fatalf("restart order = %v", restarts)
	}
}

func writeTreeFile(t *testing.T, root, rel string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir -p %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("x\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
