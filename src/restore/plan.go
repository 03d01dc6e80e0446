package restore

import (
	"os"
	"path/filepath"
)

// PathMapping pairs a path inside the extracted tree with its destination
// on the host.
type PathMapping struct {
	Source      string // relative to the extracted tree root
	Destination string // absolute host path
}

// DefaultConfigPaths is the allow-list of configuration and data paths a
// backup may restore, in placement order. Anything else in the archive is
// ignored.
var DefaultConfigPaths = []PathMapping{
	{Source: "etc/nginx", Destination: "/etc/nginx"},
	{Source: "etc/netplan", Destination: "/etc/netplan"},
	{Source: "root/.n8n", Destination: "/root/.n8n"},
	{Source: "root/.env", Destination: "/root/.env"},
}

// DefaultRestartOrder restarts dependency services before dependents: the
// database first, then the application, then the reverse proxy.
var DefaultRestartOrder = []string{"postgresql", "n8n", "nginx"}

// ManifestPath is where a backup archive carries its package manifest,
// relative to the tree root.
const ManifestPath = "root/packages.txt"

// Planner turns an extracted tree and a package manifest into an ordered
// action sequence. It is pure: the same inputs always produce the same
// plan, so dry-run output matches what a real run would execute.
type Planner struct {
	ConfigPaths  []PathMapping
	RestartOrder []string
	// PostCommands are discrete host commands (firewall reload,
	// certificate renewal) appended after the service restarts. They are
	// non-required: the host is already serving by then.
	PostCommands []string
}

// NewPlanner returns a planner with the fixed host policy.
func NewPlanner() Planner {
	return Planner{ConfigPaths: DefaultConfigPaths, RestartOrder: DefaultRestartOrder}
}

// Plan builds the action sequence for one restore run.
//
// Packages install first (non-required: one broken package must not sink
// the run), then allow-listed paths found in the tree are placed in
// allow-list order, then services restart in dependency order.
func (p Planner) Plan(treeRoot string, packages []string) []Action {
	var plan []Action
	for _, pkg := range packages {
		plan = append(plan, Action{Kind: InstallPackage, Target: pkg, Required: false})
	}
	for _, m := range p.ConfigPaths {
		src := filepath.Join(treeRoot, m.Source)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		plan = append(plan, Action{Kind: PlaceFile, Source: src, Target: m.Destination, Required: true})
	}
	for _, svc := range p.RestartOrder {
		plan = append(plan, Action{Kind: RestartService, Target: svc, Required: true})
	}
	for _, cmd := range p.PostCommands {
		plan = append(plan, Action{Kind: RunCommand, Target: cmd, Required: false})
	}
	return plan
}

// PlanPackagesOnly builds the install-base-packages-only plan.
func (p Planner) PlanPackagesOnly(packages []string) []Action {
	var plan []Action
	for _, pkg := range packages {
		plan = append(plan, Action{Kind: InstallPackage, Target: pkg, Required: false})
	}
	return plan
}
