package restore

import "fmt"

// ActionKind enumerates the things a restoration plan can do.
type ActionKind string

const (
	InstallPackage ActionKind = "install-package"
	PlaceFile      ActionKind = "place-file"
	RestartService ActionKind = "restart-service"
	RunCommand     ActionKind = "run-command"
)

// Action is one step of a restoration plan. The plan is fixed before
// execution begins; nothing inserts actions mid-run.
type Action struct {
	Kind   ActionKind `json:"kind"`
	Target string     `json:"target"`
	// Source is the payload reference: the staged path for PlaceFile,
	// empty otherwise.
	Source string `json:"source,omitempty"`
	// Required actions abort the remaining plan on failure; the rest
	// are recorded and skipped.
	Required bool `json:"required"`
}

func (a Action) String() string {
	switch a.Kind {
	case PlaceFile:
		return fmt.Sprintf("place %s -> %s", a.Source, a.Target)
	case InstallPackage:
		return "install " + a.Target
	case RestartService:
		return "restart " + a.Target
	case RunCommand:
		return "run " + a.Target
	}
	return string(a.Kind) + " " + a.Target
}
