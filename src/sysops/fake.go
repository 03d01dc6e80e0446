package sysops

import (
	"context"
	"fmt"
)

// FakeHost is an in-memory implementation for unit tests. It records every
// call in order and fails the targets listed in FailTargets.
type FakeHost struct {
	Calls       []string
	FailTargets map[string]error

	Installed []string
	Restarted []string
	Placed    map[string]string // dst -> src
}

func NewFakeHost() *FakeHost {
	return &FakeHost{
		FailTargets: map[string]error{},
		Placed:      map[string]string{},
	}
}

// Host returns the fake wired into the collaborator bundle.
func (f *FakeHost) Host() Host {
	return Host{Packages: f, Services: f, Files: f, Runner: f}
}

func (f *FakeHost) Install(ctx context.Context, name string) error {
	f.Calls = append(f.Calls, "install "+name)
	if err := f.FailTargets[name]; err != nil {
		return err
	}
	f.Installed = append(f.Installed, name)
	return nil
}

func (f *FakeHost) Restart(ctx context.Context, name string) error {
	f.Calls = append(f.Calls, "restart "+name)
	if err := f.FailTargets[name]; err != nil {
		return err
	}
	f.Restarted = append(f.Restarted, name)
	return nil
}

func (f *FakeHost) Place(ctx context.Context, src, dst string) error {
	f.Calls = append(f.Calls, fmt.Sprintf("place %s -> %s", src, dst))
	if err := f.FailTargets[dst]; err != nil {
		return err
	}
	f.Placed[dst] = src
	return nil
}

func (f *FakeHost) Run(ctx context.Context, command string) error {
	f.Calls = append(f.Calls, "run "+command)
	if err := f.FailTargets[command]; err != nil {
		return err
	}
	return nil
}
