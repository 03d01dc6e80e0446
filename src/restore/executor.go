package restore

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"n8n-restore/src/sysops"
)

// Executor runs a plan strictly in sequence. No parallelism: service
// restarts have ordering dependencies and the package manager holds a
// host-global lock.
type Executor struct {
	Host sysops.Host
	Log  logrus.FieldLogger
}

// Execute runs every action in order and returns the report.
//
// A failed required action stops the run; its result is the last one in
// the report. Failed non-required actions are recorded and the run
// continues. Cancellation is honored between actions, never mid-action,
// so a user abort still yields a valid partial report. Execute never
// retries; a re-run of the whole plan is the retry mechanism and the
// actions are idempotent.
func (e *Executor) Execute(ctx context.Context, plan []Action) *Report {
	report := &Report{Status: StatusSuccess}
	for _, action := range plan {
		if ctx.Err() != nil {
			e.logf(action).Warn("run canceled before action")
			report.Status = StatusAborted
			return report
		}
		start := time.Now()
		err := e.run(ctx, action)
		res := ActionResult{Action: action, Duration: time.Since(start)}
		if err != nil {
			res.Err = err.Error()
		}
		report.Results = append(report.Results, res)

		if err == nil {
			e.logf(action).Debug("action ok")
			continue
		}
		if action.Required {
			e.logf(action).WithError(err).Error("required action failed, aborting remaining plan")
			report.Status = StatusAborted
			return report
		}
		e.logf(action).WithError(err).Warn("non-required action failed, continuing")
		report.Status = StatusPartial
	}
	return report
}

func (e *Executor) run(ctx context.Context, a Action) error {
	switch a.Kind {
	case InstallPackage:
		return e.Host.Packages.Install(ctx, a.Target)
	case PlaceFile:
		return e.Host.Files.Place(ctx, a.Source, a.Target)
	case RestartService:
		return e.Host.Services.Restart(ctx, a.Target)
	case RunCommand:
		return e.Host.Runner.Run(ctx, a.Target)
	}
	return fmt.Errorf("unknown action kind %q", a.Kind)
}

func (e *Executor) logf(a Action) logrus.FieldLogger {
	log := e.Log
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return log.WithFields(logrus.Fields{"action": a.Kind, "target": a.Target})
}
