package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"
)

// DefaultStagingDir is where archives are downloaded and extracted.
const DefaultStagingDir = "/var/tmp/n8n-restore"

// Session owns the staging directory of one orchestration run and the
// host-wide advisory lock that keeps two runs from interleaving.
type Session struct {
	StagingDir string

	lock *flock.Flock
}

// New creates the staging directory and takes the lock. log may be nil.
func New(stagingDir string, log logrus.FieldLogger) (*Session, error) {
	if stagingDir == "" {
		stagingDir = DefaultStagingDir
	}
	if err := os.MkdirAll(stagingDir, 0o700); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	lock := flock.New(filepath.Join(stagingDir, ".restore.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire staging lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another restore run is already active on this host (lock held at %s)", lock.Path())
	}
	if log != nil {
		log.WithField("staging", stagingDir).Debug("staging lock acquired")
	}
	return &Session{StagingDir: stagingDir, lock: lock}, nil
}

// Close releases the staging lock. The staging contents stay on disk for
// inspection; a later run overwrites them.
func (s *Session) Close() error {
	if s.lock == nil {
		return nil
	}
	return s.lock.Unlock()
}
