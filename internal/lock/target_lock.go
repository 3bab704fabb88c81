// Package lock guards a target project path against concurrent provisioning
// runs. Acquisition is an O_EXCL create of a lock file under the data
// directory; stale locks from dead processes are reclaimed.
package lock

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gosimple/slug"

	"github.com/djboot/djboot/internal/errors"
)

// Info contains the metadata stored in a lock file.
type Info struct {
	PID       int       `json:"pid"`
	CreatedAt time.Time `json:"created_at"`
	Target    string    `json:"target,omitempty"`
}

// TargetLock provides per-target locking for provisioning runs.
type TargetLock struct {
	LocksDir   string
	StaleAfter time.Duration
	Now        func() time.Time
	IsPIDAlive func(pid int) bool
}

// NewTargetLock returns a TargetLock with defaults. StaleAfter is generous
// because a run spends most of its time inside pip.
func NewTargetLock(locksDir string) TargetLock {
	return TargetLock{
		LocksDir:   locksDir,
		StaleAfter: 2 * time.Hour,
		Now:        time.Now,
		IsPIDAlive: isPIDAlive,
	}
}

// lockPath maps a target path to its lock file. Slugging keeps the file name
// filesystem-safe regardless of what the target path contains.
func (l TargetLock) lockPath(target string) string {
	return filepath.Join(l.LocksDir, slug.Make(filepath.Clean(target))+".lock")
}

func lockedErr(target string, info *Info, path string) error {
	msg := fmt.Sprintf("another run is already provisioning %s", target)
	details := map[string]string{"lock_file": path}
	if info != nil {
		msg = fmt.Sprintf("another run (pid %d, since %s) is already provisioning %s",
			info.PID, info.CreatedAt.Format(time.RFC3339), target)
		details["pid"] = fmt.Sprintf("%d", info.PID)
	}
	return errors.NewWithDetails(errors.ELocked, msg, details)
}

// Lock acquires the lock for target and returns an unlock function.
// If a non-stale lock is held elsewhere, returns E_LOCKED.
func (l TargetLock) Lock(target string) (unlock func() error, err error) {
	lockPath := l.lockPath(target)
	maxRetries := 3

	for attempt := 0; attempt < maxRetries; attempt++ {
		if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
			return nil, errors.Wrap(errors.EInternal, "failed to create lock directory", err)
		}

		// O_EXCL makes acquisition atomic.
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err == nil {
			info := Info{
				PID:       os.Getpid(),
				CreatedAt: l.Now(),
				Target:    target,
			}
			data, _ := json.Marshal(info)
			if _, writeErr := f.Write(data); writeErr != nil {
				f.Close()
				os.Remove(lockPath)
				return nil, errors.Wrap(errors.EInternal, "failed to write lock file", writeErr)
			}
			if closeErr := f.Close(); closeErr != nil {
				os.Remove(lockPath)
				return nil, errors.Wrap(errors.EInternal, "failed to close lock file", closeErr)
			}

			return func() error {
				err := os.Remove(lockPath)
				if err != nil && !os.IsNotExist(err) {
					return err
				}
				return nil
			}, nil
		}

		if !os.IsExist(err) {
			return nil, errors.Wrap(errors.EInternal, "failed to create lock file", err)
		}

		info, readErr := l.readInfo(lockPath)
		if readErr != nil {
			// Unreadable lock file: fall back to mtime for staleness.
			stat, statErr := os.Stat(lockPath)
			if statErr != nil {
				return nil, lockedErr(target, nil, lockPath)
			}
			if l.Now().Sub(stat.ModTime()) <= l.StaleAfter {
				return nil, lockedErr(target, nil, lockPath)
			}
			if removeErr := os.Remove(lockPath); removeErr != nil && !os.IsNotExist(removeErr) {
				return nil, lockedErr(target, nil, lockPath)
			}
			continue
		}

		if l.isStale(info) {
			if removeErr := os.Remove(lockPath); removeErr != nil && !os.IsNotExist(removeErr) {
				return nil, lockedErr(target, info, lockPath)
			}
			continue
		}

		return nil, lockedErr(target, info, lockPath)
	}

	return nil, lockedErr(target, nil, lockPath)
}

func (l TargetLock) readInfo(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// isStale returns true if the lock holder is dead or the lock is too old.
func (l TargetLock) isStale(info *Info) bool {
	if !l.IsPIDAlive(info.PID) {
		return true
	}
	if l.Now().Sub(info.CreatedAt) > l.StaleAfter {
		return true
	}
	return false
}

// isPIDAlive checks process liveness with the signal-0 trick.
func isPIDAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	// EPERM: exists but owned by someone else; still alive.
	if stderrors.Is(err, syscall.EPERM) {
		return true
	}
	return false
}
