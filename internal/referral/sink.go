package referral

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FileSink appends referral pairs to a tab-separated map file, one
// "shortCode<TAB>url" line per pair. Repeated short codes are written as
// they come; readers apply last-write-wins.
type FileSink struct {
	path string
	lock *flock.Flock
}

// NewFileSink returns a sink writing to path. Appends are serialized across
// processes with a lock file next to it.
func NewFileSink(path string) *FileSink {
	return &FileSink{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the map file location.
func (s *FileSink) Path() string {
	return s.path
}

// Append writes pairs to the end of the map file, creating it if needed.
func (s *FileSink) Append(pairs []Pair) (err error) {
	if len(pairs) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create referral map directory: %w", err)
	}

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock referral map: %w", err)
	}
	defer func() {
		if unlockErr := s.lock.Unlock(); unlockErr != nil && err == nil {
			err = fmt.Errorf("unlock referral map: %w", unlockErr)
		}
	}()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open referral map: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	w := bufio.NewWriter(file)
	for _, p := range pairs {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", p.ShortCode, p.URL); err != nil {
			return fmt.Errorf("write referral entry: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flush referral map: %w", err)
	}
	return nil
}
