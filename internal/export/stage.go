package export

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const stageBufSize = 64 * 1024

type stagedFile struct {
	tmp  string
	dest string
}

// writeStaged renders every named file into a temp file in dir and renames
// them into place only after all of them rendered. On failure every temp
// file is removed and the destinations are left as they were.
func writeStaged(ctx context.Context, dir string, names []string, render func(i int, w io.Writer) error) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	staged := make([]stagedFile, 0, len(names))
	cleanup := func() {
		for _, s := range staged {
			_ = os.Remove(s.tmp)
		}
	}

	for i, name := range names {
		if err := ctx.Err(); err != nil {
			cleanup()
			return nil, err
		}
		tmp, err := os.CreateTemp(dir, ".tmp-*-"+name)
		if err != nil {
			cleanup()
			return nil, err
		}
		staged = append(staged, stagedFile{tmp: tmp.Name(), dest: filepath.Join(dir, name)})
		_ = os.Chmod(tmp.Name(), 0o644)

		bw := bufio.NewWriterSize(tmp, stageBufSize)
		err = render(i, bw)
		if err == nil {
			err = bw.Flush()
		}
		if err == nil {
			err = tmp.Sync()
		}
		if cerr := tmp.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("render %s: %w", name, err)
		}
	}

	if err := commit(dir, staged); err != nil {
		return nil, err
	}
	paths := make([]string, len(staged))
	for i, st := range staged {
		paths[i] = st.dest
	}
	return paths, nil
}

// commit renames every staged file into place. An existing destination is
// moved to a backup first; if any step fails the files already placed are
// removed, the backups restored and the remaining temp files deleted.
func commit(dir string, staged []stagedFile) error {
	backups := make([]string, len(staged))
	done := 0

	rollback := func(cause error) error {
		errs := []error{cause}
		for i := done - 1; i >= 0; i-- {
			if err := os.Remove(staged[i].dest); err != nil && !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, err)
			}
		}
		for i, bak := range backups {
			if bak == "" {
				continue
			}
			if err := os.Rename(bak, staged[i].dest); err != nil {
				errs = append(errs, err)
			}
		}
		for _, st := range staged[done:] {
			if err := os.Remove(st.tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}

	for i, st := range staged {
		if _, err := os.Lstat(st.dest); err == nil {
			bak, err := backupName(dir, filepath.Base(st.dest))
			if err != nil {
				return rollback(err)
			}
			if err := os.Rename(st.dest, bak); err != nil {
				_ = os.Remove(bak)
				return rollback(fmt.Errorf("back up %s: %w", st.dest, err))
			}
			backups[i] = bak
		}
		if err := os.Rename(st.tmp, st.dest); err != nil {
			return rollback(err)
		}
		done++
	}

	for _, bak := range backups {
		if bak != "" {
			_ = os.Remove(bak)
		}
	}
	return nil
}

// backupName reserves a unique name next to the destination.
func backupName(dir, name string) (string, error) {
	f, err := os.CreateTemp(dir, ".bak-*-"+name)
	if err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return f.Name(), nil
}
