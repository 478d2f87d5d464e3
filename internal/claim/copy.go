package claim

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Plan is a validated claim ready to be written.
type Plan struct {
	Selection Selection
	Quantity  int
	Source    string
	Dest      string
	DestName  string
	Label     string
	At        time.Time
	Exists    bool // Dest is already on disk; Commit needs overwrite
}

// Prepare validates sel and works out where the copy goes. Nothing is written.
func Prepare(sel Selection, now time.Time) (Plan, error) {
	qty, err := Validate(sel)
	if err != nil {
		return Plan{}, err
	}

	src, err := filepath.Abs(sel.File)
	if err != nil {
		return Plan{}, &IOError{Op: "resolve", Path: sel.File, Err: err}
	}
	qtext := strconv.Itoa(qty)
	name := FileName(now, sel.Device, sel.Remark, qtext, src)
	dest := filepath.Join(filepath.Dir(src), name)

	p := Plan{
		Selection: sel,
		Quantity:  qty,
		Source:    src,
		Dest:      dest,
		DestName:  name,
		Label:     Label(sel.Device, sel.Remark, qtext),
		At:        now,
	}
	if _, err := os.Stat(dest); err == nil {
		p.Exists = true
	}
	return p, nil
}

// Commit copies the source to the planned destination. If the destination
// exists and overwrite is false, nothing changes and ErrDestinationExists is
// returned. The source is never modified.
func Commit(p Plan, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(p.Dest); err == nil {
			return ErrDestinationExists
		} else if !errors.Is(err, fs.ErrNotExist) {
			return &IOError{Op: "copy", Path: p.Dest, Err: err}
		}
	}
	if err := copyFile(p.Source, p.Dest); err != nil {
		return &IOError{Op: "copy", Path: p.Dest, Err: err}
	}
	return nil
}

// copyFile writes src to a temp file next to dst and renames it into place,
// then carries over mode and timestamps.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return errors.New("source is not a regular file")
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+strings.TrimSuffix(filepath.Base(dst), filepath.Ext(dst))+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	keep := false
	defer func() {
		if !keep {
			os.Remove(tmpName)
		}
	}()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, info.Mode().Perm()); err != nil {
		return err
	}
	mtime := info.ModTime()
	if err := os.Chtimes(tmpName, mtime, mtime); err != nil {
		return err
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return err
	}
	keep = true
	return nil
}
