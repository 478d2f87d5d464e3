// Package form holds the state behind the rename window and the actions its
// buttons trigger. It has no UI dependency.
package form

import (
	"crypto/subtle"
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"PicRenUtil/internal/claim"
	"PicRenUtil/internal/device"
	"PicRenUtil/internal/logger"
	"PicRenUtil/internal/logstore"
)

// ErrWrongPassword is returned by ViewLog when the password does not match.
var ErrWrongPassword = errors.New("wrong log password")

// Controller owns the pending selection and the running totals.
type Controller struct {
	store    *logstore.Store
	log      *logger.Logger
	password string

	// overridable in tests
	now         func() time.Time
	newID       func() string
	captureTime func(string) (time.Time, error)

	sel         claim.Selection
	canGenerate bool
	totals      device.Totals
}

// New returns a Controller with an empty selection and quantity "1".
// Call Reload to load totals from the log.
func New(store *logstore.Store, log *logger.Logger, password string) *Controller {
	if log == nil {
		log = logger.Discard()
	}
	return &Controller{
		store:       store,
		log:         log,
		password:    password,
		now:         time.Now,
		newID:       uuid.NewString,
		captureTime: claim.CaptureTime,
		sel:         claim.Selection{Quantity: "1"},
		totals:      device.NewTotals(),
	}
}

// Reload rebuilds totals from the log. On error the previous totals stay.
func (c *Controller) Reload() error {
	t, st, err := c.store.ReloadCounts()
	if err != nil {
		c.log.Error("reload counts from %s: %v", c.store.TextPath, err)
		return err
	}
	c.totals = t
	if st.Skipped > 0 {
		c.log.Warning("reload: %d unreadable %s lines skipped", st.Skipped, st.Source)
	}
	c.log.Info("reload: %d claims from %s", st.Claims, sourceName(st.Source))
	return nil
}

func sourceName(s string) string {
	if s == "" {
		return "empty log"
	}
	return s
}

// SelectDevice picks one of the device buttons. It returns true for the
// catch-all button, which needs SetCustomDevice with the typed name.
func (c *Controller) SelectDevice(name string) bool {
	if name == device.Other {
		return true
	}
	c.sel.Device = strings.TrimSpace(name)
	return false
}

// SetCustomDevice applies the name typed for the catch-all button. An empty
// name (or a cancelled prompt) resets to no selection and returns false.
func (c *Controller) SetCustomDevice(name string) bool {
	name = strings.TrimSpace(name)
	c.sel.Device = name
	return name != ""
}

// SelectFile records the chosen image. An empty path means the dialog was
// cancelled: the file is cleared and generating is disabled.
func (c *Controller) SelectFile(path string) {
	if strings.TrimSpace(path) == "" {
		c.sel.File = ""
		c.canGenerate = false
		return
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	c.sel.File = path
	c.canGenerate = true
}

func (c *Controller) SetRemark(s string) { c.sel.Remark = s }
func (c *Controller) SetQuantity(s string) { c.sel.Quantity = s }

// Selection returns a copy of the pending selection.
func (c *Controller) Selection() claim.Selection { return c.sel }

// CanGenerate reports whether the generate button should be enabled.
func (c *Controller) CanGenerate() bool { return c.canGenerate }

// Totals returns a copy of the running totals.
func (c *Controller) Totals() device.Totals {
	t := make(device.Totals, len(c.totals))
	for k, v := range c.totals {
		t[k] = v
	}
	return t
}

// Summary is the text for the totals label.
func (c *Controller) Summary() string { return c.totals.Summary() }

// Prepare validates the current selection and plans the copy. A
// *claim.ValidationError means nothing was touched.
func (c *Controller) Prepare() (claim.Plan, error) {
	return claim.Prepare(c.sel, c.now())
}

// Outcome reports which side effects of Generate happened.
type Outcome struct {
	Plan         claim.Plan
	Record       logstore.Record
	Copied       bool
	TextLogged   bool // claim line is in the text log
	LedgerLogged bool // record is in the ledger
	Snapshotted  bool // totals line written after the claim
}

// Generate copies the file, appends the claim and snapshot lines and updates
// the totals. Nothing is rolled back: on error Outcome tells how far it got.
func (c *Controller) Generate(p claim.Plan, overwrite bool) (Outcome, error) {
	out := Outcome{Plan: p}

	if err := claim.Commit(p, overwrite); err != nil {
		if errors.Is(err, claim.ErrDestinationExists) {
			c.log.Info("overwrite of %s declined", p.DestName)
		} else {
			c.log.Error("copy %s -> %s: %v", p.Source, p.Dest, err)
		}
		return out, err
	}
	out.Copied = true

	rec := logstore.Record{
		ID:         c.newID(),
		Time:       p.At,
		Device:     strings.TrimSpace(p.Selection.Device),
		Remark:     strings.TrimSpace(p.Selection.Remark),
		Quantity:   p.Quantity,
		FileName:   p.DestName,
		SourceFile: p.Source,
	}
	if ts, err := c.captureTime(p.Source); err == nil && !ts.IsZero() {
		rec.CapturedAt = &ts
	}
	out.Record = rec

	if err := c.store.Append(rec); err != nil {
		c.log.Error("append claim for %s: %v", p.DestName, err)
		var ioErr *claim.IOError
		if errors.As(err, &ioErr) && ioErr.Op == "ledger" {
			// the text line alone still counts on the next reload
			out.TextLogged = true
			c.totals.Add(rec.Device, rec.Quantity)
		}
		return out, err
	}
	out.TextLogged = true
	out.LedgerLogged = true
	c.totals.Add(rec.Device, rec.Quantity)

	if err := c.store.AppendSnapshot(c.totals); err != nil {
		c.log.Error("append snapshot: %v", err)
		return out, err
	}
	out.Snapshotted = true

	c.log.Info("claimed %s x%d -> %s", rec.Device, rec.Quantity, p.DestName)
	return out, nil
}

// GateEnabled reports whether ViewLog needs a password.
func (c *Controller) GateEnabled() bool { return c.password != "" }

// ViewLog checks the password and makes sure the log exists. It returns the
// absolute log path to hand to the system viewer. This is a convenience gate,
// not access control.
func (c *Controller) ViewLog(password string) (string, error) {
	if c.GateEnabled() && subtle.ConstantTimeCompare([]byte(password), []byte(c.password)) != 1 {
		c.log.Warning("log access refused: wrong password")
		return "", ErrWrongPassword
	}
	path, err := c.store.EnsureHeader()
	if err != nil {
		c.log.Error("prepare log %s: %v", c.store.TextPath, err)
		return "", err
	}
	return path, nil
}

// ExportCSV writes every recorded claim as CSV. Logs without a ledger are
// read through the text parser.
func (c *Controller) ExportCSV(w io.Writer) (int, error) {
	recs, _, err := c.store.Records()
	if errors.Is(err, fs.ErrNotExist) {
		recs, err = c.store.LegacyRecords()
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return 0, err
	}
	if err := logstore.WriteCSV(w, recs); err != nil {
		return 0, err
	}
	return len(recs), nil
}
