// Package logstore keeps the claim log: a human-readable text file plus a
// JSON-lines ledger that totals are rebuilt from.
package logstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"PicRenUtil/internal/claim"
	"PicRenUtil/internal/device"
	"PicRenUtil/internal/logger"
)

const (
	// Header is written once when the log is created for viewing.
	Header = "# 图片重命名日志"

	// LedgerSuffix is appended to the text log path to name the ledger.
	LedgerSuffix = ".jsonl"

	claimMarker = "] 领取"
)

// Record is one claim as stored in the ledger.
type Record struct {
	ID         string     `json:"id"`
	Time       time.Time  `json:"time"`
	Device     string     `json:"device"`
	Remark     string     `json:"remark,omitempty"`
	Quantity   int        `json:"quantity"`
	FileName   string     `json:"file_name"`
	SourceFile string     `json:"source_file,omitempty"`
	CapturedAt *time.Time `json:"captured_at,omitempty"`
}

func (r Record) DeviceName() string { return r.Device }
func (r Record) Units() int { return r.Quantity }

// Line renders the text log line for r.
func (r Record) Line() string {
	return fmt.Sprintf("[%s] 领取%s个（文件：%s）",
		r.Time.Format(claim.TimestampLayout),
		claim.Label(r.Device, r.Remark, strconv.Itoa(r.Quantity)),
		r.FileName)
}

// Store appends to the text log and ledger. It does no locking; concurrent
// writers from other processes may interleave lines.
type Store struct {
	TextPath   string
	LedgerPath string
	log        *logger.Logger
}

// New returns a Store for the text log at path. The ledger lives beside it.
func New(path string, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Discard()
	}
	return &Store{
		TextPath:   path,
		LedgerPath: path + LedgerSuffix,
		log:        log,
	}
}

// Append writes the claim line to the text log and then the record to the
// ledger. An *claim.IOError with Op "log" means nothing was written; Op
// "ledger" means the text line is on disk but the ledger record is not.
// A ledger created for the first time is seeded with the claims already in
// the text log so totals survive the switch; seeded records get fresh IDs.
func (s *Store) Append(rec Record) error {
	seed, err := s.pendingSeed()
	if err != nil {
		return &claim.IOError{Op: "log", Path: s.TextPath, Err: err}
	}

	if err := appendLines(s.TextPath, rec.Line()); err != nil {
		return &claim.IOError{Op: "log", Path: s.TextPath, Err: err}
	}

	lines := make([]string, 0, len(seed)+1)
	for _, r := range append(seed, rec) {
		b, err := encodeRecord(r)
		if err != nil {
			return &claim.IOError{Op: "ledger", Path: s.LedgerPath, Err: err}
		}
		lines = append(lines, b)
	}
	if err := appendLines(s.LedgerPath, lines...); err != nil {
		return &claim.IOError{Op: "ledger", Path: s.LedgerPath, Err: err}
	}
	if len(seed) > 0 {
		s.log.Info("seeded ledger %s with %d earlier claims", s.LedgerPath, len(seed))
	}
	return nil
}

// AppendSnapshot writes the totals audit line. It is never read back.
func (s *Store) AppendSnapshot(t device.Totals) error {
	if err := appendLines(s.TextPath, t.Snapshot()); err != nil {
		return &claim.IOError{Op: "snapshot", Path: s.TextPath, Err: err}
	}
	return nil
}

// EnsureHeader creates the text log with the header comment if it does not
// exist yet and returns its absolute path.
func (s *Store) EnsureHeader() (string, error) {
	abs, err := filepath.Abs(s.TextPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", err
	}
	f, err := os.OpenFile(abs, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return abs, nil
	}
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.WriteString(Header + "\n"); err != nil {
		return "", err
	}
	return abs, nil
}

// pendingSeed returns the legacy claims to copy into a ledger that does not
// exist yet.
func (s *Store) pendingSeed() ([]Record, error) {
	if _, err := os.Stat(s.LedgerPath); err == nil {
		return nil, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	recs, _, err := s.legacyRecords()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	for i := range recs {
		recs[i].ID = uuid.NewString()
	}
	return recs, err
}

func appendLines(path string, lines ...string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
