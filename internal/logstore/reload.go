package logstore

import (
	"bufio"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"strings"

	"PicRenUtil/internal/claim"
	"PicRenUtil/internal/device"
)

const maxLine = 1 << 20

// Stats describes one reload.
type Stats struct {
	Source   string // "ledger", "text" or "" when nothing exists yet
	Claims   int
	Skipped  int
	TextOnly int // text log claims folded in without a ledger record
}

// ReloadCounts rebuilds device totals. Ledger records are folded together
// with any claim lines in the text log that have no ledger record, for
// example lines appended by another writer. A text log without a ledger is
// parsed line by line. Unreadable lines are skipped.
func (s *Store) ReloadCounts() (device.Totals, Stats, error) {
	recs, skipped, err := s.Records()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return device.NewTotals(), Stats{}, err
	}
	haveLedger := err == nil

	text, textSkipped, err := s.legacyRecords()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return device.NewTotals(), Stats{}, err
	}

	if !haveLedger {
		if err != nil {
			return device.NewTotals(), Stats{}, nil
		}
		return device.Fold(text), Stats{Source: "text", Claims: len(text), Skipped: textSkipped}, nil
	}

	extra := unmatched(text, recs)
	all := append(recs, extra...)
	return device.Fold(all), Stats{
		Source:   "ledger",
		Claims:   len(all),
		Skipped:  skipped + textSkipped,
		TextOnly: len(extra),
	}, nil
}

// claimKey identifies a claim in both logs: timestamp to the second plus the
// generated file name.
func claimKey(r Record) string {
	return r.Time.Format(claim.TimestampLayout) + "|" + r.FileName
}

// unmatched returns the text claims with no ledger record under the same key.
// Keys are counted so repeated claims in the same second are not collapsed.
func unmatched(text, ledger []Record) []Record {
	seen := make(map[string]int, len(ledger))
	for _, r := range ledger {
		seen[claimKey(r)]++
	}
	var out []Record
	for _, r := range text {
		k := claimKey(r)
		if seen[k] > 0 {
			seen[k]--
			continue
		}
		out = append(out, r)
	}
	return out
}

// Records reads every ledger record. Malformed lines are counted and skipped.
func (s *Store) Records() ([]Record, int, error) {
	var recs []Record
	skipped := 0
	err := scanLines(s.LedgerPath, func(line string) {
		if strings.TrimSpace(line) == "" {
			return
		}
		var r Record
		if err := json.Unmarshal([]byte(line), &r); err != nil || r.Device == "" || r.Quantity <= 0 {
			skipped++
			s.log.Warning("skipping ledger line: %q", truncate(line, 80))
			return
		}
		recs = append(recs, r)
	})
	return recs, skipped, err
}

// LegacyRecords parses claims out of the text log. Parsed records carry no ID.
func (s *Store) LegacyRecords() ([]Record, error) {
	recs, _, err := s.legacyRecords()
	return recs, err
}

func (s *Store) legacyRecords() ([]Record, int, error) {
	var recs []Record
	skipped := 0
	err := scanLines(s.TextPath, func(line string) {
		if !strings.Contains(line, claimMarker) {
			return
		}
		r, ok := ParseClaimLine(line)
		if !ok {
			skipped++
			return
		}
		recs = append(recs, r)
	})
	return recs, skipped, err
}

func encodeRecord(r Record) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func scanLines(path string, fn func(string)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	for sc.Scan() {
		fn(sc.Text())
	}
	return sc.Err()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
