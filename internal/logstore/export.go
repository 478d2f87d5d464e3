package logstore

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"PicRenUtil/internal/claim"
)

var csvHeader = []string{"id", "time", "device", "remark", "quantity", "file_name", "source_file", "captured_at"}

// WriteCSV writes records as CSV with a header row.
func WriteCSV(w io.Writer, recs []Record) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range recs {
		captured := ""
		if r.CapturedAt != nil {
			captured = r.CapturedAt.Format(claim.TimestampLayout)
		}
		row := []string{
			r.ID,
			formatTime(r.Time),
			r.Device,
			r.Remark,
			strconv.Itoa(r.Quantity),
			r.FileName,
			r.SourceFile,
			captured,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(claim.TimestampLayout)
}
