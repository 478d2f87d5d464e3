package claim

import (
	"path/filepath"
	"strings"
	"time"
)

const (
	// DateLayout prefixes generated file names.
	DateLayout = "20060102"
	// TimestampLayout stamps log lines.
	TimestampLayout = "2006-01-02 15:04:05"
)

// Label is the device[_remark]_quantity part shared by the file name and the
// log line.
func Label(device, remark, quantity string) string {
	parts := []string{strings.TrimSpace(device)}
	if r := strings.TrimSpace(remark); r != "" {
		parts = append(parts, r)
	}
	parts = append(parts, strings.TrimSpace(quantity))
	return strings.Join(parts, "_")
}

// FileName builds YYYYMMDD_device[_remark]_quantity.ext for source.
func FileName(date time.Time, device, remark, quantity, source string) string {
	ext := strings.ToLower(filepath.Ext(source))
	return date.Format(DateLayout) + "_" + Label(device, remark, quantity) + ext
}
