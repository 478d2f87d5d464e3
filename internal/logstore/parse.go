package logstore

import (
	"strconv"
	"strings"
	"time"

	"PicRenUtil/internal/claim"
	"PicRenUtil/internal/device"
)

// ParseClaimLine recovers a claim from a text log line written before the
// ledger existed. It is best effort: remarks containing '_' or a device name
// containing '_' can be split wrongly.
func ParseClaimLine(line string) (Record, bool) {
	line = strings.TrimRight(line, "\r\n")
	if !strings.Contains(line, claimMarker) {
		return Record{}, false
	}

	var rec Record
	if strings.HasPrefix(line, "[") {
		if end := strings.Index(line, "]"); end > 0 {
			if ts, err := time.ParseInLocation(claim.TimestampLayout, line[1:end], time.Local); err == nil {
				rec.Time = ts
			}
		}
	}

	_, rest, _ := strings.Cut(line, "领取")
	body, tail, found := strings.Cut(rest, "个（文件：")
	if found {
		rec.FileName = strings.TrimSuffix(strings.TrimSpace(tail), "）")
	} else if body, _, found = strings.Cut(rest, "个"); !found {
		return Record{}, false
	}

	head, qtyStr, found := cutLast(body, "_")
	if !found {
		return Record{}, false
	}
	qty, err := strconv.Atoi(qtyStr)
	if err != nil || qty <= 0 || !isDigits(qtyStr) {
		return Record{}, false
	}

	dev, remark := splitDevice(head)
	if dev == "" {
		return Record{}, false
	}
	rec.Device = dev
	rec.Remark = remark
	rec.Quantity = qty
	return rec, true
}

// splitDevice separates device and remark in "device[_remark]".
func splitDevice(head string) (string, string) {
	if !strings.Contains(head, "_") || device.IsFixed(head) {
		return head, ""
	}
	for _, d := range device.Fixed {
		if strings.HasPrefix(head, d+"_") {
			return d, head[len(d)+1:]
		}
	}
	dev, remark, _ := strings.Cut(head, "_")
	return dev, remark
}

func cutLast(s, sep string) (string, string, bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
