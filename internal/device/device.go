// Package device holds the fixed device catalog and the per-device totals.
package device

import (
	"fmt"
	"sort"
	"strings"
)

// Other is the catch-all button; choosing it asks for a free-text name.
const Other = "其他"

// Fixed lists the six tracked categories in display order.
var Fixed = []string{"交换机", "电池", "水晶头", "面板", "模块", "热熔设备"}

// Buttons is the button column: the fixed categories followed by Other.
func Buttons() []string {
	return append(append([]string(nil), Fixed...), Other)
}

// IsFixed reports whether name is one of the six fixed categories.
func IsFixed(name string) bool {
	for _, d := range Fixed {
		if d == name {
			return true
		}
	}
	return false
}

// Totals maps a device name to the sum of claimed quantities.
type Totals map[string]int

// NewTotals returns totals with every fixed category present at zero.
func NewTotals() Totals {
	t := make(Totals, len(Fixed))
	for _, d := range Fixed {
		t[d] = 0
	}
	return t
}

// Add records qty more units for name. Empty names and non-positive
// quantities are ignored.
func (t Totals) Add(name string, qty int) {
	name = strings.TrimSpace(name)
	if name == "" || qty <= 0 {
		return
	}
	t[name] += qty
}

// Claim is anything that contributes a device quantity.
type Claim interface {
	DeviceName() string
	Units() int
}

// Fold sums every claim into fresh totals. Order does not matter.
func Fold[C Claim](claims []C) Totals {
	t := NewTotals()
	for _, c := range claims {
		t.Add(c.DeviceName(), c.Units())
	}
	return t
}

// Names returns the fixed categories in catalog order followed by custom
// names with a non-zero total, sorted.
func (t Totals) Names() []string {
	names := append([]string(nil), Fixed...)
	var custom []string
	for name, n := range t {
		if n > 0 && !IsFixed(name) {
			custom = append(custom, name)
		}
	}
	sort.Strings(custom)
	return append(names, custom...)
}

// Snapshot renders the audit line written after each claim.
func (t Totals) Snapshot() string {
	parts := make([]string, 0, len(t))
	for _, name := range t.Names() {
		parts = append(parts, fmt.Sprintf("%s:%d", name, t[name]))
	}
	return "[设备统计]: " + strings.Join(parts, ", ")
}

// Summary renders the on-screen totals block.
func (t Totals) Summary() string {
	var b strings.Builder
	b.WriteString("累计总数：")
	for _, name := range t.Names() {
		b.WriteString(fmt.Sprintf("\n%s：%d 个", name, t[name]))
	}
	return b.String()
}
