package claim

import "fmt"

// Money is an amount in pence. Amounts travel as integers so that no float
// rounding reaches a narrative parameter.
type Money int64

// Pounds returns the whole-pound part of m.
func (m Money) Pounds() int64 { return int64(m) / 100 }

// Pence returns the sub-pound remainder of m.
func (m Money) Pence() int64 {
	p := int64(m) % 100
	if p < 0 {
		return -p
	}
	return p
}

// String renders m as a plain decimal ("30.00"); currency symbols and
// grouping belong to the renderer.
func (m Money) String() string {
	sign := ""
	pounds := m.Pounds()
	if m < 0 {
		sign = "-"
		pounds = -pounds
	}
	return fmt.Sprintf("%s%d.%02d", sign, pounds, m.Pence())
}
