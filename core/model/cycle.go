package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Cycle identifies a survey period, for example "2023-2025" or "1993/1994".
// Cycles are ordered chronologically by start year, then end year. Tokens that
// do not start with a digit, such as "C1", carry no years and are opaque.
type Cycle string

// Opaque reports whether c is a label without years.
func (c Cycle) Opaque() bool {
	s := strings.TrimSpace(string(c))
	return s != "" && !isDigit(s[0])
}

// Validate rejects empty tokens and year-based tokens that do not parse.
func (c Cycle) Validate() error {
	if strings.TrimSpace(string(c)) == "" {
		return fmt.Errorf("empty cycle")
	}
	if c.Opaque() {
		return nil
	}
	_, _, err := c.Years()
	return err
}

// Years parses the start and end year of the cycle. A cycle with a single year
// ends the same year it starts. Two digit end years ("2007-08") inherit the
// century of the start year.
func (c Cycle) Years() (start, end int, err error) {
	s := strings.TrimSpace(string(c))
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == '/' })
	if len(parts) == 0 || len(parts) > 2 {
		return 0, 0, fmt.Errorf("invalid cycle %q", s)
	}
	start, err = strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || start < 1000 {
		return 0, 0, fmt.Errorf("invalid cycle start year %q", s)
	}
	end = start
	if len(parts) == 2 {
		p := strings.TrimSpace(parts[1])
		end, err = strconv.Atoi(p)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid cycle end year %q", s)
		}
		if len(p) == 2 {
			end += start / 100 * 100
			if end < start {
				end += 100
			}
		}
	}
	if end < start {
		return 0, 0, fmt.Errorf("cycle %q ends before it starts", s)
	}
	return start, end, nil
}

// StartYear returns the first year of the cycle or -1 when it cannot be parsed.
func (c Cycle) StartYear() int {
	s, _, err := c.Years()
	if err != nil {
		return -1
	}
	return s
}

// CompareCycles orders cycles chronologically. Cycles without years sort
// before dated ones and compare among themselves in natural order, so "C2"
// precedes "C10". Remaining ties fall back to the token text so the order is
// total.
func CompareCycles(a, b Cycle) int {
	as, ae, aerr := a.Years()
	bs, be, berr := b.Years()
	switch {
	case aerr != nil && berr == nil:
		return -1
	case aerr == nil && berr != nil:
		return 1
	case aerr != nil && berr != nil:
		if n := naturalCompare(strings.TrimSpace(string(a)), strings.TrimSpace(string(b))); n != 0 {
			return n
		}
		return strings.Compare(string(a), string(b))
	}
	if as != bs {
		return cmpInt(as, bs)
	}
	if ae != be {
		return cmpInt(ae, be)
	}
	return strings.Compare(string(a), string(b))
}

// SortCycles sorts cycles in place, earliest first.
func SortCycles(cs []Cycle) {
	sort.SliceStable(cs, func(i, j int) bool { return CompareCycles(cs[i], cs[j]) < 0 })
}

// naturalCompare compares digit runs by value and everything else by text.
func naturalCompare(a, b string) int {
	for a != "" && b != "" {
		ra, rb := leadingRun(a), leadingRun(b)
		da, db := isDigits(ra), isDigits(rb)
		var n int
		switch {
		case da && db:
			ta, tb := strings.TrimLeft(ra, "0"), strings.TrimLeft(rb, "0")
			if n = cmpInt(len(ta), len(tb)); n == 0 {
				n = strings.Compare(ta, tb)
			}
		default:
			n = strings.Compare(ra, rb)
		}
		if n != 0 {
			return n
		}
		a, b = a[len(ra):], b[len(rb):]
	}
	return cmpInt(len(a), len(b))
}

// leadingRun returns the leading run of digits or non-digits of s.
func leadingRun(s string) string {
	digit := isDigit(s[0])
	i := 1
	for i < len(s) && isDigit(s[i]) == digit {
		i++
	}
	return s[:i]
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isDigits(s string) bool { return s != "" && isDigit(s[0]) }

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
