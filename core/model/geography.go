package model

import (
	"fmt"
	"strings"
)

// Geography is the stored location of a worksite.
type Geography int

const (
	Downtown Geography = iota + 1
	OutsideDowntown
)

func (g Geography) String() string {
	switch g {
	case Downtown:
		return "Downtown"
	case OutsideDowntown:
		return "OutsideDowntown"
	default:
		return "Unknown"
	}
}

// Valid reports whether g is one of the stored geographies.
func (g Geography) Valid() bool { return g == Downtown || g == OutsideDowntown }

// ParseGeography accepts the survey abbreviations (DT, ODT) and the long names.
func ParseGeography(s string) (Geography, error) {
	switch normalize(s) {
	case "dt", "downtown":
		return Downtown, nil
	case "odt", "outsidedowntown":
		return OutsideDowntown, nil
	}
	return 0, fmt.Errorf("unknown geography %q", s)
}

func (g Geography) MarshalText() ([]byte, error) {
	if !g.Valid() {
		return nil, fmt.Errorf("invalid geography %d", int(g))
	}
	return []byte(g.String()), nil
}

func (g *Geography) UnmarshalText(b []byte) error {
	v, err := ParseGeography(string(b))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// Scope selects the records a metric is computed over. Citywide is the union
// of both geographies and is never stored on a record.
type Scope string

const (
	ScopeDowntown        Scope = "Downtown"
	ScopeOutsideDowntown Scope = "OutsideDowntown"
	ScopeCitywide        Scope = "Citywide"
)

// AllScopes lists every scope in display order.
func AllScopes() []Scope {
	return []Scope{ScopeDowntown, ScopeOutsideDowntown, ScopeCitywide}
}

// ParseScope accepts scope names, geography abbreviations and "city".
func ParseScope(s string) (Scope, error) {
	switch normalize(s) {
	case "dt", "downtown":
		return ScopeDowntown, nil
	case "odt", "outsidedowntown":
		return ScopeOutsideDowntown, nil
	case "citywide", "city", "all":
		return ScopeCitywide, nil
	}
	return "", fmt.Errorf("unknown scope %q", s)
}

// Includes reports whether records of geography g belong to the scope.
func (s Scope) Includes(g Geography) bool {
	switch s {
	case ScopeDowntown:
		return g == Downtown
	case ScopeOutsideDowntown:
		return g == OutsideDowntown
	case ScopeCitywide:
		return g.Valid()
	}
	return false
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(s)
}
