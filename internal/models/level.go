package models

import (
	"fmt"
	"strings"
)

// Level is a configuration level used as a key into the model lookup tables.
// The zero value is not a valid level.
type Level int

const (
	LevelLow Level = iota + 1
	LevelMedium
	LevelHigh
)

var levelNames = map[Level]string{
	LevelLow:    "low",
	LevelMedium: "medium",
	LevelHigh:   "high",
}

// Levels lists every valid level in ascending order.
func Levels() []Level { return []Level{LevelLow, LevelMedium, LevelHigh} }

// Valid reports whether l is one of the declared levels.
func (l Level) Valid() bool {
	_, ok := levelNames[l]
	return ok
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// ParseLevel accepts "low", "medium" or "high" in any case.
func ParseLevel(s string) (Level, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for l, name := range levelNames {
		if name == key {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown level %q: must be low, medium or high", s)
}

func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid %s", l)
	}
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	v, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Tier is the equipment quality tier selecting a compressor performance curve.
type Tier int

const (
	TierEntry Tier = iota + 1
	TierStandard
	TierHighEfficiency
)

var tierNames = map[Tier]string{
	TierEntry:          "entry",
	TierStandard:       "standard",
	TierHighEfficiency: "high_efficiency",
}

// Tiers lists every valid tier.
func Tiers() []Tier { return []Tier{TierEntry, TierStandard, TierHighEfficiency} }

func (t Tier) Valid() bool {
	_, ok := tierNames[t]
	return ok
}

func (t Tier) String() string {
	if name, ok := tierNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tier(%d)", int(t))
}

// ParseTier accepts "entry", "standard" or "high_efficiency" (dashes allowed).
func ParseTier(s string) (Tier, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for t, name := range tierNames {
		if name == key {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown tier %q: must be entry, standard or high_efficiency", s)
}

func (t Tier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid %s", t)
	}
	return []byte(t.String()), nil
}

func (t *Tier) UnmarshalText(b []byte) error {
	v, err := ParseTier(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}
