package annotate

import (
	"fmt"
	"strings"
)

// AACode selects how amino acids are rendered in HGVS.p.
type AACode int

const (
	AAThreeLetter AACode = iota
	AAOneLetter
)

func (c AACode) String() string {
	if c == AAOneLetter {
		return "one"
	}
	return "three"
}

// ParseAACode parses "three" or "one" (also "3" and "1").
func ParseAACode(s string) (AACode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "three", "3":
		return AAThreeLetter, nil
	case "one", "1":
		return AAOneLetter, nil
	default:
		return AAThreeLetter, fmt.Errorf("unknown amino acid code %q (want three or one)", s)
	}
}

// Config holds the engine's tunable conventions. All widths are in bases
// except ExtensionCap, which counts codons past the reference stop.
type Config struct {
	SpliceWindow         int64
	SpliceRegionExonic   int64
	SpliceRegionIntronic int64
	FlankWidth           int64
	ExtensionCap         int
	MaxEditLength        int
	AACode               AACode
}

// DefaultConfig returns the canonical HGVS settings.
func DefaultConfig() Config {
	return Config{
		SpliceWindow:         2,
		SpliceRegionExonic:   2,
		SpliceRegionIntronic: 2,
		FlankWidth:           5000,
		ExtensionCap:         300,
		MaxEditLength:        1000000,
		AACode:               AAThreeLetter,
	}
}

// Validate checks that the settings are usable together.
func (c Config) Validate() error {
	if c.SpliceWindow < 1 {
		return fmt.Errorf("splice window must be positive, got %d", c.SpliceWindow)
	}
	if c.SpliceRegionIntronic < 0 {
		return fmt.Errorf("intronic splice region must not be negative, got %d", c.SpliceRegionIntronic)
	}
	if c.SpliceRegionExonic < 0 {
		return fmt.Errorf("exonic splice region must not be negative, got %d", c.SpliceRegionExonic)
	}
	if c.FlankWidth < 0 {
		return fmt.Errorf("flank width must not be negative, got %d", c.FlankWidth)
	}
	if c.ExtensionCap < 1 {
		return fmt.Errorf("extension cap must be positive, got %d", c.ExtensionCap)
	}
	if c.MaxEditLength < 1 {
		return fmt.Errorf("max edit length must be positive, got %d", c.MaxEditLength)
	}
	return nil
}
