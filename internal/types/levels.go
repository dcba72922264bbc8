package types

import (
	"encoding/json"
	"strings"
)

// DegreeLevel is a position on the education ladder.
type DegreeLevel int

// Education ladder, lowest first.
const (
	DegreeNone DegreeLevel = iota
	DegreeAssociate
	DegreeBachelor
	DegreeMaster
	DegreeDoctorate
)

var degreeNames = map[DegreeLevel]string{
	DegreeNone:      "none",
	DegreeAssociate: "associate",
	DegreeBachelor:  "bachelor",
	DegreeMaster:    "master",
	DegreeDoctorate: "doctorate",
}

// degreeAliases maps free-form degree names to ladder positions.
// French names come from the platform's original job board.
var degreeAliases = map[string]DegreeLevel{
	"":            DegreeNone,
	"none":        DegreeNone,
	"bac":         DegreeNone,
	"high school": DegreeNone,
	"associate":   DegreeAssociate,
	"dut":         DegreeAssociate,
	"bts":         DegreeAssociate,
	"bachelor":    DegreeBachelor,
	"bachelors":   DegreeBachelor,
	"licence":     DegreeBachelor,
	"bsc":         DegreeBachelor,
	"ba":          DegreeBachelor,
	"master":      DegreeMaster,
	"masters":     DegreeMaster,
	"msc":         DegreeMaster,
	"mba":         DegreeMaster,
	"ingénieur":   DegreeMaster,
	"engineer":    DegreeMaster,
	"doctorate":   DegreeDoctorate,
	"doctorat":    DegreeDoctorate,
	"phd":         DegreeDoctorate,
}

// ParseDegreeLevel maps a degree name to the ladder. Names that contain a known
// alias as a word prefix ("Master of Science") resolve to that alias; unknown names
// resolve to DegreeNone.
func ParseDegreeLevel(s string) DegreeLevel {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.ReplaceAll(key, "'", "")
	key = strings.ReplaceAll(key, ".", "")
	if level, ok := degreeAliases[key]; ok {
		return level
	}
	best := DegreeNone
	for _, word := range strings.Fields(key) {
		if level, ok := degreeAliases[word]; ok && level > best {
			best = level
		}
	}
	return best
}

// String returns the canonical ladder name.
func (d DegreeLevel) String() string {
	if name, ok := degreeNames[d]; ok {
		return name
	}
	return "none"
}

// MarshalJSON encodes the level by name.
func (d DegreeLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a degree name or a ladder index.
func (d *DegreeLevel) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*d = clampDegree(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*d = ParseDegreeLevel(s)
	return nil
}

func clampDegree(n int) DegreeLevel {
	if n < int(DegreeNone) {
		return DegreeNone
	}
	if n > int(DegreeDoctorate) {
		return DegreeDoctorate
	}
	return DegreeLevel(n)
}

// ProficiencyLevel is a CEFR language level on the 1..6 ordinal scale (A1..C2).
// The zero value means the level is unknown.
type ProficiencyLevel int

// CEFR levels.
const (
	LevelUnknown ProficiencyLevel = iota
	LevelA1
	LevelA2
	LevelB1
	LevelB2
	LevelC1
	LevelC2
)

var proficiencyNames = []string{"", "A1", "A2", "B1", "B2", "C1", "C2"}

// ParseProficiency parses "B2", "b2" or a range such as "B1-B2" (the lower bound wins).
// Unrecognised input yields LevelUnknown.
func ParseProficiency(s string) ProficiencyLevel {
	s = strings.ToUpper(strings.TrimSpace(s))
	if lower, _, found := strings.Cut(s, "-"); found {
		s = strings.TrimSpace(lower)
	}
	for i, name := range proficiencyNames {
		if i > 0 && s == name {
			return ProficiencyLevel(i)
		}
	}
	return LevelUnknown
}

// String returns the CEFR code, or "" for LevelUnknown.
func (l ProficiencyLevel) String() string {
	if l < LevelUnknown || l > LevelC2 {
		return ""
	}
	return proficiencyNames[l]
}

// MarshalJSON encodes the level as its CEFR code.
func (l ProficiencyLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON accepts a CEFR code or an ordinal 1..6.
func (l *ProficiencyLevel) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		if n < int(LevelUnknown) || n > int(LevelC2) {
			n = int(LevelUnknown)
		}
		*l = ProficiencyLevel(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = ParseProficiency(s)
	return nil
}
