package importer

import (
	"fmt"
	"regexp"
	"strings"
)

// Listing is a parsed catalog line
type Listing struct {
	Code string
	Name string
}

var (
	longForm     = regexp.MustCompile(`^(.+?)\s+-\s+([A-Z]+\s+\d+[A-Z]*(?:\s+-\s+[A-Z]+)?)\s*$`)
	campusSuffix = regexp.MustCompile(`\s+-\s+[A-Z]+$`)
	shortForm    = regexp.MustCompile(`^([A-Z]+\s+\d+[A-Z]*)\s*$`)
	anyCode      = regexp.MustCompile(`[A-Z]+\s+\d+[A-Z]*`)
)

// ParseStrict accepts "<Title> - <CODE>[ - XX]" or a bare "<CODE>". For the
// bare form the name is the code.
func ParseStrict(line string) (Listing, bool) {
	if m := longForm.FindStringSubmatch(line); m != nil {
		return Listing{
			Code: strings.TrimSpace(campusSuffix.ReplaceAllString(m[2], "")),
			Name: strings.TrimSpace(m[1]),
		}, true
	}
	if m := shortForm.FindStringSubmatch(line); m != nil {
		code := strings.TrimSpace(m[1])
		return Listing{Code: code, Name: code}, true
	}
	return Listing{}, false
}

// ParsePermissive takes the first code found anywhere in line and the text
// before the first " - " as the name.
func ParsePermissive(line string) (Listing, bool) {
	code := anyCode.FindString(line)
	if code == "" {
		return Listing{}, false
	}
	name, _, _ := strings.Cut(line, " - ")
	return Listing{Code: code, Name: strings.TrimSpace(name)}, true
}

// Strategy selects how catalog lines are parsed and how courses are written
type Strategy int

const (
	// StrategyStrict dedups by (code, department), skips codes already stored
	// and inserts one course at a time.
	StrategyStrict Strategy = iota
	// StrategyPermissive dedups by code alone and upserts whole batches,
	// leaving existing codes untouched.
	StrategyPermissive
)

// ParseStrategy maps a CLI flag value to a Strategy
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict", "":
		return StrategyStrict, nil
	case "permissive":
		return StrategyPermissive, nil
	default:
		return 0, fmt.Errorf("unknown strategy %q (want strict or permissive)", s)
	}
}

func (s Strategy) String() string {
	switch s {
	case StrategyStrict:
		return "strict"
	case StrategyPermissive:
		return "permissive"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// Parse parses line with the strategy's parser
func (s Strategy) Parse(line string) (Listing, bool) {
	if s == StrategyPermissive {
		return ParsePermissive(line)
	}
	return ParseStrict(line)
}

// MarshalText renders the strategy by name in reports
func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
