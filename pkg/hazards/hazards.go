// Package hazards classifies filesystem entry names for the Win32-specific
// footguns that make an entry difficult or impossible to remove through
// ordinary tooling: reserved device basenames, trailing dots or spaces that
// Win32 silently strips during path normalization, paths that exceed the
// legacy MAX_PATH limit, and reparse points.
package hazards

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Code identifies a specific hazard classification.
type Code string

// Severity indicates how disruptive a hazard is expected to be.
type Severity string

// Confidence indicates how certain the classification is.
type Confidence string

const (
	// ReparsePointPresent indicates the entry itself is a reparse point
	// (symlink, junction, or mount point). Its contents are not analyzed.
	ReparsePointPresent Code = "REPARSE_POINT_PRESENT"
	// ReservedDeviceBasename indicates the entry's basename (everything
	// before the first dot) collides with a Win32 reserved device name.
	ReservedDeviceBasename Code = "WIN_RESERVED_DEVICE_BASENAME"
	// TrailingDotSpace indicates the entry's name ends in a dot or space.
	TrailingDotSpace Code = "WIN_TRAILING_DOT_SPACE"
	// PathTooLong indicates the canonical path exceeds 260 characters.
	PathTooLong Code = "WIN_PATH_TOO_LONG"
)

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

const (
	ConfidenceHigh Confidence = "high"
)

// maxLegacyPathLength is the legacy MAX_PATH limit that ordinary Win32 APIs
// (and many applications that call them) still respect.
const maxLegacyPathLength = 260

// reservedNames is the set of Win32 reserved device names. Comparison is
// performed against the upper-cased basename.
var reservedNames = buildReservedNames()

func buildReservedNames() map[string]struct{} {
	names := map[string]struct{}{
		"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	}
	for i := 1; i <= 9; i++ {
		names["COM"+string(rune('0'+i))] = struct{}{}
		names["LPT"+string(rune('0'+i))] = struct{}{}
	}
	return names
}

// upperFolder performs Unicode-correct upper-casing for reserved-name
// comparison, rather than ASCII-only strings.ToUpper.
var upperFolder = cases.Upper(language.Und)

// Hazard describes a single detected hazard.
type Hazard struct {
	Code       Code       `json:"code"`
	Severity   Severity   `json:"severity"`
	Confidence Confidence `json:"confidence"`
}

// ParseBasename splits name into (base, extension) the way Win32 reserved
// device name checks do: base is everything before the first dot. This
// differs from path/filepath.Ext, which anchors on the last dot.
//
// "NUL.tar.gz" -> ("NUL", ".tar.gz")
// "README"     -> ("README", "")
func ParseBasename(name string) (base, extension string) {
	if index := strings.IndexByte(name, '.'); index >= 0 {
		return name[:index], name[index:]
	}
	return name, ""
}

// IsReservedDeviceName reports whether name's basename (before the first
// dot) is a Win32 reserved device name, independent of case.
func IsReservedDeviceName(name string) bool {
	base, _ := ParseBasename(name)
	_, reserved := reservedNames[upperFolder.String(base)]
	return reserved
}

// HasTrailingDotOrSpace reports whether name ends in a dot or space, either
// of which Win32 silently strips when normalizing a path through the
// ordinary (non-extended) API surface.
func HasTrailingDotOrSpace(name string) bool {
	return strings.HasSuffix(name, " ") || strings.HasSuffix(name, ".")
}

// Classify returns every hazard that applies to an entry named name, whose
// canonical path is canonicalPathLength characters long and which is (or is
// not) itself a reparse point.
//
// A reparse point short-circuits the remaining checks: its target, not its
// own name, determines what further traversal would encounter, so nothing
// else about the entry itself is classified.
func Classify(name string, canonicalPathLength int, isReparsePoint bool) []Hazard {
	if isReparsePoint {
		return []Hazard{{Code: ReparsePointPresent, Severity: SeverityHigh, Confidence: ConfidenceHigh}}
	}

	var hazards []Hazard

	if IsReservedDeviceName(name) {
		hazards = append(hazards, Hazard{Code: ReservedDeviceBasename, Severity: SeverityHigh, Confidence: ConfidenceHigh})
	}
	if HasTrailingDotOrSpace(name) {
		hazards = append(hazards, Hazard{Code: TrailingDotSpace, Severity: SeverityMedium, Confidence: ConfidenceHigh})
	}
	if canonicalPathLength > maxLegacyPathLength {
		hazards = append(hazards, Hazard{Code: PathTooLong, Severity: SeverityMedium, Confidence: ConfidenceHigh})
	}

	return hazards
}
