package legacy

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Hemisphere identifies the polar stereographic grid of an input.
type Hemisphere int

const (
	North Hemisphere = iota + 1
	South
)

// Letter returns the single-letter code used in legacy filenames.
func (h Hemisphere) Letter() string {
	switch h {
	case North:
		return "n"
	case South:
		return "s"
	default:
		return ""
	}
}

func (h Hemisphere) String() string {
	switch h {
	case North:
		return "north"
	case South:
		return "south"
	default:
		return "unknown"
	}
}

// Metadata is derived once per input and shared by every output it produces.
type Metadata struct {
	// Date is YYYYMMDD for daily inputs or YYYYMM for monthly ones.
	Date       string
	Hemisphere Hemisphere
	Version    string
}

// Hints carries dataset attributes that override filename tokens for some products.
type Hints struct {
	// StartTime is the dataset's time_coverage_start attribute, if any.
	StartTime string
	// CRSLongName is the long_name attribute of the crs variable, if any.
	CRSLongName string
}

const nrtVersion = "nrt"

var (
	dailyDatePattern   = regexp.MustCompile(`\d{8}`)
	monthlyDatePattern = regexp.MustCompile(`\d{6}`)
	versionPattern     = regexp.MustCompile(`v(.*?)\.nc`)
)

// ParseDate extracts the YYYYMMDD token from a filename, falling back to
// YYYYMM. The matched token is returned verbatim.
func ParseDate(filename string) (string, error) {
	base := filepath.Base(filename)
	if token := dailyDatePattern.FindString(base); token != "" {
		return token, nil
	}
	if token := monthlyDatePattern.FindString(base); token != "" {
		return token, nil
	}
	return "", fmt.Errorf("%w: no YYYYMMDD or YYYYMM in filename %s", ErrDateTokenNotFound, filename)
}

// DateFromStartTime converts an ISO-8601 start time such as
// "2021-08-28T00:00:00Z" into the 8-digit YYYYMMDD token.
func DateFromStartTime(value string) (string, error) {
	value = strings.TrimSpace(value)
	if len(value) < 10 {
		return "", fmt.Errorf("%w: start time %q too short", ErrDateTokenNotFound, value)
	}
	day, err := time.Parse(time.DateOnly, value[:10])
	if err != nil {
		return "", fmt.Errorf("%w: start time %q: %w", ErrDateTokenNotFound, value, err)
	}
	return day.Format("20060102"), nil
}

// ParseHemisphere reads the N25/S25 grid token from a filename. Exactly one
// of the two tokens must be present.
func ParseHemisphere(filename string) (Hemisphere, error) {
	base := filepath.Base(filename)
	north := strings.Contains(base, "N25")
	south := strings.Contains(base, "S25")
	switch {
	case north && south:
		return 0, fmt.Errorf("%w: both N25 and S25 in filename %s", ErrHemisphereTokenNotFound, filename)
	case north:
		return North, nil
	case south:
		return South, nil
	default:
		return 0, fmt.Errorf("%w: could not find N25 or S25 in filename %s", ErrHemisphereTokenNotFound, filename)
	}
}

// HemisphereFromCRS reads the hemisphere from a grid mapping long_name such
// as "NSIDC_NH_PolarStereo_25km". It reports false when neither marker is
// present.
func HemisphereFromCRS(longName string) (Hemisphere, bool) {
	north := strings.Contains(longName, "_NH_")
	south := strings.Contains(longName, "_SH_")
	switch {
	case north && !south:
		return North, true
	case south && !north:
		return South, true
	default:
		return 0, false
	}
}

// ParseVersion derives the version string of a product's outputs.
func ParseVersion(desc Descriptor, filename string) (string, error) {
	base := filepath.Base(filename)
	switch desc.Version {
	case VersionNRT:
		return nrtVersion, nil
	case VersionFromFilename:
		idx := strings.Index(base, "_v")
		if idx < 0 {
			return "", fmt.Errorf("%w: no _v in filename %s", ErrVersionTokenNotFound, filename)
		}
		version, _, _ := strings.Cut(base[idx+1:], ".nc")
		if version == "v" {
			return "", fmt.Errorf("%w: empty version in filename %s", ErrVersionTokenNotFound, filename)
		}
		return version, nil
	case VersionFromPattern:
		m := versionPattern.FindStringSubmatch(base)
		if m == nil {
			return "", fmt.Errorf("%w: no v<version>.nc in filename %s", ErrVersionTokenNotFound, filename)
		}
		return "v" + m[1], nil
	default:
		return "", fmt.Errorf("%w: %s has unknown version policy %s", ErrVersionTokenNotFound, desc.ID, desc.Version)
	}
}

// ResolveMetadata derives the naming metadata for one input. Brightness
// temperature products prefer the dataset's start time and grid mapping over
// the filename tokens.
func ResolveMetadata(desc Descriptor, filename string, hints Hints) (Metadata, error) {
	var (
		meta Metadata
		err  error
	)

	if desc.Family == FamilyBrightness && strings.TrimSpace(hints.StartTime) != "" {
		meta.Date, err = DateFromStartTime(hints.StartTime)
	} else {
		meta.Date, err = ParseDate(filename)
	}
	if err != nil {
		return Metadata{}, err
	}

	hemisphere, ok := Hemisphere(0), false
	if desc.Family == FamilyBrightness {
		hemisphere, ok = HemisphereFromCRS(hints.CRSLongName)
	}
	if !ok {
		if hemisphere, err = ParseHemisphere(filename); err != nil {
			return Metadata{}, err
		}
	}
	meta.Hemisphere = hemisphere

	if meta.Version, err = ParseVersion(desc, filename); err != nil {
		return Metadata{}, err
	}
	return meta, nil
}
