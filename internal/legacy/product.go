package legacy

import (
	"fmt"
	"regexp"
	"strings"
)

// ProductID names one of the historical products.
type ProductID string

const (
	NSIDC0051 ProductID = "nsidc0051"
	NSIDC0081 ProductID = "nsidc0081"
	NSIDC0079 ProductID = "nsidc0079"
	NSIDC0001 ProductID = "nsidc0001"
	NSIDC0080 ProductID = "nsidc0080"
)

// Family selects how fields are located inside a source dataset.
type Family int

const (
	// FamilyConcentration products expose one {sensor}_ICECON variable per sensor.
	FamilyConcentration Family = iota
	// FamilyBrightness products expose one group per satellite and one variable per channel.
	FamilyBrightness
)

func (f Family) String() string {
	switch f {
	case FamilyConcentration:
		return "concentration"
	case FamilyBrightness:
		return "brightness-temperature"
	default:
		return fmt.Sprintf("family(%d)", int(f))
	}
}

// PayloadType is the fixed-width integer type every payload element is cast to.
type PayloadType int

const (
	Uint8 PayloadType = iota
	Int16
	Uint16
)

// Size returns the encoded width of one element in bytes.
func (p PayloadType) Size() int {
	switch p {
	case Uint8:
		return 1
	case Int16, Uint16:
		return 2
	default:
		return 0
	}
}

func (p PayloadType) String() string {
	switch p {
	case Uint8:
		return "uint8"
	case Int16:
		return "int16"
	case Uint16:
		return "uint16"
	default:
		return fmt.Sprintf("payload(%d)", int(p))
	}
}

// VersionPolicy selects how the version string of an output is derived.
type VersionPolicy int

const (
	// VersionNRT always yields "nrt".
	VersionNRT VersionPolicy = iota
	// VersionFromFilename takes the text between "_v" and ".nc", keeping the "v".
	VersionFromFilename
	// VersionFromPattern matches "v(.*?).nc", tolerating suffixes after the version.
	VersionFromPattern
)

func (v VersionPolicy) String() string {
	switch v {
	case VersionNRT:
		return "nrt"
	case VersionFromFilename:
		return "filename"
	case VersionFromPattern:
		return "filename-v"
	default:
		return fmt.Sprintf("version(%d)", int(v))
	}
}

// Placeholders accepted in filename templates.
const (
	PlaceholderDate       = "{date}"
	PlaceholderSatellite  = "{satellite}"
	PlaceholderVersion    = "{version}"
	PlaceholderHemisphere = "{hemisphere}"
	PlaceholderChannel    = "{channel}"
)

// LegacyHeaderSize is the length of the header block on SSM/I concentration grids.
const LegacyHeaderSize = 300

// Descriptor is the encoding rule for one product.
type Descriptor struct {
	ID               ProductID
	Title            string
	Tokens           []string
	Family           Family
	FilenameTemplate string
	PayloadType      PayloadType
	HasHeader        bool
	HeaderSize       int
	Version          VersionPolicy
	// Sensors, when set, replaces the variable scan with a fixed sensor list.
	Sensors          []string
	DefaultOutputDir string
}

const (
	concentrationTemplate = "nt_{date}_{satellite}_{version}_{hemisphere}.bin"
	bootstrapTemplate     = "bt_{date}_{satellite}_{version}_{hemisphere}.bin"
	brightnessTemplate    = "tb_{satellite}_{date}_{version}_{hemisphere}{channel}.bin"
)

var registry = []Descriptor{
	{
		ID:               NSIDC0051,
		Title:            "Sea ice concentrations from Nimbus-7 SMMR and DMSP SSM/I-SSMIS",
		Tokens:           []string{"NSIDC0051"},
		Family:           FamilyConcentration,
		FilenameTemplate: concentrationTemplate,
		PayloadType:      Uint8,
		HasHeader:        true,
		HeaderSize:       LegacyHeaderSize,
		Version:          VersionFromFilename,
		DefaultOutputDir: ".",
	},
	{
		ID:               NSIDC0081,
		Title:            "Near-real-time DMSP SSMIS daily polar gridded sea ice concentrations",
		Tokens:           []string{"NSIDC0081"},
		Family:           FamilyConcentration,
		FilenameTemplate: concentrationTemplate,
		PayloadType:      Uint8,
		HasHeader:        true,
		HeaderSize:       LegacyHeaderSize,
		Version:          VersionNRT,
		Sensors:          []string{"F16", "F17", "F18"},
		DefaultOutputDir: ".",
	},
	{
		ID:               NSIDC0079,
		Title:            "Bootstrap sea ice concentrations from Nimbus-7 SMMR and DMSP SSM/I-SSMIS",
		Tokens:           []string{"NSIDC0079"},
		Family:           FamilyConcentration,
		FilenameTemplate: bootstrapTemplate,
		PayloadType:      Int16,
		Version:          VersionFromFilename,
		DefaultOutputDir: ".",
	},
	{
		ID:               NSIDC0001,
		Title:            "DMSP SSM/I-SSMIS daily polar gridded brightness temperatures",
		Tokens:           []string{"NSIDC0001"},
		Family:           FamilyBrightness,
		FilenameTemplate: brightnessTemplate,
		PayloadType:      Uint16,
		Version:          VersionFromPattern,
		DefaultOutputDir: "./extracted_bins",
	},
	{
		ID:               NSIDC0080,
		Title:            "Near-real-time DMSP SSMIS daily polar gridded brightness temperatures",
		Tokens:           []string{"NSIDC0080"},
		Family:           FamilyBrightness,
		FilenameTemplate: brightnessTemplate,
		PayloadType:      Uint16,
		Version:          VersionNRT,
		DefaultOutputDir: "./extracted_bins",
	},
}

// Products returns the registry in its fixed matching order.
func Products() []Descriptor {
	out := make([]Descriptor, len(registry))
	copy(out, registry)
	return out
}

// Lookup returns the descriptor registered under id.
func Lookup(id ProductID) (Descriptor, bool) {
	for _, desc := range registry {
		if desc.ID == id {
			return desc, true
		}
	}
	return Descriptor{}, false
}

// IDs lists every registered product id in matching order.
func IDs() []ProductID {
	ids := make([]ProductID, 0, len(registry))
	for _, desc := range registry {
		ids = append(ids, desc.ID)
	}
	return ids
}

var placeholderPattern = regexp.MustCompile(`\{[^{}]*\}`)

// Validate checks that the descriptor is internally consistent.
func (d Descriptor) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("descriptor: missing product id")
	}
	if len(d.Tokens) == 0 {
		return fmt.Errorf("%s: no filename tokens", d.ID)
	}
	if d.PayloadType.Size() == 0 {
		return fmt.Errorf("%s: unknown payload type %s", d.ID, d.PayloadType)
	}
	if !strings.HasSuffix(d.FilenameTemplate, ".bin") {
		return fmt.Errorf("%s: template %q must end in .bin", d.ID, d.FilenameTemplate)
	}
	for _, ph := range placeholderPattern.FindAllString(d.FilenameTemplate, -1) {
		switch ph {
		case PlaceholderDate, PlaceholderSatellite, PlaceholderVersion, PlaceholderHemisphere:
		case PlaceholderChannel:
			if d.Family != FamilyBrightness {
				return fmt.Errorf("%s: %s placeholder only applies to brightness temperature products", d.ID, ph)
			}
		default:
			return fmt.Errorf("%s: unknown placeholder %s in template %q", d.ID, ph, d.FilenameTemplate)
		}
	}
	if d.HasHeader && d.HeaderSize <= 0 {
		return fmt.Errorf("%s: header enabled without a header size", d.ID)
	}
	return nil
}

func init() {
	for _, desc := range registry {
		if err := desc.Validate(); err != nil {
			panic("legacy registry: " + err.Error())
		}
	}
}
