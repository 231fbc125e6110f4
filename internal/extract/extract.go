package extract

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"nc2bin/internal/legacy"
	"nc2bin/internal/logging"
	"nc2bin/internal/source"
)

var (
	// ErrMissingFieldVariable reports a candidate whose variable is absent.
	// The pipeline skips the candidate and continues.
	ErrMissingFieldVariable = errors.New("field variable missing")
	// ErrMissingHeaderAttribute reports a header product field lacking its header block.
	ErrMissingHeaderAttribute = errors.New("header attribute missing")
)

const (
	// DefaultHeaderAttribute names the per-variable attribute holding the legacy header.
	DefaultHeaderAttribute = "legacy_binary_header"
	// DefaultStartTimeAttribute names the root attribute holding the acquisition start.
	DefaultStartTimeAttribute = "time_coverage_start"

	crsVariable      = "crs"
	longNameKey      = "long_name"
	concentrationKey = "ICECON"
	sensorLength     = 3
	channelLength    = 3
)

// Candidate is one field a product is expected to produce.
type Candidate struct {
	Satellite string
	// Channel is empty for concentration products.
	Channel string
	// Group is the namespace holding Variable; empty means the root.
	Group    string
	Variable string
}

func (c Candidate) String() string {
	if c.Group == "" {
		return c.Variable
	}
	return c.Group + "/" + c.Variable
}

// Field is a candidate read from the dataset.
type Field struct {
	Candidate
	Array  source.Array
	Header []byte
}

// Candidates lists the fields desc expects in ds, in output order.
func Candidates(desc legacy.Descriptor, ds source.Dataset) []Candidate {
	return Extractor{}.Candidates(desc, ds)
}

// Candidates lists the fields desc expects in ds, in output order. A
// satellite group that cannot be opened contributes no candidates and is
// logged as a warning.
func (e Extractor) Candidates(desc legacy.Descriptor, ds source.Dataset) []Candidate {
	switch desc.Family {
	case legacy.FamilyBrightness:
		return e.brightnessCandidates(ds)
	default:
		return concentrationCandidates(desc, ds)
	}
}

func concentrationCandidates(desc legacy.Descriptor, ds source.Dataset) []Candidate {
	var sensors []string
	if len(desc.Sensors) > 0 {
		sensors = append(sensors, desc.Sensors...)
	} else {
		seen := make(map[string]struct{})
		for _, name := range ds.Variables() {
			if !strings.Contains(name, concentrationKey) {
				continue
			}
			sensor := prefix(name, sensorLength)
			if _, ok := seen[sensor]; ok {
				continue
			}
			seen[sensor] = struct{}{}
			sensors = append(sensors, sensor)
		}
	}

	out := make([]Candidate, 0, len(sensors))
	for _, sensor := range sensors {
		out = append(out, Candidate{
			Satellite: sensor,
			Variable:  sensor + "_" + concentrationKey,
		})
	}
	return out
}

func (e Extractor) brightnessCandidates(ds source.Dataset) []Candidate {
	var out []Candidate
	for _, group := range ds.Groups() {
		ns, err := ds.Group(group)
		if err != nil {
			logging.WarnWithAlert(e.logger(), "satellite group skipped", "group_unreadable",
				logging.String("group", group),
				logging.Error(err),
			)
			continue
		}
		for _, name := range ns.Variables() {
			out = append(out, Candidate{
				Satellite: group,
				Channel:   strings.ToLower(suffix(name, channelLength)),
				Group:     group,
				Variable:  name,
			})
		}
	}
	return out
}

// Extractor reads candidate fields.
type Extractor struct {
	// HeaderAttribute overrides DefaultHeaderAttribute when set.
	HeaderAttribute string
	Logger          *slog.Logger
}

// Read materializes c from ds. Data is returned exactly as stored.
func (e Extractor) Read(ds source.Dataset, desc legacy.Descriptor, c Candidate) (Field, error) {
	var ns source.Namespace = ds
	if c.Group != "" {
		group, err := ds.Group(c.Group)
		if err != nil {
			if errors.Is(err, source.ErrGroupNotFound) {
				return Field{}, fmt.Errorf("%w: %s", ErrMissingFieldVariable, c)
			}
			return Field{}, err
		}
		ns = group
	}

	variable, err := ns.Variable(c.Variable)
	if err != nil {
		if errors.Is(err, source.ErrVariableNotFound) {
			return Field{}, fmt.Errorf("%w: %s", ErrMissingFieldVariable, c)
		}
		return Field{}, fmt.Errorf("read %s: %w", c, err)
	}

	field := Field{Candidate: c, Array: variable.Array}
	if !desc.HasHeader {
		return field, nil
	}

	attr := e.headerAttribute()
	raw, ok := variable.Attribute(attr)
	if !ok {
		return Field{}, fmt.Errorf("%w: %s has no %s attribute", ErrMissingHeaderAttribute, c, attr)
	}
	header, err := source.AsBytes(raw)
	if err != nil {
		return Field{}, fmt.Errorf("%w: %s attribute %s: %w", ErrMissingHeaderAttribute, c, attr, err)
	}
	if desc.HeaderSize > 0 && len(header) != desc.HeaderSize {
		e.logger().Warn("header size differs from legacy layout",
			logging.String("variable", c.String()),
			logging.Int("header_bytes", len(header)),
			logging.Int("expected_bytes", desc.HeaderSize),
			logging.Alert("header_size"),
		)
	}
	field.Header = header
	return field, nil
}

func (e Extractor) headerAttribute() string {
	if attr := strings.TrimSpace(e.HeaderAttribute); attr != "" {
		return attr
	}
	return DefaultHeaderAttribute
}

func (e Extractor) logger() *slog.Logger {
	if e.Logger == nil {
		return logging.NewNop()
	}
	return e.Logger
}

// Hints collects the dataset attributes that may override filename tokens.
// startAttr defaults to DefaultStartTimeAttribute.
func Hints(ds source.Dataset, startAttr string) legacy.Hints {
	if strings.TrimSpace(startAttr) == "" {
		startAttr = DefaultStartTimeAttribute
	}
	var hints legacy.Hints
	hints.StartTime, _ = source.StringAttribute(ds, startAttr)
	if crs, err := ds.Variable(crsVariable); err == nil {
		if raw, ok := crs.Attribute(longNameKey); ok {
			hints.CRSLongName, _ = source.AsString(raw)
		}
	}
	return hints
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func suffix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
