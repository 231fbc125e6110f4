package legacy

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var lowerCaser = cases.Lower(language.Und)

// Name renders the legacy output filename for one field. channel is only
// meaningful for brightness temperature products and must be empty otherwise.
func Name(desc Descriptor, meta Metadata, satellite, channel string) (string, error) {
	satellite = strings.TrimSpace(satellite)
	if satellite == "" {
		return "", fmt.Errorf("%s: output name requires a satellite code", desc.ID)
	}
	if meta.Date == "" {
		return "", fmt.Errorf("%s: output name requires a date token", desc.ID)
	}
	if meta.Hemisphere.Letter() == "" {
		return "", fmt.Errorf("%s: output name requires a hemisphere", desc.ID)
	}
	if meta.Version == "" {
		return "", fmt.Errorf("%s: output name requires a version", desc.ID)
	}

	usesChannel := strings.Contains(desc.FilenameTemplate, PlaceholderChannel)
	switch {
	case usesChannel && channel == "":
		return "", fmt.Errorf("%s: output name requires a channel for satellite %s", desc.ID, satellite)
	case !usesChannel && channel != "":
		return "", fmt.Errorf("%s: channel %q has no place in template %q", desc.ID, channel, desc.FilenameTemplate)
	}

	r := strings.NewReplacer(
		PlaceholderDate, meta.Date,
		PlaceholderSatellite, lowerCaser.String(satellite),
		PlaceholderVersion, meta.Version,
		PlaceholderHemisphere, meta.Hemisphere.Letter(),
		PlaceholderChannel, lowerCaser.String(channel),
	)
	return r.Replace(desc.FilenameTemplate), nil
}
