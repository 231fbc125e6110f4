// Package legacy holds the rules that reproduce the historical NSIDC raw
// binary distributions from their netCDF successors.
//
// The registry maps each supported product to its filename template, payload
// width, header policy and version policy. Identify resolves a filename to a
// Descriptor, ResolveMetadata derives the date, hemisphere and version that
// name every output of one input, Encode produces the exact byte layout, and
// Name renders the legacy filename.
//
// Everything here is pure: no file or dataset handles are held, so the rules
// can be exercised without touching disk.
package legacy
