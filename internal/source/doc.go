// Package source defines the read-only dataset view the converter consumes.
//
// A Dataset exposes root attributes, root variables and nested groups.
// Variables are materialized whole: values are flattened into a row-major
// Go slice with the original shape recorded alongside. Implementations open
// in Raw mode unless told otherwise so integer codes reach the encoder
// untouched.
package source
