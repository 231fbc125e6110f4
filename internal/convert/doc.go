// Package convert runs the end-to-end conversion of one netCDF input into its
// legacy binary outputs.
//
// A run moves through start, product_identified and metadata_parsed, then
// repeats field_extracted, field_encoded and field_written for every field
// before reaching done. Any fatal error moves it to failed. A candidate whose
// field variable is absent is recorded as skipped and the run continues.
// Identification and metadata errors abort before any output is written.
package convert
