// Package extract locates the fields of a source dataset that become legacy
// binary outputs.
//
// Concentration products expose one {sensor}_ICECON variable per sensor at
// the root of the dataset. Brightness temperature products expose one group
// per satellite holding one variable per channel. Candidates enumerates the
// fields a product should produce and Extractor.Read materializes one of
// them together with its optional header block.
package extract
