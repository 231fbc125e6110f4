package convert

// State is a step of a conversion run.
type State string

const (
	StateStart             State = "start"
	StateProductIdentified State = "product_identified"
	StateMetadataParsed    State = "metadata_parsed"
	StateFieldExtracted    State = "field_extracted"
	StateFieldEncoded      State = "field_encoded"
	StateFieldWritten      State = "field_written"
	StateDone              State = "done"
	StateFailed            State = "failed"
)

// Terminal reports whether no further transitions can follow s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
