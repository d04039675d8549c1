package processor

// Defaults is embedded by processors that need no prefixing and no field
// renaming, supplying the boilerplate half of the Processor interface so
// implementations only need to write CreateInputParameter and OutputType.
type Defaults struct{}

func (Defaults) InputPrefix() string   { return "" }
func (Defaults) OutputPrefix() string  { return "" }
func (Defaults) InputMapper() Bimap    { return Bimap{} }
func (Defaults) OutputMapper() Bimap   { return Bimap{} }
