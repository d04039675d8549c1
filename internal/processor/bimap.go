package processor

import "fmt"

// Bimap is a small bijective string-to-string map: every value is unique,
// so the mapping can be inverted. Used for processor input and output
// renaming.
type Bimap struct {
	forward map[string]string
	reverse map[string]string
}

// NewBimap builds a Bimap from external-name -> internal-name pairs. It
// panics if two externals map to the same internal name, since that would
// make the map non-invertible; callers control the literal map passed in,
// so this is a programmer error, not a runtime condition.
func NewBimap(forward map[string]string) Bimap {
	b := Bimap{
		forward: make(map[string]string, len(forward)),
		reverse: make(map[string]string, len(forward)),
	}
	for k, v := range forward {
		if existing, ok := b.reverse[v]; ok {
			panic(fmt.Sprintf("processor: bimap is not invertible: both %q and %q map to %q", existing, k, v))
		}
		b.forward[k] = v
		b.reverse[v] = k
	}
	return b
}

// Forward looks up the internal name for an external name. ok is false if
// external is not mapped, meaning the caller should treat external as its
// own internal name (identity mapping).
func (b Bimap) Forward(external string) (internal string, ok bool) {
	internal, ok = b.forward[external]
	return
}

// ForwardOrIdentity returns the mapped internal name, or external itself if
// there is no explicit mapping.
func (b Bimap) ForwardOrIdentity(external string) string {
	if internal, ok := b.forward[external]; ok {
		return internal
	}
	return external
}

// Reverse looks up the key mapped to the given value. ok is false if value
// is not named by this mapping.
func (b Bimap) Reverse(value string) (key string, ok bool) {
	key, ok = b.reverse[value]
	return
}

// ReverseOrIdentity returns the key mapped to value, or value itself if
// there is no explicit mapping naming it.
func (b Bimap) ReverseOrIdentity(value string) string {
	if key, ok := b.reverse[value]; ok {
		return key
	}
	return value
}

// Values returns every internal name named by this mapping. Used by C1 to
// verify that every mapped value corresponds to a real input struct field.
func (b Bimap) Values() []string {
	out := make([]string, 0, len(b.forward))
	for _, v := range b.forward {
		out = append(out, v)
	}
	return out
}

// Keys returns every key of this mapping (for an output mapper, the
// internal field names). Used by C1 to verify that every mapped key
// corresponds to a real output struct field.
func (b Bimap) Keys() []string {
	out := make([]string, 0, len(b.forward))
	for k := range b.forward {
		out = append(out, k)
	}
	return out
}
