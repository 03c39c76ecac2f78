package frame

// entry is a single name/value pair preserved in wire order.
type entry struct {
	Name  string
	Value string
}

// Header is an ordered multimap of frame header name/value pairs. STOMP
// 1.2 §1.4.2 specifies that when a header is repeated, the first occurrence
// is authoritative; Get always honors that, while Add preserves every
// occurrence in wire order for diagnostics and re-encoding.
type Header struct {
	entries []entry
}

// Get returns the value of the first occurrence of name, and whether it
// was present at all.
func (h Header) Get(name string) (string, bool) {
	for _, e := range h.entries {
		if e.Name == name {
			return e.Value, true
		}
	}
	return "", false
}

// Values returns every value recorded for name, in wire order.
func (h Header) Values(name string) []string {
	var out []string
	for _, e := range h.entries {
		if e.Name == name {
			out = append(out, e.Value)
		}
	}
	return out
}

// Add appends name/value as a new entry regardless of whether name is
// already present. Used by the parser to implement first-wins semantics
// without losing the raw wire order.
func (h *Header) Add(name, value string) {
	h.entries = append(h.entries, entry{Name: name, Value: value})
}

// Set replaces the first occurrence of name with value, or appends it if
// name is not already present. Used by the builder, where callers expect
// setting a header twice to simply update it.
func (h *Header) Set(name, value string) {
	for i, e := range h.entries {
		if e.Name == name {
			h.entries[i].Value = value
			return
		}
	}
	h.Add(name, value)
}

// Len returns the number of stored entries, including duplicates.
func (h Header) Len() int {
	return len(h.entries)
}

// Range calls fn once per entry in wire order, including duplicates.
func (h Header) Range(fn func(name, value string)) {
	for _, e := range h.entries {
		fn(e.Name, e.Value)
	}
}

// Clone returns an independent copy of h.
func (h Header) Clone() Header {
	return Header{entries: append([]entry(nil), h.entries...)}
}
