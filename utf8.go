package arbor

// Björn Höhrmann's branchless UTF-8 decoder, reduced here to a validator:
// only the terminal "accept"/"reject" distinction is used, not the decoded
// codepoint, since the parser re-emits input bytes verbatim and only needs
// to know whether a string's contents are well-formed UTF-8 (spec §4.3's
// "UTF-8 validation... DFA over 12-state table, reset at each code point
// boundary", spec §9's design note naming this table by name).
const (
	utf8Accept = 0
	utf8Reject = 1
)

var utf8ByteClass = [256]byte{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9,
	7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7,
	7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7,
	8, 8, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	10, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 4, 3, 3,
	11, 6, 6, 6, 5, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8,
}

var utf8StateTransitions = [108]byte{
	0, 1, 2, 3, 5, 8, 7, 1, 1, 1, 4, 6,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 0, 1, 1, 1, 1, 1, 0, 1, 0, 1, 1,
	1, 2, 1, 1, 1, 1, 1, 2, 1, 2, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 2, 1, 1, 1, 1,
	1, 2, 1, 1, 1, 1, 1, 1, 1, 2, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 3, 1, 3, 1, 1,
	1, 3, 1, 1, 1, 1, 1, 3, 1, 3, 1, 1,
	1, 3, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
}

// utf8Step advances the DFA state with one input byte. The returned state
// is utf8Accept at a codepoint boundary with a well-formed sequence so
// far, utf8Reject on any ill-formed byte, or an in-progress intermediate
// state otherwise.
func utf8Step(state byte, b byte) byte {
	class := utf8ByteClass[b]
	return utf8StateTransitions[state*12+class]
}

// validateUTF8 reports whether b is entirely well-formed UTF-8, resuming
// from and returning the DFA state so callers can validate a string's
// bytes incrementally across multiple on_string_part deliveries.
func validateUTF8(state byte, b []byte) byte {
	for _, c := range b {
		state = utf8Step(state, c)
		if state == utf8Reject {
			return state
		}
	}
	return state
}
