package arbor

import (
	"errors"

	"github.com/arbor-json/arbor/memres"
)

// Parse parses data in its entirety and returns the resulting Value,
// allocating document memory from handle's resource (spec §6's top-level
// "parse" convenience). For incremental use — input arriving in chunks —
// construct a Parser and Builder directly.
func Parse(data []byte, handle memres.Handle, opts ParseOptions) (Value, error) {
	b := NewBuilder(handle, opts)
	p := NewParser(b, handle, opts)
	if _, err := p.Write(data); err != nil {
		return Value{}, resolveStopReason(err, b)
	}
	if err := p.Finish(); err != nil {
		return Value{}, resolveStopReason(err, b)
	}
	return b.Value()
}

// ParseString is Parse over a string, avoiding the caller needing its own
// []byte conversion.
func ParseString(s string, handle memres.Handle, opts ParseOptions) (Value, error) {
	return Parse([]byte(s), handle, opts)
}

// resolveStopReason replaces a generic ErrStopped ParseError with the
// Builder's specific reason (e.g. ErrDuplicateKey) when the parser halted
// because the Handler returned false, preserving the original position.
func resolveStopReason(err error, b *Builder) error {
	pe, ok := err.(*ParseError)
	if !ok || !errors.Is(pe.Code, ErrStopped) || b.Err() == nil {
		return err
	}
	return &ParseError{Code: b.Err(), Offset: pe.Offset, Line: pe.Line, Column: pe.Column}
}

// Serialize renders v as JSON text in one call, allocating the output
// buffer as needed (spec §6's top-level "serialize" convenience). For
// incremental use — writing into a fixed-size buffer across multiple
// calls — construct a Serializer directly.
func Serialize(v Value, opts SerializeOptions) []byte {
	s := NewSerializer(opts)
	s.Reset(v)
	out := make([]byte, 0, 256)
	var buf [4096]byte
	for {
		n, _ := s.Read(buf[:])
		out = append(out, buf[:n]...)
		if s.Done() {
			return out
		}
	}
}

// ToString is Serialize returning a string.
func ToString(v Value, opts SerializeOptions) string {
	return string(Serialize(v, opts))
}
