package arbor

import (
	"errors"
	"math"
	"strconv"

	"github.com/arbor-json/arbor/memres"
)

// numberState names the number subparser's states (spec §4.3): a
// dedicated subordinate state machine driven one byte at a time by the
// top-level parser whenever it is inside a numeric literal, so a number
// split across two write() calls resumes exactly where it left off.
type numberState int8

const (
	numInit numberState = iota
	numSign
	numMantZero
	numMantNonzero
	numFracFirst
	numFracMore
	numExpSign
	numExpFirst
	numExpMore
)

// numberDecoder accumulates a numeric literal's raw text alongside the
// bookkeeping (sign, whether a fraction or exponent was seen) needed to
// classify it once complete. Classification then delegates the actual
// decimal<->binary conversion to strconv, which — like the teacher's
// parser.go, which already called strconv.ParseInt/ParseFloat on its
// accumulated literal buffer — implements correctly-rounded decimal
// parsing and shortest-round-trip formatting internally (Go's strconv has
// used an Eisel-Lemire-class algorithm for ParseFloat and a Ryū-class
// algorithm for FormatFloat's shortest mode since Go 1.16); reimplementing
// either here would duplicate, at real risk of subtle bugs, logic the
// standard library already gets right. See DESIGN.md.
type numberDecoder struct {
	state    numberState
	neg      bool
	sawFrac  bool
	sawExp   bool
	digits   int
	raw      []byte
}

func (d *numberDecoder) reset() {
	d.state = numInit
	d.neg = false
	d.sawFrac = false
	d.sawExp = false
	d.digits = 0
	d.raw = d.raw[:0]
}

// feed advances the subparser by one byte of a numeric literal. The
// caller (the top-level parser) is responsible for routing only bytes
// that belong to a number into feed, and for knowing — from the state
// returned — when the literal is syntactically complete (states
// numMantZero, numMantNonzero, numFracMore, numExpMore are all terminal;
// any other state is a syntax error when a following byte ends the
// literal, and an unexpected end when the input itself ends there).
func (d *numberDecoder) feed(c byte) error {
	d.raw = append(d.raw, c)
	switch d.state {
	case numInit:
		if c == '-' {
			d.neg = true
			d.state = numSign
			return nil
		}
		return d.feedFirstMantDigit(c)
	case numSign:
		return d.feedFirstMantDigit(c)
	case numMantZero, numMantNonzero:
		switch {
		case isDigit(c) && d.state == numMantNonzero:
			d.digits++
			return nil
		case c == '.':
			d.state = numFracFirst
			return nil
		case c == 'e' || c == 'E':
			d.state = numExpSign
			return nil
		}
		return ErrSyntax
	case numFracFirst:
		if !isDigit(c) {
			return ErrSyntax
		}
		d.sawFrac = true
		d.digits++
		d.state = numFracMore
		return nil
	case numFracMore:
		switch {
		case isDigit(c):
			d.digits++
			return nil
		case c == 'e' || c == 'E':
			d.state = numExpSign
			return nil
		}
		return ErrSyntax
	case numExpSign:
		if c == '+' || c == '-' {
			d.sawExp = true
			d.state = numExpFirst
			return nil
		}
		if isDigit(c) {
			d.sawExp = true
			d.state = numExpMore
			return nil
		}
		return ErrSyntax
	case numExpFirst:
		if !isDigit(c) {
			return ErrExponentOverflow
		}
		d.state = numExpMore
		return nil
	case numExpMore:
		if isDigit(c) {
			return nil
		}
		return ErrSyntax
	}
	return ErrSyntax
}

func (d *numberDecoder) feedFirstMantDigit(c byte) error {
	switch {
	case c == '0':
		d.state = numMantZero
	case isDigit(c):
		d.state = numMantNonzero
		d.digits++
	default:
		return ErrExpectedValue
	}
	return nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// terminal reports whether the subparser is in a state where the literal
// could legally end right now.
func (d *numberDecoder) terminal() bool {
	switch d.state {
	case numMantZero, numMantNonzero, numFracMore, numExpMore:
		return true
	}
	return false
}

// classify finalizes the literal into a Value, per spec §8's concrete
// scenario ("[1,2,3]" is an array of three int64s) and boost.json's actual
// behavior: a non-negative integer literal is int64 if it fits, and only
// spills into uint64 once it overflows int64's range (i.e. values in
// (2^63-1, 2^64-1]). A negative literal is always attempted as int64, the
// unsigned path having no meaning for it. Anything with a fraction or
// exponent, or that overflows both integer parses, is a double.
func (d *numberDecoder) classify(h memres.Handle) (Value, error) {
	text := string(d.raw)
	if !d.sawFrac && !d.sawExp {
		n, err := strconv.ParseInt(text, 10, 64)
		if err == nil {
			return Int64(h, n), nil
		}
		if !errors.Is(err, strconv.ErrRange) {
			return Value{}, ErrSyntax
		}
		if !d.neg {
			u, err := strconv.ParseUint(text, 10, 64)
			if err == nil {
				return Uint64(h, u), nil
			}
			if !errors.Is(err, strconv.ErrRange) {
				return Value{}, ErrSyntax
			}
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Value{}, ErrSyntax
	}
	if math.IsInf(f, 0) {
		return Value{}, ErrNumberOutOfRange
	}
	return Double(h, f), nil
}
