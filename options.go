package arbor

// DuplicateKeyPolicy controls how the parser/builder treat repeated object
// keys (spec §4.2, §7, and DESIGN.md OQ-1).
type DuplicateKeyPolicy int

const (
	// DuplicateKeysTolerant collapses duplicate keys, last value wins, and
	// never surfaces ErrDuplicateKey. This is the default, matching spec
	// §7's "only surfaced if strict mode enabled; default: tolerate."
	DuplicateKeysTolerant DuplicateKeyPolicy = iota
	// DuplicateKeysReject causes the parser to fail with ErrDuplicateKey
	// the moment a repeated key is seen within one object.
	DuplicateKeysReject
)

// DefaultMaxDepth is the default nesting limit (spec §4.3, §6).
const DefaultMaxDepth = 32

// MaxDepthCeiling is the hard ceiling on MaxDepth (spec §6).
const MaxDepthCeiling = 65535

// ParseOptions configures the incremental parser (spec §4.3).
type ParseOptions struct {
	// AllowComments permits "//" line comments and "/* */" block comments
	// anywhere whitespace is permitted.
	AllowComments bool
	// AllowTrailingCommas permits one trailing comma before ']' or '}'.
	AllowTrailingCommas bool
	// AllowInvalidUTF8 skips UTF-8 validation inside strings. Bare control
	// characters below 0x20 are still rejected.
	AllowInvalidUTF8 bool
	// MaxDepth caps container nesting. Zero means DefaultMaxDepth. Values
	// above MaxDepthCeiling are clamped down to it.
	MaxDepth int
	// DuplicateKeys selects the duplicate-object-key policy.
	DuplicateKeys DuplicateKeyPolicy
}

func (o ParseOptions) maxDepth() int {
	d := o.MaxDepth
	if d <= 0 {
		d = DefaultMaxDepth
	}
	if d > MaxDepthCeiling {
		d = MaxDepthCeiling
	}
	return d
}

// NonFiniteMode controls how the serializer emits NaN and +/-Inf (spec
// §4.5).
type NonFiniteMode int

const (
	// NonFiniteAsNull emits the JSON literal null for NaN/Inf values,
	// which is the only RFC 8259-legal representation. Default.
	NonFiniteAsNull NonFiniteMode = iota
	// NonFiniteAsLiteral emits the unquoted words nan, inf, -inf — a
	// common, non-standard extension some JSON consumers accept.
	NonFiniteAsLiteral
	// NonFiniteAsQuotedString emits NaN/Inf as quoted strings ("nan",
	// "inf", "-inf").
	NonFiniteAsQuotedString
)

// SerializeOptions configures the resumable serializer (spec §4.5).
type SerializeOptions struct {
	// NonFinite selects how NaN/+Inf/-Inf doubles are written.
	NonFinite NonFiniteMode
}
