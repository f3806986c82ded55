package folio

import "multa-gateway/pkg/luhn"

// Mode selects the folio wire layout. The two layouts are a fixed contract
// with the backend's folio parser and must not be reordered.
type Mode string

const (
	// ModeOnline produces an 11-digit folio: [type:2][agent:3][time:5][check:1].
	ModeOnline Mode = "online"
	// ModeOffline produces a 14-digit folio: [agent:3][type:2][time:8][check:1].
	// The longer time component lowers collision probability, since folios
	// minted offline cannot be checked against a live sequence.
	ModeOffline Mode = "offline"
)

// Folio is the immutable client-generated identifier for one violation.
// Once a citizen has seen it on a printed ticket it is never regenerated,
// even if the backend later reports a conflict.
type Folio string

// String implements fmt.Stringer.
func (f Folio) String() string { return string(f) }

// Mode infers the layout from the length. Unknown lengths report ModeOnline
// and fail Valid.
func (f Folio) Mode() Mode {
	if len(f) == lenOffline {
		return ModeOffline
	}
	return ModeOnline
}

// Valid reports whether the folio has a known layout and a correct trailing
// check digit.
func (f Folio) Valid() bool {
	if len(f) != lenOnline && len(f) != lenOffline {
		return false
	}
	ok, err := luhn.ValidateString(string(f))
	return err == nil && ok
}

const (
	lenOnline  = 11
	lenOffline = 14
)
