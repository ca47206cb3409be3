package cif

import (
	"fmt"
	"regexp"
	"strconv"
)

var tokenPattern = regexp.MustCompile(`"([^"]*)"|(-?[0-9]+(?:\.[0-9]+)?)`)

type token struct {
	text   string
	quoted bool
}

func tokens(value string) []token {
	var out []token
	for _, m := range tokenPattern.FindAllStringSubmatch(value, -1) {
		if m[0][0] == '"' {
			out = append(out, token{text: m[1], quoted: true})
		} else {
			out = append(out, token{text: m[2]})
		}
	}
	return out
}

func invalid(field, value, reason string) error {
	return fmt.Errorf("%w: %s %q: %s", ErrInvalidValue, field, value, reason)
}

func single(field, value string) (token, error) {
	t := tokens(value)
	if len(t) != 1 {
		return token{}, invalid(field, value, fmt.Sprintf("want 1 value, got %d", len(t)))
	}
	return t[0], nil
}

func parseString(field, value string) (string, error) {
	t, err := single(field, value)
	if err != nil {
		return "", err
	}
	return t.text, nil
}

func parseStrings(field, value string) ([]string, error) {
	t := tokens(value)
	if len(t) == 0 {
		return nil, invalid(field, value, "no values")
	}
	out := make([]string, len(t))
	for i := range t {
		out[i] = t[i].text
	}
	return out, nil
}

func parseUint(field, value string, bits int) (uint64, error) {
	t, err := single(field, value)
	if err != nil {
		return 0, err
	}
	return uintToken(field, t, bits)
}

func uintToken(field string, t token, bits int) (uint64, error) {
	if t.quoted {
		return 0, invalid(field, t.text, "want a number")
	}
	v, err := strconv.ParseUint(t.text, 10, bits)
	if err != nil {
		return 0, invalid(field, t.text, err.Error())
	}
	return v, nil
}

func parseUint8(field, value string) (uint8, error) {
	v, err := parseUint(field, value, 8)
	return uint8(v), err
}

func parseBool(field, value string) (bool, error) {
	t, err := single(field, value)
	if err != nil {
		return false, err
	}
	switch {
	case !t.quoted && t.text == "0":
		return false, nil
	case !t.quoted && t.text == "1":
		return true, nil
	}
	return false, invalid(field, value, "want 0 or 1")
}

func parseFloat32(field, value string) (float32, error) {
	t, err := single(field, value)
	if err != nil {
		return 0, err
	}
	if t.quoted {
		return 0, invalid(field, value, "want a number")
	}
	v, err := strconv.ParseFloat(t.text, 32)
	if err != nil {
		return 0, invalid(field, value, err.Error())
	}
	return float32(v), nil
}

func parseUint8s(field, value string) ([]uint8, error) {
	t := tokens(value)
	out := make([]uint8, 0, len(t))
	for _, tok := range t {
		v, err := uintToken(field, tok, 8)
		if err != nil {
			return nil, err
		}
		out = append(out, uint8(v))
	}
	return out, nil
}

// Coord is a signed tile offset relative to an object's anchor.
type Coord struct {
	X, Y int8
}

// Area is the rectangle spanned by two coordinates, "x0 y0 x1 y1".
type Area struct {
	From, To Coord
}

func parseArea(field, value string) (Area, error) {
	t := tokens(value)
	if len(t) != 4 {
		return Area{}, invalid(field, value, fmt.Sprintf("want 4 values, got %d", len(t)))
	}
	var v [4]int8
	for i, tok := range t {
		if tok.quoted {
			return Area{}, invalid(field, value, "want numbers")
		}
		n, err := strconv.ParseInt(tok.text, 10, 8)
		if err != nil {
			return Area{}, invalid(field, value, err.Error())
		}
		v[i] = int8(n)
	}
	return Area{From: Coord{v[0], v[1]}, To: Coord{v[2], v[3]}}, nil
}

// keyed splits "<id> rest..." lines used by the id-indexed fields.
func keyed(field, value string) (uint8, []token, error) {
	t := tokens(value)
	if len(t) == 0 {
		return 0, nil, invalid(field, value, "missing id")
	}
	id, err := uintToken(field, t[0], 8)
	if err != nil {
		return 0, nil, err
	}
	return uint8(id), t[1:], nil
}

// fieldSet tracks which fields a section assigned.
type fieldSet map[string]bool

func (f fieldSet) missing(required ...string) []string {
	var out []string
	for _, name := range required {
		if !f[lower(name)] {
			out = append(out, name)
		}
	}
	return out
}
