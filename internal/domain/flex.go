package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is an optional numeric field from an untrusted payload. Numbers and
// numeric strings are accepted; anything else leaves it unset.
type Number struct {
	Value float64
	Valid bool
}

// NewNumber returns a set Number.
func NewNumber(v float64) Number {
	return Number{Value: v, Valid: true}
}

// Float returns the value, or 0 when unset.
func (n Number) Float() float64 {
	if !n.Valid {
		return 0
	}
	return n.Value
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	if v, ok := parseFlexFloat(data); ok {
		*n = Number{Value: v, Valid: true}
	}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Text is a string field that tolerates scalars of other JSON types.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	*t = Text(flexString(data))
	return nil
}

// Tags is a list of taxonomy tags. Null or non-array values decode to an empty list.
type Tags []string

func (t *Tags) UnmarshalJSON(data []byte) error {
	*t = Tags{}
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}
	for _, item := range items {
		if s := flexString(item); s != "" {
			*t = append(*t, s)
		}
	}
	return nil
}

// Strings returns the tags as a non-nil slice.
func (t Tags) Strings() []string {
	if t == nil {
		return []string{}
	}
	return []string(t)
}

// Conditions holds conservation conditions, which products carry either as
// one text or as a list of texts.
type Conditions struct {
	Text   string
	Items  []string
	IsList bool
}

func (c *Conditions) UnmarshalJSON(data []byte) error {
	*c = Conditions{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var tags Tags
		if err := tags.UnmarshalJSON(trimmed); err != nil {
			return err
		}
		*c = Conditions{Items: tags.Strings(), IsList: true}
		return nil
	}
	c.Text = flexString(trimmed)
	return nil
}

func (c Conditions) MarshalJSON() ([]byte, error) {
	if c.IsList {
		return json.Marshal(Tags(c.Items).Strings())
	}
	return json.Marshal(c.Text)
}

// String joins a list with ", ".
func (c Conditions) String() string {
	if c.IsList {
		return strings.Join(c.Items, ", ")
	}
	return c.Text
}

// Advisory renders the conditions as a storage advisory line. A list is
// reported as one medium-level advisory.
func (c Conditions) Advisory() string {
	if c.IsList {
		return "m" + c.String()
	}
	return c.Text
}

func flexString(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	if data[0] == '{' || data[0] == '[' {
		return ""
	}
	return string(data)
}

func parseFlexFloat(data []byte) (float64, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		return f, finite(f)
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return ParseFloat(s)
	}
	return 0, false
}

// ParseFloat parses a trimmed decimal string, rejecting NaN and infinities.
func ParseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, finite(f)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
