package planet

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Value is one cell of a comparison table: a number, a text label, or
// unknown. It encodes to JSON as a bare number or string.
type Value struct {
	Num  *float64
	Text string
}

func Number(v float64) Value { return Value{Num: F(v)} }

func Text(s string) Value { return Value{Text: text(s)} }

// OptionalNumber returns Number(*p), or an unknown value when p is nil or
// not finite.
func OptionalNumber(p *float64) Value {
	if p == nil || !finite(*p) {
		return Unknown()
	}
	return Number(*p)
}

func Unknown() Value { return Value{Text: UnknownText} }

func (v Value) IsNumeric() bool { return v.Num != nil }

func (v Value) IsUnknown() bool { return v.Num == nil && v.Text == UnknownText }

// Float returns the numeric value, or 0 for text and unknown values.
func (v Value) Float() float64 {
	if v.Num == nil {
		return 0
	}
	return *v.Num
}

func (v Value) String() string {
	if v.Num != nil {
		return strconv.FormatFloat(*v.Num, 'f', -1, 64)
	}
	return v.Text
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.Num != nil {
		return json.Marshal(*v.Num)
	}
	return json.Marshal(v.Text)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Value{Text: s}
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*v = Unknown()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Number(f)
	return nil
}

//Personal.AI order the ending
