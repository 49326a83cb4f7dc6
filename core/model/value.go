package model

import (
	"encoding/json"
	"errors"
)

// Value is a metric that may be unavailable. An unavailable value carries the
// reason instead of a substituted zero.
type Value struct {
	Value     float64
	Available bool
	Reason    Reason
	Detail    string
	// Floor is set for InsufficientData results.
	Floor int
}

// Available wraps a computed metric.
func Available(v float64) Value { return Value{Value: v, Available: true} }

// Unavailable records why a metric could not be computed.
func Unavailable(err error) Value {
	v := Value{Reason: ReasonOf(err)}
	if err != nil {
		v.Detail = err.Error()
	}
	var ide *InsufficientDataError
	if errors.As(err, &ide) {
		v.Floor = ide.Floor
	}
	return v
}

// ValueOf builds a Value from a computation result.
func ValueOf(v float64, err error) Value {
	if err != nil {
		return Unavailable(err)
	}
	return Available(v)
}

// Get returns the value and whether it is available.
func (v Value) Get() (float64, bool) { return v.Value, v.Available }

// Sub returns v - o, unavailable when either side is.
func (v Value) Sub(o Value) Value {
	if !v.Available {
		return v
	}
	if !o.Available {
		return o
	}
	return Available(v.Value - o.Value)
}

type valueJSON struct {
	Value       *float64 `json:"value,omitempty"`
	Unavailable Reason   `json:"unavailable,omitempty"`
	Detail      string   `json:"detail,omitempty"`
	Floor       int      `json:"floor,omitempty"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.Available {
		f := v.Value
		return json.Marshal(valueJSON{Value: &f})
	}
	return json.Marshal(valueJSON{Unavailable: v.Reason, Detail: v.Detail, Floor: v.Floor})
}

func (v *Value) UnmarshalJSON(b []byte) error {
	var raw valueJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Value != nil {
		*v = Available(*raw.Value)
		return nil
	}
	*v = Value{Reason: raw.Unavailable, Detail: raw.Detail, Floor: raw.Floor}
	return nil
}
