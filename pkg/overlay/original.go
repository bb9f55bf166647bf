package overlay

import (
	"encoding/json"
	"fmt"

	"github.com/arthur-debert/branchtint/pkg/internal/jsonutil"
)

// Original is the value a key held when the overlay first managed it. The
// zero value is Absent.
type Original struct {
	present bool
	value   any
}

// Absent records that the key did not exist
func Absent() Original {
	return Original{}
}

// Present records that the key existed with value v. v may be nil, which
// is distinct from Absent.
func Present(v any) Original {
	return Original{present: true, value: jsonutil.Clone(v)}
}

// IsPresent reports whether the key existed
func (o Original) IsPresent() bool {
	return o.present
}

// Get returns the recorded value and whether the key existed
func (o Original) Get() (any, bool) {
	return jsonutil.Clone(o.value), o.present
}

func (o Original) String() string {
	if !o.present {
		return "<missing>"
	}
	return fmt.Sprintf("%v", o.value)
}

type originalJSON struct {
	Missing bool            `json:"missing,omitempty"`
	Value   json.RawMessage `json:"value,omitempty"`
}

// MarshalJSON encodes Absent as {"missing":true} and Present(v) as
// {"value":v}
func (o Original) MarshalJSON() ([]byte, error) {
	if !o.present {
		return []byte(`{"missing":true}`), nil
	}
	raw, err := json.Marshal(o.value)
	if err != nil {
		return nil, err
	}
	return json.Marshal(originalJSON{Value: raw})
}

// UnmarshalJSON decodes the form written by MarshalJSON. An object with a
// "value" member is Present even when the member is null.
func (o *Original) UnmarshalJSON(data []byte) error {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}

	raw, ok := members["value"]
	if !ok {
		*o = Absent()
		return nil
	}

	var v any
	if err := jsonutil.Decode(raw, &v); err != nil {
		return err
	}
	*o = Original{present: true, value: v}
	return nil
}
