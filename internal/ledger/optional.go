package ledger

import (
	"bytes"
	"encoding/json"
)

// Optional distinguishes a value that was never provided from one that was
// provided, possibly as its zero value. The zero Optional is unset.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a set Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// IsSet reports whether a value was provided.
func (o Optional[T]) IsSet() bool { return o.set }

// Get returns the value and whether it was provided.
func (o Optional[T]) Get() (T, bool) { return o.value, o.set }

// Or returns the value if set, otherwise def.
func (o Optional[T]) Or(def T) T {
	if !o.set {
		return def
	}

	return o.value
}

// IsZero lets `omitzero` drop unset fields when encoding.
func (o Optional[T]) IsZero() bool { return !o.set }

// UnmarshalJSON marks the field as set. A JSON null sets the zero value.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	var v T
	if !bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
	}

	o.value = v
	o.set = true

	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}

	return json.Marshal(o.value)
}
