package entities

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Common errors
var (
	ErrRecipeNotFound = errors.New("recipe not found")
	ErrValidation     = errors.New("name and ingredients are required")
	ErrInvalidJSON    = errors.New("invalid JSON format")
	ErrStoreRead      = errors.New("cannot read recipes")
	ErrStoreCreate    = errors.New("cannot create recipes file")
	ErrStoreWrite     = errors.New("cannot write recipes")
)

// Field names with server-side meaning
const (
	FieldID          = "id"
	FieldName        = "name"
	FieldIngredients = "ingredients"
)

// Recipe is a single stored record held as the JSON text it was submitted
// or stored as. Keys keep their order and numbers their spelling; only id,
// name and ingredients are ever looked at. A record is normally an object,
// but an update may store any JSON value as given.
type Recipe []byte

// Collection is the full ordered set of recipes held in the backing file
type Collection []Recipe

// MarshalJSON returns the record text unchanged
func (r Recipe) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

// UnmarshalJSON keeps a copy of the raw element text
func (r *Recipe) UnmarshalJSON(data []byte) error {
	if r == nil {
		return errors.New("entities.Recipe: UnmarshalJSON on nil pointer")
	}
	*r = append((*r)[0:0], data...)
	return nil
}

// Get returns the value at key, which does not exist for non-objects
func (r Recipe) Get(key string) gjson.Result {
	if !r.IsObject() {
		return gjson.Result{}
	}
	return gjson.GetBytes(r, key)
}

// IsObject reports whether the record is a JSON object
func (r Recipe) IsObject() bool {
	return gjson.ParseBytes(r).IsObject()
}

// ID returns the recipe id, or "" when it is absent or not a string
func (r Recipe) ID() string {
	id, _ := r.lookupID()
	return id
}

func (r Recipe) lookupID() (string, bool) {
	v := r.Get(FieldID)
	if v.Type != gjson.String {
		return "", false
	}
	return v.Str, true
}

// WithID returns a copy with the id key set. An existing id keeps its
// position; a missing one is added last. Non-objects are returned as is.
func (r Recipe) WithID(id string) (Recipe, error) {
	if !r.IsObject() {
		return r, nil
	}
	out, err := sjson.SetBytes(r, FieldID, id)
	if err != nil {
		return nil, err
	}
	return Recipe(out), nil
}

// HasRequiredFields reports whether name and ingredients are both present and truthy
func (r Recipe) HasRequiredFields() bool {
	return Truthy(r.Get(FieldName)) && Truthy(r.Get(FieldIngredients))
}

// IndexOf returns the position of the first recipe with the given id, or -1
func (c Collection) IndexOf(id string) int {
	for i, r := range c {
		if v, ok := r.lookupID(); ok && v == id {
			return i
		}
	}
	return -1
}

// Truthy reports whether a JSON value counts as set: missing values, null,
// false, the empty string, zero and NaN do not; everything else does.
func Truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		// out of range literals parse to ±Inf
		return v.Num != 0 && !math.IsNaN(v.Num)
	default:
		return true
	}
}

// DecodePayload checks a request body. A body that is not valid JSON, or is
// JSON null, fails with ErrInvalidJSON. Any other value is returned as text.
func DecodePayload(body []byte) (Recipe, error) {
	body = bytes.TrimSpace(body)
	if !gjson.ValidBytes(body) || gjson.ParseBytes(body).Type == gjson.Null {
		return nil, ErrInvalidJSON
	}
	return Recipe(append([]byte(nil), body...)), nil
}

// DecodeCollection parses the backing file contents. The top level must be
// an array; its elements are kept as raw text.
func DecodeCollection(data []byte) (Collection, error) {
	var coll Collection
	if err := json.Unmarshal(data, &coll); err != nil {
		return nil, err
	}
	if coll == nil {
		coll = Collection{}
	}
	return coll, nil
}

// EncodeCollection renders the collection with two-space indentation and
// without HTML escaping. Records keep their key order.
func EncodeCollection(coll Collection) ([]byte, error) {
	if coll == nil {
		coll = Collection{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(coll); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
