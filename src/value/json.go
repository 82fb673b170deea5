package value

import (
	"bytes"
	"math"

	"github.com/goccy/go-json"
)

// MarshalJSON renders a value as JSON. Unnamed length-one atomic vectors become scalars,
// other vectors become arrays, and named vectors and lists become objects with their
// names in order. NA becomes null; non-finite doubles become the strings R prints.
func MarshalJSON(v Value) ([]byte, error) {
	return json.Marshal(jsonData(v))
}

type orderedObject struct {
	keys   []string
	values []interface{}
}

func (o orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(o.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func jsonData(v Value) interface{} {
	vec, ok := v.(Vector)
	if !ok {
		if IsNull(v) {
			return nil
		}
		return Deparse(v)
	}
	elems := make([]interface{}, vec.Len())
	for i := range elems {
		elems[i] = jsonElem(vec, i)
	}
	if names := Names(vec); names != nil {
		o := orderedObject{keys: make([]string, len(elems)), values: elems}
		for i := range elems {
			o.keys[i] = names.At(i)
		}
		return o
	}
	if len(elems) == 1 && IsAtomic(vec) {
		return elems[0]
	}
	return elems
}

func jsonElem(v Vector, i int) interface{} {
	if v.IsNA(i) {
		return nil
	}
	switch v := v.(type) {
	case *Logical:
		return v.At(i)
	case *Integer:
		return v.At(i)
	case *Double:
		if x := v.At(i); math.IsNaN(x) || math.IsInf(x, 0) {
			return FormatDouble(x, 15)
		}
		return v.At(i)
	case *Complex:
		return FormatComplex(v.At(i), 15)
	case *Character:
		return v.At(i)
	case *Raw:
		return int(v.At(i))
	case *List:
		return jsonData(v.At(i))
	case *Expression:
		return Deparse(v.At(i))
	}
	return nil
}
