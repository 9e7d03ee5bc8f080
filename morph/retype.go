package morph

import "github.com/prop-tools/propbin/bin"

// TypeValue retypes a container's element type in place, coercing every
// stored element and returning the worst per-element result.  Non-container
// values are untouched.
func TypeValue(v bin.Value, newType bin.Type) Result {
	switch v := v.(type) {
	case *bin.Option:
		return retypeElements(&v.ValueType, v.Items, newType)
	case *bin.List:
		return retypeElements(&v.ValueType, v.Items, newType)
	case *bin.List2:
		return retypeElements(&v.ValueType, v.Items, newType)
	case *bin.Map:
		if v.ValueType == newType {
			return Unchanged
		}
		if newType.IsContainer() {
			return Fail
		}
		v.ValueType = newType
		worst := Unchanged
		for i := range v.Items {
			item, r := Value(v.Items[i].Value, newType)
			v.Items[i].Value = item
			if r < worst {
				worst = r
			}
		}
		return worst
	default:
		return Unchanged
	}
}

// TypeKey retypes a map's key type in place.  Keys must stay primitive;
// everything that is not a map is untouched.
func TypeKey(v bin.Value, newType bin.Type) Result {
	m, ok := v.(*bin.Map)
	if !ok {
		return Unchanged
	}
	if m.KeyType == newType {
		return Unchanged
	}
	if !newType.IsPrimitive() {
		return Fail
	}
	m.KeyType = newType
	worst := Unchanged
	for i := range m.Items {
		key, r := Value(m.Items[i].Key, newType)
		m.Items[i].Key = key
		if r < worst {
			worst = r
		}
	}
	return worst
}

func retypeElements(valueType *bin.Type, items bin.ElementList, newType bin.Type) Result {
	if *valueType == newType {
		return Unchanged
	}
	if newType.IsContainer() {
		return Fail
	}
	*valueType = newType
	worst := Unchanged
	for i := range items {
		item, r := Value(items[i], newType)
		items[i] = item
		if r < worst {
			worst = r
		}
	}
	return worst
}
