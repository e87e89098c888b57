package schema

import (
	"reflect"
	"strings"
)

// jsonKey reports the key a struct field is known by. squash is set for
// fields whose keys are flattened into the parent: anonymous struct fields
// without a name, and fields tagged with the squash option.
func jsonKey(fld reflect.StructField) (name string, squash, skip bool) {
	tag := fld.Tag.Get("json")
	name, opts, _ := strings.Cut(tag, ",")
	if name == "-" && opts == "" {
		return "", false, true
	}
	for _, opt := range strings.Split(opts, ",") {
		if opt == "squash" {
			return "", true, false
		}
	}
	if name == "" && fld.Anonymous && derefType(fld.Type).Kind() == reflect.Struct {
		return "", true, false
	}
	if name == "" {
		name = fld.Name
	}
	return name, false, false
}

func derefType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

// JSONFields returns the JSON keys of struct type t in declaration order.
// Squashed fields contribute their own keys. Non-struct types have no keys.
func JSONFields(t reflect.Type) []string {
	t = derefType(t)
	if t.Kind() != reflect.Struct {
		return nil
	}
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		fld := t.Field(i)
		if !fld.IsExported() && !fld.Anonymous {
			continue
		}
		name, squash, skip := jsonKey(fld)
		switch {
		case skip:
			continue
		case squash:
			keys = append(keys, JSONFields(fld.Type)...)
		default:
			keys = append(keys, name)
		}
	}
	return keys
}

// FieldByJSONName finds the field of struct value v that is serialised under
// key, looking through squashed fields. v may be a pointer.
func FieldByJSONName(v reflect.Value, key string) (reflect.Value, bool) {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return reflect.Value{}, false
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		fld := t.Field(i)
		if !fld.IsExported() && !fld.Anonymous {
			continue
		}
		name, squash, skip := jsonKey(fld)
		switch {
		case skip:
			continue
		case squash:
			if found, ok := FieldByJSONName(v.Field(i), key); ok {
				return found, true
			}
		case name == key:
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// IsInteger reports whether t (or what it points to) is an integer kind.
func IsInteger(t reflect.Type) bool {
	switch derefType(t).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// FieldTypeByJSONName is the type-level counterpart of FieldByJSONName.
func FieldTypeByJSONName(t reflect.Type, key string) (reflect.Type, bool) {
	t = derefType(t)
	if t.Kind() != reflect.Struct {
		return nil, false
	}
	for i := 0; i < t.NumField(); i++ {
		fld := t.Field(i)
		if !fld.IsExported() && !fld.Anonymous {
			continue
		}
		name, squash, skip := jsonKey(fld)
		switch {
		case skip:
			continue
		case squash:
			if found, ok := FieldTypeByJSONName(fld.Type, key); ok {
				return found, true
			}
		case name == key:
			return fld.Type, true
		}
	}
	return nil, false
}
