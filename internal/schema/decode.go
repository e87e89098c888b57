package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
)

// squashedSegment marks a namespace segment produced by a squashed field.
// It never appears in a reported path.
const squashedSegment = "~"

// Global validator instance for reuse
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, squash, skip := jsonKey(fld)
		switch {
		case skip:
			return "-"
		case squash:
			return squashedSegment
		}
		return name
	})
	return v
}

// DecodeOptions controls how a payload is matched against its schema.
type DecodeOptions struct {
	// Strict reports keys that the schema does not declare.
	Strict bool
	// Scope is copied into the returned *Error.
	Scope Scope
}

// Decode converts input into a T and validates it.
func Decode[T any](input any, opts DecodeOptions) (T, error) {
	var out T
	err := DecodeInto(input, &out, opts)
	return out, err
}

// DecodeInto is Decode for callers that already hold a target pointer.
func DecodeInto(input any, out any, opts DecodeOptions) error {
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:  "json",
		Squash:   true,
		Result:   out,
		Metadata: &md,
		MatchName: func(mapKey, fieldName string) bool {
			return mapKey == fieldName
		},
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			coerceStrings,
			rejectFractions,
			rejectOverflow,
			mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to build decoder: %w", err)
	}

	if input == nil {
		input = map[string]any{}
	}

	var issues []Issue
	decodeErr := dec.Decode(input)
	if decodeErr != nil {
		issues = append(issues, decodeIssues(decodeErr)...)
	}
	if opts.Strict {
		issues = append(issues, unknownKeyIssues(md.Unused)...)
	}

	// Rules only run against a structurally sound value; a field that failed
	// to decode would otherwise also be reported as missing.
	if decodeErr == nil {
		issues = append(issues, ruleIssuesOf(out)...)
	}

	if len(issues) > 0 {
		return &Error{Scope: opts.Scope, Issues: issues}
	}
	return nil
}

// Roundtrip serialises v to JSON and decodes it back with the same checks
// Decode applies. The returned value is the re-decoded copy, so anything
// that does not survive the schema never leaves the process.
func Roundtrip[T any](v T, opts DecodeOptions) (T, error) {
	var zero T
	raw, err := json.Marshal(v)
	if err != nil {
		return zero, fmt.Errorf("failed to encode %s: %w", opts.Scope, err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return zero, fmt.Errorf("failed to decode %s: %w", opts.Scope, err)
	}
	return Decode[T](generic, opts)
}

// ruleIssuesOf runs the struct rules of v. Values that are not structs
// have no rules.
func ruleIssuesOf(v any) []Issue {
	target, root, ok := structTarget(v)
	if !ok {
		return nil
	}
	if err := validate.Struct(target); err != nil {
		return ruleIssues(err, root)
	}
	return nil
}

// structTarget returns a pointer to the struct behind out, along with the
// struct's type name, which prefixes every validator namespace.
func structTarget(out any) (any, string, bool) {
	v := reflect.ValueOf(out)
	if !v.IsValid() {
		return nil, "", false
	}
	if v.Kind() != reflect.Ptr {
		if v.Kind() != reflect.Struct {
			return nil, "", false
		}
		return out, v.Type().Name(), true
	}
	for v.Kind() == reflect.Ptr && !v.IsNil() && v.Elem().Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return nil, "", false
	}
	return v.Interface(), v.Elem().Type().Name(), true
}

// coerceStrings turns numeric and boolean strings into the target kind.
// Query strings and route parameters only ever carry strings.
func coerceStrings(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	s := strings.TrimSpace(reflect.ValueOf(data).String())
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return u, nil
		}
		// Negative values are passed on so the range check can report them.
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
	case reflect.Float32, reflect.Float64:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, nil
		}
	case reflect.Bool:
		if b, err := strconv.ParseBool(s); err == nil {
			return b, nil
		}
	}
	return data, nil
}

var errFraction = errors.New("Expected integer, received float") //nolint:staticcheck // surfaced verbatim to callers

// rejectFractions stops 4.5 from silently becoming 4.
func rejectFractions(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.Float64 && from.Kind() != reflect.Float32 {
		return data, nil
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		f := reflect.ValueOf(data).Float()
		if f != math.Trunc(f) {
			return nil, errFraction
		}
	}
	return data, nil
}

// rejectOverflow stops a number outside the target's range from wrapping
// around. It runs after coerceStrings, so query values arrive as numbers.
func rejectOverflow(from, to reflect.Type, data any) (any, error) {
	v := reflect.ValueOf(data)
	target := reflect.Zero(to)

	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		lo, hi := intRange(to)
		switch from.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if target.OverflowInt(v.Int()) {
				return nil, rangeError(v.Int() < 0, lo, hi)
			}
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if u := v.Uint(); u > math.MaxInt64 || target.OverflowInt(int64(u)) {
				return nil, rangeError(false, lo, hi)
			}
		case reflect.Float32, reflect.Float64:
			// 2^63 is the first float64 that no longer fits in an int64.
			if f := v.Float(); f < math.MinInt64 || f >= math.MaxInt64 || target.OverflowInt(int64(f)) {
				return nil, rangeError(f < 0, lo, hi)
			}
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		hi := uintMax(to)
		switch from.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			if i := v.Int(); i < 0 || target.OverflowUint(uint64(i)) {
				return nil, uintRangeError(i < 0, hi)
			}
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if target.OverflowUint(v.Uint()) {
				return nil, uintRangeError(false, hi)
			}
		case reflect.Float32, reflect.Float64:
			if f := v.Float(); f < 0 || f >= math.MaxUint64 || target.OverflowUint(uint64(f)) {
				return nil, uintRangeError(f < 0, hi)
			}
		}
	case reflect.Float32:
		if from.Kind() == reflect.Float64 && target.OverflowFloat(v.Float()) {
			return nil, fmt.Errorf("Number must be less than or equal to %g", math.MaxFloat32) //nolint:staticcheck // surfaced verbatim to callers
		}
	}
	return data, nil
}

func intRange(t reflect.Type) (int64, int64) {
	bits := t.Bits()
	return -1 << (bits - 1), 1<<(bits-1) - 1
}

func uintMax(t reflect.Type) uint64 {
	return math.MaxUint64 >> (64 - t.Bits())
}

func rangeError(below bool, lo, hi int64) error {
	if below {
		return fmt.Errorf("Number must be greater than or equal to %d", lo) //nolint:staticcheck // surfaced verbatim to callers
	}
	return fmt.Errorf("Number must be less than or equal to %d", hi) //nolint:staticcheck // surfaced verbatim to callers
}

func uintRangeError(below bool, hi uint64) error {
	if below {
		return errors.New("Number must be greater than or equal to 0") //nolint:staticcheck // surfaced verbatim to callers
	}
	return fmt.Errorf("Number must be less than or equal to %d", hi) //nolint:staticcheck // surfaced verbatim to callers
}

var (
	typeMismatchPattern = regexp.MustCompile(`^'([^']*)' expected type '([^']+)', got unconvertible type '([^']+)'`)
	mapMismatchPattern  = regexp.MustCompile(`^'([^']*)' expected a map, got '([^']+)'`)
	hookErrorPattern    = regexp.MustCompile(`^error decoding '([^']*)': (.*)$`)
	namedErrorPattern   = regexp.MustCompile(`^'([^']*)':? (.*)$`)
)

// decodeIssues splits a mapstructure error into per-field issues.
func decodeIssues(err error) []Issue {
	var issues []Issue
	for _, line := range strings.Split(err.Error(), "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSpace(strings.TrimPrefix(line, "* "))
		if line == "" || strings.HasSuffix(line, "error(s):") || strings.HasSuffix(line, "decoding:") {
			continue
		}

		switch {
		case typeMismatchPattern.MatchString(line):
			m := typeMismatchPattern.FindStringSubmatch(line)
			issues = append(issues, Issue{
				Path:    m[1],
				Message: fmt.Sprintf("Expected %s, received %s", jsonTypeName(m[2]), jsonTypeName(m[3])),
			})
		case mapMismatchPattern.MatchString(line):
			m := mapMismatchPattern.FindStringSubmatch(line)
			issues = append(issues, Issue{
				Path:    m[1],
				Message: fmt.Sprintf("Expected object, received %s", jsonTypeName(m[2])),
			})
		case hookErrorPattern.MatchString(line):
			m := hookErrorPattern.FindStringSubmatch(line)
			issues = append(issues, Issue{Path: m[1], Message: m[2]})
		case namedErrorPattern.MatchString(line):
			m := namedErrorPattern.FindStringSubmatch(line)
			issues = append(issues, Issue{Path: m[1], Message: m[2]})
		default:
			issues = append(issues, Issue{Message: line})
		}
	}
	if len(issues) == 0 {
		issues = append(issues, Issue{Message: err.Error()})
	}
	return issues
}

// jsonTypeName maps Go type and kind names onto the JSON vocabulary callers
// actually send.
func jsonTypeName(goType string) string {
	switch {
	case goType == "string":
		return "string"
	case goType == "bool":
		return "boolean"
	case strings.HasPrefix(goType, "int"), strings.HasPrefix(goType, "uint"),
		strings.HasPrefix(goType, "float"):
		return "number"
	case strings.HasPrefix(goType, "map"):
		return "object"
	case strings.HasPrefix(goType, "[]"), goType == "slice", goType == "array":
		return "array"
	}
	return goType
}

func unknownKeyIssues(unused []string) []Issue {
	keys := append([]string(nil), unused...)
	sort.Strings(keys)
	issues := make([]Issue, 0, len(keys))
	for _, key := range keys {
		leaf := key
		if idx := strings.LastIndex(key, "."); idx >= 0 {
			leaf = key[idx+1:]
		}
		issues = append(issues, Issue{
			Path:    key,
			Message: fmt.Sprintf("Unrecognized key(s) in object: '%s'", leaf),
		})
	}
	return issues
}

func ruleIssues(err error, root string) []Issue {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []Issue{{Message: err.Error()}}
	}
	issues := make([]Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, Issue{
			Path:    fieldPath(fe.Namespace(), root),
			Message: ruleMessage(fe),
		})
	}
	return issues
}

// fieldPath strips the root type name and squashed segments from a
// validator namespace.
func fieldPath(namespace, root string) string {
	namespace = strings.TrimPrefix(namespace, root+".")
	segments := strings.Split(namespace, ".")
	kept := segments[:0]
	for _, s := range segments {
		if s == squashedSegment || s == "" {
			continue
		}
		kept = append(kept, s)
	}
	return strings.Join(kept, ".")
}

func ruleMessage(fe validator.FieldError) string {
	isText := fe.Kind() == reflect.String
	isList := fe.Kind() == reflect.Slice || fe.Kind() == reflect.Array || fe.Kind() == reflect.Map

	switch fe.Tag() {
	case "required", "required_if", "required_unless", "required_with", "required_without":
		return "Required"
	case "excluded_if", "excluded_unless", "excluded_with", "excluded_without":
		return "Must not be present"
	case "oneof":
		options := strings.Fields(fe.Param())
		for i, o := range options {
			options[i] = "'" + o + "'"
		}
		return fmt.Sprintf("Invalid enum value. Expected %s, received '%v'", strings.Join(options, " | "), fe.Value())
	case "min", "gte":
		switch {
		case isText:
			return fmt.Sprintf("String must contain at least %s character(s)", fe.Param())
		case isList:
			return fmt.Sprintf("Must contain at least %s element(s)", fe.Param())
		}
		return fmt.Sprintf("Number must be greater than or equal to %s", fe.Param())
	case "max", "lte":
		switch {
		case isText:
			return fmt.Sprintf("String must contain at most %s character(s)", fe.Param())
		case isList:
			return fmt.Sprintf("Must contain at most %s element(s)", fe.Param())
		}
		return fmt.Sprintf("Number must be less than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("Number must be greater than %s", fe.Param())
	case "lt":
		return fmt.Sprintf("Number must be less than %s", fe.Param())
	case "email":
		return "Invalid email"
	case "url", "http_url":
		return "Invalid url"
	}
	return fmt.Sprintf("Invalid value (failed '%s')", fe.Tag())
}
