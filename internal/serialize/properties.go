package serialize

import "faultline/internal/value"

// AssertionErrorName identifies assertion failures. Their payload travels in
// dedicated diff/actual/expected fields, so their generic properties are
// never dumped.
const AssertionErrorName = "AssertionError"

// Attribution hint fields attached by the execution engine.
const (
	FieldTestPath         = "FAULTLINE_TEST_PATH"
	FieldTestName         = "FAULTLINE_TEST_NAME"
	FieldAfterEnvTeardown = "FAULTLINE_AFTER_ENV_TEARDOWN"
)

// bookkeeping names are carried as typed fields of an error record instead
// of generic properties.
var bookkeeping = map[string]struct{}{
	"nameStr":             {},
	"stack":               {},
	"stackStr":            {},
	"stacks":              {},
	"cause":               {},
	"type":                {},
	"frame":               {},
	"showDiff":            {},
	"diff":                {},
	"actual":              {},
	"expected":            {},
	FieldTestPath:         {},
	FieldTestName:         {},
	FieldAfterEnvTeardown: {},
}

var rootNames = func() map[string]struct{} {
	out := make(map[string]struct{})
	for _, k := range value.RootKeys() {
		out[k] = struct{}{}
	}
	return out
}()

// IsBookkeeping reports whether name is a reserved error record field.
func IsBookkeeping(name string) bool {
	_, ok := bookkeeping[name]
	return ok
}

func isPropertySkipped(name string) bool {
	if IsBookkeeping(name) {
		return true
	}
	_, ok := rootNames[name]
	return ok
}

// Properties filters a serialized error down to its generic properties.
// Non-records and assertion failures yield an empty record.
func Properties(v Value) Value {
	out := NewRecord()
	if !v.IsRecord() || v.GetString("name") == AssertionErrorName {
		return out
	}
	for _, f := range v.Fields() {
		if isPropertySkipped(f.Name) {
			continue
		}
		out.Set(f.Name, f.Value)
	}
	return out
}
