package serialize

import (
	"fmt"

	"faultline/internal/value"
)

// Read fetches key from level. A failing or panicking access is converted
// into an Unserializable placeholder, returned in place of the value; Read
// itself never fails.
func Read(level value.Chain, key string) (out any) {
	defer func() {
		if r := recover(); r != nil {
			out = Unserializable(panicMessage(r))
		}
	}()
	v, err := level.Own(key)
	if err != nil {
		return Unserializable(err.Error())
	}
	return v
}

// guardedCall runs fn, turning a panic into an error.
func guardedCall(fn func() (any, error)) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%s", panicMessage(r))
		}
	}()
	return fn()
}

// guardedKeys lists own keys of level, turning a panic into an error.
func guardedKeys(level value.Chain) (keys []string, parent value.Chain, err error) {
	defer func() {
		if r := recover(); r != nil {
			keys, parent, err = nil, nil, fmt.Errorf("%s", panicMessage(r))
		}
	}()
	return level.OwnKeys(), level.Parent(), nil
}

func panicMessage(r any) string {
	switch x := r.(type) {
	case error:
		return x.Error()
	case string:
		return x
	}
	return fmt.Sprint(r)
}
