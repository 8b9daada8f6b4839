// Package assert holds the precondition checks of the runtime. A failing
// check is a programming error and panics, the world state can not be
// trusted afterwards.
package assert

import (
	"fmt"
	"reflect"
)

// That panics with the formatted message if cond is false.
func That(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf(format, args...))
	}
}

// IsPointerType panics if t is not a pointer type.
func IsPointerType(t reflect.Type) {
	if t.Kind() != reflect.Pointer {
		panic(fmt.Sprintf("expected pointer type, got %s", t))
	}
}

// Comparable panics if value can not be used as a map key.
func Comparable(value any) {
	if !reflect.ValueOf(value).Comparable() {
		panic(fmt.Sprintf("expected comparable value, got %T", value))
	}
}
