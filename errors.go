package spindle

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrResourceMissing = errors.New("resource missing")
	ErrBorrowConflict  = errors.New("resource borrow conflict")
)

type MissingResourceError struct {
	Type reflect.Type
}

func (e *MissingResourceError) Error() string {
	return fmt.Sprintf("resource of type %s does not exist", e.Type)
}

func (e *MissingResourceError) Unwrap() error {
	return ErrResourceMissing
}

// BorrowError describes a borrow request that conflicts with a live guard.
type BorrowError struct {
	Type reflect.Type

	// the mode of the rejected request
	Exclusive bool

	HeldExclusive bool
	HeldShared    int
}

func (e *BorrowError) Error() string {
	mode := "shared"
	if e.Exclusive {
		mode = "exclusive"
	}

	if e.HeldExclusive {
		return fmt.Sprintf("%s borrow of %s while it is borrowed exclusively", mode, e.Type)
	}

	return fmt.Sprintf("%s borrow of %s while it is borrowed %d times shared", mode, e.Type, e.HeldShared)
}

func (e *BorrowError) Unwrap() error {
	return ErrBorrowConflict
}

// InitError is returned when building a World fails because one of the
// resource or system constructors failed.
type InitError struct {
	// Kind is either "resource" or "system"
	Kind string
	Name string
	Err  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initialize %s %s: %s", e.Kind, e.Name, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}
