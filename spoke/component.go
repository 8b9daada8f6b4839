package spoke

import "reflect"

// IsComponent is implemented by all component types. The component decides
// which Storage implementation holds its values.
//
// Component types get this method by embedding one of Component, DenseComponent
// or MapComponent parameterized with themselves:
//
//	type Position struct {
//		spoke.Component[Position]
//		X, Y float64
//	}
type IsComponent[C any] interface {
	NewStorage() Storage[C]
}

// Component selects a VecStorage for the component type C.
type Component[C any] struct{}

func (Component[C]) NewStorage() Storage[C] {
	return NewVecStorage[C]()
}

// DenseComponent selects a DenseStorage for the component type C.
type DenseComponent[C any] struct{}

func (DenseComponent[C]) NewStorage() Storage[C] {
	return NewDenseStorage[C]()
}

// MapComponent selects a MapStorage for the component type C.
type MapComponent[C any] struct{}

func (MapComponent[C]) NewStorage() Storage[C] {
	return NewMapStorage[C]()
}

// NewStorageFor creates the storage that the component type C asks for.
func NewStorageFor[C IsComponent[C]]() Storage[C] {
	var component C
	return component.NewStorage()
}

// ComponentName returns a readable name of the component type, used in logs and panics.
func ComponentName[C any]() string {
	return reflect.TypeFor[C]().String()
}
