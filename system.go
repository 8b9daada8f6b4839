package spindle

import (
	"fmt"
	"iter"
	"reflect"
	"runtime"
	"strings"
	"time"
)

// System is a unit of behavior run by the World once per tick of the stage
// it was added to. t is the simulation time of the tick and dt the time
// since the previous tick of the same stage.
type System interface {
	Run(res *Resources, t, dt time.Duration)
}

// NamedSystem is optionally implemented by systems to give them a readable name.
type NamedSystem interface {
	System
	Name() string
}

// SystemFunc adapts a function to the System interface.
type SystemFunc func(res *Resources, t, dt time.Duration)

func (fn SystemFunc) Run(res *Resources, t, dt time.Duration) {
	fn(res, t, dt)
}

type namedSystem struct {
	System
	name string
}

func (n namedSystem) Name() string {
	return n.name
}

// Named attaches a name to a system.
func Named(name string, system System) NamedSystem {
	return namedSystem{System: system, name: name}
}

// NameOf returns the name of a system. Systems not implementing NamedSystem
// are named after their function or type.
func NameOf(system System) string {
	switch system := system.(type) {
	case NamedSystem:
		return system.Name()

	case SystemFunc:
		fn := runtime.FuncForPC(reflect.ValueOf(system).Pointer())
		if fn == nil {
			return "SystemFunc"
		}

		name := fn.Name()

		// strip the package path
		if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
			name = name[idx+1:]
		}

		return name

	default:
		return fmt.Sprintf("%T", system)
	}
}

// Systems is an ordered collection of systems.
type Systems struct {
	systems []System
	names   []string
}

func (s *Systems) Add(system System) {
	s.systems = append(s.systems, system)
	s.names = append(s.names, NameOf(system))
}

func (s *Systems) Len() int {
	return len(s.systems)
}

// All iterates the systems together with their names in registration order.
func (s *Systems) All() iter.Seq2[string, System] {
	return func(yield func(string, System) bool) {
		for idx, system := range s.systems {
			if !yield(s.names[idx], system) {
				return
			}
		}
	}
}

// Run runs every system once in registration order.
func (s *Systems) Run(res *Resources, t, dt time.Duration) {
	for _, system := range s.systems {
		system.Run(res, t, dt)
	}
}

func (s *Systems) Clear() {
	clear(s.systems)
	s.systems = s.systems[:0]
	s.names = s.names[:0]
}
