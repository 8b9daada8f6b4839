package spindle

import "github.com/oliverbestmann/spindle/spoke"

type Position struct {
	spoke.Component[Position]
	X, Y float64
}

type Velocity struct {
	spoke.Component[Velocity]
	X, Y float64
}

type Health struct {
	spoke.DenseComponent[Health]
	Value int
}
