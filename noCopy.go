package spindle

// noCopy can be embedded to make "go vet" complain when a
// value of the embedding type is copied.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}
