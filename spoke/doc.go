// Package spoke contains the data layer of spindle: entity identities and their
// allocator, per component storages and joins over several storages.
//
// Joins intersect the index sets of their storages once at construction and
// then yield one row per index:
//
//	for pos, vel := range spoke.Join2(spoke.Write(positions), spoke.Read(velocities)).Items() {
//		pos.X += vel.X
//	}
//
// A storage joined with Write must not appear twice in the same join, this is
// checked when the join is constructed. Write needs a Storage, while Read
// also accepts a read only View as handed out to shared borrowers.
package spoke
