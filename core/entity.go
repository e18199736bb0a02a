package core

import "strconv"

// Entity is an opaque handle to a host object
// Zero is never allocated and marks "no entity"
type Entity uint64

// NoEntity is the null handle
const NoEntity Entity = 0

// Valid reports whether the handle was ever allocated
func (e Entity) Valid() bool {
	return e != NoEntity
}

func (e Entity) String() string {
	if e == NoEntity {
		return "entity(none)"
	}
	return "entity(" + strconv.FormatUint(uint64(e), 10) + ")"
}
