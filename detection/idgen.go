package detection

// IDGenerator is a struct to hold a counter for generating the next incremental
// detection ID number.  It is owned by a single source and is not safe for
// concurrent use
type IDGenerator struct {
	id int64
}

// NewIDGenerator returns a generator starting at 1
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// GetNext returns the next incremental number
func (id *IDGenerator) GetNext() int64 {
	id.id++
	return id.id
}

// Assign sets an ID on every detection which does not have one yet
func (id *IDGenerator) Assign(dets []Detection) {
	for i := range dets {
		if dets[i].ID == 0 {
			dets[i].ID = id.GetNext()
		}
	}
}
