package catalog

// arrivalClock hands out the logical arrival order used to break priority
// ties in waitlists. Ticks start at 1 and never repeat for a Catalog.
type arrivalClock struct{ tick uint64 }

func (c *arrivalClock) next() uint64 {
	c.tick++
	return c.tick
}
