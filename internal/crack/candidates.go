package crack

// candidateSet holds every value still consistent with the observations of
// the current attempt. Between fill and clear it only shrinks.
type candidateSet[T int32 | uint64] struct {
	vals []T
	live bool
}

func (c *candidateSet[T]) fill(n int, gen func(i int) T) {
	if cap(c.vals) < n {
		c.vals = make([]T, 0, n)
	}
	c.vals = c.vals[:0]
	for i := 0; i < n; i++ {
		c.vals = append(c.vals, gen(i))
	}
	c.live = true
}

// narrow keeps the values for which keep reports true, replacing each with
// the value keep returns. Order is preserved.
func (c *candidateSet[T]) narrow(keep func(T) (T, bool)) int {
	out := c.vals[:0]
	for _, v := range c.vals {
		if nv, ok := keep(v); ok {
			out = append(out, nv)
		}
	}
	clear(c.vals[len(out):])
	c.vals = out
	return len(out)
}

func (c *candidateSet[T]) only() (T, bool) {
	if len(c.vals) != 1 {
		var zero T
		return zero, false
	}
	return c.vals[0], true
}

func (c *candidateSet[T]) first() (T, bool) {
	if len(c.vals) == 0 {
		var zero T
		return zero, false
	}
	return c.vals[0], true
}

func (c *candidateSet[T]) len() int { return len(c.vals) }

func (c *candidateSet[T]) contains(v T) bool {
	for _, x := range c.vals {
		if x == v {
			return true
		}
	}
	return false
}

// clear drops the values but keeps the backing array for the next fill.
func (c *candidateSet[T]) clear() {
	c.vals = c.vals[:0]
	c.live = false
}
