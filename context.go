package reloc

// Context is the deserialization state shared by nested element decodes.
// The zero value is ready to use.
type Context struct {
	err    error
	failed int
}

// Fail records err as an element failure and returns it wrapped. The first
// failure is kept for Err.
func (c *Context) Fail(err error) error {
	err = ElementError(err)
	if c.err == nil {
		c.err = err
	}
	c.failed++
	return err
}

// Err returns the first failure recorded, if any.
func (c *Context) Err() error { return c.err }

// Failures returns how many failures were recorded.
func (c *Context) Failures() int { return c.failed }
