package mailsignal

// Checker evaluates the constraints of one definition against a changed
// object and the payload supplied by the host event system.
//
// A Checker is built for a single evaluation and discarded. It holds no
// shared mutable state, so separate invocations, each with their own
// object and payload, may run concurrently.
type Checker struct {
	object      Object
	payload     map[string]any
	constraints []Constraint
	registry    *Registry
	trace       *Trace
}

type CheckerOption func(c *Checker)

// CollectTrace instructs the checker to record every constraint it
// evaluates, with resolved operand values and their sources. Retrieve the
// trace with Trace after RunTests.
// Default: off
func CollectTrace() CheckerOption {
	return func(c *Checker) {
		c.trace = &Trace{}
	}
}

// NewChecker builds a checker for one evaluation. A nil registry means the
// default registry.
func NewChecker(object Object, payload map[string]any, constraints []Constraint, registry *Registry, opts ...CheckerOption) *Checker {
	c := &Checker{
		object:      object,
		payload:     payload,
		constraints: constraints,
		registry:    registry,
	}
	if c.registry == nil {
		c.registry = DefaultRegistry()
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RunTests evaluates the constraints in declaration order and reports
// whether they all passed. Evaluation stops at the first failing
// constraint; later constraints are not resolved or evaluated. Zero
// constraints pass trivially.
//
// A failed constraint is (false, nil). A resolution failure, an unknown
// comparison name or incompatible operands abort the evaluation with an
// error; the two outcomes are never conflated.
func (c *Checker) RunTests() (bool, error) {
	for _, con := range c.constraints {
		a, aSrc, err := resolveFirst(con.Param1, c.object, c.payload)
		if err != nil {
			return false, err
		}
		b, bSrc, err := resolveSecond(con.Param2, c.object, c.payload)
		if err != nil {
			return false, err
		}
		fn, err := c.registry.Lookup(con.Comparison)
		if err != nil {
			return false, err
		}
		pass, err := fn(a, b)
		if err != nil {
			return false, err
		}
		c.record(con, a, aSrc, b, bSrc, pass)
		if !pass {
			return false, nil
		}
	}
	return true, nil
}

// Trace returns the evaluation trace, or nil if CollectTrace was not set.
func (c *Checker) Trace() *Trace {
	return c.trace
}

func (c *Checker) record(con Constraint, a any, aSrc ValueSource, b any, bSrc ValueSource, pass bool) {
	if c.trace == nil {
		return
	}
	p2 := ""
	if con.Param2 != nil {
		p2 = *con.Param2
	}
	c.trace.Rows = append(c.trace.Rows, TraceRow{
		Param1:     con.Param1,
		Param2:     p2,
		Comparison: con.Comparison,
		A:          a,
		B:          b,
		ASource:    aSrc,
		BSource:    bSrc,
		Pass:       pass,
	})
}
