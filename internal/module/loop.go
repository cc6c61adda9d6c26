package module

// Statuses returned by a loop task.
const (
	LoopExit     = 0
	LoopContinue = 1
)

// Predicate decides whether a loop takes another iteration. iteration counts
// calls since the last reset, starting at 1.
type Predicate func(iteration int) bool

type loop struct {
	iteration int
	cond      Predicate
}

// NewLoop builds an iteration-control module. Its single task "stop" has two
// inputs, in1 (entry) and in2 (back-edge from the body), and two outputs,
// out1 (continue) and out2 (exit). Each call forwards in1 on the first
// iteration and in2 afterwards, to out1 while cond holds and to out2 once it
// does not.
func NewLoop(name string, dtype DataType, size int, cond Predicate) *Module {
	m := New(name)
	l := &loop{cond: cond}

	t := m.CreateTask("stop")
	in1 := t.CreateInput("in1", dtype, size)
	in2 := t.CreateInput("in2", dtype, size)
	in2.optional = true
	out1 := t.CreateOutput("out1", dtype, size)
	out2 := t.CreateOutput("out2", dtype, size)

	t.SetCodelet(func(*Task) (int, error) {
		src := in1
		if l.iteration > 0 && in2.Buffer() != nil {
			src = in2
		}
		l.iteration++
		if l.cond(l.iteration) {
			copyBuffer(out1.Buffer(), src.Buffer())
			return LoopContinue, nil
		}
		copyBuffer(out2.Buffer(), src.Buffer())
		return LoopExit, nil
	})

	m.markLoop(t, out1, out2)
	m.OnReset(func() { l.iteration = 0 })
	m.SetFactory(func() (*Module, error) {
		return NewLoop(name, dtype, size, cond), nil
	})
	return m
}

// NewCounterLoop builds a loop that continues for exactly n iterations.
func NewCounterLoop(name string, dtype DataType, size int, n int) *Module {
	return NewLoop(name, dtype, size, func(iteration int) bool {
		return iteration <= n
	})
}
