package domain

import "strings"

const (
	unvisited = iota
	visiting
	visited
)

// Closure records the progress of a depth-first walk over a dependency graph.
// It holds the visited set and the current path, so the walk itself can be an
// explicit worklist instead of recursion.
type Closure struct {
	specs map[string]PackageSpec
	state map[string]int
	path  []string
	order []PackageSpec
}

// NewClosure creates an empty closure.
func NewClosure() *Closure {
	return &Closure{
		specs: make(map[string]PackageSpec),
		state: make(map[string]int),
	}
}

// Check reports whether dep has already been reached by the walk.
// It fails with ErrCyclicDependency when dep is on the current path and with
// ErrUnresolved when the version chosen earlier does not satisfy dep's constraint.
func (c *Closure) Check(dep Dependency, allowPrerelease bool) (bool, error) {
	switch c.state[dep.Name] {
	case visiting:
		return true, c.cycleError(dep.Name)
	case visited:
		spec := c.specs[dep.Name]
		if !dep.Constraint.Matches(spec.Version(), allowPrerelease) {
			return true, Fail(ErrUnresolved, "resolved version conflicts with a later requirement",
				"package", dep.Name,
				"constraint", dep.Constraint.String(),
				"resolved", spec.Version().String(),
				"required_by", c.current(),
			)
		}
		return true, nil
	default:
		return false, nil
	}
}

// Enter pushes spec onto the current path.
func (c *Closure) Enter(spec PackageSpec) {
	c.specs[spec.Name()] = spec
	c.state[spec.Name()] = visiting
	c.path = append(c.path, spec.Name())
}

// Leave pops the innermost package off the path and appends it to the install order.
func (c *Closure) Leave() {
	n := len(c.path)
	if n == 0 {
		return
	}
	name := c.path[n-1]
	c.path = c.path[:n-1]
	c.state[name] = visited
	c.order = append(c.order, c.specs[name])
}

// Depth returns the length of the current path.
func (c *Closure) Depth() int {
	return len(c.path)
}

// Order returns the packages left so far, dependencies before their dependents.
func (c *Closure) Order() []PackageSpec {
	out := make([]PackageSpec, len(c.order))
	copy(out, c.order)
	return out
}

func (c *Closure) current() string {
	if len(c.path) == 0 {
		return ""
	}
	return c.path[len(c.path)-1]
}

// cycleError renders the cycle closed by name, e.g. "a -> b -> a".
func (c *Closure) cycleError(name string) error {
	start := 0
	for i, node := range c.path {
		if node == name {
			start = i
			break
		}
	}
	cycle := append([]string{}, c.path[start:]...)
	cycle = append(cycle, name)
	return Fail(ErrCyclicDependency, "dependency cycle detected", "cycle", strings.Join(cycle, " -> "))
}
