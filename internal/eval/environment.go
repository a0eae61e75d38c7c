package eval

import "sort"

// Environment is one lexical frame of variable bindings, chained to the
// frame that encloses it.
type Environment struct {
	parent *Environment
	vars   map[string]int64
}

// NewEnvironment creates a new frame with an optional parent.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		parent: parent,
		vars:   make(map[string]int64),
	}
}

// Define binds name in this frame, shadowing any outer binding.
func (e *Environment) Define(name string, value int64) {
	e.vars[name] = value
}

// Lookup finds name in this frame or any parent frame. A nil environment
// binds nothing.
func (e *Environment) Lookup(name string) (int64, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.vars[name]; ok {
			return v, true
		}
	}
	return 0, false
}

// Extend returns a child frame holding vars. The map is copied.
func (e *Environment) Extend(vars map[string]int64) *Environment {
	child := NewEnvironment(e)
	for name, v := range vars {
		child.vars[name] = v
	}
	return child
}

// Names returns every name visible from this frame, sorted.
func (e *Environment) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for env := e; env != nil; env = env.parent {
		for name := range env.vars {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}
