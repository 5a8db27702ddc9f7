// Package pathfinder enumerates containment paths from the application root
// to any class or property of a capability dictionary. It builds a reverse
// containment index once at construction and is read-only afterwards.
package pathfinder

import (
	"fmt"
	"sort"
	"strings"

	osaquery "github.com/osaquery/osaquery"
	"github.com/osaquery/osaquery/sdef"
)

// rootClass terminates the backward search
const rootClass = "application"

// DefaultMaxDepth bounds the backward search when the caller does not
const DefaultMaxDepth = 5

// Kind distinguishes element hops from property hops
type Kind int

const (
	ElementKind Kind = iota
	PropertyKind
)

// PathStep is one hop of a found path
type PathStep struct {
	Name  string // display name: the element's plural name or the property name
	Class string // class the step originates from (its container)
	Kind  Kind
}

// Path is an ordered run of steps from the application root to the target
type Path struct {
	Steps []PathStep
}

// Expression renders the canonical form: step names joined by '/'
func (p Path) Expression() string {
	names := make([]string, 0, len(p.Steps))
	for _, step := range p.Steps {
		names = append(names, step.Name)
	}

	return strings.Join(names, "/")
}

// edge is one entry of the reverse containment index: the target class is
// reachable from container via the named step
type edge struct {
	container string // lowercase container class name
	display   string // container display name
	name      string // step display name
	kind      Kind
}

// Finder performs backward reachability search over a dictionary
type Finder struct {
	dict  *sdef.Dictionary
	edges map[string][]edge // lowercase target class -> incoming edges
}

// NewFinder builds the reverse containment index: an edge per declared
// element (after inheritance expansion) and per class-typed property.
// Duplicate edges with the same container and step identity are suppressed.
func NewFinder(dict *sdef.Dictionary) *Finder {
	f := &Finder{
		dict:  dict,
		edges: make(map[string][]edge),
	}

	seen := make(map[string]bool)

	for _, class := range dict.Classes() {
		container := strings.ToLower(class.Name)

		for _, element := range dict.AllElements(class) {
			target := dict.FindClass(element.Type)
			if target == nil {
				continue
			}

			name := target.Plural
			if name == "" {
				name = target.Name
			}

			f.insert(seen, strings.ToLower(target.Name), edge{
				container: container,
				display:   class.Name,
				name:      name,
				kind:      ElementKind,
			})
		}

		for _, property := range dict.AllProperties(class) {
			target := dict.FindClass(property.Type)
			if target == nil {
				continue
			}

			f.insert(seen, strings.ToLower(target.Name), edge{
				container: container,
				display:   class.Name,
				name:      property.Name,
				kind:      PropertyKind,
			})
		}
	}

	return f
}

func (f *Finder) insert(seen map[string]bool, target string, e edge) {
	key := target + "\x00" + e.container + "\x00" + e.name
	if seen[key] {
		return
	}

	seen[key] = true
	f.edges[target] = append(f.edges[target], e)
}

// FindPaths enumerates all containment paths from the application root to
// the named class (singular or plural) or, failing that, property. Results
// are sorted by step count, then lexicographically by canonical expression,
// with duplicate expressions removed.
func (f *Finder) FindPaths(target string, maxDepth int) ([]Path, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	var paths []Path

	if class := f.dict.FindClass(target); class != nil {
		key := strings.ToLower(class.Name)
		paths = f.search(key, maxDepth, map[string]bool{key: true})
	} else {
		paths = f.propertyPaths(target, maxDepth)
		if paths == nil {
			return nil, fmt.Errorf("%w: %q", osaquery.ErrUnknownTarget, target)
		}
	}

	return canonicalize(paths), nil
}

// search walks the reverse index away from target toward the application
// root. The visited set is per path branch: it is copied before each
// recursive descent so sibling branches do not interfere. Depth exhaustion
// is the hard backstop regardless of visited state.
func (f *Finder) search(target string, depth int, visited map[string]bool) []Path {
	if depth <= 0 {
		return nil
	}

	var paths []Path

	for _, e := range f.edges[target] {
		step := PathStep{Name: e.name, Class: e.display, Kind: e.kind}

		if e.container == rootClass {
			paths = append(paths, Path{Steps: []PathStep{step}})
			continue
		}

		if visited[e.container] {
			continue
		}

		branch := make(map[string]bool, len(visited)+1)
		for k := range visited {
			branch[k] = true
		}

		branch[e.container] = true

		for _, prefix := range f.search(e.container, depth-1, branch) {
			steps := make([]PathStep, 0, len(prefix.Steps)+1)
			steps = append(steps, prefix.Steps...)
			steps = append(steps, step)
			paths = append(paths, Path{Steps: steps})
		}
	}

	return paths
}

// propertyPaths runs the class search for every class directly declaring the
// property, appending the property itself as the final step. It returns nil
// when no class declares the property.
func (f *Finder) propertyPaths(name string, maxDepth int) []Path {
	lower := strings.ToLower(name)
	found := false

	var paths []Path

	for _, class := range f.dict.Classes() {
		for _, property := range class.Properties {
			if strings.ToLower(property.Name) != lower {
				continue
			}

			found = true
			step := PathStep{Name: property.Name, Class: class.Name, Kind: PropertyKind}

			if strings.ToLower(class.Name) == rootClass {
				paths = append(paths, Path{Steps: []PathStep{step}})
				continue
			}

			key := strings.ToLower(class.Name)
			for _, prefix := range f.search(key, maxDepth, map[string]bool{key: true}) {
				steps := make([]PathStep, 0, len(prefix.Steps)+1)
				steps = append(steps, prefix.Steps...)
				steps = append(steps, step)
				paths = append(paths, Path{Steps: steps})
			}
		}
	}

	if !found {
		return nil
	}

	if paths == nil {
		paths = []Path{}
	}

	return paths
}

// canonicalize sorts by step count then expression and removes duplicates
func canonicalize(paths []Path) []Path {
	sort.Slice(paths, func(i, j int) bool {
		if len(paths[i].Steps) != len(paths[j].Steps) {
			return len(paths[i].Steps) < len(paths[j].Steps)
		}

		return paths[i].Expression() < paths[j].Expression()
	})

	result := paths[:0]
	previous := ""

	for _, path := range paths {
		expr := path.Expression()
		if expr == previous && len(result) > 0 {
			continue
		}

		result = append(result, path)
		previous = expr
	}

	return result
}
