// Package sdef models an application's capability dictionary: the classes,
// properties, elements, enumerations, and commands it exposes to scripting,
// with single inheritance and plural-name aliasing.
package sdef

import (
	"fmt"
	"sort"
	"strings"

	osaquery "github.com/osaquery/osaquery"
	"github.com/osaquery/osaquery/fourcc"
)

// ClassDef is a named, coded object type in the dictionary
type ClassDef struct {
	Name       string
	Code       fourcc.Code
	Plural     string
	Inherits   string
	Hidden     bool
	Properties []PropertyDef // own properties, excluding inherited
	Elements   []ElementDef  // own elements, excluding inherited
}

// PropertyDef is a named, coded attribute of a class
type PropertyDef struct {
	Name   string
	Code   fourcc.Code
	Type   string // declared type name, may itself be a class
	Access string // r, rw, w; empty means unspecified
	Hidden bool
}

// ElementDef is a containment relationship to another class
type ElementDef struct {
	Type   string // target class type name
	Access string
	Hidden bool
}

// EnumDef is a named enumeration with ordered enumerators
type EnumDef struct {
	Name        string
	Code        fourcc.Code // zero when the enumeration declares no code
	Enumerators []Enumerator
}

// Enumerator is one member of an enumeration
type Enumerator struct {
	Name string
	Code fourcc.Code
}

// CommandDef is a scripting command declared by a suite
type CommandDef struct {
	Name        string
	Code        string // commands carry an eight-character event code pair
	Description string
}

// Dictionary is the in-memory capability dictionary of one application.
// It is built once by the loader and read-only afterwards, so it may be
// shared across concurrent resolutions without locking.
type Dictionary struct {
	classes  map[string]*ClassDef
	enums    map[string]*EnumDef
	commands map[string]*CommandDef
	plurals  map[string]string // lowercase plural -> lowercase singular
}

// NewDictionary creates an empty dictionary
func NewDictionary() *Dictionary {
	return &Dictionary{
		classes:  make(map[string]*ClassDef),
		enums:    make(map[string]*EnumDef),
		commands: make(map[string]*CommandDef),
		plurals:  make(map[string]string),
	}
}

// RegisterClass adds a class, maintaining the plural alias index.
//
// Registering over an existing entry of the same name where the new entry's
// declared parent is the existing entry is suite merging, not a cycle:
// properties and elements are unioned and the parent link is carried from
// whichever side does not point back at itself.
func (d *Dictionary) RegisterClass(class *ClassDef) {
	key := strings.ToLower(class.Name)

	if existing, ok := d.classes[key]; ok && strings.ToLower(class.Inherits) == key {
		merged := *existing
		merged.Properties = unionProperties(existing.Properties, class.Properties)
		merged.Elements = unionElements(existing.Elements, class.Elements)

		if strings.ToLower(existing.Inherits) != key {
			merged.Inherits = existing.Inherits
		} else {
			merged.Inherits = ""
		}

		if merged.Plural == "" {
			merged.Plural = class.Plural
		}

		class = &merged
	}

	d.classes[key] = class

	if class.Plural != "" {
		d.plurals[strings.ToLower(class.Plural)] = key
	}
}

// ExtendClass appends properties and elements to an already-registered class
func (d *Dictionary) ExtendClass(name string, properties []PropertyDef, elements []ElementDef) error {
	class, ok := d.classes[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("%w: %q", osaquery.ErrUnknownExtensionTarget, name)
	}

	class.Properties = unionProperties(class.Properties, properties)
	class.Elements = unionElements(class.Elements, elements)

	return nil
}

// RegisterEnum adds an enumeration
func (d *Dictionary) RegisterEnum(enum *EnumDef) {
	d.enums[strings.ToLower(enum.Name)] = enum
}

// RegisterCommand adds a command
func (d *Dictionary) RegisterCommand(command *CommandDef) {
	d.commands[strings.ToLower(command.Name)] = command
}

// FindClass looks a class up by singular or plural name, case-insensitively
func (d *Dictionary) FindClass(name string) *ClassDef {
	key := strings.ToLower(name)

	if class, ok := d.classes[key]; ok {
		return class
	}

	if singular, ok := d.plurals[key]; ok {
		return d.classes[singular]
	}

	return nil
}

// FindClassByPlural looks a class up by plural name only, case-insensitively
func (d *Dictionary) FindClassByPlural(name string) *ClassDef {
	if singular, ok := d.plurals[strings.ToLower(name)]; ok {
		return d.classes[singular]
	}

	return nil
}

// FindEnum looks an enumeration up by name, case-insensitively
func (d *Dictionary) FindEnum(name string) *EnumDef {
	return d.enums[strings.ToLower(name)]
}

// FindCommand looks a command up by name, case-insensitively
func (d *Dictionary) FindCommand(name string) *CommandDef {
	return d.commands[strings.ToLower(name)]
}

// Classes returns all classes sorted by name for deterministic iteration
func (d *Dictionary) Classes() []*ClassDef {
	classes := make([]*ClassDef, 0, len(d.classes))
	for _, class := range d.classes {
		classes = append(classes, class)
	}

	sort.Slice(classes, func(i, j int) bool {
		return strings.ToLower(classes[i].Name) < strings.ToLower(classes[j].Name)
	})

	return classes
}

// Enums returns all enumerations sorted by name
func (d *Dictionary) Enums() []*EnumDef {
	enums := make([]*EnumDef, 0, len(d.enums))
	for _, enum := range d.enums {
		enums = append(enums, enum)
	}

	sort.Slice(enums, func(i, j int) bool {
		return strings.ToLower(enums[i].Name) < strings.ToLower(enums[j].Name)
	})

	return enums
}

// AllProperties returns a class's properties including inherited ones,
// own properties first. The visited set collapses self-referential parent
// links instead of looping.
func (d *Dictionary) AllProperties(class *ClassDef) []PropertyDef {
	var result []PropertyDef

	visited := make(map[string]bool)

	for class != nil && !visited[strings.ToLower(class.Name)] {
		visited[strings.ToLower(class.Name)] = true
		result = append(result, class.Properties...)

		if class.Inherits == "" {
			break
		}

		class = d.classes[strings.ToLower(class.Inherits)]
	}

	return result
}

// AllElements returns a class's elements including inherited ones
func (d *Dictionary) AllElements(class *ClassDef) []ElementDef {
	var result []ElementDef

	visited := make(map[string]bool)

	for class != nil && !visited[strings.ToLower(class.Name)] {
		visited[strings.ToLower(class.Name)] = true
		result = append(result, class.Elements...)

		if class.Inherits == "" {
			break
		}

		class = d.classes[strings.ToLower(class.Inherits)]
	}

	return result
}

// Validate runs the strong checks the loader itself does not: parent-chain
// walks with a visited set treating a repeat as an inheritance cycle, and
// dangling inherits references.
func (d *Dictionary) Validate() []error {
	var problems []error

	for _, class := range d.Classes() {
		visited := make(map[string]bool)
		current := class

		for current.Inherits != "" {
			key := strings.ToLower(current.Name)
			if visited[key] {
				problems = append(problems, fmt.Errorf("%w: class %q", osaquery.ErrInheritanceCycle, class.Name))
				break
			}

			visited[key] = true

			parent := d.classes[strings.ToLower(current.Inherits)]
			if parent == nil {
				problems = append(problems, fmt.Errorf("%w: class %q inherits %q", osaquery.ErrUnknownClass, current.Name, current.Inherits))
				break
			}

			current = parent
		}
	}

	return problems
}

func unionProperties(base, extra []PropertyDef) []PropertyDef {
	seen := make(map[string]bool, len(base))
	for _, p := range base {
		seen[strings.ToLower(p.Name)] = true
	}

	result := base
	for _, p := range extra {
		if !seen[strings.ToLower(p.Name)] {
			seen[strings.ToLower(p.Name)] = true
			result = append(result, p)
		}
	}

	return result
}

func unionElements(base, extra []ElementDef) []ElementDef {
	seen := make(map[string]bool, len(base))
	for _, e := range base {
		seen[strings.ToLower(e.Type)] = true
	}

	result := base
	for _, e := range extra {
		if !seen[strings.ToLower(e.Type)] {
			seen[strings.ToLower(e.Type)] = true
			result = append(result, e)
		}
	}

	return result
}
