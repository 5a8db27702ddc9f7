package sdef

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	osaquery "github.com/osaquery/osaquery"
	"github.com/osaquery/osaquery/fourcc"
)

// DefaultMaxIncludeDepth bounds include substitution recursion
const DefaultMaxIncludeDepth = 8

// Loader parses sdef documents into a Dictionary
type Loader struct {
	MaxIncludeDepth int
}

// NewLoader creates a loader with default settings
func NewLoader() *Loader {
	return &Loader{MaxIncludeDepth: DefaultMaxIncludeDepth}
}

// LoadFile reads and parses an sdef file. Include directives are resolved
// relative to the file's directory before structural parsing.
func (l *Loader) LoadFile(path string) (*Dictionary, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", osaquery.ErrMalformedDictionary, path, err)
	}

	return l.load(doc, filepath.Dir(path))
}

// LoadString parses an sdef document from a string. Include directives are
// resolved relative to baseDir.
func (l *Loader) LoadString(data, baseDir string) (*Dictionary, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(data); err != nil {
		return nil, fmt.Errorf("%w: %v", osaquery.ErrMalformedDictionary, err)
	}

	return l.load(doc, baseDir)
}

func (l *Loader) load(doc *etree.Document, baseDir string) (*Dictionary, error) {
	root := doc.Root()
	if root == nil || root.Tag != "dictionary" {
		return nil, fmt.Errorf("%w: root element must be <dictionary>", osaquery.ErrMalformedDictionary)
	}

	maxDepth := l.MaxIncludeDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxIncludeDepth
	}

	if err := resolveIncludes(root, baseDir, maxDepth); err != nil {
		return nil, err
	}

	dict := NewDictionary()

	for _, suite := range root.ChildElements() {
		if suite.Tag != "suite" {
			continue
		}

		if err := parseSuite(dict, suite); err != nil {
			return nil, err
		}
	}

	return dict, nil
}

// resolveIncludes replaces every include directive among the dictionary's
// children with the referenced document's suite-level children. This is a
// document-level preprocessing pass; the dictionary model never sees
// include nodes.
func resolveIncludes(root *etree.Element, baseDir string, depth int) error {
	for {
		include := findInclude(root)
		if include == nil {
			return nil
		}

		if depth <= 0 {
			return fmt.Errorf("%w", osaquery.ErrIncludeDepth)
		}

		href := include.SelectAttrValue("href", "")
		if href == "" {
			return fmt.Errorf("%w: include requires href", osaquery.ErrMissingAttribute)
		}

		target := href
		if !filepath.IsAbs(target) {
			target = filepath.Join(baseDir, target)
		}

		included := etree.NewDocument()
		if err := included.ReadFromFile(target); err != nil {
			return fmt.Errorf("%w: include %s: %v", osaquery.ErrMalformedDictionary, href, err)
		}

		includedRoot := included.Root()
		if includedRoot == nil {
			return fmt.Errorf("%w: include %s is empty", osaquery.ErrMalformedDictionary, href)
		}

		if err := resolveIncludes(includedRoot, filepath.Dir(target), depth-1); err != nil {
			return err
		}

		index := include.Index()
		root.RemoveChild(include)

		for i, child := range includedRoot.ChildElements() {
			root.InsertChildAt(index+i, child.Copy())
		}
	}
}

func findInclude(root *etree.Element) *etree.Element {
	for _, child := range root.ChildElements() {
		if child.Tag == "include" {
			return child
		}
	}

	return nil
}

func parseSuite(dict *Dictionary, suite *etree.Element) error {
	for _, child := range suite.ChildElements() {
		switch child.Tag {
		case "class":
			class, err := parseClass(child)
			if err != nil {
				return err
			}

			dict.RegisterClass(class)
		case "class-extension":
			if err := parseClassExtension(dict, child); err != nil {
				return err
			}
		case "enumeration":
			enum, err := parseEnum(child)
			if err != nil {
				return err
			}

			dict.RegisterEnum(enum)
		case "command":
			command, err := parseCommand(child)
			if err != nil {
				return err
			}

			dict.RegisterCommand(command)
		}
	}

	return nil
}

func parseClass(el *etree.Element) (*ClassDef, error) {
	name := el.SelectAttrValue("name", "")
	if name == "" {
		return nil, fmt.Errorf("%w: class requires name", osaquery.ErrMissingAttribute)
	}

	codeText := el.SelectAttrValue("code", "")
	if codeText == "" {
		return nil, fmt.Errorf("%w: class %q requires code", osaquery.ErrMissingAttribute, name)
	}

	code, err := fourcc.Parse(codeText)
	if err != nil {
		return nil, fmt.Errorf("class %q: %w", name, err)
	}

	class := &ClassDef{
		Name:     name,
		Code:     code,
		Plural:   el.SelectAttrValue("plural", ""),
		Inherits: el.SelectAttrValue("inherits", ""),
		Hidden:   isHidden(el),
	}

	class.Properties, class.Elements, err = parseMembers(el, name)
	if err != nil {
		return nil, err
	}

	return class, nil
}

func parseClassExtension(dict *Dictionary, el *etree.Element) error {
	target := el.SelectAttrValue("extends", "")
	if target == "" {
		return fmt.Errorf("%w: class-extension requires extends", osaquery.ErrMissingAttribute)
	}

	properties, elements, err := parseMembers(el, target)
	if err != nil {
		return err
	}

	return dict.ExtendClass(target, properties, elements)
}

func parseMembers(el *etree.Element, owner string) ([]PropertyDef, []ElementDef, error) {
	var (
		properties []PropertyDef
		elements   []ElementDef
	)

	for _, child := range el.ChildElements() {
		switch child.Tag {
		case "property":
			name := child.SelectAttrValue("name", "")
			if name == "" {
				return nil, nil, fmt.Errorf("%w: property of %q requires name", osaquery.ErrMissingAttribute, owner)
			}

			codeText := child.SelectAttrValue("code", "")
			if codeText == "" {
				return nil, nil, fmt.Errorf("%w: property %q of %q requires code", osaquery.ErrMissingAttribute, name, owner)
			}

			code, err := fourcc.Parse(codeText)
			if err != nil {
				return nil, nil, fmt.Errorf("property %q of %q: %w", name, owner, err)
			}

			properties = append(properties, PropertyDef{
				Name:   name,
				Code:   code,
				Type:   child.SelectAttrValue("type", ""),
				Access: child.SelectAttrValue("access", ""),
				Hidden: isHidden(child),
			})
		case "element":
			typ := child.SelectAttrValue("type", "")
			if typ == "" {
				return nil, nil, fmt.Errorf("%w: element of %q requires type", osaquery.ErrMissingAttribute, owner)
			}

			elements = append(elements, ElementDef{
				Type:   typ,
				Access: child.SelectAttrValue("access", ""),
				Hidden: isHidden(child),
			})
		}
	}

	return properties, elements, nil
}

func parseEnum(el *etree.Element) (*EnumDef, error) {
	name := el.SelectAttrValue("name", "")
	if name == "" {
		return nil, fmt.Errorf("%w: enumeration requires name", osaquery.ErrMissingAttribute)
	}

	enum := &EnumDef{Name: name}

	if codeText := el.SelectAttrValue("code", ""); codeText != "" {
		code, err := fourcc.Parse(codeText)
		if err != nil {
			return nil, fmt.Errorf("enumeration %q: %w", name, err)
		}

		enum.Code = code
	}

	for _, child := range el.ChildElements() {
		if child.Tag != "enumerator" {
			continue
		}

		enumeratorName := child.SelectAttrValue("name", "")
		if enumeratorName == "" {
			return nil, fmt.Errorf("%w: enumerator of %q requires name", osaquery.ErrMissingAttribute, name)
		}

		enumerator := Enumerator{Name: enumeratorName}

		if codeText := child.SelectAttrValue("code", ""); codeText != "" {
			code, err := fourcc.Parse(codeText)
			if err != nil {
				return nil, fmt.Errorf("enumerator %q of %q: %w", enumeratorName, name, err)
			}

			enumerator.Code = code
		}

		enum.Enumerators = append(enum.Enumerators, enumerator)
	}

	return enum, nil
}

func parseCommand(el *etree.Element) (*CommandDef, error) {
	name := el.SelectAttrValue("name", "")
	if name == "" {
		return nil, fmt.Errorf("%w: command requires name", osaquery.ErrMissingAttribute)
	}

	return &CommandDef{
		Name:        name,
		Code:        el.SelectAttrValue("code", ""),
		Description: el.SelectAttrValue("description", ""),
	}, nil
}

func isHidden(el *etree.Element) bool {
	return strings.EqualFold(el.SelectAttrValue("hidden", ""), "yes")
}
