package osaquery

import "errors"

// Common errors used throughout the osaquery package. Lexical and four-byte
// code errors live next to their packages (tokenizer, fourcc).
var (
	// ErrUnexpectedToken indicates the parser saw a token it did not expect.
	// Parser errors
	ErrUnexpectedToken = errors.New("unexpected token")
	// ErrEmptyQuery indicates a query expression with no application segment.
	ErrEmptyQuery = errors.New("empty query expression")
	// ErrMultiplePredicates indicates more than one bracketed predicate on a single step.
	ErrMultiplePredicates = errors.New("multiple predicates on one step; combine conditions with 'and'/'or' inside one bracket")
	// ErrEmptyPredicate indicates an empty '[]' predicate.
	ErrEmptyPredicate = errors.New("empty predicate")

	// ErrMissingAttribute indicates a required sdef attribute was absent.
	// Dictionary loader errors
	ErrMissingAttribute = errors.New("missing required attribute")
	// ErrMalformedDictionary indicates the sdef document could not be parsed.
	ErrMalformedDictionary = errors.New("malformed dictionary document")
	// ErrUnknownExtensionTarget indicates a class-extension names a class that was never registered.
	ErrUnknownExtensionTarget = errors.New("class-extension target class not found")
	// ErrIncludeDepth indicates include substitution recursed past its bound.
	ErrIncludeDepth = errors.New("include directives nested too deeply")

	// ErrUnknownName indicates a step name matched no element, property, or plural alias.
	// Resolver errors
	ErrUnknownName = errors.New("unknown element or property")
	// ErrNoApplicationClass indicates the dictionary has no 'application' root class.
	ErrNoApplicationClass = errors.New("dictionary has no application class")
	// ErrUnknownClass indicates a class name was not found in the dictionary.
	ErrUnknownClass = errors.New("class not found in dictionary")
	// ErrInheritanceCycle indicates a class parent chain revisits a class.
	ErrInheritanceCycle = errors.New("inheritance cycle detected")

	// ErrUnknownTarget indicates the path finder target is neither a class nor a property.
	// Path finder errors
	ErrUnknownTarget = errors.New("target is not a known class or property")

	// ErrTruncatedDescriptor indicates a flattened descriptor ended mid-field.
	// Descriptor errors
	ErrTruncatedDescriptor = errors.New("truncated descriptor data")
	// ErrUnsupportedPredicate indicates a predicate form the specifier encoding cannot express.
	ErrUnsupportedPredicate = errors.New("predicate cannot be encoded in a specifier")

	// ErrNoReply indicates the transport produced no reply payload.
	// Transport errors
	ErrNoReply = errors.New("no reply payload")
	// ErrNoFixture indicates the replay sender has no recorded reply for a request.
	ErrNoFixture = errors.New("no recorded reply for request")

	// ErrConfigValidation is returned when configuration validation fails.
	// Configuration errors
	ErrConfigValidation = errors.New("configuration validation failed")
)
