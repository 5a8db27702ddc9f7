package aedesc

import "github.com/osaquery/osaquery/fourcc"

// Descriptor type codes
var (
	typeObjectSpecifier     = fourcc.MustParse("obj ")
	typeNull                = fourcc.MustParse("null")
	typeProperty            = fourcc.MustParse("prop")
	typeType                = fourcc.MustParse("type")
	typeEnumerated          = fourcc.MustParse("enum")
	typeKeyword             = fourcc.MustParse("keyw")
	typeAbsoluteOrdinal     = fourcc.MustParse("abso")
	typeRangeDescriptor     = fourcc.MustParse("rang")
	typeCompDescriptor      = fourcc.MustParse("cmpd")
	typeLogicalDescriptor   = fourcc.MustParse("logi")
	typeObjectBeingExamined = fourcc.MustParse("exmn")

	typeSInt16       = fourcc.MustParse("shor")
	typeSInt32       = fourcc.MustParse("long")
	typeSInt64       = fourcc.MustParse("comp")
	typeUInt32       = fourcc.MustParse("magn")
	typeFloat32      = fourcc.MustParse("sing")
	typeFloat64      = fourcc.MustParse("doub")
	typeBoolean      = fourcc.MustParse("bool")
	typeTrue         = fourcc.MustParse("true")
	typeFalse        = fourcc.MustParse("fals")
	typeUTF8Text     = fourcc.MustParse("utf8")
	typeUnicodeText  = fourcc.MustParse("utxt")
	typeLegacyText   = fourcc.MustParse("TEXT")
	typeLongDateTime = fourcc.MustParse("ldt ")
	typeAEList       = fourcc.MustParse("list")
	typeAERecord     = fourcc.MustParse("reco")
	typeMissingValue = fourcc.MustParse("msng")
)

// Object specifier field keys
var (
	keyDesiredClass = fourcc.MustParse("want")
	keyContainer    = fourcc.MustParse("from")
	keyKeyForm      = fourcc.MustParse("form")
	keyKeyData      = fourcc.MustParse("seld")
)

// Key form enumerants
var (
	formAbsolutePosition = fourcc.MustParse("indx")
	formName             = fourcc.MustParse("name")
	formUniqueID         = fourcc.MustParse("ID  ")
	formRange            = fourcc.MustParse("rang")
	formTest             = fourcc.MustParse("test")
	formPropertyID       = fourcc.MustParse("prop")
)

// Absolute-position ordinal constants
var (
	ordinalAll    = fourcc.MustParse("all ")
	ordinalFirst  = fourcc.MustParse("firs")
	ordinalLast   = fourcc.MustParse("last")
	ordinalMiddle = fourcc.MustParse("midd")
	ordinalRandom = fourcc.MustParse("any ")
)

// Range record keys
var (
	keyRangeStart = fourcc.MustParse("star")
	keyRangeStop  = fourcc.MustParse("stop")
)

// Comparison and logical descriptor keys
var (
	keyCompOperator    = fourcc.MustParse("relo")
	keyCompObject1     = fourcc.MustParse("obj1")
	keyCompObject2     = fourcc.MustParse("obj2")
	keyLogicalOperator = fourcc.MustParse("logc")
	keyLogicalTerms    = fourcc.MustParse("term")
)

// Comparison operator codes
var (
	opEquals            = fourcc.MustParse("=   ")
	opNotEquals         = fourcc.MustParse("≠   ")
	opLessThan          = fourcc.MustParse("<   ")
	opLessThanEquals    = fourcc.MustParse("<=  ")
	opGreaterThan       = fourcc.MustParse(">   ")
	opGreaterThanEquals = fourcc.MustParse(">=  ")
	opContains          = fourcc.MustParse("cont")
	opBeginsWith        = fourcc.MustParse("bgwt")
	opEndsWith          = fourcc.MustParse("ends")
)

// Logical operator codes
var (
	logicalAnd = fourcc.MustParse("AND ")
	logicalOr  = fourcc.MustParse("OR  ")
)
