package parser

// SchemaVersion identifies the child slot layout below. Bump it whenever a
// slot is added, removed or reordered so stored trees can be told apart.
const SchemaVersion = 1

// ChildrenSlot collects children that have no declared slot
const ChildrenSlot = "children"

// SlotCardinality describes how many nodes a slot may hold
type SlotCardinality int

const (
	// SlotSingle holds exactly one node
	SlotSingle SlotCardinality = iota
	// SlotOptional holds zero or one node
	SlotOptional
	// SlotSequence holds an ordered, homogeneous list of nodes
	SlotSequence
)

// String returns the cardinality name
func (c SlotCardinality) String() string {
	switch c {
	case SlotSingle:
		return "single"
	case SlotOptional:
		return "optional"
	case SlotSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// SlotSpec declares one child slot of a node kind
type SlotSpec struct {
	Name        string
	Cardinality SlotCardinality
}

func single(name string) SlotSpec   { return SlotSpec{Name: name, Cardinality: SlotSingle} }
func optional(name string) SlotSpec { return SlotSpec{Name: name, Cardinality: SlotOptional} }
func sequence(name string) SlotSpec { return SlotSpec{Name: name, Cardinality: SlotSequence} }

// Schema maps a node kind to its ordered child slots. Slot names are the
// tree-sitter-java field names. Kinds not listed here keep all of their
// children in the trailing children slot.
var Schema = map[NodeKind][]SlotSpec{
	KindClassDeclaration: {
		optional("name"), optional("type_parameters"), optional("superclass"),
		optional("interfaces"), optional("permits"), single("body"),
	},
	KindInterfaceDeclaration: {
		optional("name"), optional("type_parameters"), optional("permits"), single("body"),
	},
	KindEnumDeclaration: {
		optional("name"), optional("interfaces"), single("body"),
	},
	KindRecordDeclaration: {
		optional("name"), optional("type_parameters"), single("parameters"),
		optional("interfaces"), single("body"),
	},
	KindMethodDeclaration: {
		optional("type_parameters"), optional("type"), single("name"),
		single("parameters"), optional("dimensions"), optional("body"),
	},
	KindConstructorDeclaration: {
		optional("type_parameters"), single("name"), single("parameters"), optional("body"),
	},
	KindFieldDeclaration: {
		single("type"), sequence("declarator"),
	},
	"local_variable_declaration": {
		single("type"), sequence("declarator"),
	},
	"variable_declarator": {
		single("name"), optional("dimensions"), optional("value"),
	},
	"formal_parameter": {
		single("type"), single("name"), optional("dimensions"),
	},
	"if_statement": {
		single("condition"), single("consequence"), optional("alternative"),
	},
	"while_statement": {
		single("condition"), single("body"),
	},
	"do_statement": {
		single("body"), single("condition"),
	},
	"for_statement": {
		sequence("init"), optional("condition"), sequence("update"), single("body"),
	},
	"enhanced_for_statement": {
		single("type"), single("name"), optional("dimensions"), single("value"), single("body"),
	},
	"try_statement": {
		single("body"),
	},
	"catch_clause": {
		single("body"),
	},
	"lambda_expression": {
		single("parameters"), single("body"),
	},
	"method_invocation": {
		optional("object"), single("name"), optional("type_arguments"), single("arguments"),
	},
	"object_creation_expression": {
		optional("type_arguments"), single("type"), single("arguments"),
	},
	"field_access": {
		single("object"), single("field"),
	},
	"array_access": {
		single("array"), single("index"),
	},
	"assignment_expression": {
		single("left"), single("right"),
	},
	"binary_expression": {
		single("left"), single("right"),
	},
	"unary_expression": {
		single("operand"),
	},
	"update_expression": {},
	"ternary_expression": {
		single("condition"), single("consequence"), single("alternative"),
	},
	"cast_expression": {
		sequence("type"), single("value"),
	},
	"instanceof_expression": {
		single("left"), optional("right"), optional("name"),
	},
	"switch_expression": {
		single("condition"), single("body"),
	},
	"array_creation_expression": {
		single("type"), sequence("dimensions"), optional("value"),
	},
}

// SlotsFor returns fresh, empty slots for a node kind in schema order,
// followed by the children slot.
func SlotsFor(kind NodeKind) []Slot {
	specs := Schema[kind]
	slots := make([]Slot, 0, len(specs)+1)
	for _, spec := range specs {
		slots = append(slots, Slot{Name: spec.Name, Cardinality: spec.Cardinality})
	}
	return append(slots, Slot{Name: ChildrenSlot, Cardinality: SlotSequence})
}
