// Package scan discovers JSON source documents, decodes them into an
// order-preserving value tree, and extracts the URLs stored under the
// reserved "data" key.
package scan

// Kind discriminates the variants of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is a decoded JSON value. Only the fields matching Kind are set.
// Object members keep their document order so traversal is deterministic.
type Value struct {
	Kind    Kind
	Text    string // string contents, or the literal text of a number
	Bool    bool
	Members []Member
	Items   []Value
}

// Member is one key/value pair of a JSON object.
type Member struct {
	Key   string
	Value Value
}

// String builds a string Value.
func String(s string) Value { return Value{Kind: KindString, Text: s} }

// Object builds an object Value from members in order.
func Object(members ...Member) Value { return Value{Kind: KindObject, Members: members} }

// Array builds an array Value.
func Array(items ...Value) Value { return Value{Kind: KindArray, Items: items} }

// Field is shorthand for a Member.
func Field(key string, v Value) Member { return Member{Key: key, Value: v} }
