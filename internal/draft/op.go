package draft

// Wire tags for each operation type.
const (
	TypeFullReplace = "full-replace"
	TypeInsert      = "add"
	TypeDelete      = "delete"
	TypeReplace     = "replace"
)

// Op is one edit operation. The set of implementations is closed.
type Op interface {
	// Type returns the wire tag.
	Type() string
	isOp()
}

// FullReplace replaces the whole draft.
type FullReplace struct {
	Text string
}

// Insert inserts Text at Index, shifting the rest right.
type Insert struct {
	Index int
	Text  string
}

// Delete removes Count units starting at Index.
type Delete struct {
	Index int
	Count int
}

// Replace removes Len16(Text)+1 units starting at Index and inserts Text in
// their place. The extra unit matches what every other client in the room
// computes, so it must not be corrected here.
type Replace struct {
	Index int
	Text  string
}

// Unknown carries an operation tag this package does not understand.
type Unknown struct {
	Tag string
}

func (FullReplace) Type() string { return TypeFullReplace }
func (Insert) Type() string      { return TypeInsert }
func (Delete) Type() string      { return TypeDelete }
func (Replace) Type() string     { return TypeReplace }
func (u Unknown) Type() string   { return u.Tag }

func (FullReplace) isOp() {}
func (Insert) isOp()      {}
func (Delete) isOp()      {}
func (Replace) isOp()     {}
func (Unknown) isOp()     {}
