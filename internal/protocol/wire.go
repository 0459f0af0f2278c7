package protocol

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/louisbranch/livedraft/internal/draft"
)

// wireID accepts a participant id encoded as a JSON string or number.
type wireID string

func (id *wireID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = wireID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = wireID(n.String())
	return nil
}

type wireUser struct {
	ID       wireID `json:"id"`
	Username string `json:"username,omitempty"`
	Location string `json:"location,omitempty"`
}

type wireDiff struct {
	Type  string  `json:"type"`
	Index *int    `json:"index,omitempty"`
	Count *int    `json:"count,omitempty"`
	Text  *string `json:"text,omitempty"`
}

// op converts a decoded diff. Missing numbers are 0 and missing text is "".
// Unrecognized types become draft.Unknown.
func (d wireDiff) op() draft.Op {
	index, count, text := deref(d.Index), deref(d.Count), deref(d.Text)
	switch d.Type {
	case draft.TypeFullReplace:
		return draft.FullReplace{Text: text}
	case draft.TypeInsert:
		return draft.Insert{Index: index, Text: text}
	case draft.TypeDelete:
		return draft.Delete{Index: index, Count: count}
	case draft.TypeReplace:
		return draft.Replace{Index: index, Text: text}
	default:
		return draft.Unknown{Tag: d.Type}
	}
}

func diffFromOp(op draft.Op) (wireDiff, error) {
	switch op := op.(type) {
	case draft.FullReplace:
		return wireDiff{Type: op.Type(), Text: &op.Text}, nil
	case draft.Insert:
		return wireDiff{Type: op.Type(), Index: &op.Index, Text: &op.Text}, nil
	case draft.Delete:
		return wireDiff{Type: op.Type(), Index: &op.Index, Count: &op.Count}, nil
	case draft.Replace:
		return wireDiff{Type: op.Type(), Index: &op.Index, Text: &op.Text}, nil
	case draft.Unknown:
		return wireDiff{}, New(CodeInvalidPayload, "cannot encode unknown edit operation "+op.Tag)
	default:
		return wireDiff{}, New(CodeInvalidPayload, "edit operation is required")
	}
}

// chatUpdateOp resolves a chat update body: the diff when present, otherwise
// the message as a full replacement.
func chatUpdateOp(diff *wireDiff, message *string) draft.Op {
	if diff != nil {
		return diff.op()
	}
	return draft.FullReplace{Text: deref(message)}
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
