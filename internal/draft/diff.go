package draft

import (
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// Diff returns Insert and Delete operations that turn prev into next when
// applied in order with ApplyAll. It returns nil when the texts are equal.
// Replace is never produced.
func Diff(prev, next string) []Op {
	if prev == next {
		return nil
	}

	dmp := diffpatch.New()
	diffs := dmp.DiffMain(prev, next, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var ops []Op
	pos := 0
	for _, d := range diffs {
		n := Len16(d.Text)
		switch d.Type {
		case diffpatch.DiffEqual:
			pos += n
		case diffpatch.DiffInsert:
			ops = append(ops, Insert{Index: pos, Text: d.Text})
			pos += n
		case diffpatch.DiffDelete:
			ops = append(ops, Delete{Index: pos, Count: n})
		}
	}
	return ops
}
