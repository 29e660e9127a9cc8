// Package xlate accumulates one nftables statement while a rule is being
// translated.
package xlate

import (
	"fmt"
	"strings"
)

// DefaultSize is the capacity reserved for a rule translation.
const DefaultSize = 10240

// Buffer collects translated fragments. Fragments are appended verbatim;
// the producer is responsible for separating words, as extensions append
// a trailing space after every qualifier they render.
type Buffer struct {
	sb strings.Builder
}

// NewBuffer returns a buffer with room for a typical rule.
func NewBuffer() *Buffer {
	b := &Buffer{}
	b.sb.Grow(DefaultSize)
	return b
}

// Add appends a formatted fragment.
func (b *Buffer) Add(format string, args ...any) {
	if len(args) == 0 {
		b.sb.WriteString(format)
		return
	}
	fmt.Fprintf(&b.sb, format, args...)
}

// Len is the number of bytes collected so far.
func (b *Buffer) Len() int {
	return b.sb.Len()
}

// String returns the statement with trailing blanks removed.
func (b *Buffer) String() string {
	return strings.TrimRight(b.sb.String(), " ")
}

// Invert returns the nft inequality prefix when invert is set.
func Invert(invert bool) string {
	if invert {
		return "!= "
	}
	return ""
}

// Quote wraps s in double quotes for use as an nft string literal.
func Quote(s string) string {
	return fmt.Sprintf("%q", s)
}
