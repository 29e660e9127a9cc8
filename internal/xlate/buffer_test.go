package xlate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuffer_AddAndString(t *testing.T) {
	b := NewBuffer()
	b.Add("add rule bridge %s %s ", "filter", "FORWARD")
	b.Add("ether type %s0x%x ", Invert(true), 0x800)
	b.Add("counter")
	b.Add(" accept ")

	assert.Equal(t, "add rule bridge filter FORWARD ether type != 0x800 counter accept", b.String())
	assert.Positive(t, b.Len())
}

func TestBuffer_LiteralPercent(t *testing.T) {
	b := NewBuffer()
	b.Add("100%")
	assert.Equal(t, "100%", b.String())
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"drop: "`, Quote("drop: "))
	assert.Equal(t, `"a\"b"`, Quote(`a"b`))
}
