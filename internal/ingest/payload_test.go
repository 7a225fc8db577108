package ingest //nolint:testpackage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		in  []byte
		exp payloadKind
	}{
		{[]byte("https://ruu.vi/#AjwYAMFc"), kindURL},
		{[]byte("ruu.vi/#AjwYAMFc"), kindURL},
		{[]byte("http://example.com"), kindURL},
		{[]byte("99040512FC"), kindHex},
		{[]byte(" 99040512fc\n"), kindHex},
		{[]byte("99040512F"), kindBinary},
		{[]byte{0x99, 0x04, 0x05, 0x12}, kindBinary},
		{[]byte{}, kindBinary},
		{[]byte("garbage"), kindBinary},
	}

	for _, test := range tests {
		assert.Equal(t, test.exp, classify(test.in), "input: %q", test.in)
	}
}

func TestDedup(t *testing.T) {
	d := newDedup()

	assert.False(t, d.seen("a", 1))
	assert.True(t, d.seen("a", 1))
	assert.False(t, d.seen("a", 2))
	assert.False(t, d.seen("b", 2))
	assert.False(t, d.seen("a", 1))
}

func TestSourceURL(t *testing.T) {
	assert.Equal(t, "https://ruu.vi/#AjwYAMFc", SourceURL([]byte(" https://ruu.vi/#AjwYAMFc\n")))
	assert.Empty(t, SourceURL([]byte("990403291A1ECE1EFC18F94202CA0B53")))
	assert.Empty(t, SourceURL([]byte{0x99, 0x04, 0x05}))
}
