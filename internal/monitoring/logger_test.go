package monitoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLogger(t *testing.T) {
	prev := Logf
	defer func() { Logf = prev }()

	var got string
	SetLogger(func(format string, v ...any) { got = fmt.Sprintf(format, v...) })
	Logf("[overlay] %d pairs", 3)
	assert.Equal(t, "[overlay] 3 pairs", got)

	got = ""
	SetLogger(nil)
	assert.NotPanics(t, func() { Logf("muted %s", "message") })
	assert.Empty(t, got)
}
