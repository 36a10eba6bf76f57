package errors

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapKeepsSentinel(t *testing.T) {
	err := Wrapf(ErrClassNotFound, "class %s in %s", "Resistor", "Resistor.py")

	assert.True(t, Is(err, ErrClassNotFound))
	assert.Contains(t, err.Error(), "Resistor.py")
	assert.Contains(t, err.Error(), "class not found")
}

func TestWithHint(t *testing.T) {
	err := WithHint(ErrOutOfDate, "run 'libref' to regenerate")

	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Equal(t, "run 'libref' to regenerate", hints[0])
	assert.True(t, Is(err, ErrOutOfDate))
}

func TestIsSkippable(t *testing.T) {
	assert.True(t, IsSkippable(Wrap(ErrParse, "Capacitor.py")))
	assert.True(t, IsSkippable(Wrap(ErrClassNotFound, "Capacitor")))
	assert.False(t, IsSkippable(Wrap(ErrGroupNotFound, "docs.json")))
	_, statErr := os.Stat(filepath.Join(t.TempDir(), "Capacitor.py"))
	assert.True(t, IsSkippable(Wrapf(statErr, "read %s", "Capacitor.py")))
	assert.False(t, IsSkippable(New("disk full")))
	assert.False(t, IsSkippable(Wrap(fs.ErrPermission, "Capacitor.py")))
	assert.False(t, IsSkippable(nil))
}

func TestStackTrace(t *testing.T) {
	err := New("with stack")

	detailed := fmt.Sprintf("%+v", err)
	assert.Contains(t, detailed, "errors_test.go")
}

func TestNilHandling(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Wrapf(nil, "context %d", 1))
	assert.Nil(t, WithHint(nil, "hint"))
}

func ExampleWrap() {
	err := Wrap(ErrParse, "Resistor.py")
	fmt.Println(err)
	// Output: Resistor.py: parse failed
}
