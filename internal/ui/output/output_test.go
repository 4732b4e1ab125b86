package output_test

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/mpkg/internal/ui/output"
	"go.trai.ch/mpkg/internal/ui/style"
)

func TestColorProfile(t *testing.T) {
	// Test that NO_COLOR forces Ascii profile
	t.Setenv("NO_COLOR", "1")
	p := output.ColorProfile()
	assert.Equal(t, termenv.Ascii, p, "NO_COLOR should force Ascii profile")

	// Without NO_COLOR the profile depends on the environment.
	t.Setenv("NO_COLOR", "")
	p = output.ColorProfile()
	assert.True(t, p >= termenv.TrueColor && p <= termenv.Ascii, "should return a valid profile")
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	out := output.New(&buf)
	assert.NotNil(t, out)

	_, _ = out.WriteString("test")
	assert.Equal(t, "test", buf.String())
}

func TestNew_Nil(t *testing.T) {
	// Should default to stderr, we just check it doesn't panic
	out := output.New(nil)
	assert.NotNil(t, out)
}

func TestNewRenderer_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	var buf bytes.Buffer
	r := output.NewRenderer(&buf)

	assert.Equal(t, "MoveStdlib", style.Heading(r).Render("MoveStdlib"))
	assert.Equal(t, "0x1", style.Resolved(r).Render("0x1"))
}

func TestNewRenderer_Color(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("COLORTERM", "truecolor")

	var buf bytes.Buffer
	r := output.NewRenderer(&buf)
	r.SetColorProfile(termenv.TrueColor)

	assert.Contains(t, style.Resolved(r).Render("0x1"), "\x1b[")
}
