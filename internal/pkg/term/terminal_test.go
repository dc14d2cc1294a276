package term

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminal(t *testing.T) {
	t.Run("PromptWithDefault", func(t *testing.T) {
		var out bytes.Buffer
		term := newTerminal(strings.NewReader("\n"), &out)

		value, err := term.Prompt("Username", "alice")
		require.NoError(t, err)
		assert.Equal(t, "alice", value)
		assert.Equal(t, "Username [alice]: ", out.String())
	})

	t.Run("PasswordAndCode", func(t *testing.T) {
		var out bytes.Buffer
		term := newTerminal(strings.NewReader("secret\n 12345 \n"), &out)

		pwd, err := term.Password("Password")
		require.NoError(t, err)
		assert.Equal(t, "secret", pwd)

		code, err := term.Code("+15551234567")
		require.NoError(t, err)
		assert.Equal(t, "12345", code)
		assert.Contains(t, out.String(), "Enter the code sent to +15551234567")
	})

	t.Run("EmptyCode", func(t *testing.T) {
		term := newTerminal(strings.NewReader("\n"), &bytes.Buffer{})
		_, err := term.Code("+1")
		assert.Error(t, err)
	})

	t.Run("LastLineWithoutNewline", func(t *testing.T) {
		term := newTerminal(strings.NewReader("yes"), &bytes.Buffer{})
		ok, err := term.Confirm("Delete account?")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("ClosedInput", func(t *testing.T) {
		term := newTerminal(strings.NewReader(""), &bytes.Buffer{})
		_, err := term.Prompt("Username", "")
		assert.Error(t, err)
	})
}
