package prompt_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/parcel/internal/adapters/prompt"
	"go.trai.ch/parcel/internal/core/domain"
)

func TestTerminal_PromptSequence(t *testing.T) {
	out := &bytes.Buffer{}
	p := prompt.New(strings.NewReader("  user@example.com \nhunter2\n"), out)

	email, err := p.Prompt("Email: ")
	require.NoError(t, err)
	password, err := p.PromptSecret("Password: ")
	require.NoError(t, err)

	assert.Equal(t, "user@example.com", email)
	assert.Equal(t, "hunter2", password)
	assert.Equal(t, "Email: Password: ", out.String())
}

func TestTerminal_LastLineWithoutNewline(t *testing.T) {
	p := prompt.New(strings.NewReader("only"), &bytes.Buffer{})

	got, err := p.Prompt("> ")
	require.NoError(t, err)
	assert.Equal(t, "only", got)
}

func TestTerminal_EOF(t *testing.T) {
	p := prompt.New(strings.NewReader(""), &bytes.Buffer{})

	_, err := p.PromptSecret("Password: ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrLoginFailed))
}
