package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/notecheck/internal/auth"
	"github.com/Veraticus/notecheck/internal/common"
	"github.com/Veraticus/notecheck/internal/model"
	"github.com/Veraticus/notecheck/internal/portal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPrompter(input string) (*Prompter, *bytes.Buffer) {
	var out bytes.Buffer
	return NewCLIPrompter(strings.NewReader(input), &out), &out
}

func TestPrompter_Credentials(t *testing.T) {
	tests := []struct {
		name  string
		input string
		given auth.Credentials
		want  auth.Credentials
	}{
		{
			name:  "prompts for both",
			input: "me@example.com\nhunter2\n",
			want:  auth.Credentials{Email: "me@example.com", Password: "hunter2"},
		},
		{
			name:  "keeps configured email",
			input: "hunter2\n",
			given: auth.Credentials{Email: "cfg@example.com"},
			want:  auth.Credentials{Email: "cfg@example.com", Password: "hunter2"},
		},
		{
			name:  "nothing to ask",
			given: auth.Credentials{Email: "cfg@example.com", Password: "pw"},
			want:  auth.Credentials{Email: "cfg@example.com", Password: "pw"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := newTestPrompter(tt.input)

			got, err := p.Credentials(context.Background(), tt.given)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrompter_CredentialsUsesSecretReader(t *testing.T) {
	p, out := newTestPrompter("me@example.com\n")
	p.readPassword = func() (string, error) { return "from-terminal", nil }

	got, err := p.Credentials(context.Background(), auth.Credentials{})
	require.NoError(t, err)
	assert.Equal(t, "from-terminal", got.Password)
	assert.NotContains(t, out.String(), "from-terminal")
}

func TestPrompter_MFACode(t *testing.T) {
	challenge := model.MFAChallenge{Token: "t", Phone: "5551234567"}

	t.Run("reads code", func(t *testing.T) {
		p, out := newTestPrompter("123456\n")

		code, err := p.MFACode(context.Background(), challenge)
		require.NoError(t, err)
		assert.Equal(t, "123456", code)
		assert.Contains(t, out.String(), "******4567")
	})

	t.Run("asks again after empty input", func(t *testing.T) {
		p, out := newTestPrompter("\n  \n654321\n")

		code, err := p.MFACode(context.Background(), challenge)
		require.NoError(t, err)
		assert.Equal(t, "654321", code)
		assert.Equal(t, 2, strings.Count(out.String(), "Please enter the code"))
	})

	t.Run("gives up", func(t *testing.T) {
		p, _ := newTestPrompter("\n\n\n")

		_, err := p.MFACode(context.Background(), challenge)
		assert.Error(t, err)
	})

	t.Run("canceled", func(t *testing.T) {
		p, _ := newTestPrompter("")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := p.MFACode(ctx, challenge)
		assert.ErrorIs(t, err, ErrInputCanceled)
	})
}

func TestPrompter_DateRange(t *testing.T) {
	t.Run("flags only", func(t *testing.T) {
		p, out := newTestPrompter("")

		r, err := p.DateRange(context.Background(), "2024-01-01", "2024-01-31")
		require.NoError(t, err)
		assert.Equal(t, "2024-01-01", r.Start.Format(model.DateLayout))
		assert.Empty(t, out.String())
	})

	t.Run("prompts for missing end", func(t *testing.T) {
		p, out := newTestPrompter("2024-02-15\n")

		r, err := p.DateRange(context.Background(), "2024-02-01", "")
		require.NoError(t, err)
		assert.Equal(t, "2024-02-15", r.End.Format(model.DateLayout))
		assert.Contains(t, out.String(), "End date")
	})

	t.Run("invalid", func(t *testing.T) {
		p, _ := newTestPrompter("")

		_, err := p.DateRange(context.Background(), "2024-02-01", "2024-01-01")
		assert.ErrorIs(t, err, common.ErrInvalidRange)
	})
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want string
	}{
		{
			name: "portal messages",
			err:  fmt.Errorf("login failed: %w", &portal.APIError{Op: "login", Messages: portal.APIErrors{"Invalid password"}}),
			want: "Invalid password",
		},
		{name: "canceled", err: fmt.Errorf("x: %w", context.Canceled), want: "Canceled"},
		{name: "plain", err: errors.New("boom"), want: "boom"},
		{
			name: "user error",
			err:  fmt.Errorf("render: %w", common.NewUserError("Could not save report.xlsx", errors.New("locked"))),
			want: "Could not save report.xlsx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, userMessage(tt.err))
		})
	}
}

// typist answers each prompt by writing the next line to the input pipe,
// one line per read the way a terminal in canonical mode delivers input.
type typist struct {
	in    *os.File
	out   bytes.Buffer
	lines []string
}

func (ty *typist) Write(p []byte) (int, error) {
	if strings.Contains(string(p), "→") && len(ty.lines) > 0 {
		line := ty.lines[0]
		ty.lines = ty.lines[1:]
		if _, err := ty.in.WriteString(line + "\n"); err != nil {
			return 0, err
		}
	}
	return ty.out.Write(p)
}

// readLineFrom reads one line straight from f, as a no-echo terminal read
// of the same descriptor would.
func readLineFrom(f *os.File) (string, error) {
	var line []byte
	buf := make([]byte, 1)
	for {
		if _, err := f.Read(buf); err != nil {
			return string(line), err
		}
		if buf[0] == '\n' {
			return string(line), nil
		}
		line = append(line, buf[0])
	}
}

func TestPrompter_HiddenPasswordSharesInput(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer func() {
		_ = r.Close()
		_ = w.Close()
	}()

	ty := &typist{in: w, lines: []string{"me@example.com", "hunter2", "2024-01-01", "2024-01-31"}}
	p := NewCLIPrompter(r, ty)
	p.readPassword = func() (string, error) { return readLineFrom(r) }

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	creds, err := p.Credentials(ctx, auth.Credentials{})
	require.NoError(t, err)
	assert.Equal(t, "me@example.com", creds.Email)
	assert.Equal(t, "hunter2", creds.Password)

	dateRange, err := p.DateRange(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, 1, dateRange.Start.Day())
	assert.Equal(t, 31, dateRange.End.Day())
	assert.NotContains(t, ty.out.String(), "hunter2")
}
