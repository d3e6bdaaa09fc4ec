package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Veraticus/notecheck/internal/auth"
	"github.com/Veraticus/notecheck/internal/common"
	"github.com/Veraticus/notecheck/internal/engine"
	"github.com/Veraticus/notecheck/internal/model"
	"github.com/Veraticus/notecheck/internal/portal"
	"golang.org/x/term"
)

// maxCodeAttempts bounds how often an empty MFA code is asked for again.
const maxCodeAttempts = 3

// Prompter asks for credentials, the MFA code and the report period on the
// terminal.
type Prompter struct {
	writer       io.Writer
	reader       *LineReader
	readPassword func() (string, error)
}

// NewCLIPrompter creates a new CLI prompter with the given reader and writer.
// When reader is a terminal the password is read without echo.
func NewCLIPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	p := &Prompter{
		reader: NewLineReader(reader),
		writer: writer,
	}

	if f, ok := reader.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		p.readPassword = func() (string, error) {
			b, err := term.ReadPassword(fd)
			return string(b), err
		}
	}

	return p
}

// Credentials fills in whatever part of creds is missing.
func (p *Prompter) Credentials(ctx context.Context, creds auth.Credentials) (auth.Credentials, error) {
	if strings.TrimSpace(creds.Email) == "" {
		email, err := p.ask(ctx, "Email")
		if err != nil {
			return creds, err
		}
		creds.Email = email
	}

	if creds.Password == "" {
		password, err := p.askSecret(ctx, "Password")
		if err != nil {
			return creds, err
		}
		creds.Password = password
	}

	return creds, nil
}

// MFACode implements auth.CodeSource.
func (p *Prompter) MFACode(ctx context.Context, challenge model.MFAChallenge) (string, error) {
	phone := challenge.MaskedPhone()
	if phone == "" {
		phone = "your phone"
	}
	if _, err := fmt.Fprintln(p.writer, FormatInfo(LockIcon+" A verification code was sent to "+phone)); err != nil {
		return "", fmt.Errorf("failed to write MFA notice: %w", err)
	}

	for range maxCodeAttempts {
		code, err := p.ask(ctx, "MFA code")
		if err != nil {
			return "", err
		}
		if code != "" {
			return code, nil
		}
		if _, err := fmt.Fprintln(p.writer, FormatWarning("Please enter the code from the text message.")); err != nil {
			return "", fmt.Errorf("failed to write prompt: %w", err)
		}
	}
	return "", fmt.Errorf("no MFA code entered after %d attempts", maxCodeAttempts)
}

// DateRange asks for whichever bound is missing and parses both.
func (p *Prompter) DateRange(ctx context.Context, start, end string) (model.DateRange, error) {
	var err error
	if start == "" {
		if start, err = p.ask(ctx, "Start date (YYYY-MM-DD)"); err != nil {
			return model.DateRange{}, err
		}
	}
	if end == "" {
		if end, err = p.ask(ctx, "End date (YYYY-MM-DD)"); err != nil {
			return model.DateRange{}, err
		}
	}
	return engine.ParseRange(start, end)
}

// ReportError prints a failed run the way the user should read it.
func (p *Prompter) ReportError(err error) {
	msg := userMessage(err)
	_, _ = fmt.Fprintln(p.writer, FormatError(msg))
}

func userMessage(err error) string {
	var apiErr *portal.APIError
	switch {
	case errors.As(err, &apiErr) && len(apiErr.Messages) > 0:
		return apiErr.Messages.String()
	case errors.Is(err, context.Canceled), errors.Is(err, ErrInputCanceled):
		return "Canceled"
	default:
		return common.UserMessage(err)
	}
}

func (p *Prompter) ask(ctx context.Context, label string) (string, error) {
	if _, err := fmt.Fprint(p.writer, FormatPrompt(label)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	line, err := p.reader.ReadLine(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return line, nil
}

func (p *Prompter) askSecret(ctx context.Context, label string) (string, error) {
	if p.readPassword == nil {
		return p.ask(ctx, label)
	}

	if _, err := fmt.Fprint(p.writer, FormatPrompt(label)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}
	secret, err := p.readPassword()
	_, _ = fmt.Fprintln(p.writer)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return secret, nil
}

var _ auth.CodeSource = (*Prompter)(nil)
