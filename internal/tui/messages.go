package tui

import (
	"github.com/Veraticus/notecheck/internal/access"
	"github.com/Veraticus/notecheck/internal/auth"
	"github.com/Veraticus/notecheck/internal/engine"
)

type accessCheckedMsg struct {
	result access.Result
}

type loginDoneMsg struct {
	err     error
	outcome auth.Outcome
}

type initiatedMsg struct {
	err error
}

type mfaDoneMsg struct {
	err error
}

type loggedOutMsg struct{}

type reportDoneMsg struct {
	err    error
	result *engine.Result
}

// stateChangedMsg is sent from the flow's observer.
type stateChangedMsg struct {
	state auth.State
}
