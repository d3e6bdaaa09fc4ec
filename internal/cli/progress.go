package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Veraticus/notecheck/internal/engine"
	"github.com/schollz/progressbar/v3"
)

// BuildProgress shows a progress bar while records are folded into the matrix.
type BuildProgress struct {
	writer io.Writer
	bar    *progressbar.ProgressBar
}

// NewBuildProgress creates a progress reporter writing to w.
func NewBuildProgress(w io.Writer) *BuildProgress {
	if w == nil {
		w = os.Stderr
	}
	return &BuildProgress{writer: w}
}

// Start implements engine.Progress.
func (b *BuildProgress) Start(total int) {
	b.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(b.writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Checking documents...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(b.writer); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// Increment implements engine.Progress.
func (b *BuildProgress) Increment() {
	if b.bar == nil {
		return
	}
	if err := b.bar.Add(1); err != nil {
		slog.Warn("Failed to update progress bar", "error", err)
	}
}

// Finish implements engine.Progress.
func (b *BuildProgress) Finish() {
	if b.bar == nil {
		return
	}
	if err := b.bar.Finish(); err != nil {
		slog.Warn("Failed to finish progress bar", "error", err)
	}
}

var _ engine.Progress = (*BuildProgress)(nil)
