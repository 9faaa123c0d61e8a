package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrDeletionCancelled is returned when the user does not confirm a destructive action.
var ErrDeletionCancelled = errors.New("deletion cancelled by user")

// errNotInteractive is returned when confirmation is needed but nobody can answer.
var errNotInteractive = errors.New("stdin is not a terminal: use --force to confirm")

// confirm asks question on out and reads a yes/no answer from in. Anything
// other than y or yes, including EOF, declines.
func (a *app) confirm(question string) error {
	if !a.opts.Interactive() {
		return errNotInteractive
	}

	if _, err := fmt.Fprintf(a.opts.Out, "%s (y/N): ", question); err != nil {
		return fmt.Errorf("failed to write prompt: %w", err)
	}

	answer, err := bufio.NewReader(a.opts.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read user input: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return nil
	default:
		return ErrDeletionCancelled
	}
}
