package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// IsInteractive reports whether stdin and stderr are terminals.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}

// readLineAsync reads one line from r in a goroutine, byte by byte so nothing
// is buffered away from a later bubbletea program. The goroutine is abandoned
// if the prompt is interrupted.
func readLineAsync(r io.Reader) <-chan lineResult {
	ch := make(chan lineResult, 1)
	go func() {
		var line []byte
		buf := make([]byte, 1)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				switch buf[0] {
				case '\n':
					ch <- lineResult{line: strings.TrimSpace(string(line))}
					return
				case '\r':
				default:
					line = append(line, buf[0])
				}
			}
			if err != nil {
				if err == io.EOF && len(line) > 0 {
					ch <- lineResult{line: strings.TrimSpace(string(line))}
					return
				}
				ch <- lineResult{err: err}
				return
			}
		}
	}()
	return ch
}

type lineResult struct {
	line string
	err  error
}

// Prompt prints message to stderr and reads a line from stdin.
// Returns ErrInterrupted if Ctrl+C is pressed.
func Prompt(message string) (string, error) {
	return prompt(os.Stdin, message)
}

func prompt(in io.Reader, message string) (string, error) {
	scope, err := beginPrompt()
	if err != nil {
		return "", err
	}

	fmt.Fprint(statusOut, message)

	select {
	case <-scope.done():
		fmt.Fprintln(statusOut)
		return "", ErrInterrupted
	case result := <-readLineAsync(in):
		return result.line, result.err
	}
}

// Confirm asks a yes/no question.
func Confirm(message string, defaultYes bool) (bool, error) {
	return confirm(os.Stdin, message, defaultYes)
}

func confirm(in io.Reader, message string, defaultYes bool) (bool, error) {
	suffix := " [y/N]: "
	if defaultYes {
		suffix = " [Y/n]: "
	}

	input, err := prompt(in, message+suffix)
	if err != nil {
		return false, err
	}

	switch strings.ToLower(input) {
	case "":
		return defaultYes, nil
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
