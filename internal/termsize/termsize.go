// Package termsize reports the terminal geometry in cells.
package termsize

import (
	"os"

	"golang.org/x/term"
)

// Fallback size when the output is not a terminal
const (
	FallbackColumns = 80
	FallbackRows    = 24
)

// Provider polls the size of a terminal file descriptor.
type Provider struct {
	fd int
}

// Stdout returns a provider for the process's standard output
func Stdout() *Provider {
	return New(int(os.Stdout.Fd()))
}

// New returns a provider for fd
func New(fd int) *Provider {
	return &Provider{fd: fd}
}

// Size returns the terminal size. When the descriptor is not a terminal it
// returns the fallback size along with the error.
func (p *Provider) Size() (columns, rows int, err error) {
	columns, rows, err = term.GetSize(p.fd)
	if err != nil || columns <= 0 || rows <= 0 {
		return FallbackColumns, FallbackRows, err
	}
	return columns, rows, nil
}

// IsTerminal reports whether the descriptor is a terminal
func (p *Provider) IsTerminal() bool {
	return term.IsTerminal(p.fd)
}
