package main

import (
	"os"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"
)

// printer colors pass/fail markers when stdout is a terminal.
type printer struct {
	color bool
}

func newPrinter(noColor bool) *printer {
	return &printer{
		color: !noColor && term.IsTerminal(int(os.Stdout.Fd())),
	}
}

func (p *printer) paint(s string, c ansi.BasicColor) string {
	if !p.color {
		return s
	}
	return ansi.Style{}.ForegroundColor(c).Styled(s)
}

func (p *printer) pass(s string) string { return p.paint(s, ansi.Green) }
func (p *printer) fail(s string) string { return p.paint(s, ansi.Red) }
func (p *printer) warn(s string) string { return p.paint(s, ansi.Yellow) }

func (p *printer) presence(present bool) string {
	if present {
		return p.pass("present")
	}
	return p.warn("absent")
}

func (p *printer) verdict(ok bool) string {
	if ok {
		return p.pass("ok")
	}
	return p.fail("FAIL")
}
