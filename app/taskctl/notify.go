package main

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
)

// colorNotifier prints store notifications to the terminal.
type colorNotifier struct {
	w io.Writer
}

func (n colorNotifier) Info(_ context.Context, msg string) {
	fmt.Fprintln(n.w, color.CyanString(msg))
}

func (n colorNotifier) Success(_ context.Context, msg string) {
	fmt.Fprintln(n.w, color.GreenString(msg))
}

func (n colorNotifier) Failure(_ context.Context, msg string) {
	fmt.Fprintln(n.w, color.RedString(msg))
}
