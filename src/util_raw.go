//go:build raw

package main

import (
	"io"
	"os"
)

// Log writer implementation
func NewLogWriter() io.Writer {
	return os.Stderr
}

// Message box implementation using stderr
func ShowErrorDialog(message string) {
	print("ragdollsim Error\n\n" + message + "\n")
}
