//go:build windows

package main

import (
	"os"
	"path/filepath"
)

func defaultSocketPath() string {
	return filepath.Join(programData(), "battrate", "battrate.sock")
}

func defaultConfigDir() string {
	return filepath.Join(programData(), "battrate")
}

func programData() string {
	if d := os.Getenv("ProgramData"); d != "" {
		return d
	}
	return `C:\ProgramData`
}
