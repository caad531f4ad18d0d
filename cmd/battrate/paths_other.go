//go:build !windows

package main

func defaultSocketPath() string {
	return "/var/run/battrate.sock"
}

func defaultConfigDir() string {
	return "/etc/battrate"
}
