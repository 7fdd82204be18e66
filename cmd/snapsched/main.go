// Package main is the entry point for snapsched.
package main

import (
	"errors"
	"os"

	"github.com/kmattheis/snapsched/internal/config"
)

func main() {
	if err := Execute(); err != nil {
		// A config schema below the migration floor is unrecoverable and
		// gets its own exit code so wrappers can tell it apart.
		if errors.Is(err, config.ErrConfigVersionTooOld) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
