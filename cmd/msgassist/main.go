package main

import (
	"errors"
	"fmt"
	"os"

	_ "msgassist/pkg/ai/providers"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// A failed ask has already printed its result.
		if !errors.Is(err, errAskFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
