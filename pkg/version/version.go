// Package version carries build metadata injected with -ldflags.
package version

import (
	"fmt"
	"runtime"
)

// These variables are set via ldflags during build.
var (
	Version   = "dev"
	Commit    = "none"
	Date      = "unknown"
	GoVersion = runtime.Version()
)

func Platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// Summary is the version with a short commit suffix when one is known.
func Summary() string {
	v := Version
	if v == "" {
		v = "dev"
	}
	if Commit != "" && Commit != "none" {
		short := Commit
		if len(short) > 7 {
			short = short[:7]
		}
		return fmt.Sprintf("%s (%s)", v, short)
	}
	return v
}

// Info is the multi-line report printed by the version command.
func Info() string {
	return fmt.Sprintf("msgassist version %s\n  commit: %s\n  built: %s\n  go: %s\n  platform: %s\n",
		Summary(), Commit, Date, GoVersion, Platform())
}
