// Package version reports the toolchain's own version banner, printed
// by `buzz -v`.
package version

import (
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
)

// Version is the toolchain release string. Overridden at link time via
// -ldflags "-X github.com/WriteNaN/buzz/internal/version.Version=...".
var Version = "dev"

// Commit is the source commit the binary was built from, set the same
// way as Version.
var Commit = "unknown"

// Banner writes the colorized `buzz -v` banner to w.
func Banner(w io.Writer) {
	bold := color.New(color.Bold)
	bold.Fprint(w, "buzz")
	fmt.Fprintf(w, " %s (%s) %s/%s\n", Version, Commit, runtime.GOOS, runtime.GOARCH)
}
