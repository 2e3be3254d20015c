package support

import (
	"fmt"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
)

// dumpConfig keeps output deterministic: no pointer addresses, sorted map keys.
var dumpConfig = &spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump writes a deep, human-readable rendering of the given values —
// the CLI cousin of Laravel's dump() helper.
//
//	support.Dump(cfg, router)
func Dump(vals ...any) {
	Fdump(os.Stdout, vals...)
}

// Fdump is Dump to an arbitrary writer.
func Fdump(w io.Writer, vals ...any) {
	dumpConfig.Fdump(w, vals...)
}

// Sdump returns the rendering as a string.
func Sdump(vals ...any) string {
	return dumpConfig.Sdump(vals...)
}

// Dd dumps the values and exits — Laravel's dd().
func Dd(vals ...any) {
	Fdump(os.Stdout, vals...)
	os.Exit(1)
}

// Sprintf is fmt.Sprintf with %v arguments pre-rendered by spew, so nested
// structs come out readable in log messages.
func Sprintf(format string, vals ...any) string {
	rendered := make([]any, len(vals))
	for i, v := range vals {
		rendered[i] = dumpConfig.NewFormatter(v)
	}
	return fmt.Sprintf(format, rendered...)
}
