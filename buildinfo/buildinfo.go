// Package buildinfo reports which build of the converter produced a dataset.
package buildinfo

import (
	"fmt"
	"io"
	"runtime/debug"
)

type Info struct {
	Module       string
	GoVersion    string
	Revision     string
	RevisionTime string
	Dirty        bool
}

func (i Info) String() string {
	if i.Module == "" {
		return "unknown build"
	}

	dirty := ""
	if i.Dirty {
		dirty = " (modified)"
	}
	rev := i.Revision
	if rev == "" {
		rev = "unknown"
	}

	return fmt.Sprintf("%s built with %s at commit %s %s%s", i.Module, i.GoVersion, rev, i.RevisionTime, dirty)
}

// Read collects the build settings embedded in the running binary.
func Read() Info {
	var out Info

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}

	out.GoVersion = bi.GoVersion
	out.Module = bi.Main.Path
	if bi.Main.Path == "" {
		out.Module = bi.Path
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			out.Revision = s.Value
		case "vcs.time":
			out.RevisionTime = s.Value
		case "vcs.modified":
			out.Dirty = s.Value == "true"
		}
	}

	return out
}

// Fprint writes the build description of the running binary to w.
func Fprint(w io.Writer) {
	fmt.Fprintln(w, Read())
}
