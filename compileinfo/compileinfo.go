// Package compileinfo reports which commit a brainatlas tool was built from.
// Cached tables outlive the binaries that wrote them, so every tool announces
// its build on startup.
package compileinfo

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
)

type CompileInfo struct {
	Tool       string
	Module     string
	Version    string
	GoVersion  string
	Commit     string
	CommitTime string
	Modified   bool
}

func (c CompileInfo) String() string {
	tool := c.Tool
	if tool == "" {
		tool = c.Module
	}

	version := ""
	if c.Version != "" && c.Version != "(devel)" {
		version = " " + c.Version
	}

	commit := "an unknown commit"
	if c.Commit != "" {
		commit = "commit " + c.Commit
		if c.CommitTime != "" {
			commit += " (" + c.CommitTime + ")"
		}
	}

	mod := ""
	if c.Modified {
		mod = " Files in the repo were modified after that commit."
	}

	return fmt.Sprintf("%s%s was built with %s from %s.%s", tool, version, c.GoVersion, commit, mod)
}

// Get reads the build information embedded in the running binary.
func Get() CompileInfo {
	out := CompileInfo{
		Tool: filepath.Base(os.Args[0]),
	}

	z, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}

	return fromBuildInfo(out, z)
}

func fromBuildInfo(out CompileInfo, z *debug.BuildInfo) CompileInfo {
	out.GoVersion = z.GoVersion
	out.Module = z.Main.Path
	out.Version = z.Main.Version
	for _, s := range z.Settings {
		switch s.Key {
		case "vcs.revision":
			out.Commit = s.Value
		case "vcs.time":
			out.CommitTime = s.Value
		case "vcs.modified":
			out.Modified = s.Value == "true"
		}
	}

	return out
}

func Fprint(w io.Writer) {
	fmt.Fprintf(w, "%s\n", Get())
}

func PrintToStdErr() {
	Fprint(os.Stderr)
}
