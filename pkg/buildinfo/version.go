// Package buildinfo reports the version mindcanvas was built as.
//
// The variables are stamped at link time:
//
//	go build -ldflags "-X github.com/tyrandev/mindmap-canvas-sub000/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/tyrandev/mindmap-canvas-sub000/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/tyrandev/mindmap-canvas-sub000/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/mindcanvas
package buildinfo

import "fmt"

// Build stamp, overridden by -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the build stamp in a form that marshals to JSON.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the current build stamp.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

func (i Info) String() string {
	return fmt.Sprintf("%s (%s, built %s)", i.Version, i.Commit, i.Date)
}

// Template returns the cobra version template.
func Template() string {
	return "{{.Name}} " + Get().String() + "\n"
}
