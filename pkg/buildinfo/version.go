// Package buildinfo holds the vfconsole release stamp. Release builds
// override the defaults with the linker:
//
//	go build -ldflags "-X github.com/videofonik/vfconsole/pkg/buildinfo.Version=v0.4.0 \
//	    -X github.com/videofonik/vfconsole/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/videofonik/vfconsole/pkg/buildinfo.Date=$(date -u +%Y-%m-%d)" ./cmd/vfconsole
package buildinfo

import "fmt"

// Release stamp. Local builds report "dev".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent is the User-Agent the console sends to the authoring API, for
// example "vfconsole/v0.4.0".
func UserAgent(app string) string {
	return app + "/" + Version
}

// Template is the output of "vfconsole --version".
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (%s, built %s)\n", Version, Commit, Date)
}
