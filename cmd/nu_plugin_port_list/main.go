package main

import (
	"github.com/portlist/nu_plugin_port_list/internal/app"
)

var (
	version   = ""
	commit    = ""
	buildDate = ""
)

// go build -ldflags "-X main.version=v0.1.0 -X main.commit=$(git rev-parse --short HEAD) -X 'main.buildDate=$(date +%Y-%m-%d)'" -o nu_plugin_port_list ./cmd/nu_plugin_port_list

func main() {
	app.SetVersionBuildCommitString(version, commit, buildDate)
	app.Execute()
}
