// ABOUTME: Entry point for sportsbrief
// ABOUTME: Hands off to the command line interface
package main

import (
	"os"

	"github.com/harperreed/sportsbrief/internal/cli"
	"github.com/harperreed/sportsbrief/internal/version"
)

func main() {
	if err := cli.Execute(version.Version); err != nil {
		os.Exit(1)
	}
}
