// chartbump auto-increments Helm chart patch versions based on git changes.
package main

import (
	"os"

	"github.com/hupe1980/chartbump/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
