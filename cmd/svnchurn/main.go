// Command svnchurn analyzes commit-churn metrics across an SVN revision
// range and writes the results to CSV.
package main

import (
	"os"

	"github.com/svnchurn/svnchurn/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
