// assetrules resolves and runs asset loader pipelines from a declarative
// build definition.
package main

import (
	"os"

	"github.com/hupe1980/assetrules/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
