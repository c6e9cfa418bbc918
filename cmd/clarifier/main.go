// clarifier ranks clarifying descriptions for a query and its items.
package main

import (
	"os"

	"github.com/cognicore/clarifier/cmd/clarifier/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
