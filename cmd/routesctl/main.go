// Command routesctl prints the volunteers, drivers and route table of the
// food-routing back end, and deletes records.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
