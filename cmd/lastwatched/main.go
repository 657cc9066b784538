// lastwatched marks video files as watched.
// The flag lives in a hidden .watched file beside the videos, one name per line.
package main

import (
	"fmt"
	"os"

	"github.com/corey/lastwatched/cmd/lastwatched/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", cmd.Describe(err))
		os.Exit(1)
	}
}
