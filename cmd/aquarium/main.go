// Aquarium: tank decor placement on a tile grid.
//
// Build:
//   go build -o aquarium ./cmd/aquarium
//
// Example:
//   aquarium -config aquarium.yaml place -item Castle -x 120 -y 80
//   aquarium list
//   aquarium export -o tank.pdf

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/piwi3910/Aquarium/internal/cli"
)

func main() {
	if err := cli.Run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "aquarium:", err)
		if errors.Is(err, cli.ErrUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
