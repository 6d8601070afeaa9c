// Command storefront-admin runs maintenance tasks against the shop
// database: schema migration, fixture import, sales recalculation, voucher
// generation and cache flushing.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
