// Command typecd manages the roles of USB Type-C ports.
package main

import (
	"context"
	"fmt"
	"os"
)

// version is set at link time.
var version = "dev"

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
