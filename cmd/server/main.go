// Command server serves secure document links over HTTP and exposes the
// admin LinkService over gRPC.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/securelinks/internal/server"
	"github.com/dmitrijs2005/securelinks/internal/server/config"
)

func main() {
	ctx := context.Background()

	app, err := server.NewApp(ctx, config.LoadConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "securelinks: %v\n", err)
		os.Exit(1)
	}

	app.Run(ctx)
}
