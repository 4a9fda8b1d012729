package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/norma-dev/levelapp/pkg/logging"

	// Import for side effects: register every judge provider via init().
	_ "github.com/norma-dev/levelapp/internal/judges/claude"
	_ "github.com/norma-dev/levelapp/internal/judges/generic"
	_ "github.com/norma-dev/levelapp/internal/judges/ionos"
	_ "github.com/norma-dev/levelapp/internal/judges/mistral"
	_ "github.com/norma-dev/levelapp/internal/judges/openai"
)

func main() {
	level := logging.ParseLevel("info")
	if os.Getenv("LEVELAPP_DEBUG") != "" {
		level = logging.ParseLevel("debug")
	}
	logging.Configure(level, "text", os.Stderr)

	// Parse with a custom exit handler to enforce the same exit codes
	// as the rest of the toolchain: 0 = success, 1 = runtime error,
	// 2 = validation/usage error.
	ctx := kong.Parse(&CLI,
		kong.Name("levelapp"),
		kong.Description("levelapp - conversational agent evaluation harness"),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.Exit(func(code int) {
			if code != 0 {
				os.Exit(2)
			}
			os.Exit(0)
		}),
	)

	if CLI.Debug {
		logging.Configure(logging.ParseLevel("debug"), "text", os.Stderr)
	}

	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
