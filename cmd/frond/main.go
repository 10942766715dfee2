package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┬─┐┌─┐┌┐┌┌┬┐
  ├┤ ├┬┘│ ││││ ││
  └  ┴└─└─┘┘└┘─┴┘
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "frond",
		Short: "Configuration-driven UI trees for Go",
		Long: `Frond builds live UI trees from declarative configuration.

Descriptors in JSON or YAML are resolved against session state,
rendered to HTML, and kept current through dependency-scoped
incremental rebuilds:

  • $state bindings resolve from the session store
  • $remote directives fetch asynchronously from HTTP or S3 sources
  • State changes rebuild exactly the nodes that read them`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		initCmd(),
		renderCmd(),
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the Frond ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
