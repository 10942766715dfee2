package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/frond-ui/frond/internal/config"
	"github.com/frond-ui/frond/internal/errors"
)

const sampleTree = `{
  "kind": "panel",
  "attributes": {"class": "app"},
  "children": [
    {"kind": "heading", "attributes": {"text": "Hello, $state.user.name"}},
    {"kind": "text", "attributes": {"text": "Edit state.json and POST to /state to update this page."}}
  ]
}
`

const sampleState = `{
  "user.name": "world"
}
`

func initCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Initialize a new Frond project",
		Long: `Create a frond.json config with a sample descriptor tree and
initial state in the given directory (default: current directory).

Examples:
  frond init
  frond init my-app
  frond init --name dashboard`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(dir, name)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name (default: directory name)")

	return cmd
}

func runInit(dir, name string) error {
	printBanner()
	fmt.Println("  Initializing a new Frond project...")
	fmt.Println()

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if config.Exists(absDir) {
		return errors.New("E021").
			WithDetail("A frond config already exists in " + absDir).
			WithSuggestion("Remove it first, or run init in a different directory")
	}
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return err
	}

	if name == "" {
		name = filepath.Base(absDir)
	}

	cfg := config.New()
	cfg.Name = name
	cfg.Version = "0.1.0"
	cfg.Tree = "app.json"
	cfg.State = "state.json"

	info("Writing %s...", config.FileNameJSON)
	if err := cfg.SaveTo(filepath.Join(absDir, config.FileNameJSON)); err != nil {
		return err
	}

	info("Writing app.json...")
	if err := os.WriteFile(filepath.Join(absDir, "app.json"), []byte(sampleTree), 0644); err != nil {
		return err
	}

	info("Writing state.json...")
	if err := os.WriteFile(filepath.Join(absDir, "state.json"), []byte(sampleState), 0644); err != nil {
		return err
	}

	fmt.Println()
	success("Project '%s' created", name)
	fmt.Println()
	info("Next steps:")
	if dir != "." {
		info("  cd %s", dir)
	}
	info("  frond serve")
	fmt.Println()

	return nil
}
