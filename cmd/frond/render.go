package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/frond-ui/frond"
	"github.com/frond-ui/frond/pkg/render"
)

func renderCmd() *cobra.Command {
	var (
		configPath string
		out        string
		pretty     bool
		wait       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Build the tree once and print its HTML",
		Long: `Build the configured descriptor tree against the initial state and
print the rendered HTML.

Remote-fetch directives start asynchronously; use --wait to give them
time to settle before the snapshot is taken.

Examples:
  frond render
  frond render --pretty --out index.html
  frond render --wait 2s`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(configPath, out, pretty, wait)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Project config file (default frond.json in cwd)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write HTML to a file instead of stdout")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print the HTML")
	cmd.Flags().DurationVar(&wait, "wait", 0, "Time to let remote fetches settle")

	return cmd
}

func runRender(configPath, out string, pretty bool, wait time.Duration) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	sess, err := newSession(cfg, nil)
	if err != nil {
		return err
	}
	defer sess.Close()

	if wait > 0 {
		settle(sess, wait)
	}

	r := render.NewRenderer(render.Config{Pretty: pretty})
	page := render.Page{Title: cfg.Serve.Title, Styles: cfg.Serve.Styles}
	html, err := page.Render(sess.Root(), r)
	if err != nil {
		return err
	}

	if out == "" {
		fmt.Print(html)
		return nil
	}
	if err := os.WriteFile(out, []byte(html), 0o644); err != nil {
		return err
	}
	success("wrote %s (%d bytes)", out, len(html))
	return nil
}

// settle flushes rebuilds as remote fetches land, until the deadline
// passes.
func settle(sess *frond.Session, wait time.Duration) {
	deadline := time.After(wait)
	for {
		select {
		case <-deadline:
			sess.Flush()
			return
		case <-sess.Updates():
			sess.Flush()
		}
	}
}
