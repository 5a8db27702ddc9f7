package main

import (
	"fmt"

	"github.com/fatih/color"

	osaquery "github.com/osaquery/osaquery"
	"github.com/osaquery/osaquery/pathfinder"
	"github.com/osaquery/osaquery/query"
	"github.com/osaquery/osaquery/transport"
)

// PathsCmd represents the paths command
type PathsCmd struct {
	Target     string `arg:"" help:"Class or property name to find paths to"`
	App        string `help:"Application whose dictionary to search" short:"a"`
	Sdef       string `help:"Dictionary (sdef) file override" type:"path"`
	MaxDepth   int    `help:"Maximum path length" default:"0"`
	MaxResults int    `help:"Limit the number of paths printed" default:"0"`
}

// Run executes the paths command
func (cmd *PathsCmd) Run(ctx *Context) error {
	config, err := osaquery.LoadConfig(ctx.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app := cmd.App
	if app == "" {
		app = config.DefaultApplication
	}

	if app == "" && cmd.Sdef == "" {
		return fmt.Errorf("%w: pass --app or set default_application", ErrDictionaryNotFound)
	}

	dict, err := loadDictionary(config, app, cmd.Sdef)
	if err != nil {
		return err
	}

	maxDepth := cmd.MaxDepth
	if maxDepth == 0 {
		maxDepth = config.Paths.MaxDepth
	}

	runner := query.NewRunner(dict, transport.NewReplaySender())

	paths, err := runner.Paths(cmd.Target, maxDepth)
	if err != nil {
		return err
	}

	maxResults := cmd.MaxResults
	if maxResults == 0 {
		maxResults = config.Paths.MaxResults
	}

	if maxResults > 0 && len(paths) > maxResults {
		paths = paths[:maxResults]
	}

	if ctx.Quiet {
		return nil
	}

	if len(paths) == 0 {
		color.Yellow("No paths to %q within depth %d", cmd.Target, maxDepth)
		return nil
	}

	for _, path := range paths {
		fmt.Println(path.Expression())

		if ctx.Verbose {
			for _, step := range path.Steps {
				marker := "element"
				if step.Kind == pathfinder.PropertyKind {
					marker = "property"
				}

				fmt.Printf("  %s of %s (%s)\n", step.Name, step.Class, marker)
			}
		}
	}

	return nil
}
