package main

import (
	"encoding/hex"
	"fmt"

	"github.com/fatih/color"

	osaquery "github.com/osaquery/osaquery"
	"github.com/osaquery/osaquery/parser"
	"github.com/osaquery/osaquery/query"
	"github.com/osaquery/osaquery/transport"
)

// ValidateCmd represents the validate command
type ValidateCmd struct {
	Expression string `arg:"" help:"Query expression to check"`
	Sdef       string `help:"Dictionary (sdef) file override" type:"path"`
	Hex        bool   `help:"Dump the encoded request as hex"`
	Strict     bool   `help:"Also report dictionary consistency problems"`
}

// Run executes the validate command
func (cmd *ValidateCmd) Run(ctx *Context) error {
	config, err := osaquery.LoadConfig(ctx.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	parsed, err := parser.Parse(cmd.Expression)
	if err != nil {
		return err
	}

	dict, err := loadDictionary(config, parsed.Application, cmd.Sdef)
	if err != nil {
		return err
	}

	if cmd.Strict {
		problems := dict.Validate()
		for _, problem := range problems {
			color.Yellow("dictionary: %v", problem)
		}
	}

	runner := query.NewRunner(dict, transport.NewReplaySender())

	result, err := runner.Validate(cmd.Expression)
	if err != nil {
		return err
	}

	if ctx.Quiet {
		return nil
	}

	color.Green("OK: %s", result.Query.String())

	for _, step := range result.Resolved.Steps {
		fmt.Printf("  %s %q -> %s\n", step.Kind, step.Name, step.Code)
	}

	fmt.Printf("  request: %d bytes\n", len(result.Specifier))

	if cmd.Hex {
		fmt.Println(hex.EncodeToString(result.Specifier))
	}

	return nil
}
