package main

import (
	"fmt"

	"github.com/fatih/color"

	osaquery "github.com/osaquery/osaquery"
	"github.com/osaquery/osaquery/parser"
	"github.com/osaquery/osaquery/query"
	"github.com/osaquery/osaquery/resolver"
	"github.com/osaquery/osaquery/transport"
)

// InfoCmd represents the info command
type InfoCmd struct {
	Expression string `arg:"" help:"Path to describe, e.g. /Finder/windows"`
	Sdef       string `help:"Dictionary (sdef) file override" type:"path"`
}

// Run executes the info command
func (cmd *InfoCmd) Run(ctx *Context) error {
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

	runner := query.NewRunner(dict, transport.NewReplaySender())

	info, err := runner.Describe(cmd.Expression)
	if err != nil {
		return err
	}

	if ctx.Quiet {
		return nil
	}

	if info.Kind == resolver.PropertyInfo {
		color.Cyan("property %s (%s)", info.Property.Name, info.Property.Code)
		fmt.Printf("  type:  %s\n", info.Property.Type)

		if info.Property.Access != "" {
			fmt.Printf("  access: %s\n", info.Property.Access)
		}

		fmt.Printf("  declared on: %s\n", info.Owner.Name)

		// enumeration-typed properties list their allowed values
		if enum := dict.FindEnum(info.Property.Type); enum != nil {
			fmt.Println("  values:")

			for _, enumerator := range enum.Enumerators {
				fmt.Printf("    %s (%s)\n", enumerator.Name, enumerator.Code)
			}
		}

		return nil
	}

	color.Cyan("class %s (%s)", info.Class.Name, info.Class.Code)

	if info.Class.Plural != "" {
		fmt.Printf("  plural:   %s\n", info.Class.Plural)
	}

	if info.Class.Inherits != "" {
		fmt.Printf("  inherits: %s\n", info.Class.Inherits)
	}

	if len(info.Elements) > 0 {
		fmt.Println("  elements:")

		for _, element := range info.Elements {
			fmt.Printf("    %s\n", element.Type)
		}
	}

	if len(info.Properties) > 0 {
		fmt.Println("  properties:")

		for _, property := range info.Properties {
			fmt.Printf("    %s (%s): %s\n", property.Name, property.Code, property.Type)
		}
	}

	return nil
}
