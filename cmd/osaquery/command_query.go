package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"

	osaquery "github.com/osaquery/osaquery"
	"github.com/osaquery/osaquery/aedesc"
	"github.com/osaquery/osaquery/parser"
	"github.com/osaquery/osaquery/query"
)

var ErrInvalidFormat = errors.New("invalid output format: must be one of plain, json")

// QueryCmd represents the query command
type QueryCmd struct {
	Expression string `arg:"" help:"Query expression, e.g. /Finder/windows[1]/name"`
	Sdef       string `help:"Dictionary (sdef) file override" type:"path"`
	Replay     string `help:"Replay fixture file" type:"path"`
	Format     string `help:"Output format (plain, json)"`
	Timeout    string `help:"Query timeout duration"`
}

// Run executes the query command
func (cmd *QueryCmd) Run(ctx *Context) error {
	config, err := osaquery.LoadConfig(ctx.Config)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	format := cmd.Format
	if format == "" {
		format = config.Query.DefaultFormat
	}

	if format != "plain" && format != "json" {
		return fmt.Errorf("%w: got %q", ErrInvalidFormat, format)
	}

	timeout := config.Query.Timeout

	if cmd.Timeout != "" {
		timeout, err = time.ParseDuration(cmd.Timeout)
		if err != nil {
			return fmt.Errorf("invalid timeout duration: %w", err)
		}
	}

	// the application segment decides which dictionary to load
	parsed, err := parser.Parse(cmd.Expression)
	if err != nil {
		return err
	}

	dict, err := loadDictionary(config, parsed.Application, cmd.Sdef)
	if err != nil {
		return err
	}

	sender, err := newSender(config, cmd.Replay)
	if err != nil {
		return err
	}

	runner := query.NewRunner(dict, sender)

	runCtx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc

		runCtx, cancel = context.WithTimeout(runCtx, timeout)
		defer cancel()
	}

	result, err := runner.Run(runCtx, cmd.Expression)
	if err != nil {
		return err
	}

	if ctx.Verbose {
		color.Blue("Query: %s", result.Query.String())
		for _, step := range result.Resolved.Steps {
			color.Blue("  %s %q -> %s", step.Kind, step.Name, step.Code)
		}

		color.Blue("Request: %d bytes", len(result.Specifier))
	}

	if ctx.Quiet {
		return nil
	}

	if format == "json" {
		data, err := json.MarshalIndent(valueToJSON(result.Value), "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}

		fmt.Println(string(data))

		return nil
	}

	fmt.Println(result.Value.Render())

	return nil
}

// valueToJSON maps a decoded value onto plain JSON-encodable types. Records
// become objects keyed by the four-character display form, so duplicate keys
// collapse last-wins.
func valueToJSON(v aedesc.Value) any {
	switch v.Kind {
	case aedesc.KindNull:
		return nil
	case aedesc.KindInt:
		return v.Int
	case aedesc.KindFloat:
		return v.Float
	case aedesc.KindString:
		return v.Str
	case aedesc.KindBool:
		return v.Bool
	case aedesc.KindDate:
		return v.Date.Format(time.RFC3339)
	case aedesc.KindList:
		items := make([]any, 0, len(v.List))
		for _, item := range v.List {
			items = append(items, valueToJSON(item))
		}

		return items
	case aedesc.KindRecord:
		fields := make(map[string]any, len(v.Record))
		for _, field := range v.Record {
			fields[field.Key] = valueToJSON(field.Value)
		}

		return fields
	default:
		return v.Render()
	}
}
