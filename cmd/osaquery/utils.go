package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	osaquery "github.com/osaquery/osaquery"
	"github.com/osaquery/osaquery/sdef"
	"github.com/osaquery/osaquery/transport"
)

// Sentinel errors
var (
	ErrDictionaryNotFound = errors.New("no dictionary file found for application")
	ErrNoTransport        = errors.New("no replay file configured; live event delivery is not available on this build")
)

// loadDictionary locates and loads the capability dictionary for an
// application. Precedence: the explicit --sdef override, then the per-
// application mapping from the configuration, then <app>.sdef searched along
// the configured dictionary paths.
func loadDictionary(config *osaquery.Config, app, override string) (*sdef.Dictionary, error) {
	path := override
	if path == "" {
		path = config.Applications[app]
	}

	if path == "" {
		name := strings.ToLower(app) + ".sdef"
		for _, dir := range config.Dictionaries.SearchPaths {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path == "" {
		return nil, fmt.Errorf("%w: %q (searched: %s)", ErrDictionaryNotFound, app,
			strings.Join(config.Dictionaries.SearchPaths, ", "))
	}

	loader := sdef.NewLoader()
	if config.Dictionaries.MaxIncludeDepth > 0 {
		loader.MaxIncludeDepth = config.Dictionaries.MaxIncludeDepth
	}

	dict, err := loader.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load dictionary %s: %w", path, err)
	}

	return dict, nil
}

// newSender builds the transport from the --replay override or the
// configured replay file
func newSender(config *osaquery.Config, override string) (transport.Sender, error) {
	path := override
	if path == "" {
		path = config.Query.ReplayFile
	}

	if path == "" {
		return nil, ErrNoTransport
	}

	return transport.LoadReplayFile(path)
}
