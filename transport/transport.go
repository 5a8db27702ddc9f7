// Package transport abstracts delivery of flattened specifiers to a target
// application. The real interprocess delivery lives behind the Sender
// interface; this package ships a replay implementation backed by recorded
// exchanges so queries can run against fixtures.
package transport

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	osaquery "github.com/osaquery/osaquery"
)

// Sender delivers a flattened specifier to the named application and returns
// the flattened reply descriptor.
type Sender interface {
	Send(ctx context.Context, app string, specifier []byte) ([]byte, error)
}

// AppleEventError is a failure reported by the target application itself, as
// opposed to a delivery failure. Offending carries the flattened descriptor
// the target rejected, when it reported one.
type AppleEventError struct {
	Code      int
	Message   string
	Offending []byte
}

func (e *AppleEventError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("application error %d", e.Code)
	}

	return fmt.Sprintf("application error %d: %s", e.Code, e.Message)
}

// ReplaySender replays recorded request/reply exchanges. Lookups match on the
// application name and the exact request bytes.
type ReplaySender struct {
	replies map[string][]byte
}

func NewReplaySender() *ReplaySender {
	return &ReplaySender{replies: make(map[string][]byte)}
}

// Record registers the reply to return for one exact request
func (s *ReplaySender) Record(app string, request, reply []byte) {
	s.replies[fixtureKey(app, request)] = reply
}

func (s *ReplaySender) Send(ctx context.Context, app string, specifier []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reply, ok := s.replies[fixtureKey(app, specifier)]
	if !ok {
		return nil, fmt.Errorf("%w: application %q", osaquery.ErrNoFixture, app)
	}

	if len(reply) == 0 {
		return nil, fmt.Errorf("%w: application %q", osaquery.ErrNoReply, app)
	}

	return reply, nil
}

func fixtureKey(app string, request []byte) string {
	return app + "\x00" + hex.EncodeToString(request)
}

// replayFile is the YAML shape of a recorded exchange file
type replayFile struct {
	Exchanges []replayExchange `yaml:"exchanges"`
}

type replayExchange struct {
	Application string `yaml:"application"`
	Request     string `yaml:"request"`
	Reply       string `yaml:"reply"`
}

// LoadReplayFile reads recorded exchanges from a YAML file. Request and reply
// payloads are hex encoded.
func LoadReplayFile(path string) (*ReplaySender, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read replay file %s: %w", path, err)
	}

	var file replayFile
	if err := yaml.UnmarshalWithOptions(data, &file, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("failed to parse replay file %s: %w", path, err)
	}

	sender := NewReplaySender()

	for i, exchange := range file.Exchanges {
		request, err := hex.DecodeString(exchange.Request)
		if err != nil {
			return nil, fmt.Errorf("replay exchange %d: invalid request hex: %w", i, err)
		}

		reply, err := hex.DecodeString(exchange.Reply)
		if err != nil {
			return nil, fmt.Errorf("replay exchange %d: invalid reply hex: %w", i, err)
		}

		sender.Record(exchange.Application, request, reply)
	}

	return sender, nil
}
