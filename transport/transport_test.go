package transport

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	osaquery "github.com/osaquery/osaquery"
)

func TestReplaySender(t *testing.T) {
	sender := NewReplaySender()
	sender.Record("Finder", []byte{0x01, 0x02}, []byte{0x0a})

	reply, err := sender.Send(context.Background(), "Finder", []byte{0x01, 0x02})
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x0a}, reply)

	// same request against a different application misses
	_, err = sender.Send(context.Background(), "Music", []byte{0x01, 0x02})
	assert.IsError(t, err, osaquery.ErrNoFixture)

	_, err = sender.Send(context.Background(), "Finder", []byte{0x01})
	assert.IsError(t, err, osaquery.ErrNoFixture)
}

func TestReplaySenderEmptyReply(t *testing.T) {
	sender := NewReplaySender()
	sender.Record("Finder", []byte{0x01}, nil)

	_, err := sender.Send(context.Background(), "Finder", []byte{0x01})
	assert.IsError(t, err, osaquery.ErrNoReply)
}

func TestReplaySenderContextCancelled(t *testing.T) {
	sender := NewReplaySender()
	sender.Record("Finder", []byte{0x01}, []byte{0x0a})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sender.Send(ctx, "Finder", []byte{0x01})
	assert.IsError(t, err, context.Canceled)
}

func TestLoadReplayFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replay.yaml")
	content := `exchanges:
  - application: Finder
    request: "0102"
    reply: "0a0b"
`
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	sender, err := LoadReplayFile(path)
	assert.NoError(t, err)

	reply, err := sender.Send(context.Background(), "Finder", []byte{0x01, 0x02})
	assert.NoError(t, err)
	assert.Equal(t, "0a0b", hex.EncodeToString(reply))
}

func TestLoadReplayFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadReplayFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	assert.NoError(t, os.WriteFile(bad, []byte("exchanges:\n  - application: Finder\n    request: zz\n    reply: \"\"\n"), 0o644))

	_, err = LoadReplayFile(bad)
	assert.Error(t, err)
}

func TestAppleEventError(t *testing.T) {
	err := &AppleEventError{Code: -1728}
	assert.Equal(t, "application error -1728", err.Error())

	err = &AppleEventError{Code: -1728, Message: "object not found"}
	assert.Equal(t, "application error -1728: object not found", err.Error())
}
