package ipcsdk

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	socketName    = "discord-ipc-%d"
	socketSlots   = 10
	fallbackTmpfs = "/tmp"
)

var ErrNoSocket = errors.New("no host ipc socket found")

// socketDirs lists the directories the host may create its socket in, in
// lookup order.
func socketDirs() []string {
	var dirs []string
	for _, env := range []string{"XDG_RUNTIME_DIR", "TMPDIR", "TMP", "TEMP"} {
		if dir := os.Getenv(env); dir != "" {
			dirs = append(dirs, dir)
		}
	}
	return append(dirs, fallbackTmpfs)
}

// Dial connects to the first host socket that accepts a connection.
func Dial(ctx context.Context, clientID string, options ...Option) (*Client, error) {
	var dialer net.Dialer
	for _, dir := range socketDirs() {
		for slot := range socketSlots {
			path := filepath.Join(dir, fmt.Sprintf(socketName, slot))
			if _, err := os.Stat(path); err != nil {
				continue
			}
			conn, err := dialer.DialContext(ctx, "unix", path)
			if err != nil {
				continue
			}
			return New(conn, clientID, options...), nil
		}
	}
	return nil, ErrNoSocket
}
