// Package cli holds the wiring shared by the turingviz commands: definition
// sources, loggers, terminal detection and the headless run loop.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/turingviz/internal/logging"
	"github.com/aretw0/turingviz/pkg/adapters/file"
	"github.com/aretw0/turingviz/pkg/adapters/loam"
	"github.com/aretw0/turingviz/pkg/adapters/memory"
	"github.com/aretw0/turingviz/pkg/ports"
)

// ErrAmbiguousMachine is returned when no machine was named and the source
// serves more than one.
var ErrAmbiguousMachine = errors.New("--machine is required")

// Options are the persistent flags of every command.
type Options struct {
	Machine  string   // definition ID
	Files    []string // machine files or directories, read with the file adapter
	Dir      string   // loam repository
	LogLevel string
	LogFile  string
}

// NewLoader picks the definition source: files first, then a loam
// repository, then the builtin catalog.
func (o Options) NewLoader() (ports.MachineLoader, error) {
	switch {
	case len(o.Files) > 0:
		return file.NewLoader(o.Files...)
	case o.Dir != "":
		return loam.Open(o.Dir)
	default:
		return memory.NewBuiltinLoader(), nil
	}
}

// ResolveMachine returns o.Machine, or the only ID the loader serves.
func (o Options) ResolveMachine(ctx context.Context, loader ports.MachineLoader) (string, error) {
	if o.Machine != "" {
		return o.Machine, nil
	}
	ids, err := loader.List(ctx)
	if err != nil {
		return "", err
	}
	if len(ids) == 1 {
		return ids[0], nil
	}
	return "", fmt.Errorf("%w; available: %s", ErrAmbiguousMachine, strings.Join(ids, ", "))
}

// NewLogger builds the stderr logger. With LogFile set, records are also
// appended to that file as JSON. The returned closer releases the file.
func (o Options) NewLogger(stderr io.Writer) (*slog.Logger, io.Closer, error) {
	level := slog.LevelWarn
	if o.LogLevel != "" {
		l, err := logging.ParseLevel(o.LogLevel)
		if err != nil {
			return nil, nil, err
		}
		level = l
	}

	if o.LogFile == "" {
		return logging.NewWithWriter(stderr, level), io.NopCloser(nil), nil
	}

	f, err := os.OpenFile(o.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return logging.NewWithWriter(stderr, level, logging.NewJSONHandler(f, level)), f, nil
}
