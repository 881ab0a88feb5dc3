// Package dumper serializes synchronized simulator sensor output, frame by
// frame, into the SemanticKITTI sequence layout. Binds declare what artifact
// each sensor feeds; a sequence materializes the declared skeleton and then
// fans one export task per bind out onto a bounded worker pool for every
// frame, joining them all before the next frame may open.
package dumper

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"go.viam.com/semkitti/labels"
)

const defaultMaxWorkers = 3

// Dumper owns the bind registry and produces capture sequences.
type Dumper struct {
	rootPath   string
	maxWorkers int
	table      labels.Table
	logger     golog.Logger

	mu       sync.Mutex
	binds    []Bind
	seqCount int
	active   bool
}

// Option configures a Dumper.
type Option func(*Dumper)

// WithMaxWorkers bounds the per-frame export worker pool.
func WithMaxWorkers(n int) Option {
	return func(d *Dumper) {
		d.maxWorkers = n
	}
}

// WithLabelTable replaces the default semantic remap table.
func WithLabelTable(t labels.Table) Option {
	return func(d *Dumper) {
		d.table = t
	}
}

// NewDumper returns a dumper that writes sequences under rootPath.
func NewDumper(rootPath string, logger golog.Logger, opts ...Option) *Dumper {
	d := &Dumper{
		rootPath:   rootPath,
		maxWorkers: defaultMaxWorkers,
		table:      labels.CarlaToKitti,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CreateSequence materializes the bound output skeleton under rootPath/name
// and returns the now-active sequence. An empty name uses a running
// zero-padded sequence index. Only one sequence may be active at a time.
func (d *Dumper) CreateSequence(name string) (*Sequence, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active {
		return nil, errors.New("a sequence is already active")
	}
	if name == "" {
		name = fmt.Sprintf("%02d", d.seqCount)
	}
	d.seqCount++

	seqPath := filepath.Join(d.rootPath, name)
	if err := d.setupContentFolder(seqPath); err != nil {
		return nil, err
	}

	d.active = true
	d.logger.Info(banner("=> SEQUENCE BEGINS "))
	return &Sequence{dumper: d, path: seqPath}, nil
}

// setupContentFolder creates one folder or empty file per bound path. A path
// with an extension becomes a file, one without becomes a folder.
func (d *Dumper) setupContentFolder(seqPath string) error {
	if err := os.MkdirAll(seqPath, 0o755); err != nil {
		return errors.Wrapf(err, "error creating sequence folder %q", seqPath)
	}
	for _, bind := range d.binds {
		for _, p := range bind.paths() {
			full := filepath.Join(seqPath, p)
			if filepath.Ext(p) == "" {
				if err := os.MkdirAll(full, 0o755); err != nil {
					return errors.Wrapf(err, "error creating folder %q", full)
				}
				d.logger.Infof("created folder at: %s", full)
			} else {
				if err := os.WriteFile(full, nil, 0o644); err != nil {
					return errors.Wrapf(err, "error creating file %q", full)
				}
				d.logger.Infof("created file at: %s", full)
			}
		}
	}
	return nil
}

func (d *Dumper) endSequence() {
	d.mu.Lock()
	d.active = false
	d.mu.Unlock()
	d.logger.Info(banner("=> SEQUENCE ENDS "))
}

func banner(s string) string {
	if len(s) >= 80 {
		return s
	}
	return s + strings.Repeat("=", 80-len(s))
}
