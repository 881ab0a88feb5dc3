package dumper

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"go.viam.com/semkitti/spatialmath"
)

// Sequence is one active capture run. It owns the frame counter and the
// first-frame reference state every later frame is expressed against.
type Sequence struct {
	dumper *Dumper
	path   string

	frameCount int

	// originMu guards the once-only initialization of both origins, which
	// happens inside whichever frame-1 task reaches it first.
	originMu   sync.Mutex
	timeOrigin *float64
	poseOrigin *spatialmath.Transform
}

// Path is the sequence's root folder.
func (s *Sequence) Path() string {
	return s.path
}

// FrameCount is the number of frames captured so far.
func (s *Sequence) FrameCount() int {
	return s.frameCount
}

// frameName formats a frame index as the dataset's zero-padded file stem.
func frameName(frame int) string {
	return fmt.Sprintf("%06d", frame)
}

// CreateFrame captures one synchronized cycle: it pre-increments the frame
// counter, schedules one export task per bind on the bounded worker pool
// (plus, on frame 1, the calibration task), and waits for every task before
// returning. A task error fails the frame and surfaces here, before the next
// frame can open; there are no retries.
func (s *Sequence) CreateFrame(ctx context.Context) error {
	s.frameCount++
	frame := s.frameCount

	tasks, taskCtx := errgroup.WithContext(ctx)
	tasks.SetLimit(s.dumper.maxWorkers)

	if frame == 1 {
		s.timeOrigin = nil
		s.poseOrigin = nil
		calibBind, poseBind, err := s.calibBinds()
		if err != nil {
			return err
		}
		tasks.Go(func() error {
			return s.dumpCalib(taskCtx, calibBind, poseBind)
		})
	}

	for _, b := range s.dumper.binds {
		switch bind := b.(type) {
		case CameraBind:
			tasks.Go(func() error {
				return s.dumpImage(taskCtx, bind, frame)
			})
		case SemanticLidarBind:
			tasks.Go(func() error {
				return s.dumpSemanticLidar(taskCtx, bind, frame)
			})
		case TimestampBind:
			tasks.Go(func() error {
				return s.dumpTimestamp(taskCtx, bind)
			})
		case PoseBind:
			tasks.Go(func() error {
				return s.dumpPose(taskCtx, bind)
			})
		case CalibBind:
			// written once by the frame-1 calibration task
		}
	}

	return tasks.Wait()
}

// calibBinds locates the calibration bind and the reference pose bind. Both
// must be present before any frame-1 task runs; their absence is a
// configuration error, not a task failure.
func (s *Sequence) calibBinds() (CalibBind, PoseBind, error) {
	var calibBind *CalibBind
	var poseBind *PoseBind
	for _, b := range s.dumper.binds {
		switch bind := b.(type) {
		case CalibBind:
			calibBind = &bind
		case PoseBind:
			poseBind = &bind
		}
	}
	if calibBind == nil || poseBind == nil {
		return CalibBind{}, PoseBind{}, errors.New("calib bind or pose bind not found")
	}
	return *calibBind, *poseBind, nil
}

// Close ends the sequence and returns the dumper to idle. The next
// CreateSequence starts with fresh state.
func (s *Sequence) Close() error {
	s.dumper.endSequence()
	return nil
}
