package dumper

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"go.uber.org/multierr"

	"go.viam.com/semkitti/calib"
	"go.viam.com/semkitti/sensor"
	"go.viam.com/semkitti/spatialmath"
)

// dumpImage writes a camera's frame buffer as a lossless image named by the
// zero-padded frame index.
func (s *Sequence) dumpImage(ctx context.Context, bind CameraBind, frame int) (err error) {
	if err := bind.Camera.WaitReady(ctx); err != nil {
		return err
	}
	sample := bind.Camera.Sample()

	path := filepath.Join(s.path, bind.ImageFolder, frameName(frame)+".png")
	//nolint:gosec
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	if err := png.Encode(f, sample.Image); err != nil {
		return err
	}

	s.dumper.logger.Debugf("[frame=%d] dumped image to %s", sample.Frame, path)
	return nil
}

// dumpSemanticLidar writes a lidar sample as paired artifacts: N x 4 float32
// point rows and N x 2 uint16 label rows, in the same order.
func (s *Sequence) dumpSemanticLidar(ctx context.Context, bind SemanticLidarBind, frame int) error {
	if err := bind.Sensor.WaitReady(ctx); err != nil {
		return err
	}
	sample := bind.Sensor.Sample()

	pointsPath := filepath.Join(s.path, bind.PointsFolder, frameName(frame)+".bin")
	labelsPath := filepath.Join(s.path, bind.LabelsFolder, frameName(frame)+".label")

	// The sensor reports points with its lateral axis mirrored relative to
	// the dataset's convention: negate it, then run the standard handedness
	// conversion.
	points := make([]float32, 0, len(sample.Points)*4)
	semanticIDs := make([]uint32, len(sample.Points))
	for i, pt := range sample.Points {
		p := pt.Position
		p.Y = -p.Y
		p = spatialmath.LeftToRightHanded.TransformPoint(p)
		points = append(points, float32(p.X), float32(p.Y), float32(p.Z), 1.0)
		semanticIDs[i] = pt.SemanticID
	}

	mapped, err := s.dumper.table.Remap(semanticIDs)
	if err != nil {
		return err
	}
	labelRows := make([]uint16, 0, len(sample.Points)*2)
	for i, pt := range sample.Points {
		labelRows = append(labelRows, mapped[i], uint16(pt.InstanceID))
	}

	if err := writeBinary(pointsPath, points); err != nil {
		return err
	}
	if err := writeBinary(labelsPath, labelRows); err != nil {
		return err
	}

	s.dumper.logger.Debugf("[frame=%d] dumped pointcloud(%d points) to %s", sample.Frame, len(sample.Points), pointsPath)
	s.dumper.logger.Debugf("[frame=%d] dumped labels(%d rows) to %s", sample.Frame, len(sample.Points), labelsPath)
	return nil
}

// dumpTimestamp appends one line per frame: the sample timestamp in seconds
// relative to the sequence's time origin, in scientific notation with a six
// digit mantissa. Frame 1 sets the origin and records exactly zero.
func (s *Sequence) dumpTimestamp(ctx context.Context, bind TimestampBind) error {
	if err := bind.Sensor.WaitReady(ctx); err != nil {
		return err
	}
	sample := bind.Sensor.Sample()

	s.originMu.Lock()
	if s.timeOrigin == nil {
		origin := sample.Timestamp
		s.timeOrigin = &origin
	}
	timestamp := sample.Timestamp - *s.timeOrigin
	s.originMu.Unlock()

	path := filepath.Join(s.path, bind.File)
	if err := appendLine(path, fmt.Sprintf("%.6e", timestamp)); err != nil {
		return err
	}

	s.dumper.logger.Debugf("[frame=%d] dumped timestamp to %s, value: %.6e", sample.Frame, path, timestamp)
	return nil
}

// dumpPose appends one line per frame: the reference camera's pose composed
// into the first frame's pose, as a flattened 3x4 matrix. The sample is
// re-expressed in the dataset camera convention before composition so that
// every line in the sequence shares one convention; frame 1 sets the origin
// and records the identity.
func (s *Sequence) dumpPose(ctx context.Context, bind PoseBind) error {
	if err := bind.Camera.WaitReady(ctx); err != nil {
		return err
	}
	sample := bind.Camera.Sample()
	pose := sample.Transform

	s.originMu.Lock()
	if s.poseOrigin == nil {
		origin := pose.ChangeOrientation(spatialmath.CarlaCamToKittiCam)
		s.poseOrigin = &origin
	}
	origin := *s.poseOrigin
	s.originMu.Unlock()

	relative := pose.
		ChangeOrientation(spatialmath.CarlaCamToKittiCam).
		RelativeTo(origin)

	path := filepath.Join(s.path, bind.File)
	if err := appendLine(path, formatFloats(relative.Row3x4(), "%.6e")); err != nil {
		return err
	}

	s.dumper.logger.Debugf("[frame=%d] dumped pose to %s", sample.Frame, path)
	return nil
}

// dumpCalib writes the whole calibration record, once, at frame 1: one
// projection matrix per bound camera against the shared reference camera
// frame (the pose bind's camera, always P0, then the others in registration
// order), followed by the lidar-to-reference-camera transform.
func (s *Sequence) dumpCalib(ctx context.Context, calibBind CalibBind, poseBind PoseBind) error {
	if err := calibBind.Sensor.WaitReady(ctx); err != nil {
		return err
	}
	if err := poseBind.Camera.WaitReady(ctx); err != nil {
		return err
	}

	cam0 := poseBind.Camera
	cams := []sensor.Camera{cam0}
	for _, b := range s.dumper.binds {
		if bind, ok := b.(CameraBind); ok && bind.Camera != cam0 {
			cams = append(cams, bind.Camera)
		}
	}

	// Reference frame: cam0's pose with dataset camera axes, still in the
	// simulator's world coordinates. Every extrinsic composes against this
	// one frame so all projection matrices stay mutually consistent.
	reference := cam0.Sample().Transform.ChangeOrientation(spatialmath.CarlaCamToKittiCam)

	path := filepath.Join(s.path, calibBind.File)
	for idx, cam := range cams {
		if err := cam.WaitReady(ctx); err != nil {
			return err
		}
		attrs := cam.Attributes()
		intrinsics := calib.NewPinholeCameraIntrinsicsFromFOV(attrs.ImageSizeX, attrs.ImageSizeY, attrs.FOV)
		extrinsic := cam.Sample().Transform.
			ChangeOrientation(spatialmath.CarlaCamToKittiCam).
			RelativeTo(reference)
		projection := calib.ProjectionMatrix(intrinsics.CameraMatrix(), extrinsic)

		row := projection.RawMatrix().Data
		if err := appendLine(path, fmt.Sprintf("P%d: %s", idx, formatFloats(row, "%.12e"))); err != nil {
			return err
		}
		s.dumper.logger.Debugf("[frame=%d] dumped calib P%d to %s", cam.Sample().Frame, idx, path)
	}

	tr := calibBind.Sensor.Sample().Transform.
		ChangeOrientation(spatialmath.LeftToRightHanded).
		RelativeTo(reference)
	if err := appendLine(path, fmt.Sprintf("Tr: %s", formatFloats(tr.Row3x4(), "%.12e"))); err != nil {
		return err
	}
	s.dumper.logger.Debugf("[frame=%d] dumped calib Tr to %s", calibBind.Sensor.Sample().Frame, path)
	return nil
}
