package dumper

import (
	"path/filepath"

	"github.com/pkg/errors"

	"go.viam.com/semkitti/sensor"
)

// A Bind is a declared association between one sensor and the output paths it
// feeds. The set of bind kinds is closed; the pipeline dispatches over it
// exhaustively. A path with an extension is a file, one without is a folder;
// that single token decides what the sequence skeleton creates for it.
type Bind interface {
	// paths lists every path token the bind needs materialized at sequence
	// start, relative to the sequence root.
	paths() []string
}

// CameraBind routes a camera's frames into an image folder.
type CameraBind struct {
	Camera      sensor.Camera
	ImageFolder string
}

func (b CameraBind) paths() []string { return []string{b.ImageFolder} }

// SemanticLidarBind routes a semantic lidar's returns into a point cloud
// folder and a matching labels folder.
type SemanticLidarBind struct {
	Sensor       sensor.Sensor
	PointsFolder string
	LabelsFolder string
}

func (b SemanticLidarBind) paths() []string { return []string{b.PointsFolder, b.LabelsFolder} }

// TimestampBind routes a sensor's sample timestamps into an append-only file.
type TimestampBind struct {
	Sensor sensor.Sensor
	File   string
}

func (b TimestampBind) paths() []string { return []string{b.File} }

// PoseBind routes the reference camera's poses into an append-only file. Its
// camera doubles as the calibration record's reference (P0).
type PoseBind struct {
	Camera sensor.Camera
	File   string
}

func (b PoseBind) paths() []string { return []string{b.File} }

// CalibBind routes the lidar-to-reference-camera calibration into a file
// written once, at the first frame.
type CalibBind struct {
	Sensor sensor.Sensor
	File   string
}

func (b CalibBind) paths() []string { return []string{b.File} }

// BindCamera registers a camera's image folder. Only valid before a sequence
// starts.
func (d *Dumper) BindCamera(cam sensor.Camera, imageFolder string) error {
	return d.addBind(CameraBind{Camera: cam, ImageFolder: imageFolder})
}

// BindSemanticLidar registers a semantic lidar's point and label folders.
// Only valid before a sequence starts.
func (d *Dumper) BindSemanticLidar(s sensor.Sensor, pointsFolder, labelsFolder string) error {
	return d.addBind(SemanticLidarBind{Sensor: s, PointsFolder: pointsFolder, LabelsFolder: labelsFolder})
}

// BindTimestamp registers a sensor's timestamp file. The path must carry an
// extension; only valid before a sequence starts.
func (d *Dumper) BindTimestamp(s sensor.Sensor, filePath string) error {
	if err := validateFilePath(filePath); err != nil {
		return err
	}
	return d.addBind(TimestampBind{Sensor: s, File: filePath})
}

// BindPose registers the reference camera's pose file. The path must carry an
// extension; at most one pose bind per sequence; only valid before a sequence
// starts.
func (d *Dumper) BindPose(cam sensor.Camera, filePath string) error {
	if err := validateFilePath(filePath); err != nil {
		return err
	}
	d.mu.Lock()
	hasPose := false
	for _, b := range d.binds {
		if _, ok := b.(PoseBind); ok {
			hasPose = true
			break
		}
	}
	d.mu.Unlock()
	if hasPose {
		return errors.New("a pose bind is already registered")
	}
	return d.addBind(PoseBind{Camera: cam, File: filePath})
}

// BindCalib registers the calibration file, with the given sensor as the
// source of the lidar-to-reference-camera transform. The path must carry an
// extension; at most one calib bind per sequence; only valid before a
// sequence starts.
func (d *Dumper) BindCalib(trSensor sensor.Sensor, filePath string) error {
	if err := validateFilePath(filePath); err != nil {
		return err
	}
	d.mu.Lock()
	hasCalib := false
	for _, b := range d.binds {
		if _, ok := b.(CalibBind); ok {
			hasCalib = true
			break
		}
	}
	d.mu.Unlock()
	if hasCalib {
		return errors.New("a calib bind is already registered")
	}
	return d.addBind(CalibBind{Sensor: trSensor, File: filePath})
}

func (d *Dumper) addBind(b Bind) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active {
		return errors.New("binds are immutable once a sequence has started")
	}
	d.binds = append(d.binds, b)
	return nil
}

// validateFilePath rejects a path the caller intends as a file but that
// carries no extension, before anything gets created on disk for it.
func validateFilePath(path string) error {
	if filepath.Ext(path) == "" {
		return errors.Errorf("path %q is a folder, not a file", path)
	}
	return nil
}
