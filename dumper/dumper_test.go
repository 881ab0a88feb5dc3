package dumper

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/semkitti/sensor"
	"go.viam.com/semkitti/sensor/fake"
	"go.viam.com/semkitti/spatialmath"
)

type rig struct {
	cam0  *fake.Camera
	cam1  *fake.Camera
	lidar *fake.SemanticLidar
}

func newRig() *rig {
	return &rig{
		cam0:  fake.NewCamera("cam0", sensor.CameraAttributes{ImageSizeX: 1280, ImageSizeY: 720, FOV: 90}),
		cam1:  fake.NewCamera("cam1", sensor.CameraAttributes{ImageSizeX: 1280, ImageSizeY: 720, FOV: 90}),
		lidar: fake.NewSemanticLidar("velodyne"),
	}
}

func (r *rig) bindAll(t *testing.T, d *Dumper) {
	t.Helper()
	test.That(t, d.BindCamera(r.cam0, "image_2"), test.ShouldBeNil)
	test.That(t, d.BindCamera(r.cam1, "image_3"), test.ShouldBeNil)
	test.That(t, d.BindSemanticLidar(r.lidar, "velodyne", "labels"), test.ShouldBeNil)
	test.That(t, d.BindTimestamp(r.cam0, "times.txt"), test.ShouldBeNil)
	test.That(t, d.BindPose(r.cam0, "poses.txt"), test.ShouldBeNil)
	test.That(t, d.BindCalib(r.lidar, "calib.txt"), test.ShouldBeNil)
}

// publish arms every sensor for one cycle. The rig drives straight ahead
// along the simulator's x axis, half a unit per cycle.
func (r *rig) publish(cycle int) {
	timestamps := []float64{100.0, 100.5, 101.25, 103.0}
	forward := 0.5 * float64(cycle)
	frame := int64(cycle + 1)

	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})

	identity := spatialmath.NewZeroTransform().Rotation()
	cam0Pose := spatialmath.NewTransformFromParts(identity, r3.Vector{X: 2 + forward, Y: 0, Z: 4})
	cam1Pose := spatialmath.NewTransformFromParts(identity, r3.Vector{X: 2 + forward, Y: 0.5, Z: 4})
	lidarPose := spatialmath.NewTransformFromParts(identity, r3.Vector{X: 1.5 + forward, Y: 0, Z: 4.5})

	points := []sensor.Point{
		{Position: r3.Vector{X: 2, Y: 3, Z: -1}, SemanticID: 1, InstanceID: 0},
		{Position: r3.Vector{X: 0.5, Y: -1.5, Z: 0}, SemanticID: 14, InstanceID: 7},
		{Position: r3.Vector{X: 10, Y: 0, Z: 2}, SemanticID: 12, InstanceID: 9},
	}

	r.cam0.Publish(&sensor.Sample{Timestamp: timestamps[cycle], Frame: frame, Image: img, Transform: cam0Pose})
	r.cam1.Publish(&sensor.Sample{Timestamp: timestamps[cycle], Frame: frame, Image: img, Transform: cam1Pose})
	r.lidar.Publish(&sensor.Sample{Timestamp: timestamps[cycle], Frame: frame, Points: points, Transform: lidarPose})
}

func captureFrames(t *testing.T, r *rig, seq *Sequence, frames int) {
	t.Helper()
	for cycle := 0; cycle < frames; cycle++ {
		r.publish(cycle)
		test.That(t, seq.CreateFrame(context.Background()), test.ShouldBeNil)
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	test.That(t, err, test.ShouldBeNil)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

func parseFields(t *testing.T, line string) []float64 {
	t.Helper()
	fields := strings.Fields(line)
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		test.That(t, err, test.ShouldBeNil)
		out[i] = v
	}
	return out
}

func TestSequenceSkeleton(t *testing.T) {
	logger := golog.NewTestLogger(t)
	root := t.TempDir()
	r := newRig()
	d := NewDumper(root, logger)
	r.bindAll(t, d)

	seq, err := d.CreateSequence("00")
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, seq.Close(), test.ShouldBeNil)
	}()

	for _, folder := range []string{"image_2", "image_3", "velodyne", "labels"} {
		info, err := os.Stat(filepath.Join(root, "00", folder))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, info.IsDir(), test.ShouldBeTrue)
	}
	for _, file := range []string{"times.txt", "poses.txt", "calib.txt"} {
		info, err := os.Stat(filepath.Join(root, "00", file))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, info.IsDir(), test.ShouldBeFalse)
		test.That(t, info.Size(), test.ShouldEqual, 0)
	}
}

func TestThreeFrameCapture(t *testing.T) {
	logger := golog.NewTestLogger(t)
	root := t.TempDir()
	r := newRig()
	d := NewDumper(root, logger)
	r.bindAll(t, d)

	seq, err := d.CreateSequence("00")
	test.That(t, err, test.ShouldBeNil)
	captureFrames(t, r, seq, 3)
	test.That(t, seq.Close(), test.ShouldBeNil)

	seqPath := filepath.Join(root, "00")

	// one image per camera per frame, lossless and decodable
	for _, folder := range []string{"image_2", "image_3"} {
		for _, name := range []string{"000001.png", "000002.png", "000003.png"} {
			f, err := os.Open(filepath.Join(seqPath, folder, name))
			test.That(t, err, test.ShouldBeNil)
			cfg, err := png.DecodeConfig(f)
			test.That(t, err, test.ShouldBeNil)
			test.That(t, cfg.Width, test.ShouldEqual, 4)
			test.That(t, cfg.Height, test.ShouldEqual, 4)
			test.That(t, f.Close(), test.ShouldBeNil)
		}
	}

	// timestamps relative to frame 1, which is exactly zero
	times := readLines(t, filepath.Join(seqPath, "times.txt"))
	test.That(t, times, test.ShouldResemble, []string{"0.000000e+00", "5.000000e-01", "1.250000e+00"})

	// frame 1's pose is the identity composed form; later frames move along
	// the dataset camera's forward (z) axis
	poses := readLines(t, filepath.Join(seqPath, "poses.txt"))
	test.That(t, len(poses), test.ShouldEqual, 3)
	identity := []float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0}
	first := parseFields(t, poses[0])
	test.That(t, len(first), test.ShouldEqual, 12)
	for i, v := range first {
		test.That(t, v, test.ShouldAlmostEqual, identity[i])
	}
	second := parseFields(t, poses[1])
	test.That(t, second[3], test.ShouldAlmostEqual, 0)
	test.That(t, second[7], test.ShouldAlmostEqual, 0)
	test.That(t, second[11], test.ShouldAlmostEqual, 0.5)
	third := parseFields(t, poses[2])
	test.That(t, third[11], test.ShouldAlmostEqual, 1.0)
}

func TestPointAndLabelArtifacts(t *testing.T) {
	logger := golog.NewTestLogger(t)
	root := t.TempDir()
	r := newRig()
	d := NewDumper(root, logger)
	r.bindAll(t, d)

	seq, err := d.CreateSequence("00")
	test.That(t, err, test.ShouldBeNil)
	captureFrames(t, r, seq, 1)
	test.That(t, seq.Close(), test.ShouldBeNil)

	seqPath := filepath.Join(root, "00")

	binData, err := os.ReadFile(filepath.Join(seqPath, "velodyne", "000001.bin"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(binData), test.ShouldEqual, 3*4*4)
	points := make([]float32, 12)
	err = binary.Read(bytes.NewReader(binData), binary.LittleEndian, points)
	test.That(t, err, test.ShouldBeNil)
	// the lateral mirror and the handedness conversion are inverse sign
	// flips, so the stored rows carry the sensor-native coordinates
	test.That(t, points, test.ShouldResemble, []float32{
		2, 3, -1, 1,
		0.5, -1.5, 0, 1,
		10, 0, 2, 1,
	})

	labelData, err := os.ReadFile(filepath.Join(seqPath, "labels", "000001.label"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(labelData), test.ShouldEqual, 3*2*2)
	labelRows := make([]uint16, 6)
	err = binary.Read(bytes.NewReader(labelData), binary.LittleEndian, labelRows)
	test.That(t, err, test.ShouldBeNil)
	// remapped semantic ids paired with untouched instance ids, in point order
	test.That(t, labelRows, test.ShouldResemble, []uint16{40, 0, 10, 7, 30, 9})
}

func TestCalibWrittenOnceAtFirstFrame(t *testing.T) {
	logger := golog.NewTestLogger(t)
	root := t.TempDir()
	r := newRig()
	d := NewDumper(root, logger)
	r.bindAll(t, d)

	seq, err := d.CreateSequence("00")
	test.That(t, err, test.ShouldBeNil)
	captureFrames(t, r, seq, 3)
	test.That(t, seq.Close(), test.ShouldBeNil)

	lines := readLines(t, filepath.Join(root, "00", "calib.txt"))
	test.That(t, len(lines), test.ShouldEqual, 3)
	test.That(t, lines[0], test.ShouldStartWith, "P0: ")
	test.That(t, lines[1], test.ShouldStartWith, "P1: ")
	test.That(t, lines[2], test.ShouldStartWith, "Tr: ")

	// P0 is the reference camera against itself: [K|0]
	p0 := parseFields(t, strings.TrimPrefix(lines[0], "P0: "))
	test.That(t, len(p0), test.ShouldEqual, 12)
	test.That(t, p0[0], test.ShouldAlmostEqual, 640, 1e-9)
	test.That(t, p0[2], test.ShouldAlmostEqual, 640)
	test.That(t, p0[3], test.ShouldAlmostEqual, 0)
	test.That(t, p0[5], test.ShouldAlmostEqual, 640, 1e-9)
	test.That(t, p0[6], test.ShouldAlmostEqual, 360)
	test.That(t, p0[10], test.ShouldAlmostEqual, 1)

	// P1's baseline (0.5 to the simulator's right) lands on the dataset
	// camera's x axis, scaled by the focal length
	p1 := parseFields(t, strings.TrimPrefix(lines[1], "P1: "))
	test.That(t, p1[3], test.ShouldAlmostEqual, p0[0]*0.5, 1e-6)

	// lidar sits half a unit behind and above the reference camera
	tr := parseFields(t, strings.TrimPrefix(lines[2], "Tr: "))
	expectedTr := []float64{
		0, -1, 0, 0,
		0, 0, -1, -0.5,
		1, 0, 0, -0.5,
	}
	for i, v := range tr {
		test.That(t, v, test.ShouldAlmostEqual, expectedTr[i])
	}
}

func TestCalibRequiresPoseAndCalibBinds(t *testing.T) {
	logger := golog.NewTestLogger(t)
	r := newRig()
	d := NewDumper(t.TempDir(), logger)
	test.That(t, d.BindCamera(r.cam0, "image_2"), test.ShouldBeNil)
	test.That(t, d.BindPose(r.cam0, "poses.txt"), test.ShouldBeNil)

	seq, err := d.CreateSequence("00")
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, seq.Close(), test.ShouldBeNil)
	}()

	r.publish(0)
	err = seq.CreateFrame(context.Background())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "calib bind or pose bind not found")
}

func TestUnknownSemanticIDFailsFrame(t *testing.T) {
	logger := golog.NewTestLogger(t)
	r := newRig()
	d := NewDumper(t.TempDir(), logger)
	r.bindAll(t, d)

	seq, err := d.CreateSequence("00")
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, seq.Close(), test.ShouldBeNil)
	}()

	r.publish(0)
	r.lidar.Publish(&sensor.Sample{
		Timestamp: 100.0,
		Frame:     1,
		Points:    []sensor.Point{{Position: r3.Vector{X: 1, Y: 1, Z: 1}, SemanticID: 9999}},
		Transform: spatialmath.NewZeroTransform(),
	})
	err = seq.CreateFrame(context.Background())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no mapping")
}

func TestOriginsResetAcrossSequences(t *testing.T) {
	logger := golog.NewTestLogger(t)
	root := t.TempDir()
	r := newRig()
	d := NewDumper(root, logger)
	r.bindAll(t, d)

	seq, err := d.CreateSequence("00")
	test.That(t, err, test.ShouldBeNil)
	captureFrames(t, r, seq, 2)
	test.That(t, seq.Close(), test.ShouldBeNil)

	// the next sequence re-derives both origins from its own first frame
	seq2, err := d.CreateSequence("01")
	test.That(t, err, test.ShouldBeNil)
	r.publish(3)
	test.That(t, seq2.CreateFrame(context.Background()), test.ShouldBeNil)
	test.That(t, seq2.Close(), test.ShouldBeNil)

	times := readLines(t, filepath.Join(root, "01", "times.txt"))
	test.That(t, times, test.ShouldResemble, []string{"0.000000e+00"})
	poses := readLines(t, filepath.Join(root, "01", "poses.txt"))
	first := parseFields(t, poses[0])
	identity := []float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0}
	for i, v := range first {
		test.That(t, v, test.ShouldAlmostEqual, identity[i])
	}
}

func TestPoseLinesIdempotentAcrossRuns(t *testing.T) {
	logger := golog.NewTestLogger(t)

	run := func(root string) string {
		r := newRig()
		d := NewDumper(root, logger)
		r.bindAll(t, d)
		seq, err := d.CreateSequence("00")
		test.That(t, err, test.ShouldBeNil)
		captureFrames(t, r, seq, 3)
		test.That(t, seq.Close(), test.ShouldBeNil)
		data, err := os.ReadFile(filepath.Join(root, "00", "poses.txt"))
		test.That(t, err, test.ShouldBeNil)
		return string(data)
	}

	test.That(t, run(t.TempDir()), test.ShouldEqual, run(t.TempDir()))
}
