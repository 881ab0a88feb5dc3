// Package main captures a short demo sequence from fake sensors into the
// SemanticKITTI layout.
package main

import (
	"context"
	"image"
	"image/color"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/utils"

	"go.viam.com/semkitti/dumper"
	"go.viam.com/semkitti/sensor"
	"go.viam.com/semkitti/sensor/fake"
	"go.viam.com/semkitti/spatialmath"
)

var logger = golog.NewDevelopmentLogger("semkitti-dump")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	OutDir string `flag:"out,default=dataset,usage=dataset output root"`
	Frames int    `flag:"frames,default=10,usage=number of frames to capture"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}

	cam0 := fake.NewCamera("cam0", sensor.CameraAttributes{ImageSizeX: 1280, ImageSizeY: 720, FOV: 90})
	cam1 := fake.NewCamera("cam1", sensor.CameraAttributes{ImageSizeX: 1280, ImageSizeY: 720, FOV: 90})
	lidar := fake.NewSemanticLidar("velodyne")

	d := dumper.NewDumper(argsParsed.OutDir, logger)
	if err := d.BindCamera(cam0, "image_2"); err != nil {
		return err
	}
	if err := d.BindCamera(cam1, "image_3"); err != nil {
		return err
	}
	if err := d.BindSemanticLidar(lidar, "velodyne", "labels"); err != nil {
		return err
	}
	if err := d.BindTimestamp(cam0, "times.txt"); err != nil {
		return err
	}
	if err := d.BindPose(cam0, "poses.txt"); err != nil {
		return err
	}
	if err := d.BindCalib(lidar, "calib.txt"); err != nil {
		return err
	}

	seq, err := d.CreateSequence("")
	if err != nil {
		return err
	}
	for i := 0; i < argsParsed.Frames; i++ {
		publishCycle(cam0, cam1, lidar, i)
		if err := seq.CreateFrame(ctx); err != nil {
			return err
		}
	}
	return seq.Close()
}

// publishCycle arms every fake sensor with a synthetic reading for one
// capture cycle: a flat image, a small ring of road points, and poses moving
// forward along the simulator's x axis.
func publishCycle(cam0, cam1 *fake.Camera, lidar *fake.SemanticLidar, cycle int) {
	timestamp := 0.1 * float64(cycle)
	frame := int64(cycle + 1)
	forward := 0.5 * float64(cycle)

	img := image.NewNRGBA(image.Rect(0, 0, 1280, 720))
	for y := 0; y < 720; y++ {
		for x := 0; x < 1280; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: uint8(cycle % 256), A: 255})
		}
	}

	cam0Pose := spatialmath.NewTransformFromParts(
		spatialmath.NewZeroTransform().Rotation(),
		r3.Vector{X: 1.5 + forward, Y: 0, Z: 2.4},
	)
	cam1Pose := spatialmath.NewTransformFromParts(
		spatialmath.NewZeroTransform().Rotation(),
		r3.Vector{X: 1.5 + forward, Y: 0.54, Z: 2.4},
	)
	lidarPose := spatialmath.NewTransformFromParts(
		spatialmath.NewZeroTransform().Rotation(),
		r3.Vector{X: forward, Y: 0, Z: 2.5},
	)

	points := make([]sensor.Point, 0, 64)
	for i := 0; i < 64; i++ {
		points = append(points, sensor.Point{
			Position:   r3.Vector{X: float64(i%8) + 2, Y: float64(i/8) - 4, Z: -2.5},
			SemanticID: 1, // road
			InstanceID: 0,
		})
	}

	cam0.Publish(&sensor.Sample{Timestamp: timestamp, Frame: frame, Image: img, Transform: cam0Pose})
	cam1.Publish(&sensor.Sample{Timestamp: timestamp, Frame: frame, Image: img, Transform: cam1Pose})
	lidar.Publish(&sensor.Sample{Timestamp: timestamp, Frame: frame, Points: points, Transform: lidarPose})
}
