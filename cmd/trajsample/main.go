// Package main samples trajectories and prints them as CSV.
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"strconv"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"

	"go.viam.com/armcore/logging"
	"go.viam.com/armcore/trajectory"
)

const (
	// Flags.
	flagDuration = "duration"
	flagRate     = "rate"
	flagFrom     = "from"
	flagTo       = "to"
	flagDebug    = "debug"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	var logger logging.Logger
	samplingFlags := []cli.Flag{
		&cli.Float64Flag{
			Name:  flagDuration,
			Value: 1,
			Usage: "trajectory duration in seconds",
		},
		&cli.Float64Flag{
			Name:  flagRate,
			Value: 100,
			Usage: "samples per second",
		},
	}
	return &cli.App{
		Name:      "trajsample",
		Usage:     "print trajectory samples as CSV",
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			logger = logging.NewStderrLogger("trajsample", c.Bool(flagDebug))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "line",
				Usage:     "sample a rest to rest line between two points",
				UsageText: "trajsample line --from 0,0,0 --to 0.1,0.2,0 [--duration 2] [--rate 100]",
				Flags: append([]cli.Flag{
					&cli.Float64SliceFlag{
						Name:  flagFrom,
						Value: cli.NewFloat64Slice(0, 0, 0),
						Usage: "start point `X,Y,Z`",
					},
					&cli.Float64SliceFlag{
						Name:     flagTo,
						Required: true,
						Usage:    "end point `X,Y,Z`",
					},
				}, samplingFlags...),
				Action: func(c *cli.Context) error {
					return sampleLine(c, logger)
				},
			},
			{
				Name:      "joints",
				Usage:     "sample a rest to rest joint quintic",
				UsageText: "trajsample joints --from 0,0 --to 1,-0.5 [--duration 2] [--rate 100]",
				Flags: append([]cli.Flag{
					&cli.Float64SliceFlag{
						Name:     flagFrom,
						Required: true,
						Usage:    "initial joint positions `Q1,Q2,...`",
					},
					&cli.Float64SliceFlag{
						Name:     flagTo,
						Required: true,
						Usage:    "final joint positions `Q1,Q2,...`",
					},
				}, samplingFlags...),
				Action: func(c *cli.Context) error {
					return sampleJoints(c, logger)
				},
			},
		},
	}
}

func sampleTimes(c *cli.Context) ([]float64, error) {
	duration := c.Float64(flagDuration)
	rate := c.Float64(flagRate)
	if !(duration > 0) {
		return nil, errors.Errorf("--%s should be positive, got %f", flagDuration, duration)
	}
	if !(rate > 0) {
		return nil, errors.Errorf("--%s should be positive, got %f", flagRate, rate)
	}
	n := int(math.Round(duration*rate)) + 1
	return lo.Times(n, func(i int) float64 { return float64(i) / rate }), nil
}

func toPoint(flag string, v []float64) (r3.Vector, error) {
	if len(v) != 3 {
		return r3.Vector{}, errors.Errorf("--%s needs 3 coordinates, got %d", flag, len(v))
	}
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}, nil
}

func sampleLine(c *cli.Context, logger logging.Logger) error {
	times, err := sampleTimes(c)
	if err != nil {
		return err
	}
	from, err := toPoint(flagFrom, c.Float64Slice(flagFrom))
	if err != nil {
		return err
	}
	to, err := toPoint(flagTo, c.Float64Slice(flagTo))
	if err != nil {
		return err
	}
	s, err := trajectory.NewRestToRestQuintic(0, c.Float64(flagDuration), 0, to.Sub(from).Norm())
	if err != nil {
		return err
	}
	line, err := trajectory.NewLineSegment(from, to, s)
	if err != nil {
		return err
	}
	logger.Debugw("sampling line", "from", from, "to", to, "samples", len(times))

	rows := [][]float64{}
	for _, t := range times {
		p, v, a := line.Position(t), line.Velocity(t), line.Acceleration(t)
		rows = append(rows, []float64{t, p.X, p.Y, p.Z, v.X, v.Y, v.Z, a.X, a.Y, a.Z})
	}
	return writeCSV(c.App.Writer, []string{"t", "x", "y", "z", "vx", "vy", "vz", "ax", "ay", "az"}, rows)
}

func sampleJoints(c *cli.Context, logger logging.Logger) error {
	times, err := sampleTimes(c)
	if err != nil {
		return err
	}
	from, to := c.Float64Slice(flagFrom), c.Float64Slice(flagTo)
	if len(from) != len(to) {
		return errors.Errorf("--%s has %d joints and --%s has %d", flagFrom, len(from), flagTo, len(to))
	}
	traj, err := trajectory.NewJointsQuintic(to, 0, c.Float64(flagDuration))
	if err != nil {
		return err
	}
	if err := traj.Initialize(from); err != nil {
		return err
	}
	logger.Debugw("sampling joints", "from", from, "to", to, "samples", len(times))

	n := len(to)
	header := append([]string{"t"}, lo.Times(n, func(i int) string { return fmt.Sprintf("q%d", i) })...)
	header = append(header, lo.Times(n, func(i int) string { return fmt.Sprintf("qd%d", i) })...)
	rows := lo.Map(times, func(t float64, _ int) []float64 {
		row := append([]float64{t}, traj.JointPositions(t)...)
		return append(row, traj.JointVelocities(t)...)
	})
	return writeCSV(c.App.Writer, header, rows)
}

func writeCSV(out io.Writer, header []string, rows [][]float64) error {
	w := csv.NewWriter(out)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		record := lo.Map(row, func(v float64, _ int) string { return strconv.FormatFloat(v, 'g', 10, 64) })
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
