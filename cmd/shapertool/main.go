// shapertool exercises the input shaper engine from the command line:
// inspect a configuration, plan a single move, or serve the object
// model for a web UI.
//
// Copyright (C) 2026  RepRapFirmware Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/urfave/cli/v3"

	"github.com/Caribou3d/RepRapFirmware/pkg/gcode"
	"github.com/Caribou3d/RepRapFirmware/pkg/log"
	"github.com/Caribou3d/RepRapFirmware/pkg/move"
	"github.com/Caribou3d/RepRapFirmware/pkg/objectmodel"
	"github.com/Caribou3d/RepRapFirmware/pkg/shaper"
	"github.com/Caribou3d/RepRapFirmware/pkg/steptimer"
)

func main() {
	logger := log.New("shapertool")

	shaperFlags := []cli.Flag{
		&cli.StringFlag{
			Category: "Shaper",
			Name:     "type",
			Usage:    "Shaper type: none, custom, single-impulse, zvd, zvdd, ei2, ei3",
			Value:    "zvd",
		},
		&cli.FloatFlag{
			Category: "Shaper",
			Name:     "freq",
			Usage:    "Shaping frequency in Hz",
			Value:    shaper.DefaultFrequency,
		},
		&cli.FloatFlag{
			Category: "Shaper",
			Name:     "damping",
			Usage:    "Damping ratio (0 <= zeta < 1)",
			Value:    shaper.DefaultDampingRatio,
		},
		&cli.FloatFlag{
			Category: "Shaper",
			Name:     "min-accel",
			Usage:    "Minimum acceleration allowed when retiming",
			Value:    shaper.DefaultMinimumAcceleration,
		},
		&cli.StringFlag{
			Category: "Shaper",
			Name:     "coefficients",
			Usage:    "Colon-separated custom impulse coefficients",
		},
		&cli.StringFlag{
			Category: "Shaper",
			Name:     "durations",
			Usage:    "Colon-separated custom impulse durations in seconds",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable planning trace output",
		},
	}

	moveFlags := []cli.Flag{
		&cli.FloatFlag{Category: "Move", Name: "start-speed", Usage: "Start speed in mm/s", Value: 10},
		&cli.FloatFlag{Category: "Move", Name: "top-speed", Usage: "Top speed in mm/s", Value: 100},
		&cli.FloatFlag{Category: "Move", Name: "end-speed", Usage: "End speed in mm/s", Value: 10},
		&cli.FloatFlag{Category: "Move", Name: "accel", Usage: "Acceleration in mm/s^2", Value: 3000},
		&cli.FloatFlag{Category: "Move", Name: "decel", Usage: "Deceleration in mm/s^2", Value: 3000},
		&cli.FloatFlag{Category: "Move", Name: "distance", Usage: "Total distance in mm", Value: 50},
	}

	root := &cli.Command{
		Name:  "shapertool",
		Usage: "Inspect and exercise the input shaper engine",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Configure a shaper and print its derived constants",
				Flags:  shaperFlags,
				Action: func(ctx context.Context, cmd *cli.Command) error { return runStatus(cmd, logger) },
			},
			{
				Name:   "plan",
				Usage:  "Plan shaping for one trapezoidal move and print its segments",
				Flags:  append(append([]cli.Flag{}, shaperFlags...), moveFlags...),
				Action: func(ctx context.Context, cmd *cli.Command) error { return runPlan(cmd, logger) },
			},
			{
				Name:  "serve",
				Usage: "Serve the object model over HTTP/websocket",
				Flags: append(append([]cli.Flag{}, shaperFlags...),
					&cli.StringFlag{Name: "addr", Usage: "Listen address", Value: ":7125"}),
				Action: func(ctx context.Context, cmd *cli.Command) error { return runServe(ctx, cmd, logger) },
			},
		},
	}

	if err := root.Run(context.Background(), os.Args); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

// configureFromFlags builds an engine from the shared shaper flags.
func configureFromFlags(cmd *cli.Command, logger *log.Logger) (*shaper.AxisShaper, error) {
	if cmd.Bool("debug") {
		logger.SetLevel(log.DEBUG)
	}
	engine := shaper.New(logger.WithPrefix("shaper"))

	freq := cmd.Float("freq")
	damping := cmd.Float("damping")
	minAccel := cmd.Float("min-accel")
	typeName := cmd.String("type")
	p := shaper.Params{
		Frequency:           &freq,
		DampingRatio:        &damping,
		MinimumAcceleration: &minAccel,
		TypeName:            &typeName,
	}
	var err error
	if p.Coefficients, err = parseFloatList(cmd.String("coefficients")); err != nil {
		return nil, err
	}
	if p.Durations, err = parseFloatList(cmd.String("durations")); err != nil {
		return nil, err
	}
	if _, err := engine.Configure(p); err != nil {
		return nil, err
	}
	return engine, nil
}

func parseFloatList(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ":")
	out := make([]float64, 0, len(parts))
	for _, part := range parts {
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("bad float list entry '%s'", part)
		}
		out = append(out, f)
	}
	return out, nil
}

func runStatus(cmd *cli.Command, logger *log.Logger) error {
	engine, err := configureFromFlags(cmd, logger)
	if err != nil {
		return err
	}

	pterm.Printf("%s\n", engine.StatusText())
	if n := engine.NumExtraImpulses(); n != 0 {
		data := [][]string{{"Impulse", "Coefficient", "Duration (ms)"}}
		coeffs := engine.Coefficients()
		durations := engine.Durations()
		for i := 0; i < n; i++ {
			data = append(data, []string{
				strconv.Itoa(i),
				fmt.Sprintf("%.4f", coeffs[i]),
				fmt.Sprintf("%.3f", durations[i]*1000),
			})
		}
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		pterm.Printf("total shaping clocks %.0f, lost at start %.0f, lost at end %.0f\n",
			engine.TotalShapingClocks(), engine.ClocksLostAtStart(), engine.ClocksLostAtEnd())
	}
	return nil
}

func runPlan(cmd *cli.Command, logger *log.Logger) error {
	engine, err := configureFromFlags(cmd, logger)
	if err != nil {
		return err
	}

	m := move.New(
		cmd.Float("start-speed"),
		cmd.Float("top-speed"),
		cmd.Float("end-speed"),
		cmd.Float("accel"),
		cmd.Float("decel"),
		cmd.Float("distance"),
	)
	var params move.PrepParams
	plan := engine.PlanShaping(m, &params, true)

	pterm.Printf("plan: accelStart=%v accelEnd=%v decelStart=%v decelEnd=%v (%d accel, %d decel segments)\n",
		plan.ShapeAccelStart, plan.ShapeAccelEnd, plan.ShapeDecelStart, plan.ShapeDecelEnd,
		plan.AccelSegments, plan.DecelSegments)
	pterm.Printf("move duration %.3f ms\n", steptimer.ClocksToMilliseconds(params.TotalClocks()))

	data := [][]string{{"Segment", "Kind", "End fraction", "Duration (ms)"}}
	i := 0
	for seg := m.Segments; seg != nil; seg = seg.Next() {
		kind := "quadratic"
		if seg.IsLinear() {
			kind = "linear"
		}
		data = append(data, []string{
			strconv.Itoa(i),
			kind,
			fmt.Sprintf("%.6f", seg.DistanceFraction()),
			fmt.Sprintf("%.3f", steptimer.ClocksToMilliseconds(seg.Duration())),
		})
		i++
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return nil
}

// motionHost glues the engine and the command front end together for
// the object model server.
type motionHost struct {
	engine     *shaper.AxisShaper
	dispatcher *gcode.Dispatcher
}

func (h *motionHost) ObjectModel() map[string]any {
	return map[string]any{
		"move": map[string]any{
			"shaping": h.engine.ObjectModel(),
		},
		"segmentsCreated": move.NumSegmentsCreated(),
	}
}

func (h *motionHost) ExecuteGCode(line string) (string, error) {
	return h.dispatcher.Execute(line)
}

func runServe(ctx context.Context, cmd *cli.Command, logger *log.Logger) error {
	engine, err := configureFromFlags(cmd, logger)
	if err != nil {
		return err
	}
	host := &motionHost{
		engine:     engine,
		dispatcher: gcode.NewDispatcher(engine, logger.WithPrefix("gcode")),
	}
	server := objectmodel.New(host, cmd.String("addr"), logger.WithPrefix("objectmodel"))
	if err := server.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}
	return server.Stop()
}
