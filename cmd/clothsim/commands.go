package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/drape/internal/cloth"
	"github.com/Faultbox/drape/internal/config"
	"github.com/Faultbox/drape/internal/logger"
	"github.com/Faultbox/drape/internal/physics/collision"
	"github.com/Faultbox/drape/pkg/formats"
)

// errNonFinite reports a particle that left the representable range.
var errNonFinite = errors.New("simulation diverged")

// runResult summarizes one headless run.
type runResult struct {
	Frames    int
	Elapsed   time.Duration
	Last      cloth.FrameStats
	Colliding int // triangles in contact, summed over all frames
	Substeps  int // largest sub-step count seen
}

// newSimulation builds the cloth and collider described by cfg.
func newSimulation(cfg *config.Config) (*cloth.Simulation, error) {
	simCfg, err := cfg.Simulation()
	if err != nil {
		return nil, err
	}
	sim, err := cloth.New(simCfg)
	if err != nil {
		return nil, err
	}
	collider, err := cfg.ColliderShape()
	if err != nil {
		return nil, err
	}
	sim.SetColliders(collider)
	return sim, nil
}

// simulate advances sim for steps frames of dt, logging every interval
// frames, and fails on the first frame with a non-finite particle.
func simulate(sim *cloth.Simulation, steps int, dt float32, interval int) (runResult, error) {
	var res runResult
	start := time.Now()
	for f := 1; f <= steps; f++ {
		sim.Step(dt)
		st := sim.Stats()
		res.Frames = f
		res.Colliding += st.Colliding
		res.Substeps = max(res.Substeps, st.Substeps)

		if interval > 0 && f%interval == 0 {
			logger.Info("frame",
				zap.Int("frame", f),
				zap.Int("substeps", st.Substeps),
				zap.Int("candidates", st.Candidates),
				zap.Int("colliding", st.Colliding),
				zap.Int("particle_contacts", st.ParticleContacts),
				zap.Int("self_contacts", st.SelfContacts),
			)
		}
		if i, ok := firstNonFinite(sim); !ok {
			res.Elapsed = time.Since(start)
			res.Last = st
			return res, fmt.Errorf("%w: particle %d at frame %d", errNonFinite, i, f)
		}
	}
	res.Elapsed = time.Since(start)
	res.Last = sim.Stats()
	return res, nil
}

// firstNonFinite returns the first particle with a NaN or Inf position.
func firstNonFinite(sim *cloth.Simulation) (int, bool) {
	for i, p := range sim.Particles() {
		if !p.Position.IsFinite() {
			return i, false
		}
	}
	return -1, true
}

func cmdRun(cfg *config.Config) error {
	sim, err := newSimulation(cfg)
	if err != nil {
		return err
	}
	res, err := simulate(sim, *flagSteps, float32(*flagDt), *flagInterval)
	if err != nil {
		return err
	}
	logger.Info("run complete",
		zap.Int("frames", res.Frames),
		zap.Duration("elapsed", res.Elapsed),
		zap.Int("max_substeps", res.Substeps),
		zap.Int("colliding_total", res.Colliding),
	)
	fmt.Printf("%d frames in %v (%.1f fps), all particles finite\n",
		res.Frames, res.Elapsed.Round(time.Millisecond), fps(res))
	return nil
}

func cmdBench(cfg *config.Config) error {
	strategies := []collision.Strategy{collision.StrategyBVH, collision.StrategyLinear}
	results := make([]runResult, len(strategies))
	for i, s := range strategies {
		cfg.Collision.Strategy = s.String()
		sim, err := newSimulation(cfg)
		if err != nil {
			return err
		}
		if results[i], err = simulate(sim, *flagSteps, float32(*flagDt), 0); err != nil {
			return fmt.Errorf("%s: %w", s, err)
		}
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "strategy\tframes\telapsed\tfps\tcandidates\tcolliding")
	for i, s := range strategies {
		r := results[i]
		fmt.Fprintf(tw, "%s\t%d\t%v\t%.1f\t%d\t%d\n",
			s, r.Frames, r.Elapsed.Round(time.Millisecond), fps(r), r.Last.Candidates, r.Colliding)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if results[0].Colliding != results[1].Colliding {
		logger.Warn("strategies disagree",
			zap.Int("bvh", results[0].Colliding),
			zap.Int("linear", results[1].Colliding),
		)
	}
	return nil
}

func fps(r runResult) float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Frames) / r.Elapsed.Seconds()
}

func cmdExport(cfg *config.Config, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: clothsim export <out.obj>")
	}
	sim, err := newSimulation(cfg)
	if err != nil {
		return err
	}
	if _, err := simulate(sim, *flagSteps, float32(*flagDt), *flagInterval); err != nil {
		return err
	}
	name := filepath.Base(args[0])
	if err := formats.SaveOBJ(args[0], sim.Snapshot(name)); err != nil {
		return err
	}
	logger.Info("exported mesh", zap.String("path", args[0]), zap.Int("frames", *flagSteps))
	fmt.Printf("Wrote %s\n", args[0])
	return nil
}

func cmdPresets() {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "name\tk\tshear\tbend\ttexture")
	for _, m := range cloth.Presets() {
		fmt.Fprintf(tw, "%s\t%g\t%g\t%g\t%s\n", m.Name, m.K, m.ShearK(), m.BendK(), m.TextureHint)
	}
	tw.Flush()
}

func cmdConfig(args []string) error {
	cfg := config.Default()
	if len(args) > 0 {
		if err := cfg.SaveTo(args[0]); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", args[0])
		return nil
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
	return nil
}

func cmdInspect(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: clothsim inspect <file.obj>")
	}
	o, err := formats.LoadOBJ(args[0])
	if err != nil {
		return err
	}
	lo, hi := o.Bounds()
	fmt.Printf("File:     %s\n", args[0])
	if o.Name != "" {
		fmt.Printf("Object:   %s\n", o.Name)
	}
	fmt.Printf("Vertices: %d\n", len(o.Positions))
	fmt.Printf("Normals:  %d\n", len(o.Normals))
	fmt.Printf("Faces:    %d\n", o.FaceCount())
	fmt.Printf("Bounds:   (%g, %g, %g) - (%g, %g, %g)\n", lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
	return nil
}
