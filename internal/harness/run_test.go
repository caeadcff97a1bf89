package harness_test

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/rigidcheck/internal/analytic"
	"github.com/san-kum/rigidcheck/internal/dynamo"
	"github.com/san-kum/rigidcheck/internal/harness"
	"github.com/san-kum/rigidcheck/internal/metrics"
)

var _ = Describe("ValidationRun", func() {
	Describe("configuration", func() {
		It("rejects a non-positive model count", func() {
			cfg := simpleConfig("rk4")
			cfg.ModelCount = 0
			_, err := harness.New(loadWorld("rk4"), cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		})

		It("rejects a non-positive step size", func() {
			cfg := simpleConfig("rk4")
			cfg.Dt = 0
			_, err := harness.New(loadWorld("rk4"), cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		})

		It("rejects an engine that is not the active one", func() {
			_, err := harness.New(loadWorld("euler"), simpleConfig("rk4"))
			Expect(err).To(MatchError(dynamo.ErrEngineMismatch))
		})

		It("rejects unsupported statistics", func() {
			cfg := simpleConfig("rk4")
			cfg.Statistics = "maxAbs,median"
			_, err := harness.New(loadWorld("rk4"), cfg)
			Expect(err).To(MatchError(dynamo.ErrUnsupportedStatistic))
		})

		It("rejects multi-axis spin in the simple regime", func() {
			cfg := simpleConfig("rk4")
			cfg.AngularVel = mgl64.Vec3{0.5, 0.1, 0}
			_, err := harness.New(loadWorld("rk4"), cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		})

		It("rejects a degenerate box", func() {
			cfg := simpleConfig("rk4")
			cfg.Size = mgl64.Vec3{0.1, 0, 0.9}
			_, err := harness.New(loadWorld("rk4"), cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		})

		It("fills defaults", func() {
			r, err := harness.New(loadWorld("rk4"), simpleConfig("rk4"))
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Phase()).To(Equal(harness.Configuring))
			Expect(r.Config().Duration).To(Equal(harness.DefaultDuration))
			Expect(r.Config().Statistics).To(Equal(harness.DefaultStatistics))
			Expect(r.StepCount()).To(Equal(10000))
		})
	})

	Describe("phase transitions", func() {
		var r *harness.ValidationRun

		BeforeEach(func() {
			cfg := simpleConfig("rk4")
			cfg.Duration = 0.1
			var err error
			r, err = harness.New(loadWorld("rk4"), cfg)
			Expect(err).NotTo(HaveOccurred())
		})

		It("refuses to execute before initializing", func() {
			Expect(r.Execute()).To(MatchError(dynamo.ErrInvalidTransition))
			Expect(r.Phase()).To(Equal(harness.Configuring))
		})

		It("refuses to complete before executing", func() {
			Expect(r.Initialize()).To(Succeed())
			_, err := r.Complete()
			Expect(err).To(MatchError(dynamo.ErrInvalidTransition))
			Expect(r.Phase()).To(Equal(harness.Initialized))
		})

		It("walks through every phase in order", func() {
			Expect(r.Initialize()).To(Succeed())
			Expect(r.Phase()).To(Equal(harness.Initialized))
			Expect(r.Execute()).To(Succeed())
			Expect(r.Phase()).To(Equal(harness.Stepping))
			rep, err := r.Complete()
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Phase()).To(Equal(harness.Completed))
			Expect(r.Report()).To(Equal(rep))
			Expect(rep.Steps).To(Equal(100))

			Expect(r.Initialize()).To(MatchError(dynamo.ErrInvalidTransition))
		})
	})

	Describe("initialization", func() {
		DescribeTable("captures H0 equal to diag(I)·w0",
			func(cfg harness.Config, count int) {
				cfg.ModelCount = count
				r, err := harness.New(loadWorld(cfg.Engine), cfg)
				Expect(err).NotTo(HaveOccurred())
				Expect(r.Initialize()).To(Succeed())

				in, _ := dynamo.BoxInertial(cfg.Mass, cfg.Size)
				want := in.PrincipalMomentum(cfg.AngularVel)
				got := r.Model().Initial().AngularMomentum
				for i := 0; i < 3; i++ {
					Expect(got[i]).To(BeNumerically("~", want[i], 1e-6))
				}
			},
			Entry("simple rk4", simpleConfig("rk4"), 1),
			Entry("simple euler, three bodies", simpleConfig("euler"), 3),
			Entry("complex rk4, two bodies", complexConfig("rk4"), 2),
			Entry("complex euler", complexConfig("euler"), 1),
		)

		It("zeroes gravity in the simple regime", func() {
			w := loadWorld("rk4")
			r, _ := harness.New(w, simpleConfig("rk4"))
			Expect(r.Initialize()).To(Succeed())
			Expect(w.Gravity()).To(Equal(mgl64.Vec3{}))
			Expect(r.Model().Regime()).To(Equal(analytic.Simple))
		})

		It("keeps world gravity in the complex regime", func() {
			w := loadWorld("rk4")
			r, _ := harness.New(w, complexConfig("rk4"))
			Expect(r.Initialize()).To(Succeed())
			Expect(r.Model().Gravity()).To(Equal(mgl64.Vec3{0, 0, -9.8}))
			Expect(r.Model().Regime()).To(Equal(analytic.Complex))
			Expect(r.AngularPositionError()).To(BeNil())
		})

		It("spawns uniquely named bodies and measures the last one", func() {
			cfg := simpleConfig("rk4")
			cfg.ModelCount = 3
			r, _ := harness.New(loadWorld("rk4"), cfg)
			Expect(r.Initialize()).To(Succeed())

			names := []string{}
			for _, b := range r.Bodies() {
				names = append(names, b.Name())
			}
			Expect(names).To(Equal([]string{"model_0", "model_1", "model_2"}))
			Expect(r.Body().Name()).To(Equal("model_2"))
			Expect(r.Model().Initial().Position).To(Equal(mgl64.Vec3{0, 3.6, 0}))
		})

		It("continues naming across runs sharing a namer", func() {
			namer := harness.NewSequentialNamer()
			r, _ := harness.New(loadWorld("rk4"), simpleConfig("rk4"), harness.WithNamer(namer))
			Expect(r.Initialize()).To(Succeed())
			Expect(namer.Unique(harness.DefaultModelPrefix)).To(Equal("model_1"))
		})

		It("aborts when the engine reports a different velocity", func() {
			r, _ := harness.New(lyingWorld{loadWorld("rk4")}, simpleConfig("rk4"))
			err := r.Initialize()
			Expect(err).To(MatchError(dynamo.ErrPrecondition))
			Expect(r.Phase()).To(Equal(harness.Aborted))

			var rerr *harness.RunError
			Expect(errors.As(err, &rerr)).To(BeTrue())
			Expect(rerr.Step).To(Equal(0))
			Expect(r.Err()).To(Equal(err))
		})

		It("aborts when the initial energy misses the nominal value", func() {
			cfg := simpleConfig("rk4")
			cfg.NominalEnergy = 5.1
			r, _ := harness.New(loadWorld("rk4"), cfg)
			Expect(r.Initialize()).To(MatchError(dynamo.ErrPrecondition))
		})
	})

	Describe("simple regime", func() {
		var (
			rec *memRecorder
			rep *harness.Report
			r   *harness.ValidationRun
		)

		BeforeEach(func() {
			rec = newMemRecorder()
			var err error
			r, err = harness.New(loadWorld("rk4"), simpleConfig("rk4"), harness.WithRecorder(rec))
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Initialize()).To(Succeed())
			Expect(r.Execute()).To(Succeed())
			rep, err = r.Complete()
			Expect(err).NotTo(HaveOccurred())
		})

		It("predicts uniform rectilinear motion", func() {
			Expect(r.Model().Position(2)).To(Equal(mgl64.Vec3{-1.8, 0.8, 0.2}))
			Expect(r.Model().Velocity(7)).To(Equal(mgl64.Vec3{-0.9, 0.4, 0.1}))
			Expect(rep.Metrics["linPositionErr_maxAbs"]).To(BeNumerically("<", 1e-9))
			Expect(rep.Metrics["linVelocityErr_maxAbs"]).To(BeNumerically("<", 1e-12))
		})

		It("conserves angular momentum and energy", func() {
			Expect(rep.Metrics["angMomentumErr_maxAbs"]).To(BeNumerically("<", 1e-2))
			Expect(rep.Metrics["energyError_maxAbs"]).To(BeNumerically("<", 1e-9))
		})

		It("tracks the spin angle", func() {
			for _, axis := range []string{"x", "y", "z", "mag"} {
				Expect(rep.Metrics).To(HaveKey("angPositionErr_" + axis + "_maxAbs"))
			}
			Expect(rep.Metrics["angPositionErr_mag_maxAbs"]).To(BeNumerically("<", 1e-6))
			Expect(r.AngularPositionError().Count()).To(Equal(rep.Steps))
		})

		It("reports the captured initial values", func() {
			Expect(rep.Energy0).To(BeNumerically("~", 5.001041625, 1e-6))
			Expect(rep.AngMomentum0).To(BeNumerically("~", 0.5*0.80833333, 1e-6))
			Expect(math.Abs(rep.SimTime - 10)).To(BeNumerically("<=", 1.1*0.001))
			Expect(rep.TimeRatio).To(BeNumerically(">", 0))
		})

		It("emits every result through the recorder", func() {
			Expect(rec.props).To(Equal(map[string]string{
				"engine":     "rk4",
				"modelCount": "1",
				"collision":  "false",
				"isComplex":  "false",
			}))
			for _, name := range []string{"dt", "wallTime", "simTime", "timeRatio", "energy0", "angMomentum0"} {
				Expect(rec.scalars).To(HaveKey(name))
			}
			Expect(rec.scalars["dt"]).To(Equal(0.001))
			Expect(rec.stats).To(Equal(rep.Metrics))
			Expect(rep.MetricNames()).To(ContainElements(
				"energyError_maxAbs",
				"angMomentumErr_maxAbs",
				"linPositionErr_maxAbs",
				"linVelocityErr_maxAbs",
				"angPositionErr_x_maxAbs",
			))
		})
	})

	Describe("complex regime", func() {
		It("conserves angular momentum and energy while tumbling", func() {
			cfg := complexConfig("rk4")
			cfg.Statistics = "maxAbs,rms"
			rep, err := harness.Run(loadWorld("rk4"), cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(rep.Metrics["angMomentumErr_maxAbs"]).To(BeNumerically("<", 1e-2))
			Expect(rep.Metrics["energyError_maxAbs"]).To(BeNumerically("<", 1e-6))
			Expect(rep.Metrics["energyError_rms"]).To(BeNumerically("<=", rep.Metrics["energyError_maxAbs"]))
			Expect(rep.Metrics["linPositionErr_maxAbs"]).To(BeNumerically("<", 1e-6))
			Expect(rep.Metrics).NotTo(HaveKey("angPositionErr_x_maxAbs"))
			Expect(rep.Energy0).To(BeNumerically("~", 368.54641249999997, 1e-3))
		})

		It("shows more drift with explicit Euler than with RK4", func() {
			cfg := complexConfig("euler")
			cfg.Duration = 2
			euler, err := harness.Run(loadWorld("euler"), cfg)
			Expect(err).NotTo(HaveOccurred())

			cfg.Engine = "rk4"
			rk4, err := harness.Run(loadWorld("rk4"), cfg)
			Expect(err).NotTo(HaveOccurred())

			Expect(euler.Metrics["energyError_maxAbs"]).To(BeNumerically(">", rk4.Metrics["energyError_maxAbs"]))
		})
	})

	Describe("body count", func() {
		DescribeTable("does not change the statistics of the measured body",
			func(cfg harness.Config) {
				cfg.Duration = 2
				cfg.Statistics = "maxAbs,mean,rms"

				cfg.ModelCount = 1
				single, err := harness.Run(loadWorld(cfg.Engine), cfg)
				Expect(err).NotTo(HaveOccurred())

				for n := 2; n <= 4; n++ {
					cfg.ModelCount = n
					multi, err := harness.Run(loadWorld(cfg.Engine), cfg)
					Expect(err).NotTo(HaveOccurred())
					Expect(multi.MetricNames()).To(Equal(single.MetricNames()))
					for name, v := range single.Metrics {
						Expect(multi.Metrics[name]).To(BeNumerically("~", v, 1e-9), "metric %s with %d bodies", name, n)
					}
				}
			},
			Entry("simple", simpleConfig("rk4")),
			Entry("complex", complexConfig("rk4")),
		)
	})

	Describe("failures while stepping", func() {
		It("aborts when the engine skips steps", func() {
			cfg := simpleConfig("rk4")
			cfg.Duration = 0.5
			r, _ := harness.New(skippingWorld{loadWorld("rk4")}, cfg)
			Expect(r.Initialize()).To(Succeed())
			Expect(r.Execute()).To(Succeed())

			_, err := r.Complete()
			Expect(err).To(MatchError(dynamo.ErrDurationMismatch))
			Expect(r.Phase()).To(Equal(harness.Aborted))
		})

		It("aborts when the engine fails", func() {
			cfg := complexConfig("rk4")
			cfg.Duration = 1
			r, _ := harness.New(failingWorld{World: loadWorld("rk4"), after: 0.25}, cfg)
			Expect(r.Initialize()).To(Succeed())

			err := r.Execute()
			Expect(err).To(MatchError(dynamo.ErrInvalidState))
			var rerr *harness.RunError
			Expect(errors.As(err, &rerr)).To(BeTrue())
			Expect(rerr.Phase).To(Equal(harness.Stepping))
			Expect(rerr.Step).To(BeNumerically(">", 200))
			Expect(r.Phase()).To(Equal(harness.Aborted))
		})
	})

	It("accumulates statistics as it steps", func() {
		cfg := simpleConfig("rk4")
		cfg.Duration = 0.01
		cfg.Statistics = "maxAbs,max"
		r, _ := harness.New(loadWorld("rk4"), cfg)
		Expect(r.Initialize()).To(Succeed())
		Expect(r.EnergyError().Count()).To(Equal(0))
		Expect(r.EnergyError().Value(metrics.MaxAbs)).To(Equal(0.0))

		Expect(r.Execute()).To(Succeed())
		Expect(r.EnergyError().Count()).To(Equal(10))
		Expect(r.LinearVelocityError().Count()).To(Equal(10))
		Expect(r.AngularMomentumError().Mag().Tracks(metrics.Max)).To(BeTrue())
	})
})
