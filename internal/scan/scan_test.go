package scan_test

import (
	"bytes"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/biosim/internal/dynamo"
	"github.com/san-kum/biosim/internal/models"
	"github.com/san-kum/biosim/internal/sbml"
	"github.com/san-kum/biosim/internal/scan"
	"github.com/san-kum/biosim/internal/sim"
)

var _ = Describe("Scan", func() {
	var (
		model *sbml.Model
		cfg   dynamo.Config
	)

	BeforeEach(func() {
		var err error
		model, err = sbml.ParseString(models.MustSource(models.LotkaVolterra))
		Expect(err).NotTo(HaveOccurred())
		cfg = dynamo.Config{TimeEnd: 10.0, TimeStep: 0.1, Method: "rk4"}
	})

	It("returns one result per value in input order", func() {
		values := []float64{0.05, 0.1, 0.15, 0.2}

		results, err := scan.Scan(model, "predation_rate", values, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(4))

		for i, r := range results {
			Expect(r.ParameterValue).To(Equal(values[i]))
			Expect(r.Results.Time).To(HaveLen(101))
			Expect(r.Results.Values).To(HaveLen(len(r.Results.Time) * r.Results.NumSpecies))
			Expect(r.Results.Time[0]).To(Equal(0.0))
		}
	})

	It("keeps duplicates and unsorted values", func() {
		values := []float64{0.2, 0.05, 0.2}

		results, err := scan.Scan(model, "predation_rate", values, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		Expect(results[0].ParameterValue).To(Equal(0.2))
		Expect(results[1].ParameterValue).To(Equal(0.05))
		Expect(results[0].Results.Values).To(Equal(results[2].Results.Values))
	})

	It("matches an independent simulation of the overridden model", func() {
		results, err := scan.Scan(model, "predation_rate", []float64{0.15}, cfg)
		Expect(err).NotTo(HaveOccurred())

		variant, err := model.WithParameter("predation_rate", 0.15)
		Expect(err).NotTo(HaveOccurred())
		direct, err := sim.Simulate(variant, cfg)
		Expect(err).NotTo(HaveOccurred())

		Expect(results[0].Results.Values).To(Equal(direct.Values))
	})

	It("produces different trajectories for different values", func() {
		results, err := scan.Scan(model, "predation_rate", []float64{0.05, 0.2}, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(results[0].Results.Final()).NotTo(Equal(results[1].Results.Final()))
	})

	It("leaves the base model untouched", func() {
		_, err := scan.Scan(model, "predation_rate", []float64{0.5}, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(model.ParameterValues()["predation_rate"]).To(Equal(0.1))
	})

	It("gives the same answer regardless of worker count", func() {
		values := scan.Range(0.05, 0.2, 8)

		sequential, err := scan.Scan(model, "predation_rate", values, cfg)
		Expect(err).NotTo(HaveOccurred())
		parallel, err := scan.Scan(model, "predation_rate", values, cfg, scan.WithWorkers(4))
		Expect(err).NotTo(HaveOccurred())

		Expect(parallel).To(HaveLen(len(sequential)))
		for i := range sequential {
			Expect(parallel[i].ParameterValue).To(Equal(sequential[i].ParameterValue))
			Expect(parallel[i].Results.Values).To(Equal(sequential[i].Results.Values))
		}
	})

	It("returns an empty scan for no values", func() {
		results, err := scan.Scan(model, "predation_rate", nil, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(BeEmpty())
	})

	Context("with an unknown parameter", func() {
		It("fails before any integration work", func() {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

			results, err := scan.Scan(model, "hunting_skill", []float64{1, 2}, cfg, scan.WithLogger(logger))
			Expect(err).To(MatchError(dynamo.ErrUnknownParameter))
			Expect(results).To(BeNil())
			Expect(buf.String()).NotTo(ContainSubstring("running simulation"))
		})
	})

	Context("with an invalid config", func() {
		It("rejects an unknown method up front", func() {
			cfg.Method = "adams"
			_, err := scan.Scan(model, "predation_rate", []float64{0.1}, cfg)
			Expect(err).To(MatchError(dynamo.ErrUnsupportedMethod))
		})

		It("rejects a step count beyond the limit", func() {
			cfg.TimeEnd, cfg.TimeStep = 1e20, 1
			_, err := scan.Scan(model, "predation_rate", []float64{0.1, 0.2}, cfg, scan.WithWorkers(2))
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		})

		It("rejects a missing end time", func() {
			cfg.TimeEnd = 0
			_, err := scan.Scan(model, "predation_rate", []float64{0.1}, cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		})
	})
})

var _ = Describe("Range", func() {
	It("spaces values evenly and hits both ends", func() {
		Expect(scan.Range(0, 1, 5)).To(Equal([]float64{0, 0.25, 0.5, 0.75, 1}))
	})

	It("handles degenerate counts", func() {
		Expect(scan.Range(0, 1, 0)).To(BeNil())
		Expect(scan.Range(3, 9, 1)).To(Equal([]float64{3}))
	})
})
