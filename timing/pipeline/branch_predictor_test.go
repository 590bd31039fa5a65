package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/rv32pipe/timing/pipeline"
)

var _ = Describe("BranchPredictor", func() {
	var bp *pipeline.BranchPredictor

	BeforeEach(func() {
		bp = pipeline.NewBranchPredictor()
	})

	It("predicts not-taken for a PC it has never seen", func() {
		pred := bp.Predict(0x1000)
		Expect(pred.Taken).To(BeFalse())
		Expect(pred.TargetKnown).To(BeFalse())
	})

	It("predicts taken after enough taken updates saturate the counter", func() {
		for i := 0; i < 3; i++ {
			bp.Update(0x1000, true, 0x2000)
		}
		pred := bp.Predict(0x1000)
		Expect(pred.Taken).To(BeTrue())
		Expect(pred.TargetKnown).To(BeTrue())
		Expect(pred.Target).To(Equal(uint32(0x2000)))
	})

	It("clamps the saturating counter at the strongly-taken/not-taken bounds", func() {
		for i := 0; i < 10; i++ {
			bp.Update(0x1000, true, 0x2000)
		}
		for i := 0; i < 10; i++ {
			bp.Update(0x1000, false, 0)
		}
		Expect(bp.Predict(0x1000).Taken).To(BeFalse())
	})

	It("takes one taken update to flip a weakly-not-taken default to taken", func() {
		Expect(bp.Predict(0x1000).Taken).To(BeFalse())
		bp.Update(0x1000, true, 0x2000)
		Expect(bp.Predict(0x1000).Taken).To(BeTrue())
	})

	It("tracks prediction accuracy across predict/update pairs", func() {
		bp.Predict(0x1000)
		bp.Update(0x1000, false, 0)
		stats := bp.Stats()
		Expect(stats.Total).To(Equal(uint64(1)))
		Expect(stats.Correct).To(Equal(uint64(1)))
		Expect(stats.Accuracy()).To(Equal(1.0))
	})

	It("resets all state", func() {
		bp.Update(0x1000, true, 0x2000)
		bp.Reset()
		pred := bp.Predict(0x1000)
		Expect(pred.Taken).To(BeFalse())
		Expect(pred.TargetKnown).To(BeFalse())
	})
})
