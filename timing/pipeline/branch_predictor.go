package pipeline

// Saturating-counter states for the Pattern History Table.
const (
	CounterStronglyNotTaken uint8 = 0
	CounterWeaklyNotTaken   uint8 = 1
	CounterWeaklyTaken      uint8 = 2
	CounterStronglyTaken    uint8 = 3
)

// BranchPredictorStats tracks prediction accuracy.
type BranchPredictorStats struct {
	Total   uint64
	Correct uint64
}

// Accuracy returns the prediction accuracy as a fraction in [0,1].
func (s BranchPredictorStats) Accuracy() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

// Prediction is the outcome of consulting the predictor at FETCH.
type Prediction struct {
	Taken       bool
	Target      uint32
	TargetKnown bool
}

// BranchPredictor implements a 2-bit saturating-counter PHT plus a BTB,
// both keyed directly by PC. The pipeline holds at most a handful of
// in-flight branches at a time, so there is no aliasing concern a hashed,
// fixed-size table would be solving.
type BranchPredictor struct {
	pht map[uint32]uint8
	btb map[uint32]uint32

	stats BranchPredictorStats
}

// NewBranchPredictor creates a predictor with an empty PHT/BTB. Every PC
// defaults to CounterWeaklyNotTaken (01) on first sight.
func NewBranchPredictor() *BranchPredictor {
	return &BranchPredictor{
		pht: make(map[uint32]uint8),
		btb: make(map[uint32]uint32),
	}
}

func (bp *BranchPredictor) counter(pc uint32) uint8 {
	if c, ok := bp.pht[pc]; ok {
		return c
	}
	return CounterWeaklyNotTaken
}

// Predict returns the taken/not-taken prediction and, if the BTB has seen
// this PC before, its recorded target.
func (bp *BranchPredictor) Predict(pc uint32) Prediction {
	pred := Prediction{Taken: bp.counter(pc) >= CounterWeaklyTaken}
	if target, ok := bp.btb[pc]; ok {
		pred.Target = target
		pred.TargetKnown = true
	}
	bp.stats.Total++
	return pred
}

// Update records the actual outcome of a resolved branch/jump at pc,
// saturating-incrementing or -decrementing the PHT counter and, if taken,
// recording actualTarget in the BTB.
func (bp *BranchPredictor) Update(pc uint32, actualTaken bool, actualTarget uint32) {
	predicted := bp.counter(pc) >= CounterWeaklyTaken
	if predicted == actualTaken {
		bp.stats.Correct++
	}

	c := bp.counter(pc)
	if actualTaken {
		if c < CounterStronglyTaken {
			c++
		}
		bp.btb[pc] = actualTarget
	} else if c > CounterStronglyNotTaken {
		c--
	}
	bp.pht[pc] = c
}

// Stats returns the predictor's aggregate accuracy counters.
func (bp *BranchPredictor) Stats() BranchPredictorStats {
	return bp.stats
}

// Reset clears all predictor state and statistics.
func (bp *BranchPredictor) Reset() {
	bp.pht = make(map[uint32]uint8)
	bp.btb = make(map[uint32]uint32)
	bp.stats = BranchPredictorStats{}
}
