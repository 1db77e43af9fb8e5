// Package analysis derives summaries from simulated trajectories.
//
// The package includes tools for characterizing a run or a scan:
//
//   - [Summarize]: per-species initial, final, min, max and mean
//   - [Drift]: worst deviation of a weighted conserved quantity
//   - [FirstNonFinite]: the sample where a trajectory diverged
//   - [DominantPeriod]: oscillation period from the power spectrum
//   - [PhasePortraitFromResult]: species-vs-species trajectory
//   - [SweepPeaks]: local maxima per scan value
//
// # Divergence
//
// Integration never stops on non-finite values; callers check:
//
//	if i, ok := analysis.FirstNonFinite(result); ok {
//	    // trajectory diverged at result.Time[i]
//	}
package analysis
