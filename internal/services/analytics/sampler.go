package analytics

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"OilPulse/internal/domain/models"
)

const varianceFloor = 1e-18

// samplerParams are the resolved knobs for one Gibbs run on one segment.
type samplerParams struct {
	draws    int
	warmup   int
	chains   int
	seed     int64
	minSeg   int
	model    string
	deadline time.Time // zero means unbounded
}

// chainStats accumulates posterior draws for the switch point and the
// segment means conditional on each switch point value.
type chainStats struct {
	counts []int
	sumMu1 []float64
	sumMu2 []float64
	total  int
}

func newChainStats(n int) *chainStats {
	return &chainStats{
		counts: make([]int, n),
		sumMu1: make([]float64, n),
		sumMu2: make([]float64, n),
	}
}

func (s *chainStats) merge(o *chainStats) {
	for i := range s.counts {
		s.counts[i] += o.counts[i]
		s.sumMu1[i] += o.sumMu1[i]
		s.sumMu2[i] += o.sumMu2[i]
	}
	s.total += o.total
}

// mode returns the index in [lo, hi] with the highest draw count, the
// earliest index winning ties, or -1 when no draws landed in range.
func (s *chainStats) mode(lo, hi int) int {
	mode := -1
	best := 0
	for t := lo; t <= hi; t++ {
		if s.counts[t] > best {
			best = s.counts[t]
			mode = t
		}
	}
	return mode
}

// splitEstimate is the raw single-split output before date mapping.
type splitEstimate struct {
	tau        int
	muBefore   float64
	muAfter    float64
	confidence float64
}

// sampleSplit infers a single switch point on y via Gibbs sampling.
// The switch point tau is a discrete latent uniform over the admissible
// range; the segment means carry wide normal priors centered at the
// sample mean and the variances inverse-gamma priors. Chains run
// concurrently on independent seeded generators and their draws merge
// into one posterior; the point estimate is the posterior mode with
// ties broken by the earliest index.
func sampleSplit(ctx context.Context, y []float64, p samplerParams) (splitEstimate, error) {
	n := len(y)
	if n < 2*p.minSeg {
		return splitEstimate{}, &InsufficientDataError{N: n, Required: 2 * p.minSeg}
	}

	// Prefix sums make every per-sweep segment statistic O(1).
	s := make([]float64, n+1)
	q := make([]float64, n+1)
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return splitEstimate{}, &NumericDegeneracyError{Reason: "non-finite observation"}
		}
		s[i+1] = s[i] + v
		q[i+1] = q[i] + v*v
	}

	ybar := s[n] / float64(n)
	vary := q[n]/float64(n) - ybar*ybar
	if vary < varianceFloor {
		return splitEstimate{}, &NumericDegeneracyError{Reason: "zero variance series"}
	}

	merged := newChainStats(n)
	results := make([]*chainStats, p.chains)
	var wg sync.WaitGroup
	for c := 0; c < p.chains; c++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx] = runChain(ctx, y, s, q, p, idx)
		}(c)
	}
	wg.Wait()
	for _, r := range results {
		merged.merge(r)
	}

	if merged.total == 0 {
		return splitEstimate{}, &NumericDegeneracyError{Reason: "no posterior draws collected"}
	}

	// Posterior mode, earliest index wins ties.
	mode := merged.mode(p.minSeg, n-p.minSeg)
	if mode < 0 {
		return splitEstimate{}, &NumericDegeneracyError{Reason: "empty posterior over switch point"}
	}

	return splitEstimate{
		tau:        mode,
		muBefore:   merged.sumMu1[mode] / float64(merged.counts[mode]),
		muAfter:    merged.sumMu2[mode] / float64(merged.counts[mode]),
		confidence: float64(merged.counts[mode]) / float64(merged.total),
	}, nil
}

// runChain executes one Gibbs chain. Draws collected after warmup feed
// the posterior; if the budget expires first, the current state is
// recorded so the caller still gets the best estimate found so far.
func runChain(ctx context.Context, y, s, q []float64, p samplerParams, chainIdx int) *chainStats {
	n := len(y)
	rng := rand.New(rand.NewSource(p.seed + int64(chainIdx)))
	stats := newChainStats(n)

	ybar := s[n] / float64(n)
	vary := q[n]/float64(n) - ybar*ybar

	// Weakly informative priors centered on the sample statistics.
	m0 := ybar
	v0 := 10 * vary
	a0 := 2.0
	b0 := vary

	tau := clamp(n/2, p.minSeg, n-p.minSeg)
	mu1 := segMean(s, 0, tau)
	mu2 := segMean(s, tau, n)
	sig1 := vary
	sig2 := vary

	logw := make([]float64, n+1)
	sweeps := p.warmup + p.draws

	for sweep := 0; sweep < sweeps; sweep++ {
		if ctx.Err() != nil {
			break
		}
		if !p.deadline.IsZero() && time.Now().After(p.deadline) {
			break
		}

		// Conjugate normal updates for the segment means.
		mu1 = sampleMean(rng, m0, v0, s[tau], float64(tau), sig1)
		mu2 = sampleMean(rng, m0, v0, s[n]-s[tau], float64(n-tau), sig2)

		sse1 := sse(s, q, 0, tau, mu1)
		sse2 := sse(s, q, tau, n, mu2)

		// Inverse-gamma updates: shared variance for the mean-shift
		// model, per-segment for mean_variance.
		if p.model == models.ModelMeanVariance {
			sig1 = sampleVariance(rng, a0, b0, float64(tau), sse1)
			sig2 = sampleVariance(rng, a0, b0, float64(n-tau), sse2)
		} else {
			sig := sampleVariance(rng, a0, b0, float64(n), sse1+sse2)
			sig1, sig2 = sig, sig
		}

		// Categorical update for tau over the admissible range,
		// log-weights stabilized by max subtraction.
		l1 := math.Log(2 * math.Pi * sig1)
		l2 := math.Log(2 * math.Pi * sig2)
		maxw := math.Inf(-1)
		for t := p.minSeg; t <= n-p.minSeg; t++ {
			w := -0.5*float64(t)*l1 - sse(s, q, 0, t, mu1)/(2*sig1) -
				0.5*float64(n-t)*l2 - sse(s, q, t, n, mu2)/(2*sig2)
			logw[t] = w
			if w > maxw {
				maxw = w
			}
		}
		var sum float64
		for t := p.minSeg; t <= n-p.minSeg; t++ {
			logw[t] = math.Exp(logw[t] - maxw)
			sum += logw[t]
		}
		u := rng.Float64() * sum
		tau = n - p.minSeg
		for t := p.minSeg; t <= n-p.minSeg; t++ {
			u -= logw[t]
			if u <= 0 {
				tau = t
				break
			}
		}

		if sweep >= p.warmup {
			stats.counts[tau]++
			stats.sumMu1[tau] += mu1
			stats.sumMu2[tau] += mu2
			stats.total++
		}
	}

	if stats.total == 0 {
		stats.counts[tau]++
		stats.sumMu1[tau] += mu1
		stats.sumMu2[tau] += mu2
		stats.total++
	}
	return stats
}

// sampleMean draws from the conjugate normal posterior of a segment mean.
func sampleMean(rng *rand.Rand, m0, v0, sum, count, sigma2 float64) float64 {
	if sigma2 < varianceFloor {
		sigma2 = varianceFloor
	}
	prec := 1/v0 + count/sigma2
	mean := (m0/v0 + sum/sigma2) / prec
	return mean + rng.NormFloat64()/math.Sqrt(prec)
}

// sampleVariance draws from the conjugate inverse-gamma posterior.
func sampleVariance(rng *rand.Rand, a0, b0, count, sse float64) float64 {
	shape := a0 + count/2
	rate := b0 + sse/2
	g := gammaSample(rng, shape)
	if g < varianceFloor {
		g = varianceFloor
	}
	v := rate / g
	if v < varianceFloor {
		v = varianceFloor
	}
	return v
}

// gammaSample draws Gamma(shape, 1) via Marsaglia-Tsang. Shapes here
// are always >= 1 (a0 = 2 plus half the segment size).
func gammaSample(rng *rand.Rand, shape float64) float64 {
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)
	for {
		x := rng.NormFloat64()
		v := 1.0 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1.0-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1.0-v+math.Log(v)) {
			return d * v
		}
	}
}

// sse computes sum over [from, to) of (y[i]-mu)^2 from prefix sums.
func sse(s, q []float64, from, to int, mu float64) float64 {
	count := float64(to - from)
	sum := s[to] - s[from]
	sq := q[to] - q[from]
	return sq - 2*mu*sum + count*mu*mu
}

func segMean(s []float64, from, to int) float64 {
	return (s[to] - s[from]) / float64(to-from)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
