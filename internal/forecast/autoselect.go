package forecast

import (
	"math"

	"pricecast/internal/stats"
	"pricecast/internal/timeseries"
)

// seasonalDiffThreshold: ACF magnitude at the seasonal lag above which one
// round of seasonal differencing is applied.
const seasonalDiffThreshold = 0.5

// minSearchObs is the floor for the order search. Below this the trivial
// candidates still fit mechanically but the criterion comparison is
// meaningless, so the search refuses outright.
const minSearchObs = 10

// selectOrder runs a stepwise search over the bounded order space,
// minimizing the configured information criterion. Candidate orders that
// fail to fit are skipped; if every candidate fails the search itself
// reports a ConvergenceError. The search is deterministic: ties on the
// criterion break toward the lower total order.
func (e *Engine) selectOrder(series *timeseries.Series, period int) (Order, *SeasonalOrder, error) {
	if n := series.Len(); n < minSearchObs {
		return Order{}, nil, &InsufficientDataError{Needed: minSearchObs, Got: n}
	}

	if e.cfg.Seasonal && period == 0 {
		period = defaultSeasonalPeriod
		e.log.Info().Int("period", period).Msg("using default seasonal period")
	}

	d := e.selectDifferencing(series)

	sd := 0
	if e.cfg.Seasonal && period > 0 && e.cfg.MaxSeasonalD > 0 {
		if acf := stats.ACF(series.Values, period); len(acf) > period && math.Abs(acf[period]) > seasonalDiffThreshold {
			sd = 1
		}
	}

	type spec struct {
		p, q, sp, sq int
	}
	totalOrder := func(s spec) int { return s.p + s.q + s.sp + s.sq }

	seasonalFor := func(s spec) *SeasonalOrder {
		if !e.cfg.Seasonal || period == 0 {
			return nil
		}
		if s.sp == 0 && sd == 0 && s.sq == 0 {
			return nil
		}
		return &SeasonalOrder{P: s.sp, D: sd, Q: s.sq, Period: period}
	}

	criterion := func(m *FittedModel) float64 {
		if e.cfg.Criterion == "bic" {
			return m.BIC
		}
		return m.AIC
	}

	maxSP, maxSQ := 0, 0
	if e.cfg.Seasonal && period > 0 {
		maxSP, maxSQ = e.cfg.MaxSeasonalP, e.cfg.MaxSeasonalQ
	}

	inBounds := func(s spec) bool {
		return s.p >= 0 && s.p <= e.cfg.MaxP &&
			s.q >= 0 && s.q <= e.cfg.MaxQ &&
			s.sp >= 0 && s.sp <= maxSP &&
			s.sq >= 0 && s.sq <= maxSQ
	}

	var (
		bestSpec  spec
		bestCrit  = math.Inf(1)
		found     bool
		evaluated int
	)

	try := func(s spec) {
		if !inBounds(s) {
			return
		}
		m, err := newFittedModel(series, Order{P: s.p, D: d, Q: s.q}, seasonalFor(s), nil)
		if err != nil {
			e.log.Debug().
				Int("p", s.p).Int("q", s.q).Int("sp", s.sp).Int("sq", s.sq).
				Err(err).Msg("candidate order skipped")
			return
		}
		evaluated++
		c := criterion(m)
		if c < bestCrit || (c == bestCrit && found && totalOrder(s) < totalOrder(bestSpec)) {
			bestCrit = c
			bestSpec = s
			found = true
		}
	}

	start := []spec{
		{0, 0, 0, 0},
		{1, 0, 1, 0},
		{0, 1, 0, 1},
		{1, 1, 1, 1},
		{2, 2, 1, 1},
	}
	for _, s := range start {
		try(s)
	}

	// Stepwise refinement around the current best.
	for improved := found; improved; {
		improved = false
		prev := bestSpec
		prevCrit := bestCrit
		neighbors := []spec{
			{prev.p + 1, prev.q, prev.sp, prev.sq},
			{prev.p - 1, prev.q, prev.sp, prev.sq},
			{prev.p, prev.q + 1, prev.sp, prev.sq},
			{prev.p, prev.q - 1, prev.sp, prev.sq},
			{prev.p, prev.q, prev.sp + 1, prev.sq},
			{prev.p, prev.q, prev.sp - 1, prev.sq},
			{prev.p, prev.q, prev.sp, prev.sq + 1},
			{prev.p, prev.q, prev.sp, prev.sq - 1},
		}
		for _, s := range neighbors {
			try(s)
		}
		if bestCrit < prevCrit {
			improved = true
		}
	}

	if !found {
		return Order{}, nil, &ConvergenceError{Reason: "no candidate order could be fitted"}
	}

	e.log.Info().
		Int("evaluated", evaluated).
		Int("p", bestSpec.p).Int("d", d).Int("q", bestSpec.q).
		Msg("order search complete")

	return Order{P: bestSpec.p, D: d, Q: bestSpec.q}, seasonalFor(bestSpec), nil
}

// selectDifferencing raises d until the series tests stationary or MaxD is
// reached. Advisory stationarity only; a failing test never aborts the fit.
func (e *Engine) selectDifferencing(series *timeseries.Series) int {
	values := series.Values
	for d := 0; d < e.cfg.MaxD; d++ {
		result := stats.ADF(values, 0)
		if result != nil && result.IsStationary {
			return d
		}
		values = diffValues(values, 1)
		if len(values) < 10 {
			return d
		}
	}
	return e.cfg.MaxD
}
