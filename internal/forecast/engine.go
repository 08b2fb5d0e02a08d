// Package forecast implements the (S)ARIMA forecasting engine: automatic
// order selection, point-and-interval forecasting, residual diagnostics and
// walk-forward backtesting over electricity-price series.
package forecast

import (
	"math"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"pricecast/internal/logging"
	"pricecast/internal/stats"
	"pricecast/internal/timeseries"
)

// Candidate seasonal periods checked by DetectSeasonality, in priority
// order: daily cycle for hourly data, weekly, monthly, yearly for weekly
// data, yearly for daily data.
var seasonalCandidates = []int{24, 7, 12, 52, 365}

// seasonalityThreshold is the ACF magnitude above which a candidate lag is
// treated as a seasonal period.
const seasonalityThreshold = 0.3

// defaultSeasonalPeriod is assumed for hourly data when seasonality is
// requested but no period was configured or detected.
const defaultSeasonalPeriod = 24

// Config is the engine configuration surface. Zero bounds fall back to the
// defaults in DefaultConfig.
type Config struct {
	Seasonal       bool    `yaml:"seasonal" json:"seasonal"`
	SeasonalPeriod int     `yaml:"seasonal_period" json:"seasonal_period"` // 0 = auto-detect
	AutoSelect     bool    `yaml:"auto_select" json:"auto_select"`
	MaxP           int     `yaml:"max_p" json:"max_p"`
	MaxQ           int     `yaml:"max_q" json:"max_q"`
	MaxD           int     `yaml:"max_d" json:"max_d"`
	MaxSeasonalP   int     `yaml:"max_seasonal_p" json:"max_seasonal_p"`
	MaxSeasonalQ   int     `yaml:"max_seasonal_q" json:"max_seasonal_q"`
	MaxSeasonalD   int     `yaml:"max_seasonal_d" json:"max_seasonal_d"`
	Criterion      string  `yaml:"criterion" json:"criterion"` // "aic" or "bic"
	Alpha          float64 `yaml:"alpha" json:"alpha"`         // significance level
}

// DefaultConfig returns the defaults used when fields are left zero.
func DefaultConfig() Config {
	return Config{
		Seasonal:     true,
		AutoSelect:   true,
		MaxP:         5,
		MaxQ:         5,
		MaxD:         2,
		MaxSeasonalP: 2,
		MaxSeasonalQ: 2,
		MaxSeasonalD: 1,
		Criterion:    "aic",
		Alpha:        0.05,
	}
}

// Engine wraps a single mutable FittedModel slot. It is not safe for
// concurrent use: fit and forecast calls on the same Engine must be
// serialized externally (the HTTP layer creates one Engine per request).
type Engine struct {
	cfg   Config
	model *FittedModel
	log   zerolog.Logger
}

// New creates an engine. Zero-valued bounds, criterion and alpha in cfg are
// replaced with the DefaultConfig values.
func New(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.MaxP == 0 {
		cfg.MaxP = def.MaxP
	}
	if cfg.MaxQ == 0 {
		cfg.MaxQ = def.MaxQ
	}
	if cfg.MaxD == 0 {
		cfg.MaxD = def.MaxD
	}
	if cfg.MaxSeasonalP == 0 {
		cfg.MaxSeasonalP = def.MaxSeasonalP
	}
	if cfg.MaxSeasonalQ == 0 {
		cfg.MaxSeasonalQ = def.MaxSeasonalQ
	}
	if cfg.MaxSeasonalD == 0 {
		cfg.MaxSeasonalD = def.MaxSeasonalD
	}
	if cfg.Criterion == "" {
		cfg.Criterion = def.Criterion
	}
	if cfg.Alpha == 0 {
		cfg.Alpha = def.Alpha
	}
	return &Engine{
		cfg: cfg,
		log: logging.Component("forecast"),
	}
}

// Model returns the current fitted model, or nil before the first fit.
func (e *Engine) Model() *FittedModel {
	return e.model
}

// CheckStationarity runs an augmented Dickey-Fuller test. Advisory only: a
// nil result means the series was too short for the test, never an error.
func (e *Engine) CheckStationarity(series *timeseries.Series) *stats.ADFResult {
	if series == nil || series.Len() == 0 {
		return nil
	}
	result := stats.ADF(series.Values, 0)
	if result == nil {
		e.log.Warn().Int("len", series.Len()).Msg("series too short for stationarity test")
	}
	return result
}

// DetectSeasonality scans the ACF up to maxLag for the fixed candidate
// periods and returns the first one whose autocorrelation magnitude exceeds
// the threshold, or 0 when none qualifies. A series shorter than 2*maxLag
// yields 0 with a warning rather than an error. maxLag <= 0 defaults to 48.
func (e *Engine) DetectSeasonality(series *timeseries.Series, maxLag int) int {
	if maxLag <= 0 {
		maxLag = 2 * defaultSeasonalPeriod
	}
	if series == nil || series.Len() < 2*maxLag {
		e.log.Warn().Msg("insufficient data for seasonality detection")
		return 0
	}

	acf := stats.ACF(series.Values, maxLag)
	if acf == nil {
		return 0
	}

	for _, period := range seasonalCandidates {
		if period > maxLag || period >= series.Len()/2 {
			continue
		}
		if math.Abs(acf[period]) > seasonalityThreshold {
			e.log.Info().Int("period", period).Msg("detected seasonal period")
			return period
		}
	}
	return 0
}

// FitOptions are the optional inputs to Fit. A nil Order triggers automatic
// selection when the engine was configured with AutoSelect, and the default
// (1,1,1) order otherwise. Exog rows must match the series length.
type FitOptions struct {
	Order    *Order
	Seasonal *SeasonalOrder
	Exog     [][]float64
}

// Fit estimates a model against the full series and replaces any previously
// fitted model held by the engine.
func (e *Engine) Fit(series *timeseries.Series, opts FitOptions) (*FittedModel, error) {
	if series == nil || series.Len() == 0 {
		return nil, &InsufficientDataError{Needed: 1, Got: 0}
	}

	if st := e.CheckStationarity(series); st != nil && !st.IsStationary {
		e.log.Warn().
			Float64("p_value", st.PValue).
			Msg("series is not stationary; differencing will absorb it")
	}

	period := e.cfg.SeasonalPeriod
	if e.cfg.Seasonal && period == 0 {
		period = e.DetectSeasonality(series, 2*defaultSeasonalPeriod)
	}

	var order Order
	var seasonal *SeasonalOrder

	switch {
	case opts.Order != nil:
		order = *opts.Order
		seasonal = opts.Seasonal
	case e.cfg.AutoSelect:
		var err error
		order, seasonal, err = e.selectOrder(series, period)
		if err != nil {
			return nil, err
		}
	default:
		order = Order{P: 1, D: 1, Q: 1}
		seasonal = opts.Seasonal
	}

	if !e.cfg.Seasonal {
		seasonal = nil
	}

	e.log.Info().
		Stringer("order", order).
		Msg("fitting model")

	model, err := newFittedModel(series, order, seasonal, opts.Exog)
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Float64("aic", model.AIC).
		Float64("bic", model.BIC).
		Msg("model fitted")

	e.model = model
	return model, nil
}

// ForecastOptions are the optional inputs to Forecast. Confidence 0 uses
// 1-alpha from the engine configuration. Exog must have one row per step
// when the model was fit with exogenous regressors.
type ForecastOptions struct {
	Confidence float64
	Exog       [][]float64
}

// Result is a point forecast with symmetric interval bounds. Timestamps
// continues the training index at its inferred frequency and is nil when no
// frequency could be inferred; Index is always populated with the positional
// continuation of the training series.
type Result struct {
	Points     []float64   `json:"points"`
	Lower      []float64   `json:"lower"`
	Upper      []float64   `json:"upper"`
	Confidence float64     `json:"confidence"`
	Timestamps []time.Time `json:"timestamps,omitempty"`
	Index      []int       `json:"index"`
}

// Forecast produces steps-ahead point forecasts with prediction intervals
// from the most recent fit.
func (e *Engine) Forecast(steps int, opts ForecastOptions) (*Result, error) {
	if e.model == nil {
		return nil, ErrNotFitted
	}

	confidence := opts.Confidence
	if confidence == 0 {
		confidence = 1 - e.cfg.Alpha
	}

	points, lower, upper, err := e.model.predict(steps, confidence, opts.Exog)
	if err != nil {
		return nil, err
	}

	trainLen := e.model.train.Len()
	index := make([]int, steps)
	for i := range index {
		index[i] = trainLen + i
	}

	return &Result{
		Points:     points,
		Lower:      lower,
		Upper:      upper,
		Confidence: confidence,
		Timestamps: e.model.train.FutureTimestamps(steps),
		Index:      index,
	}, nil
}

// Diagnostics summarizes the residuals of the most recent fit: information
// criteria, residual moments, ACF/PACF to 20 lags and a per-lag Ljung-Box
// whiteness test over 10 lags. The whiteness verdict is informational, not a
// pass/fail gate.
type Diagnostics struct {
	Order        Order                 `json:"order"`
	Seasonal     *SeasonalOrder        `json:"seasonal,omitempty"`
	AIC          float64               `json:"aic"`
	BIC          float64               `json:"bic"`
	ResidualMean float64               `json:"residual_mean"`
	ResidualStd  float64               `json:"residual_std"`
	ResidualACF  []float64             `json:"residual_acf"`
	ResidualPACF []float64             `json:"residual_pacf"`
	LjungBox     *stats.LjungBoxResult `json:"ljung_box"`
	WhiteNoise   bool                  `json:"white_noise"`
}

// Diagnostics returns residual diagnostics for the most recent fit.
func (e *Engine) Diagnostics() (*Diagnostics, error) {
	if e.model == nil {
		return nil, ErrNotFitted
	}

	resid := e.model.residuals
	lb := stats.LjungBox(resid, 10)

	return &Diagnostics{
		Order:        e.model.Order,
		Seasonal:     e.model.Seasonal,
		AIC:          e.model.AIC,
		BIC:          e.model.BIC,
		ResidualMean: stat.Mean(resid, nil),
		ResidualStd:  stat.StdDev(resid, nil),
		ResidualACF:  stats.ACF(resid, 20),
		ResidualPACF: stats.PACF(resid, 20),
		LjungBox:     lb,
		WhiteNoise:   lb.IsWhiteNoise(e.cfg.Alpha),
	}, nil
}
