package forecast

import "fmt"

// Order is the non-seasonal ARIMA order (p, d, q).
type Order struct {
	P int `json:"p" yaml:"p"` // autoregressive terms
	D int `json:"d" yaml:"d"` // differencing order
	Q int `json:"q" yaml:"q"` // moving-average terms
}

func (o Order) String() string {
	return fmt.Sprintf("(%d,%d,%d)", o.P, o.D, o.Q)
}

// SeasonalOrder is the seasonal ARIMA order (P, D, Q) with period s.
type SeasonalOrder struct {
	P      int `json:"p" yaml:"p"`
	D      int `json:"d" yaml:"d"`
	Q      int `json:"q" yaml:"q"`
	Period int `json:"period" yaml:"period"`
}

func (o SeasonalOrder) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", o.P, o.D, o.Q, o.Period)
}

// span is the number of observations the seasonal terms reach back.
func (o *SeasonalOrder) span() int {
	if o == nil {
		return 0
	}
	return (o.P + o.D + o.Q) * o.Period
}
