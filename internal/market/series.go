package market

import "errors"

// SeriesBuffer keeps a rolling window of closing prices. It is filled from
// OHLCV candles when the exchange provides them, or one last price per tick
// when only the ticker is available.
type SeriesBuffer struct {
	values []float64
	size   int
	index  int
	filled bool
}

func NewSeriesBuffer(size int) *SeriesBuffer {
	return &SeriesBuffer{
		values: make([]float64, size),
		size:   size,
	}
}

func (s *SeriesBuffer) Add(value float64) {
	s.values[s.index] = value
	s.index = (s.index + 1) % s.size
	if s.index == 0 {
		s.filled = true
	}
}

// Fill replaces the buffer contents with the given closes, keeping only the
// most recent ones when the slice is longer than the buffer.
func (s *SeriesBuffer) Fill(closes []float64) {
	s.index = 0
	s.filled = false
	if len(closes) > s.size {
		closes = closes[len(closes)-s.size:]
	}
	for _, c := range closes {
		s.Add(c)
	}
}

func (s *SeriesBuffer) Len() int {
	if s.filled {
		return s.size
	}
	return s.index
}

// Values returns the buffered closes oldest-first.
func (s *SeriesBuffer) Values() []float64 {
	length := s.Len()
	result := make([]float64, 0, length)
	if length == 0 {
		return result
	}
	if s.filled {
		result = append(result, s.values[s.index:]...)
	}
	result = append(result, s.values[:s.index]...)
	return result
}

// MA returns the simple moving average over the trailing window.
func (s *SeriesBuffer) MA(window int) (float64, error) {
	if window <= 0 {
		return 0, errors.New("window must be positive")
	}
	values := s.Values()
	if len(values) < window {
		return 0, errors.New("not enough data for moving average")
	}
	start := len(values) - window
	sum := 0.0
	for _, v := range values[start:] {
		sum += v
	}
	return sum / float64(window), nil
}
