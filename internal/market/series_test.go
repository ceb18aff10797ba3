package market

import "testing"

func TestSeriesBufferMA(t *testing.T) {
	buffer := NewSeriesBuffer(5)
	values := []float64{1, 2, 3, 4, 5}
	for _, v := range values {
		buffer.Add(v)
	}

	ma, err := buffer.MA(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := (3.0 + 4.0 + 5.0) / 3.0
	if ma != expected {
		t.Fatalf("expected MA %.2f, got %.2f", expected, ma)
	}
}

func TestSeriesBufferMAInsufficientData(t *testing.T) {
	buffer := NewSeriesBuffer(5)
	buffer.Add(1)

	if _, err := buffer.MA(3); err == nil {
		t.Fatalf("expected error for insufficient data")
	}
}

func TestSeriesBufferFillKeepsMostRecent(t *testing.T) {
	buffer := NewSeriesBuffer(3)
	buffer.Fill([]float64{1, 2, 3, 4, 5})

	values := buffer.Values()
	if len(values) != 3 {
		t.Fatalf("expected 3 values, got %d", len(values))
	}
	if values[0] != 3 || values[2] != 5 {
		t.Fatalf("expected [3 4 5], got %v", values)
	}
}
