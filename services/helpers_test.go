package services

import "bytes"

// bytesReader wraps a byte slice in a bytes.Reader for use with excelize.OpenReader.
func bytesReader(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}

// testRateBook returns the reference tables most calculation tests share:
// a two-tier schedule and a three-ordinal duplicate curve.
func testRateBook() *RateBook {
	return &RateBook{
		Scale: []FeeScaleRow{
			{ConstructionCost: 0, PrimeConsultantFee: 10, FractionMechanical: 50, FractionPlumbing: 30, FractionElectrical: 40, FractionStructural: 20},
			{ConstructionCost: 1_000_000, PrimeConsultantFee: 8, FractionMechanical: 45, FractionPlumbing: 28, FractionElectrical: 38, FractionStructural: 18},
		},
		DuplicateRates: []DuplicateRateRow{
			{Ordinal: 1, Rate: 1.0},
			{Ordinal: 2, Rate: 0.9},
			{Ordinal: 3, Rate: 0.8},
		},
	}
}

func floatPtr(v float64) *float64 {
	return &v
}
