// Package finance computes the monetary breakdown of a bestowal.
package finance

import "fmt"

// Rates layered on top of the original amount: a bestowed gross already
// carries a 10% tithe and a 6% processing fee, so gross = original * 1.16.
const (
	grossFactor    = 1.16
	tithingRate    = 0.10
	processingRate = 0.06
)

// Split is the reconciling breakdown of one bestowal.
// Tithing + ProcessingFee + NetToGrower == Gross within rounding.
type Split struct {
	Gross          float64 `json:"gross"`
	OriginalAmount float64 `json:"original_amount"`
	TithingAmount  float64 `json:"tithing_amount"`
	ProcessingFee  float64 `json:"processing_fee"`
	NetToGrower    float64 `json:"net_amount_to_grower"`
}

// ComputeSplit derives the split for a claim of pocketCount pockets at
// unitPrice each. The gross is always count * price, never caller supplied.
//
// The fee is computed on the gross and the tithe on the back-derived
// original amount. Downstream reconciliation depends on this exact shape;
// computing the tithe on the gross instead would not sum back to the gross.
func ComputeSplit(pocketCount int, unitPrice float64) (Split, error) {
	if pocketCount <= 0 {
		return Split{}, fmt.Errorf("pocket count must be greater than 0, got %d", pocketCount)
	}
	if unitPrice <= 0 {
		return Split{}, fmt.Errorf("unit price must be greater than 0, got %v", unitPrice)
	}

	gross := float64(pocketCount) * unitPrice
	original := gross / grossFactor
	tithing := original * tithingRate
	fee := gross * processingRate

	return Split{
		Gross:          gross,
		OriginalAmount: original,
		TithingAmount:  tithing,
		ProcessingFee:  fee,
		NetToGrower:    gross - tithing - fee,
	}, nil
}
