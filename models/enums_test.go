package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrchardStatusMembership(t *testing.T) {
	for _, s := range []OrchardStatus{OrchardActive, OrchardCompleted, OrchardPaused, OrchardCancelled} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, OrchardStatus("archived").Valid())
	assert.False(t, OrchardStatus("").Valid())
	assert.False(t, OrchardStatus("Active").Valid(), "membership is case sensitive")
}

func TestGiftCategoryMembership(t *testing.T) {
	assert.Len(t, giftCategories, 21)
	assert.True(t, CategoryTechnology.Valid())
	assert.True(t, CategoryFreewill.Valid())
	assert.False(t, GiftCategory("The Gift of Gadgets").Valid())
	assert.False(t, GiftCategory("technology").Valid())
}

func TestPaymentMethodMembership(t *testing.T) {
	assert.True(t, MethodCard.Valid())
	assert.True(t, MethodPayPal.Valid())
	assert.False(t, PaymentMethod("mpesa").Valid())
	assert.False(t, PaymentMethod("").Valid())
}

func TestBestowmentStatusMembership(t *testing.T) {
	assert.True(t, BestowmentPending.Valid())
	assert.True(t, BestowmentRefunded.Valid())
	assert.False(t, BestowmentStatus("reversed").Valid())
}

func TestComputeCompletionRate(t *testing.T) {
	o := Orchard{TotalPockets: 100, FilledPockets: 3}
	assert.InDelta(t, 3.0, o.ComputeCompletionRate(), 1e-9)

	o = Orchard{TotalPockets: 0, FilledPockets: 0}
	assert.Equal(t, 0.0, o.ComputeCompletionRate(), "zero pockets must not divide by zero")

	o = Orchard{TotalPockets: 3, FilledPockets: 3}
	assert.InDelta(t, 100.0, o.ComputeCompletionRate(), 1e-9)
}

func TestStageForDays(t *testing.T) {
	assert.Equal(t, StageSprout, StageForDays(0))
	assert.Equal(t, StageYoung, StageForDays(7))
	assert.Equal(t, StageGrowing, StageForDays(21))
	assert.Equal(t, StageMature, StageForDays(45))
	assert.Equal(t, StageMature, StageForDays(400))
}
