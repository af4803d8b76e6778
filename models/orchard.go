package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrchardStatus string

const (
	OrchardActive    OrchardStatus = "active"
	OrchardCompleted OrchardStatus = "completed"
	OrchardPaused    OrchardStatus = "paused"
	OrchardCancelled OrchardStatus = "cancelled"
)

func (s OrchardStatus) Valid() bool {
	switch s {
	case OrchardActive, OrchardCompleted, OrchardPaused, OrchardCancelled:
		return true
	}
	return false
}

// GiftCategory is the closed set of orchard categories. Unrecognized
// values are rejected at the boundary, never defaulted.
type GiftCategory string

const (
	CategoryArt         GiftCategory = "The Gift of Art"
	CategoryAccessories GiftCategory = "The Gift of Accessories"
	CategoryAdventure   GiftCategory = "The Gift of Adventure Packages"
	CategoryAppliances  GiftCategory = "The Gift of Appliances"
	CategoryCustom      GiftCategory = "The Gift of Custom Made"
	CategoryDIY         GiftCategory = "The Gift of DIY"
	CategoryElectronics GiftCategory = "The Gift of Electronics"
	CategoryEnergy      GiftCategory = "The Gift of Energy"
	CategoryFreewill    GiftCategory = "The Gift of Free-will Gifting"
	CategoryInnovation  GiftCategory = "The Gift of Innovation"
	CategoryKitchenware GiftCategory = "The Gift of Kitchenware"
	CategoryMusic       GiftCategory = "The Gift of Music"
	CategoryNourishment GiftCategory = "The Gift of Nourishment"
	CategoryPayAsYouGo  GiftCategory = "The Gift of Pay as You Go"
	CategoryProperty    GiftCategory = "The Gift of Property"
	CategoryServices    GiftCategory = "The Gift of Services"
	CategoryTechnology  GiftCategory = "The Gift of Technology"
	CategoryTithing     GiftCategory = "The Gift of Tithing"
	CategoryTools       GiftCategory = "The Gift of Tools"
	CategoryVehicles    GiftCategory = "The Gift of Vehicles"
	CategoryWellness    GiftCategory = "The Gift of Wellness"
)

var giftCategories = map[GiftCategory]struct{}{
	CategoryArt: {}, CategoryAccessories: {}, CategoryAdventure: {},
	CategoryAppliances: {}, CategoryCustom: {}, CategoryDIY: {},
	CategoryElectronics: {}, CategoryEnergy: {}, CategoryFreewill: {},
	CategoryInnovation: {}, CategoryKitchenware: {}, CategoryMusic: {},
	CategoryNourishment: {}, CategoryPayAsYouGo: {}, CategoryProperty: {},
	CategoryServices: {}, CategoryTechnology: {}, CategoryTithing: {},
	CategoryTools: {}, CategoryVehicles: {}, CategoryWellness: {},
}

func (c GiftCategory) Valid() bool {
	_, ok := giftCategories[c]
	return ok
}

type Orchard struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"user_id" json:"user_id"` // the grower
	Title           string             `bson:"title" json:"title"`
	Description     string             `bson:"description" json:"description"`
	Category        GiftCategory       `bson:"category" json:"category"`
	SeedValue       float64            `bson:"seed_value" json:"seed_value"`
	PocketPrice     float64            `bson:"pocket_price" json:"pocket_price"`
	TotalPockets    int                `bson:"total_pockets" json:"total_pockets"`
	FilledPockets   int                `bson:"filled_pockets" json:"filled_pockets"`
	Location        string             `bson:"location,omitempty" json:"location,omitempty"`
	Timeline        string             `bson:"timeline,omitempty" json:"timeline,omitempty"`
	WhyNeeded       string             `bson:"why_needed" json:"why_needed"`
	CommunityImpact string             `bson:"community_impact" json:"community_impact"`
	Features        []string           `bson:"features" json:"features"`
	Images          []string           `bson:"images" json:"images"`
	VideoURL        string             `bson:"video_url,omitempty" json:"video_url,omitempty"`
	Status          OrchardStatus      `bson:"status" json:"status"`
	Verified        bool               `bson:"verified" json:"verified"`
	Views           int                `bson:"views" json:"views"`
	Supporters      int                `bson:"supporters" json:"supporters"`
	CompletionRate  float64            `bson:"completion_rate" json:"completion_rate"`
	PayoutProcessed bool               `bson:"payout_processed" json:"payout_processed"`
	CreatedAt       time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updated_at"`
}

// ComputeCompletionRate derives the rate from the pocket counters,
// guarding the zero-pocket degenerate case. Stored completion_rate may
// be stale between allocations so reads recompute instead of trusting it.
func (o *Orchard) ComputeCompletionRate() float64 {
	if o.TotalPockets == 0 {
		return 0.0
	}
	return float64(o.FilledPockets) / float64(o.TotalPockets) * 100
}
