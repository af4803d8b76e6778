package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type GrowthStage string

const (
	StageSprout  GrowthStage = "sprout"
	StageYoung   GrowthStage = "young"
	StageGrowing GrowthStage = "growing"
	StageMature  GrowthStage = "mature"
)

// StageForDays maps elapsed growing days to a display stage. Cosmetic only.
func StageForDays(days int) GrowthStage {
	switch {
	case days < 7:
		return StageSprout
	case days < 21:
		return StageYoung
	case days < 45:
		return StageGrowing
	default:
		return StageMature
	}
}

// Pocket is one funding unit within an orchard. (orchard_id, pocket_number)
// is unique, enforced by an index created at startup.
type Pocket struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrchardID    primitive.ObjectID `bson:"orchard_id" json:"orchard_id"`
	PocketNumber int                `bson:"pocket_number" json:"pocket_number"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"` // the bestower
	Amount       float64            `bson:"amount" json:"amount"`
	GrowthStage  GrowthStage        `bson:"growth_stage" json:"growth_stage"`
	DaysGrowing  int                `bson:"days_growing" json:"days_growing"`
	BestowerName string             `bson:"bestower_name" json:"bestower_name"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}
