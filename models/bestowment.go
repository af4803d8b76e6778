package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BestowmentStatus string

const (
	BestowmentPending    BestowmentStatus = "pending"
	BestowmentProcessing BestowmentStatus = "processing"
	BestowmentCompleted  BestowmentStatus = "completed"
	BestowmentFailed     BestowmentStatus = "failed"
	BestowmentRefunded   BestowmentStatus = "refunded"
)

func (s BestowmentStatus) Valid() bool {
	switch s {
	case BestowmentPending, BestowmentProcessing, BestowmentCompleted,
		BestowmentFailed, BestowmentRefunded:
		return true
	}
	return false
}

type PaymentMethod string

const (
	MethodCard   PaymentMethod = "card"
	MethodPayPal PaymentMethod = "paypal"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case MethodCard, MethodPayPal:
		return true
	}
	return false
}

// Bestowment is the audit record of one funding transaction. Bestower and
// grower identity are snapshotted at creation time so the record reflects
// who transacted, even if the user documents change later. Financial
// fields are immutable after creation.
type Bestowment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BestowerID    primitive.ObjectID `bson:"bestower_id" json:"bestower_id"`
	BestowerName  string             `bson:"bestower_name" json:"bestower_name"`
	BestowerEmail string             `bson:"bestower_email" json:"bestower_email"`
	GrowerID      primitive.ObjectID `bson:"grower_id" json:"grower_id"`
	GrowerName    string             `bson:"grower_name" json:"grower_name"`
	GrowerEmail   string             `bson:"grower_email" json:"grower_email"`
	OrchardID     primitive.ObjectID `bson:"orchard_id" json:"orchard_id"`
	OrchardTitle  string             `bson:"orchard_title" json:"orchard_title"`

	PocketNumbers []int   `bson:"pocket_numbers" json:"pocket_numbers"`
	PocketCount   int     `bson:"pocket_count" json:"pocket_count"`
	PocketPrice   float64 `bson:"individual_pocket_price" json:"individual_pocket_price"`
	TotalAmount   float64 `bson:"total_amount" json:"total_amount"`
	ProcessingFee float64 `bson:"processing_fee" json:"processing_fee"`
	TithingAmount float64 `bson:"tithing_amount" json:"tithing_amount"`
	NetToGrower   float64 `bson:"net_amount_to_grower" json:"net_amount_to_grower"`

	Method   PaymentMethod     `bson:"method" json:"method"`
	Status   BestowmentStatus  `bson:"status" json:"status"`
	Notes    string            `bson:"notes,omitempty" json:"notes,omitempty"`
	Metadata map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`

	CreatedAt   time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updated_at"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}
