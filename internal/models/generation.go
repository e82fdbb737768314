package models

import "time"

// GenerationType selects which listing fields are generated.
type GenerationType string

const (
	GenerationTitle       GenerationType = "title"
	GenerationDescription GenerationType = "description"
	GenerationBullet      GenerationType = "bullet"
	GenerationTags        GenerationType = "tags"
	GenerationFull        GenerationType = "full"
)

// generationCosts is the credit price of each generation type.
var generationCosts = map[GenerationType]int64{
	GenerationTitle:       1,
	GenerationDescription: 2,
	GenerationBullet:      1,
	GenerationTags:        1,
	GenerationFull:        5,
}

// Cost returns the credit cost of t and false for unknown types.
func (t GenerationType) Cost() (int64, bool) {
	c, ok := generationCosts[t]
	return c, ok
}

// Valid reports whether t is a known generation type.
func (t GenerationType) Valid() bool {
	_, ok := generationCosts[t]
	return ok
}

// Writing tones
const (
	ToneProfessional = "professional"
	ToneFriendly     = "friendly"
	ToneExpert       = "expert"
)

// GenerationRequest describes the product to write copy for.
type GenerationRequest struct {
	ProductName string         `json:"productName" validate:"required,max=200" example:"무선 블루투스 이어폰"`
	Category    string         `json:"category" validate:"max=50" example:"디지털가전"`
	Brand       string         `json:"brand" validate:"max=100"`
	Price       *int64         `json:"price" validate:"omitempty,gte=0"`
	Keywords    []string       `json:"keywords" validate:"max=20,dive,max=50"`
	Tone        string         `json:"tone" validate:"omitempty,oneof=professional friendly expert"`
	Type        GenerationType `json:"-" validate:"required,oneof=title description bullet tags full"`
}

// GenerationResult is the structured output returned to the caller.
type GenerationResult struct {
	Title        string   `json:"title,omitempty"`
	Alternatives []string `json:"alternatives,omitempty"`
	Description  string   `json:"description,omitempty"`
	BulletSpecs  []string `json:"bulletSpecs,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	CreditsUsed  int64    `json:"creditsUsed"`
}

// GenerationLog records one billed generation.
type GenerationLog struct {
	ID          string         `json:"id" db:"id"`
	UserID      string         `json:"userId" db:"user_id"`
	ProductID   string         `json:"productId,omitempty" db:"product_id"`
	Type        GenerationType `json:"generationType" db:"generation_type"`
	CreditsUsed int64          `json:"creditsUsed" db:"credits_used"`
	CreatedAt   time.Time      `json:"createdAt" db:"created_at"`
}
