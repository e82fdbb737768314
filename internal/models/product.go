package models

import "time"

// ProductStatus represents product publication state
const (
	ProductStatusDraft     = "draft"
	ProductStatusPublished = "published"
)

// Product is a SmartStore listing owned by a single user
type Product struct {
	ID                    string    `json:"id" db:"id"`
	UserID                string    `json:"userId" db:"user_id"`
	ProductName           string    `json:"productName" db:"product_name"`
	Category              string    `json:"category,omitempty" db:"category"`
	Brand                 string    `json:"brand,omitempty" db:"brand"`
	Price                 *int64    `json:"price,omitempty" db:"price"`
	Keywords              []string  `json:"keywords" db:"keywords"`
	Status                string    `json:"status" db:"status"`
	GeneratedTitle        string    `json:"generatedTitle,omitempty" db:"generated_title"`
	GeneratedAlternatives []string  `json:"generatedAlternatives,omitempty" db:"generated_alternatives"`
	GeneratedDescription  string    `json:"generatedDescription,omitempty" db:"generated_description"`
	GeneratedBulletSpecs  []string  `json:"generatedBulletSpecs,omitempty" db:"generated_bullet_specs"`
	GeneratedTags         []string  `json:"generatedTags,omitempty" db:"generated_tags"`
	CreatedAt             time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt             time.Time `json:"updatedAt" db:"updated_at"`
}

// ProductInput is the payload for creating a product
type ProductInput struct {
	ProductName string   `json:"productName" validate:"required,max=200" example:"무선 블루투스 이어폰"`
	Category    string   `json:"category" validate:"max=50" example:"디지털가전"`
	Brand       string   `json:"brand" validate:"max=100" example:"사운드코어"`
	Price       *int64   `json:"price" validate:"omitempty,gte=0" example:"39000"`
	Keywords    []string `json:"keywords" validate:"max=20,dive,max=50"`
}

// ProductUpdate is a partial update; nil fields are left untouched
type ProductUpdate struct {
	ProductName           *string   `json:"productName" validate:"omitempty,min=1,max=200"`
	Category              *string   `json:"category" validate:"omitempty,max=50"`
	Brand                 *string   `json:"brand" validate:"omitempty,max=100"`
	Price                 *int64    `json:"price" validate:"omitempty,gte=0"`
	Keywords              *[]string `json:"keywords" validate:"omitempty,max=20,dive,max=50"`
	Status                *string   `json:"status" validate:"omitempty,oneof=draft published"`
	GeneratedTitle        *string   `json:"generatedTitle"`
	GeneratedAlternatives *[]string `json:"generatedAlternatives"`
	GeneratedDescription  *string   `json:"generatedDescription"`
	GeneratedBulletSpecs  *[]string `json:"generatedBulletSpecs"`
	GeneratedTags         *[]string `json:"generatedTags"`
}

// Apply copies the non-nil fields of u onto p.
func (u *ProductUpdate) Apply(p *Product) {
	if u.ProductName != nil {
		p.ProductName = *u.ProductName
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Brand != nil {
		p.Brand = *u.Brand
	}
	if u.Price != nil {
		price := *u.Price
		p.Price = &price
	}
	if u.Keywords != nil {
		p.Keywords = append([]string(nil), (*u.Keywords)...)
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.GeneratedTitle != nil {
		p.GeneratedTitle = *u.GeneratedTitle
	}
	if u.GeneratedAlternatives != nil {
		p.GeneratedAlternatives = append([]string(nil), (*u.GeneratedAlternatives)...)
	}
	if u.GeneratedDescription != nil {
		p.GeneratedDescription = *u.GeneratedDescription
	}
	if u.GeneratedBulletSpecs != nil {
		p.GeneratedBulletSpecs = append([]string(nil), (*u.GeneratedBulletSpecs)...)
	}
	if u.GeneratedTags != nil {
		p.GeneratedTags = append([]string(nil), (*u.GeneratedTags)...)
	}
}

// ApplyGeneration overwrites the generated fields produced by a generation of
// type t. Fields belonging to other generation types are kept.
func (p *Product) ApplyGeneration(t GenerationType, r *GenerationResult) {
	switch t {
	case GenerationTitle:
		p.GeneratedTitle = r.Title
		p.GeneratedAlternatives = r.Alternatives
	case GenerationDescription:
		p.GeneratedDescription = r.Description
	case GenerationBullet:
		p.GeneratedBulletSpecs = r.BulletSpecs
	case GenerationTags:
		p.GeneratedTags = r.Tags
	case GenerationFull:
		p.GeneratedTitle = r.Title
		p.GeneratedAlternatives = r.Alternatives
		p.GeneratedDescription = r.Description
		p.GeneratedBulletSpecs = r.BulletSpecs
		p.GeneratedTags = r.Tags
	}
}
