// Package generator turns a product description into SmartStore listing copy
// through a text generation model.
package generator

import (
	"context"
	"errors"

	"github.com/kirin765/naver-smartstore/internal/models"
)

var (
	ErrMalformedOutput = errors.New("malformed generator output")
	ErrEmptyResponse   = errors.New("empty response from generator")
)

// Payload is one prompt ready to send to a model.
type Payload struct {
	Type         models.GenerationType
	Model        string
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
}

// Output is the structured copy returned by a model. Fields not requested by
// the payload type are left empty.
type Output struct {
	Title        string   `json:"title"`
	Alternatives []string `json:"alternatives"`
	Description  string   `json:"description"`
	BulletSpecs  []string `json:"bulletSpecs"`
	Tags         []string `json:"tags"`
}

// Generator produces listing copy for a payload.
type Generator interface {
	Generate(ctx context.Context, p Payload) (*Output, error)
}

// Func adapts a function to Generator.
type Func func(ctx context.Context, p Payload) (*Output, error)

func (f Func) Generate(ctx context.Context, p Payload) (*Output, error) {
	return f(ctx, p)
}

// Result projects the fields genType asks for into the response shape. A
// successful call with some fields left empty is still a result.
func (o *Output) Result(genType models.GenerationType) *models.GenerationResult {
	r := &models.GenerationResult{}
	switch genType {
	case models.GenerationTitle:
		r.Title, r.Alternatives = o.Title, o.Alternatives
	case models.GenerationDescription:
		r.Description = o.Description
	case models.GenerationBullet:
		r.BulletSpecs = o.BulletSpecs
	case models.GenerationTags:
		r.Tags = o.Tags
	case models.GenerationFull:
		r.Title, r.Alternatives = o.Title, o.Alternatives
		r.Description, r.BulletSpecs, r.Tags = o.Description, o.BulletSpecs, o.Tags
	}
	return r
}
