package generator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kirin765/naver-smartstore/internal/models"
)

const systemPrompt = "You are an expert product listing copywriter for Naver SmartStore. Output ONLY valid JSON."

// Settings chooses models and sampling for generated payloads.
type Settings struct {
	Model       string
	FullModel   string
	Temperature float64
}

var toneInstructions = map[string]string{
	models.ToneProfessional: "전문적이고 신뢰감 있는 어조로 작성하세요.",
	models.ToneFriendly:     "친근하고 편안한 어조로, 고객에게 말을 건네듯 작성하세요.",
	models.ToneExpert:       "해당 분야 전문가가 설명하듯 구체적인 근거와 함께 작성하세요.",
}

type promptTemplate struct {
	task   string
	rules  []string
	format string
}

var templates = map[models.GenerationType]promptTemplate{
	models.GenerationTitle: {
		task: "Generate compelling, SEO-optimized product titles for Korean e-commerce.",
		rules: []string{
			"Include relevant keywords naturally",
			"Add emoji strategically (1-2 max)",
			"Keep under 50 characters",
			"Focus on key selling points",
			"Include brand name when provided",
		},
		format: `{"title": "generated title", "alternatives": ["alt1", "alt2", "alt3"]}`,
	},
	models.GenerationDescription: {
		task: "Write a persuasive product detail description for Korean e-commerce.",
		rules: []string{
			"Use HTML with <p> and <ul><li> tags only",
			"Write in natural Korean with short paragraphs",
			"Focus on benefits, not just features",
			"Include SEO keywords naturally",
		},
		format: `{"description": "<p>...</p><ul><li>...</li></ul>"}`,
	},
	models.GenerationBullet: {
		task: "Write the key selling points of the product as bullet specs.",
		rules: []string{
			"Exactly 5 points",
			"Each point starts with one emoji",
			"Each point is one short Korean sentence",
		},
		format: `{"bulletSpecs": ["point 1", "point 2", "point 3", "point 4", "point 5"]}`,
	},
	models.GenerationTags: {
		task: "Suggest Naver SmartStore search tags for the product.",
		rules: []string{
			"5 to 10 tags in Korean",
			"No '#' prefix and no duplicates",
			"Mix broad category terms with specific long-tail terms",
		},
		format: `{"tags": ["tag1", "tag2", "tag3", "tag4", "tag5"]}`,
	},
	models.GenerationFull: {
		task: "Generate ALL of the following for this product: a TITLE (under 50 chars, keywords, 1 emoji), " +
			"a DESCRIPTION (HTML with <p> and <ul><li>), 5 BULLET SPECS each starting with an emoji, " +
			"and 5-10 SEARCH TAGS in Korean.",
		rules: []string{
			"Write in natural Korean",
			"Include SEO keywords naturally",
			"Focus on benefits not just features",
			"Make it persuasive for Naver SmartStore shoppers",
		},
		format: `{"title": "generated title", "alternatives": ["alt1", "alt2"], "description": "<p>...</p><ul><li>...</li></ul>", ` +
			`"bulletSpecs": ["point 1", "point 2", "point 3", "point 4", "point 5"], "tags": ["tag1", "tag2", "tag3", "tag4", "tag5"]}`,
	},
}

// BuildPayload renders the prompt for req. The full listing uses the larger
// model; every other type uses the default one.
func BuildPayload(req *models.GenerationRequest, s Settings) (Payload, error) {
	tmpl, ok := templates[req.Type]
	if !ok {
		return Payload{}, fmt.Errorf("no prompt template for generation type %q", req.Type)
	}
	tone := req.Tone
	if tone == "" {
		tone = models.ToneProfessional
	}

	var b strings.Builder
	b.WriteString(tmpl.task)
	b.WriteString("\n\nRules:\n")
	for i, rule := range tmpl.rules {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rule)
	}
	fmt.Fprintf(&b, "%d. %s\n", len(tmpl.rules)+1, toneInstructions[tone])
	b.WriteString("\nOutput JSON format:\n")
	b.WriteString(tmpl.format)
	b.WriteString("\n\n")
	b.WriteString(productFacts(req))

	model := s.Model
	if req.Type == models.GenerationFull && s.FullModel != "" {
		model = s.FullModel
	}
	return Payload{
		Type:         req.Type,
		Model:        model,
		SystemPrompt: systemPrompt,
		UserPrompt:   b.String(),
		Temperature:  s.Temperature,
	}, nil
}

func productFacts(req *models.GenerationRequest) string {
	lines := []string{"상품명: " + req.ProductName}
	if req.Category != "" {
		lines = append(lines, "카테고리: "+req.Category)
	}
	if req.Brand != "" {
		lines = append(lines, "브랜드: "+req.Brand)
	}
	if req.Price != nil && *req.Price > 0 {
		lines = append(lines, "가격: "+strconv.FormatInt(*req.Price, 10)+"원")
	}
	if len(req.Keywords) > 0 {
		lines = append(lines, "핵심 키워드: "+strings.Join(req.Keywords, ", "))
	}
	return strings.Join(lines, "\n")
}
