package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirin765/naver-smartstore/internal/models"
)

// Static writes deterministic copy from the product facts in the prompt. It
// needs no network and is meant for local runs and demos.
type Static struct{}

func (Static) Generate(ctx context.Context, p Payload) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, keywords := factsFromPrompt(p.UserPrompt)
	if name == "" {
		return nil, fmt.Errorf("%w: prompt has no product name", ErrMalformedOutput)
	}

	out := &Output{}
	if p.Type == models.GenerationTitle || p.Type == models.GenerationFull {
		out.Title = "✨ " + name
		out.Alternatives = []string{name + " 특가", name + " 베스트", "인기 " + name}
	}
	if p.Type == models.GenerationDescription || p.Type == models.GenerationFull {
		out.Description = fmt.Sprintf("<p>%s을(를) 소개합니다.</p><ul><li>믿을 수 있는 품질</li><li>빠른 배송</li></ul>", name)
	}
	if p.Type == models.GenerationBullet || p.Type == models.GenerationFull {
		out.BulletSpecs = []string{
			"✅ " + name + " 정품",
			"🚚 빠른 배송",
			"💯 꼼꼼한 품질 검수",
			"🎁 선물용으로도 좋아요",
			"📞 친절한 고객 응대",
		}
	}
	if p.Type == models.GenerationTags || p.Type == models.GenerationFull {
		out.Tags = append([]string{name}, keywords...)
	}
	return out, nil
}

func factsFromPrompt(prompt string) (name string, keywords []string) {
	for _, line := range strings.Split(prompt, "\n") {
		switch {
		case strings.HasPrefix(line, "상품명: "):
			name = strings.TrimSpace(strings.TrimPrefix(line, "상품명: "))
		case strings.HasPrefix(line, "핵심 키워드: "):
			for _, k := range strings.Split(strings.TrimPrefix(line, "핵심 키워드: "), ",") {
				if k = strings.TrimSpace(k); k != "" {
					keywords = append(keywords, k)
				}
			}
		}
	}
	return name, keywords
}
