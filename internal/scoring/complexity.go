package scoring

import (
	"fmt"
	"strings"
)

// Complexity score bounds (story points).
const (
	MinComplexity = 1
	MaxComplexity = 8
)

// Complexity derives the story-point estimate for an item from its classified
// context. Result is always in [1,8]. Pure: no side effects, no I/O.
func Complexity(ctx ItemContext) int {
	score, _ := ComplexityReasons(ctx)
	return score
}

// ComplexityReasons computes the complexity score along with a human-readable
// explanation of each contribution.
func ComplexityReasons(ctx ItemContext) (int, string) {
	score := 1
	reasons := []string{}

	if ctx.TitleWordCount > 10 {
		score++
		reasons = append(reasons, "long title +1")
	}

	switch {
	case ctx.BodyLength > 1000:
		score += 2
		reasons = append(reasons, ">1000 chars body +2")
	case ctx.BodyLength > 500:
		score++
		reasons = append(reasons, ">500 chars body +1")
	}

	if n := len(ctx.TechKeywords); n > 0 {
		add := n
		if add > 3 {
			add = 3
		}
		score += add
		reasons = append(reasons, fmt.Sprintf("%d technical keywords +%d", n, add))
	}

	if ctx.SizeLabelCount > 0 {
		score += ctx.SizeLabelCount
		reasons = append(reasons, fmt.Sprintf("%d size labels +%d", ctx.SizeLabelCount, ctx.SizeLabelCount))
	}

	if ctx.HasCrossReference {
		score++
		reasons = append(reasons, "cross-references +1")
	}

	if score > MaxComplexity {
		score = MaxComplexity
	}
	if score < MinComplexity {
		score = MinComplexity
	}
	return score, strings.Join(reasons, "; ")
}
