package scoring

import (
	"sort"
	"strings"

	"github.com/taskscout/taskscout/models"
)

// ItemContext is the classifier output for one work item, computed once and
// consumed by every downstream scorer and the subtask generator. It replaces
// scattered per-scorer text scans with a single pass.
type ItemContext struct {
	TitleWordCount int
	BodyLength     int

	// TechKeywords are the matched entries of the technical vocabulary,
	// in vocabulary order.
	TechKeywords []string

	// SizeLabelCount is the number of labels matching the size vocabulary.
	SizeLabelCount int

	// HasCrossReference is true when the body contains a '#' character.
	HasCrossReference bool

	// BlockingLabel is the first label matching the blocking vocabulary,
	// empty when none match.
	BlockingLabel string

	// DependencyPhrase is the first dependency phrase matched in the body,
	// empty when none match.
	DependencyPhrase string

	// RequiredSkills are the inferred skill domains, sorted for stable output.
	RequiredSkills []string

	IsFrontend        bool
	HasAPIIntegration bool
	HasSecurity       bool
	HasDatabase       bool

	IsBugLike      bool
	IsRefactorLike bool
}

// Classify runs the single keyword pass over an item. Deterministic: the same
// item always yields the same context.
func Classify(item models.WorkItem, cfg *KeywordConfig) ItemContext {
	lowerBody := strings.ToLower(item.Body)
	lowerTitle := strings.ToLower(item.Title)
	haystack := lowerTitle + " " + lowerBody + " " + strings.ToLower(strings.Join(item.Labels, " "))

	ctx := ItemContext{
		TitleWordCount:    len(strings.Fields(item.Title)),
		BodyLength:        len(item.Body),
		HasCrossReference: strings.Contains(item.Body, "#"),
	}

	for _, kw := range technicalKeywords {
		if strings.Contains(lowerBody, kw) {
			ctx.TechKeywords = append(ctx.TechKeywords, kw)
		}
	}

	for _, label := range item.Labels {
		lower := strings.ToLower(label)
		for _, size := range sizeLabels {
			if strings.Contains(lower, size) {
				ctx.SizeLabelCount++
				break
			}
		}
		if ctx.BlockingLabel == "" {
			for _, blocking := range blockingLabels {
				if strings.Contains(lower, blocking) {
					ctx.BlockingLabel = label
					break
				}
			}
		}
	}

	for _, re := range dependencyPhrases {
		if match := re.FindString(item.Body); match != "" {
			ctx.DependencyPhrase = match
			break
		}
	}

	for domain, keywords := range cfg.SkillDomains() {
		for _, kw := range keywords {
			if strings.Contains(haystack, kw) {
				ctx.RequiredSkills = append(ctx.RequiredSkills, domain)
				break
			}
		}
	}
	sort.Strings(ctx.RequiredSkills)

	ctx.IsFrontend = containsAny(haystack, frontendSignals)
	ctx.HasAPIIntegration = containsAny(haystack, apiSignals)
	ctx.HasSecurity = containsAny(haystack, securitySignals)
	ctx.HasDatabase = containsAny(haystack, databaseSignals)

	// Bug indicators look at labels and title only; refactor indicators the same.
	labelAndTitle := lowerTitle + " " + strings.ToLower(strings.Join(item.Labels, " "))
	ctx.IsBugLike = containsAny(labelAndTitle, bugIndicators)
	ctx.IsRefactorLike = containsAny(labelAndTitle, refactorIndicators)

	return ctx
}

func containsAny(haystack string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			return true
		}
	}
	return false
}
