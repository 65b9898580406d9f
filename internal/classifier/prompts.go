package classifier

import (
	"strings"
)

// DefaultClassificationPrompt asks for relevance and category in one round trip.
// Placeholders: {topic}, {keyword}, {categories}.
const DefaultClassificationPrompt = `You are a keyword analyzer. Analyze the keyword and determine BOTH its relevance to the topic AND its category.

Topic: {topic}
Keyword: "{keyword}"

Available Categories:
{categories}

Category Definitions:
- how-to: Step-by-step instructions to showcase or demonstrate the app/topic
- comparison: Reviews, tests, comparisons between options (e.g., "vs", "review", "best")
- walkthrough: Going over the basics or whole app without solving a specific problem (comprehensive overviews, often longer deeper videos)
- informational: General information seeking (e.g., "what is", "definition", "explained")
- transactional: Intent to take action (e.g., "download", "buy", "install")

Task:
1. Determine if the keyword is relevant to the topic (consider direct matches, synonyms, context)
2. If relevant, classify it into the most appropriate category
3. Provide confidence scores (0-100) for both decisions

Respond ONLY with a JSON object in this EXACT format (no other text):
{"relevant": true/false, "relevance_confidence": 0-100, "category": "category-name", "category_confidence": 0-100}

If not relevant, set category to "none" and category_confidence to 0.`

// DefaultRelevancePrompt is the relevance half of the two-call mode.
// Placeholders: {topic}, {keyword}.
const DefaultRelevancePrompt = `You are a keyword relevance analyzer. Your task is to determine if a search keyword is relevant to a specific topic.

Topic: {topic}
Keyword: "{keyword}"

Analyze whether someone searching for this keyword is likely looking for information about the topic mentioned above. Consider:
- Direct matches and synonyms
- Context and intent
- Common variations and related terms

Respond ONLY with a JSON object in this exact format:
{"relevant": true/false, "confidence": 0-100, "reason": "short explanation"}

Do not include any other text before or after the JSON.`

// DefaultCategoryPrompt is the category half of the two-call mode.
// Placeholders: {keyword}, {categories}.
const DefaultCategoryPrompt = `You are a search intent classifier. Analyze the search keyword and classify it into one of the provided categories.

Keyword: "{keyword}"

Available Categories:
{categories}

Category Definitions:
- how-to: Step-by-step instructions to showcase or demonstrate something
- comparison: Reviews, tests, comparisons between options
- walkthrough: Comprehensive overviews without solving specific problems (longer, deeper content)
- informational: General information seeking
- transactional: Intent to take action

Respond ONLY with a JSON object in this exact format:
{"category": "category-name", "confidence": 0-100, "reason": "short explanation"}

Do not include any other text before or after the JSON.`

// DefaultCategories is the built-in intent category set.
var DefaultCategories = []string{
	"how-to",
	"comparison",
	"walkthrough",
	"informational",
	"transactional",
}

// RenderPrompt substitutes {topic}, {keyword} and {categories} in template.
// Doubled braces render as single braces so templates written for
// format-string engines keep working.
func RenderPrompt(template, topic, keyword string, categories []string) string {
	r := strings.NewReplacer(
		"{{", "{",
		"}}", "}",
		"{topic}", topic,
		"{keyword}", keyword,
		"{categories}", FormatCategories(categories),
	)
	return r.Replace(template)
}

// FormatCategories renders categories as a newline-joined bullet list.
func FormatCategories(categories []string) string {
	lines := make([]string, len(categories))
	for i, c := range categories {
		lines[i] = "- " + c
	}
	return strings.Join(lines, "\n")
}
