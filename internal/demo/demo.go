// Package demo 收录命令行附带的三个结构化生成示例：影评（Claude）、
// 城市信息（Gemini）与摘要关键词（OpenAI 流式）。
package demo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BaSui01/schemaflow/structured"
)

// 服务商名称，与各 Adapter 的 Name() 一致。
const (
	ProviderClaude = "claude"
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// MovieReview 是影评分析结果。
type MovieReview struct {
	Title  string   `json:"title" jsonschema:"description=The title of the movie being reviewed"`
	Rating int      `json:"rating" jsonschema:"minimum=1,maximum=5,description=Rating out of 5 stars"`
	Pros   []string `json:"pros" jsonschema:"description=List of positive aspects of the movie"`
	Cons   []string `json:"cons" jsonschema:"description=List of negative aspects of the movie"`
}

// CityInfo 是城市信息。Population 缺省时为 nil。
type CityInfo struct {
	CityName    string `json:"city_name" jsonschema:"description=The name of the city"`
	Country     string `json:"country" jsonschema:"description=The country where the city is located"`
	IsCapital   bool   `json:"is_capital" jsonschema:"description=Whether the city is a capital"`
	Population  *int64 `json:"population" jsonschema:"description=Approximate population of the city"`
	Description string `json:"description" jsonschema:"description=Brief description of the city's significance"`
}

// Summary 是摘要与关键词。
type Summary struct {
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
}

// Demo 描述一个示例：目标服务商、结果结构、提示词模板与生成参数。
type Demo struct {
	Name         string
	Provider     string
	Usage        string
	DefaultInput string
	Descriptor   *structured.Descriptor
	Generation   structured.GenerationConfig

	prompt func(input string) string
}

// Prompt 用 input 渲染用户提示词，input 为空时使用 DefaultInput。
func (d Demo) Prompt(input string) string {
	if strings.TrimSpace(input) == "" {
		input = d.DefaultInput
	}
	return d.prompt(input)
}

var catalog = map[string]Demo{
	"review": {
		Name:     "review",
		Provider: ProviderClaude,
		Usage:    "review [text]      analyze a movie review with Claude",
		DefaultInput: "Avatar was a visually stunning movie with groundbreaking special effects.\n" +
			"The world of Pandora was beautiful and immersive. However, the plot was somewhat\n" +
			"predictable and the runtime was quite long. Overall I'd give it 4 out of 5 stars.",
		Descriptor: structured.MustDescriptorFor[MovieReview](),
		Generation: structured.GenerationConfig{
			System:    "Always respond with valid JSON that matches the MovieReview schema.",
			MaxTokens: 1000,
		},
		prompt: func(review string) string {
			return "Analyze this movie review and output a JSON object with the following fields:\n" +
				"- title: the movie title\n" +
				"- rating: rating out of 5\n" +
				"- pros: list of positive points\n" +
				"- cons: list of negative points\n\n" +
				"Review: " + review
		},
	},
	"city": {
		Name:         "city",
		Provider:     ProviderGemini,
		Usage:        "city [subject]     describe a city with Gemini",
		DefaultInput: "the capital of Morocco",
		Descriptor:   structured.MustDescriptorFor[CityInfo](),
		Generation: structured.GenerationConfig{
			MaxTokens:   8192,
			Temperature: 0.1,
			TopP:        0.95,
			TopK:        40,
			JSONHint:    true,
		},
		prompt: func(subject string) string {
			return fmt.Sprintf("Provide information about %s with these fields:\n"+
				"- city_name: name of the city\n"+
				"- country: country name\n"+
				"- is_capital: boolean indicating if it's a capital\n"+
				"- population: approximate population number\n"+
				"- description: brief description of the city's significance\n\n"+
				"Respond with only the JSON object.", subject)
		},
	},
	"summary": {
		Name:         "summary",
		Provider:     ProviderOpenAI,
		Usage:        "summary [topic]    stream a summary with keywords from OpenAI",
		DefaultInput: "the importance of AI in modern technology",
		Descriptor:   structured.MustDescriptorFor[Summary](),
		Generation: structured.GenerationConfig{
			System: "You are an assistant that generates structured summaries.",
		},
		prompt: func(topic string) string {
			return fmt.Sprintf("Summarize %s and provide three key keywords related to it. "+
				"Respond in JSON format with fields 'summary' and 'keywords'.", topic)
		},
	},
}

// Lookup 按名称返回示例。
func Lookup(name string) (Demo, bool) {
	d, ok := catalog[name]
	return d, ok
}

// Names 返回所有示例名，按字母序。
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All 返回所有示例，顺序与 Names 一致。
func All() []Demo {
	out := make([]Demo, 0, len(catalog))
	for _, name := range Names() {
		out = append(out, catalog[name])
	}
	return out
}
