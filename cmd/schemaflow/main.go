// =============================================================================
// SchemaFlow 命令行入口
// =============================================================================
// 运行内置的结构化生成示例，输出经校验的 JSON 记录
//
// 使用方法:
//
//	schemaflow review [text]                 # Claude 影评分析
//	schemaflow city [subject]                # Gemini 城市信息
//	schemaflow summary [topic]               # OpenAI 流式摘要
//	schemaflow all                           # 并发运行全部示例
//	schemaflow schema <demo>                 # 打印示例的 JSON Schema
//	schemaflow version                       # 显示版本信息
// =============================================================================

package main

import (
	"fmt"
	"os"
)

// =============================================================================
// 📦 版本信息（构建时注入）
// =============================================================================

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// =============================================================================
// 🎯 主函数
// =============================================================================

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var code int
	switch cmd := os.Args[1]; cmd {
	case "review", "city", "summary":
		code = runDemo(cmd, os.Args[2:])
	case "all":
		code = runAll(os.Args[2:])
	case "schema":
		code = runSchema(os.Args[2:])
	case "version":
		printVersion()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		code = 1
	}
	os.Exit(code)
}

// =============================================================================
// 📋 版本和帮助
// =============================================================================

func printVersion() {
	fmt.Printf("SchemaFlow %s\n", Version)
	fmt.Printf("  Build Time: %s\n", BuildTime)
	fmt.Printf("  Git Commit: %s\n", GitCommit)
}

func printUsage() {
	fmt.Println(`SchemaFlow - schema-validated structured output from LLM providers

Usage:
  schemaflow <command> [options] [input]

Commands:
  review    Analyze a movie review with Claude
  city      Describe a city with Gemini
  summary   Stream a summary with keywords from OpenAI
  all       Run every demo concurrently with its default input
  schema    Print the JSON Schema of a demo (review, city, summary)
  version   Show version information
  help      Show this help message

Options:
  --config <path>        Path to configuration file (YAML)
  --metrics-addr <addr>  Expose Prometheus metrics on addr while running
  --retries <n>          Connection retries per request (-1 keeps config)

Environment:
  CLAUDE_API_KEY or ANTHROPIC_API_KEY, GEMINI_API_KEY, OPENAI_API_KEY
  SCHEMAFLOW_*  overrides any config key, e.g. SCHEMAFLOW_LOG_LEVEL=debug

Examples:
  schemaflow review "Heat was tense and brilliantly shot, if a bit long."
  schemaflow city "the largest city in Japan"
  schemaflow all --metrics-addr :9091
  schemaflow schema city`)
}
