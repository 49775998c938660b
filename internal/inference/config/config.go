package config

import "time"

type JSONSchemaConfig struct {
	// Mode controls how structured output is requested from upstream engines.
	// - "none": ignore schema hints (best-effort)
	// - "guided_json": send guided decoding fields to an OpenAI-compatible server (vLLM-style)
	// - "prompt": append a system instruction with the schema text
	// - "auto": guided_json plus the prompt instruction, for servers that ignore one of them
	Mode string `mapstructure:"mode"`

	// MaxPromptBytes caps how much schema JSON is injected into a prompt.
	MaxPromptBytes int `mapstructure:"max_prompt_bytes"`
}

type EngineConfig struct {
	// Type is one of "mock", "oai_http" or "genai".
	Type string `mapstructure:"type"`

	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`

	ChatCompletionsPath string `mapstructure:"chat_completions_path"`

	Timeout       time.Duration `mapstructure:"timeout"`
	StreamTimeout time.Duration `mapstructure:"stream_timeout"`

	JSONSchema JSONSchemaConfig `mapstructure:"json_schema"`
}

type ModelConfig struct {
	ID string `mapstructure:"id"`

	// UpstreamModel overrides the model name sent to the engine. Defaults to ID.
	UpstreamModel string `mapstructure:"upstream_model"`

	Engine EngineConfig `mapstructure:"engine"`
}
