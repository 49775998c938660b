package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Normalize validates model entries in place and fills engine defaults.
func Normalize(models []ModelConfig) error {
	if len(models) == 0 {
		return errors.New("config must define at least one model")
	}
	seen := map[string]bool{}
	for i := range models {
		m := &models[i]
		m.ID = strings.TrimSpace(m.ID)
		if m.ID == "" {
			return errors.New("model id is required")
		}
		if seen[m.ID] {
			return fmt.Errorf("duplicate model id: %s", m.ID)
		}
		seen[m.ID] = true
		if strings.TrimSpace(m.Engine.Type) == "" {
			return fmt.Errorf("model %q missing engine.type", m.ID)
		}
		if strings.TrimSpace(m.UpstreamModel) == "" {
			m.UpstreamModel = m.ID
		}

		m.Engine.Type = strings.ToLower(strings.TrimSpace(m.Engine.Type))
		m.Engine.BaseURL = strings.TrimRight(strings.TrimSpace(m.Engine.BaseURL), "/")
		m.Engine.ChatCompletionsPath = strings.TrimSpace(m.Engine.ChatCompletionsPath)
		m.Engine.APIKey = strings.TrimSpace(m.Engine.APIKey)

		if m.Engine.Timeout < 0 || m.Engine.StreamTimeout < 0 {
			return fmt.Errorf("model %q has a negative engine timeout", m.ID)
		}
		if m.Engine.Timeout == 0 {
			m.Engine.Timeout = 60 * time.Second
		}

		switch m.Engine.Type {
		case "mock":
		case "openai_http", "oai_http":
			m.Engine.Type = "oai_http"
			if m.Engine.BaseURL == "" {
				return fmt.Errorf("model %q (oai_http) missing engine.base_url", m.ID)
			}
			if m.Engine.ChatCompletionsPath == "" {
				m.Engine.ChatCompletionsPath = "/v1/chat/completions"
			}
			if err := normalizeJSONSchema(m.ID, &m.Engine.JSONSchema); err != nil {
				return err
			}
		case "genai", "gemini":
			m.Engine.Type = "genai"
			if m.Engine.APIKey == "" {
				return fmt.Errorf("model %q (genai) missing engine.api_key", m.ID)
			}
		default:
			return fmt.Errorf("unsupported engine type %q for model %q", m.Engine.Type, m.ID)
		}
	}
	return nil
}

func normalizeJSONSchema(id string, js *JSONSchemaConfig) error {
	js.Mode = strings.ToLower(strings.TrimSpace(js.Mode))
	switch js.Mode {
	case "", "auto":
		js.Mode = "auto"
	case "none", "guided_json", "prompt":
	default:
		return fmt.Errorf("model %q invalid engine.json_schema.mode=%q", id, js.Mode)
	}
	if js.MaxPromptBytes < 0 {
		return fmt.Errorf("model %q invalid engine.json_schema.max_prompt_bytes", id)
	}
	if js.MaxPromptBytes == 0 {
		js.MaxPromptBytes = 64 << 10
	}
	return nil
}
