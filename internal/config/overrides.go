package config

import "fmt"

const flagSource = "command line flag"

// RuntimeOverrides holds configuration values that can be overridden at runtime
// via CLI flags or other means
type RuntimeOverrides struct {
	ActiveModel *string
	MaxTokens   *int
	Temperature *float64
	LogLevel    *string
	LogFile     *string
	ChunkSize   *int
	ShowPartial *bool
}

func (s *ConfigSchema) applyOverrides(overrides *RuntimeOverrides) error {
	if overrides == nil {
		return nil
	}

	if overrides.ActiveModel != nil {
		if _, exists := s.Models[*overrides.ActiveModel]; !exists {
			return fmt.Errorf("model %q not found in configuration", *overrides.ActiveModel)
		}
		s.ActiveModel = *overrides.ActiveModel
		s.trackOverride("activemodel", s.ActiveModel)
	}

	if overrides.MaxTokens != nil || overrides.Temperature != nil {
		activeModel, ok := s.Models[s.ActiveModel]
		if !ok {
			return fmt.Errorf("no active model to override")
		}
		if overrides.MaxTokens != nil {
			activeModel.MaxTokens = *overrides.MaxTokens
			s.trackOverride("models."+s.ActiveModel+".maxtokens", activeModel.MaxTokens)
		}
		if overrides.Temperature != nil {
			activeModel.Temperature = *overrides.Temperature
			s.trackOverride("models."+s.ActiveModel+".temperature", activeModel.Temperature)
		}
		s.Models[s.ActiveModel] = activeModel
	}

	if overrides.LogLevel != nil {
		s.Log.Level = *overrides.LogLevel
		s.trackOverride("log.level", s.Log.Level)
	}
	if overrides.LogFile != nil {
		s.Log.File = *overrides.LogFile
		s.trackOverride("log.file", s.Log.File)
	}
	if overrides.ChunkSize != nil {
		s.Parser.ChunkSize = *overrides.ChunkSize
		s.trackOverride("parser.chunksize", s.Parser.ChunkSize)
	}
	if overrides.ShowPartial != nil {
		s.Parser.ShowPartial = *overrides.ShowPartial
		s.trackOverride("parser.showpartial", s.Parser.ShowPartial)
	}

	return nil
}

func (s *ConfigSchema) trackOverride(key string, value interface{}) {
	if s.sources == nil {
		s.sources = make(map[string][]configSource)
	}
	s.sources[key] = append(s.sources[key], configSource{value: value, source: flagSource})
}
