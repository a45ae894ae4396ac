package config

type Log struct {
	Level string `mapstructure:"level" json:"level,omitempty" jsonschema:"enum=DEBUG,enum=INFO,enum=WARN,enum=ERROR,default=INFO" validate:"omitempty,oneof=DEBUG INFO WARN ERROR"`
	File  string `mapstructure:"file" json:"file,omitempty" jsonschema:"description=Log file path. Logs go to stderr when empty"`
}

type Model struct {
	Provider    string  `mapstructure:"provider" json:"provider" jsonschema:"required,enum=openai,enum=anthropic,enum=googleai" validate:"required,oneof=openai anthropic googleai"`
	Name        string  `mapstructure:"name" json:"name" jsonschema:"required,description=Provider model name" validate:"required"`
	APIKey      string  `mapstructure:"apiKey" json:"apiKey,omitempty" jsonschema:"description=API key. The provider's own environment variable is used when empty"`
	MaxTokens   int     `mapstructure:"maxTokens" json:"maxTokens,omitempty" jsonschema:"minimum=0" validate:"gte=0"`
	Temperature float64 `mapstructure:"temperature" json:"temperature,omitempty" jsonschema:"minimum=0,maximum=2" validate:"gte=0,lte=2"`
}

type Parser struct {
	ChunkSize   int  `mapstructure:"chunkSize" json:"chunkSize,omitempty" jsonschema:"minimum=1,default=16,description=Bytes per chunk when replaying a file" validate:"gte=1"`
	MaxBuffer   int  `mapstructure:"maxBuffer" json:"maxBuffer,omitempty" jsonschema:"minimum=0,description=Largest single command in bytes. 0 disables the limit" validate:"gte=0"`
	ShowPartial bool `mapstructure:"showPartial" json:"showPartial,omitempty" jsonschema:"description=Report the command still being streamed"`
}

type ConfigSchema struct {
	Log         Log              `mapstructure:"log" json:"log,omitempty"`
	Models      map[string]Model `mapstructure:"models" json:"models,omitempty" validate:"dive"`
	ActiveModel string           `mapstructure:"activeModel" json:"activeModel,omitempty" jsonschema:"description=Key into models used by chat"`
	Parser      Parser           `mapstructure:"parser" json:"parser,omitempty"`

	// Internal fields for printing
	sources map[string][]configSource
}

// GetActiveModel returns the model selected by activeModel.
func (s *ConfigSchema) GetActiveModel() (Model, bool) {
	m, ok := s.Models[s.ActiveModel]
	return m, ok
}
