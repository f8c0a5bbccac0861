package config

// NewLLMForTest creates an LLM config for testing purposes
func NewLLMForTest(provider, embeddingProvider, geminiProject, openaiAPIKey, claudeAPIKey string) *LLM {
	return &LLM{
		provider:          provider,
		embeddingProvider: embeddingProvider,
		geminiProject:     geminiProject,
		geminiLocation:    "us-central1",
		openaiAPIKey:      openaiAPIKey,
		claudeAPIKey:      claudeAPIKey,
		jsonMode:          true,
	}
}

// NewIndexForTest creates an Index config for testing purposes
func NewIndexForTest(backend, projectID string) *Index {
	return &Index{
		backend:   backend,
		projectID: projectID,
	}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{
		level:  level,
		format: format,
		output: output,
	}
}

// NewSentryForTest creates a Sentry config for testing purposes
func NewSentryForTest(dsn, env string) *Sentry {
	return &Sentry{dsn: dsn, env: env}
}

// NewPipelineForTest creates a Pipeline config pointing at path
func NewPipelineForTest(path string) *Pipeline {
	return &Pipeline{path: path}
}
