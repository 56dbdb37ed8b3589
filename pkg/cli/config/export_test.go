package config

import "time"

// NewGeminiForTest creates a Gemini config for testing purposes
func NewGeminiForTest(projectID, location string) *Gemini {
	return &Gemini{
		projectID: projectID,
		location:  location,
	}
}

// NewAuthForTest creates an Auth config for testing purposes
func NewAuthForTest(secret string, lifetime time.Duration, noAuthUID string) *Auth {
	return &Auth{secret: secret, lifetime: lifetime, noAuthUID: noAuthUID}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewStorageForTest creates a Storage config for testing purposes
func NewStorageForTest(backend, baseURL string) *Storage {
	return &Storage{backend: backend, baseURL: baseURL}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, sqlitePath string) *Repository {
	return &Repository{backend: backend, sqlitePath: sqlitePath}
}
