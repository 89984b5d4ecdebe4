package models

import (
	"github.com/mindfuljournal/analyzer/config"
)

// AppState is a struct that holds the state of the application
// Use cmd.NewAppState to create a new instance
type AppState struct {
	Config *config.Config
	// Analyzers are built once at startup and are read-only afterwards
	Analyzers []Analyzer
}
