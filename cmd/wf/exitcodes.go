package main

// Exit codes used by every wf command.
const (
	ExitSuccess       = 0 // Success
	ExitError         = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError   = 2 // Configuration error (missing repository, invalid config)
	ExitDataError     = 3 // Data error (malformed input, Ollama not available)
	ExitNotFound      = 4 // Pattern id not found
	ExitModelNotFound = 5 // Embedding model not found
)
