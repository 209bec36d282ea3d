// Package output provides JSON output formatting and error handling.
package output

// Exit codes for the CLI process boundary.
const (
	ExitOK            = 0 // Success
	ExitUsage         = 1 // Invalid arguments or flags
	ExitMissingConfig = 2 // Required config section/key absent
	ExitAuth          = 3 // Authentication failed
	ExitCorrupted     = 4 // Provider response missing its status field
	ExitProvider      = 5 // Provider reported a non-ok status
	ExitNetwork       = 6 // Connection/DNS/timeout error
	ExitAPI           = 7 // Other API error
)

// Error codes for the JSON envelope.
const (
	CodeUsage         = "usage"
	CodeMissingConfig = "missing_config"
	CodeAuth          = "auth_failed"
	CodeCorrupted     = "corrupted_response"
	CodeProvider      = "provider_error"
	CodeNetwork       = "network"
	CodeAPI           = "api_error"
)

// ExitCodeFor returns the exit code for a given error code.
func ExitCodeFor(code string) int {
	switch code {
	case CodeUsage:
		return ExitUsage
	case CodeMissingConfig:
		return ExitMissingConfig
	case CodeAuth:
		return ExitAuth
	case CodeCorrupted:
		return ExitCorrupted
	case CodeProvider:
		return ExitProvider
	case CodeNetwork:
		return ExitNetwork
	case CodeAPI:
		return ExitAPI
	default:
		return ExitAPI
	}
}
