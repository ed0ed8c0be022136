package ports

// Prompter asks the user for input.
//
//go:generate go run go.uber.org/mock/mockgen -source=prompter.go -destination=mocks/mock_prompter.go -package=mocks
type Prompter interface {
	Prompt(label string) (string, error)
	// PromptSecret reads a value without echoing it.
	PromptSecret(label string) (string, error)
}
