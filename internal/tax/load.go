package tax

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadBrackets reads a bracket table from a JSON file and validates it.
func LoadBrackets(path string) (Brackets, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tax brackets: %w", err)
	}

	var brackets Brackets
	if err := json.Unmarshal(content, &brackets); err != nil {
		return nil, ConfigurationError{Index: -1, Reason: fmt.Sprintf("%s is not a valid bracket table: %s", path, err)}
	}

	if err := brackets.Validate(); err != nil {
		return nil, err
	}

	return brackets, nil
}
