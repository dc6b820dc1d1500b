package evaluation

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
)

// LoadGoldenQueries reads and parses a golden query set from a JSON file.
func LoadGoldenQueries(path string) ([]GoldenQuery, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read golden queries file: %w", err)
	}

	var queries []GoldenQuery
	if err := json.Unmarshal(data, &queries); err != nil {
		return nil, fmt.Errorf("failed to parse golden queries: %w", err)
	}

	return queries, nil
}

// ValidateGoldenQueries checks that all golden queries have required fields and valid values.
func ValidateGoldenQueries(queries []GoldenQuery) error {
	seen := make(map[string]struct{}, len(queries))

	for i, q := range queries {
		if q.ID == "" {
			return fmt.Errorf("query at index %d: missing id", i)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("query at index %d: duplicate id %q", i, q.ID)
		}
		seen[q.ID] = struct{}{}

		if q.Query == "" {
			return fmt.Errorf("query %q: missing query text", q.ID)
		}
		if !q.Difficulty.IsValid() {
			return fmt.Errorf("query %q: invalid difficulty %q (must be easy/medium/hard)", q.ID, q.Difficulty)
		}
		if q.ExpectedRadius < 0 {
			return fmt.Errorf("query %q: negative expected_max_distance", q.ID)
		}
		if q.ExpectedPlan != "" && q.ExpectedInsurer == "" {
			return fmt.Errorf("query %q: expected plan without an expected insurer", q.ID)
		}
		if q.ExpectedCashOnly && q.ExpectedInsurer != "" {
			return fmt.Errorf("query %q: cash-only query cannot expect an insurer", q.ID)
		}
	}

	return nil
}
