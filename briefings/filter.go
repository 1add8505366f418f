package briefings

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/tessera-insights/retrieval/core"
)

// FilterByTopic returns the briefings matching a topic query.
// An empty query returns all records in their original order. Otherwise a
// record is included if any of its topic tags contains the query as a
// case-insensitive substring.
func FilterByTopic(records []core.Briefing, topic string) []core.Briefing {
	if topic == "" {
		return records
	}

	needle := strings.ToLower(topic)
	matched := []core.Briefing{}
	for _, record := range records {
		for _, tag := range record.Topics {
			if strings.Contains(strings.ToLower(tag), needle) {
				matched = append(matched, record)
				break
			}
		}
	}
	return matched
}

// LoadFile reads a briefing set from a JSON file holding an array of
// briefing objects.
func LoadFile(path string) ([]core.Briefing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading briefings file: %w", err)
	}

	var records []core.Briefing
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing briefings file %s: %w", path, err)
	}
	return records, nil
}
