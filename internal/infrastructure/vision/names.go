package vision

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// classNamesFile формат YAML-файла с таблицей классов модели.
type classNamesFile struct {
	Names []string `yaml:"names"`
}

// LoadClassNames читает таблицу имён классов: индекс в списке = classId.
// Лишние кавычки вокруг имён срезаются.
func LoadClassNames(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigFile, err)
	}

	var f classNamesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigFile, err)
	}
	if len(f.Names) == 0 {
		return nil, fmt.Errorf("%w: %s has no names", ErrConfigFile, path)
	}

	names := make([]string, len(f.Names))
	for i, n := range f.Names {
		names[i] = strings.Trim(strings.TrimSpace(n), `"'`)
	}
	return names, nil
}
