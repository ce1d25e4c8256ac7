package loader

import (
	"bytes"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// decodeYAML reads one catalog file. Unknown keys are an error.
func decodeYAML(path string) (catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return catalog{}, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cat catalog
	if err := dec.Decode(&cat); err != nil && !errors.Is(err, io.EOF) {
		return catalog{}, err
	}
	return cat, nil
}
