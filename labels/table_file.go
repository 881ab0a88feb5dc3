package labels

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// NewTableFromJSONFile reads a remap table from a JSON object whose keys are
// simulator class ids and whose values are dataset class ids.
func NewTableFromJSONFile(jsonPath string) (Table, error) {
	//nolint:gosec
	jsonFile, err := os.Open(jsonPath)
	if err != nil {
		return nil, errors.Wrap(err, "error opening JSON file")
	}
	defer utils.UncheckedErrorFunc(jsonFile.Close)
	byteValue, err := io.ReadAll(jsonFile)
	if err != nil {
		return nil, errors.Wrap(err, "error reading JSON data")
	}
	table := Table{}
	if err := json.Unmarshal(byteValue, &table); err != nil {
		return nil, errors.Wrap(err, "error parsing JSON string")
	}
	return table, nil
}
