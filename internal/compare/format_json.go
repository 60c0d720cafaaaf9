package compare

import (
	"encoding/json"
)

// JSONFormatter formats comparison results as JSON
type JSONFormatter struct {
	Pretty bool
}

type jsonComparison struct {
	*ComparisonSet
	Cards []string `json:"cards,omitempty"`
}

// Format generates JSON output for comparison results
func (jf *JSONFormatter) Format(cs *ComparisonSet) (string, error) {
	v := jsonComparison{ComparisonSet: cs, Cards: cs.CardLabels()}

	var data []byte
	var err error
	if jf.Pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
