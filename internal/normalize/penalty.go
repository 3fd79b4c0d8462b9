package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var amountPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// Penalty coerces a monetary amount to a float with at most two decimal
// places. Currency symbols, commas, and trailing text are extraction
// noise and are stripped during coercion rather than rejected. Negative
// amounts and values with no numeric content are rejected.
func Penalty(raw any) (float64, error) {
	var v float64

	switch n := raw.(type) {
	case float64:
		v = n
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("penalty is not numeric: %q", n.String())
		}
		v = f
	case string:
		s := strings.ReplaceAll(n, ",", "")
		s = strings.ReplaceAll(s, "$", "")
		m := amountPattern.FindString(s)
		if m == "" {
			return 0, fmt.Errorf("penalty is not numeric: %q", raw)
		}
		f, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return 0, fmt.Errorf("penalty is not numeric: %q", raw)
		}
		v = f
	default:
		return 0, fmt.Errorf("penalty has unsupported type %T", raw)
	}

	if v < 0 {
		return 0, fmt.Errorf("penalty cannot be negative: %v", v)
	}

	return math.Round(v*100) / 100, nil
}
