package util

import (
	"fmt"
	"strconv"
	"strings"
)

// Mat2Str encodes a list of numeric tuples in the bracketed literal syntax
// the flow solver consumes: [(a,b,c)(d,e,f)].
// Integers print without a decimal point, everything else with %g.
func Mat2Str(rows [][]float64) string {
	var sb strings.Builder
	sb.WriteString("[")
	for _, row := range rows {
		sb.WriteString("(")
		for i, v := range row {
			if i > 0 {
				sb.WriteString(",")
			}
			if v == float64(int64(v)) {
				sb.WriteString(strconv.FormatInt(int64(v), 10))
			} else {
				sb.WriteString(fmt.Sprintf("%g", v))
			}
		}
		sb.WriteString(")")
	}
	sb.WriteString("]")
	return sb.String()
}
