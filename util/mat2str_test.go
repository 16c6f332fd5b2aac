package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMat2Str(t *testing.T) {
	assert.Equal(t, "[]", Mat2Str(nil))
	assert.Equal(t, "[(0,1,2)]", Mat2Str([][]float64{{0, 1, 2}}))
	assert.Equal(t, "[(0,1,2.5)(3,4,5)]", Mat2Str([][]float64{{0, 1, 2.5}, {3, 4, 5}}))
	// integers print without a decimal point even when stored as floats
	assert.Equal(t, "[(7,-3)]", Mat2Str([][]float64{{7.0, -3.0}}))
}
