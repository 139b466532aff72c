package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llir2itrs/internal/errors"
)

func TestDefaultValidates(t *testing.T) {
	assert.Nil(t, Default().Validate())
}

func TestExactDivisionConflictsWithBoundedIntegers(t *testing.T) {
	o := Default()
	o.ExactDivision = true
	o.BoundedIntegers = true
	err := o.Validate()
	require.NotNil(t, err)
	assert.Equal(t, errors.ConfigConflict, err.Kind)
}

func TestUnsignedEncodingRequiresBoundedIntegers(t *testing.T) {
	o := Default()
	o.UnsignedEncoding = true
	err := o.Validate()
	require.NotNil(t, err)
	assert.Equal(t, errors.ConfigConflict, err.Kind)
}

func TestBitwiseConditionsRequiresBoundedIntegers(t *testing.T) {
	o := Default()
	o.BitwiseConditions = true
	err := o.Validate()
	require.NotNil(t, err)
}

func TestUniformComplexityTuplesRequiresComplexityTuples(t *testing.T) {
	o := Default()
	o.UniformComplexityTuples = true
	err := o.Validate()
	require.NotNil(t, err)
}

func TestBoundsHelpers(t *testing.T) {
	o := Default()
	o.BoundedIntegers = true
	assert.True(t, o.SignedBounds())
	assert.False(t, o.UnsignedBounds())

	o.UnsignedEncoding = true
	assert.False(t, o.SignedBounds())
	assert.True(t, o.UnsignedBounds())
}
