package interval_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olcf/polimor/internal/interval"
)

func TestParse_SimpleForms(t *testing.T) {
	d, err := interval.Parse("1d2h3m4s")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour+2*time.Hour+3*time.Minute+4*time.Second, d)

	d, err = interval.Parse("2h4s")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour+4*time.Second, d)

	d, err = interval.Parse("4s")
	require.NoError(t, err)
	assert.Equal(t, 4*time.Second, d)
}

func TestParse_90SecondsAloneIsValid(t *testing.T) {
	d, err := interval.Parse("90s")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, d)
}

func TestParse_90SecondsWithMinutesIsRejected(t *testing.T) {
	_, err := interval.Parse("1m90s")
	require.Error(t, err)
}

func TestParse_HoursOverflowWhenDaysPresent(t *testing.T) {
	_, err := interval.Parse("1d25h")
	require.Error(t, err)
}

func TestParse_MalformedSpecIsRejected(t *testing.T) {
	_, err := interval.Parse("2x")
	require.Error(t, err)
}

func TestParse_Empty(t *testing.T) {
	d, err := interval.Parse("")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), d)
}
