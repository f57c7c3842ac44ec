package weather

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = `LOCATION,Test,,,,,0,0,0,0
DESIGN CONDITIONS,0
TYPICAL/EXTREME PERIODS,0
GROUND TEMPERATURES,0
HOLIDAYS/DAYLIGHT SAVINGS,No,0,0,0
COMMENTS 1,"quoted, with comma"
COMMENTS 2,
DATA PERIODS,1,1,Data,Sunday, 1/ 1,12/31
`

func row(year, hour int, temp, ghi string) string {
	fields := []string{
		strconv.Itoa(year), "6", "1", strconv.Itoa(hour), "60", "flags",
		temp, "10", "50", "101325", "0", "0", "300", ghi, "0", "0",
	}
	return strings.Join(fields, ",")
}

func TestReadEPW_Fixture(t *testing.T) {
	samples, err := LoadEPW("testdata/sample.epw")
	require.NoError(t, err)
	require.Len(t, samples, 48)

	start := time.Date(1999, time.January, 1, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, start, samples[0].Time)
	assert.Equal(t, 13.1, samples[0].OutdoorTempC)
	assert.Equal(t, 0.0, samples[0].GHI)
	assert.Equal(t, 700.0, samples[11].GHI)

	// the second day comes from a different source year but stays contiguous
	assert.Equal(t, start.Add(47*time.Hour), samples[47].Time)
	for i := 1; i < len(samples); i++ {
		assert.Equal(t, time.Hour, samples[i].Time.Sub(samples[i-1].Time))
	}
}

func TestReadEPW_ParsesColumns(t *testing.T) {
	in := header +
		row(2021, 1, "28.5", "0") + "\n" +
		row(2021, 2, " -3.25 ", "415") + "\n" +
		"\n"
	samples, err := ReadEPW(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, samples, 2)

	assert.Equal(t, time.Date(2021, 1, 1, 1, 0, 0, 0, time.UTC), samples[0].Time)
	assert.Equal(t, 28.5, samples[0].OutdoorTempC)
	assert.Equal(t, -3.25, samples[1].OutdoorTempC)
	assert.Equal(t, 415.0, samples[1].GHI)
	assert.Equal(t, time.Date(2021, 1, 1, 2, 0, 0, 0, time.UTC), samples[1].Time)
}

func TestReadEPW_Errors(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		line  int
		field string
	}{
		{
			name:  "bad temperature",
			in:    header + row(2021, 1, "warm", "0") + "\n",
			line:  9,
			field: "dry_bulb",
		},
		{
			name:  "bad irradiance",
			in:    header + row(2021, 1, "1", "0") + "\n" + row(2021, 2, "1", "n/a") + "\n",
			line:  10,
			field: "global_horizontal_radiation",
		},
		{
			name:  "bad year",
			in:    header + strings.Replace(row(2021, 1, "1", "0"), "2021", "yr", 1) + "\n",
			line:  9,
			field: "year",
		},
		{
			name:  "nan temperature",
			in:    header + row(2021, 1, "NaN", "0") + "\n",
			line:  9,
			field: "dry_bulb",
		},
		{
			name:  "infinite irradiance",
			in:    header + row(2021, 1, "30", "Inf") + "\n",
			line:  9,
			field: "global_horizontal_radiation",
		},
		{
			name:  "signed infinite temperature",
			in:    header + row(2021, 1, "-Inf", "0") + "\n",
			line:  9,
			field: "dry_bulb",
		},
		{
			name: "short row",
			in:   header + "2021,1,1,1,60\n",
			line: 9,
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadEPW(strings.NewReader(tc.in))
			var pe *ParseError
			require.True(t, errors.As(err, &pe), "got %v", err)
			assert.Equal(t, tc.line, pe.Line)
			assert.Equal(t, tc.field, pe.Field)
		})
	}
}

func TestReadEPW_TruncatedHeader(t *testing.T) {
	_, err := ReadEPW(strings.NewReader("LOCATION,x\nDESIGN CONDITIONS,0\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated header")
}

func TestReadEPW_NoData(t *testing.T) {
	_, err := ReadEPW(strings.NewReader(header))
	assert.ErrorIs(t, err, ErrNoData)
}

func TestLoadEPW_MissingFile(t *testing.T) {
	_, err := LoadEPW("testdata/does-not-exist.epw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does-not-exist.epw")
}

func TestReadEPW_NonFiniteWrapsSentinel(t *testing.T) {
	_, err := ReadEPW(strings.NewReader(header + row(1999, 1, "NaN", "0") + "\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFinite), "got %v", err)
}
