package domain

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Year,Location,Latitude,Longitude,Main Cause,Duration,Human fatality,Human injured,Animal Fatality,Details
2005,Mumbai,19.07,72.87,Heavy Rain,5,3,10,1,Heavy rain flooded the city streets
2015,Chennai,13.08,80.27,Heavy Rain,14,0,4,2,Rivers overflowed after heavy rain
2015,Chennai Outskirts,13.0,80.1,Cyclone,,5,0,3,Cyclone damaged homes
2010,Patna,25.59,85.13,Dam Break,3,0,1,0,
2020,,26.14,91.73,Heavy Rain,7,1,2,0,Embankment breach
`

func mustParse(t *testing.T, data string) *Dataset {
	t.Helper()
	ds, err := ParseCSV("test.csv", strings.NewReader(data))
	require.NoError(t, err)
	return ds
}

func TestParseCSV(t *testing.T) {
	loadedAt := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(loadedAt))
	defer SetClock(nil)

	ds := mustParse(t, sampleCSV)

	require.Equal(t, 5, ds.Len())
	assert.True(t, ds.HasDetails)
	assert.Equal(t, "test.csv", ds.Source)
	assert.Equal(t, loadedAt, ds.LoadedAt)

	first := ds.Records[0]
	assert.Equal(t, 2005, first.Year)
	assert.Equal(t, "Mumbai", first.Location)
	assert.Equal(t, 19.07, first.Latitude)
	assert.Equal(t, 72.87, first.Longitude)
	assert.Equal(t, "Heavy Rain", first.MainCause)
	assert.Equal(t, 5.0, first.Duration)
	assert.Equal(t, int64(3), first.HumanFatality)
	assert.Equal(t, int64(10), first.HumanInjured)
	assert.Equal(t, int64(1), first.AnimalFatality)
	assert.Equal(t, "Heavy rain flooded the city streets", first.Details)
	assert.Len(t, first.ID, 16)

	assert.True(t, math.IsNaN(ds.Records[2].Duration), "empty duration reads as NaN")
	assert.False(t, ds.Records[2].HasDuration())
	assert.Empty(t, ds.Records[3].Details)
	assert.Empty(t, ds.Records[4].Location)
}

func TestParseCSV_Conventions(t *testing.T) {
	t.Run("float year and fractional counts", func(t *testing.T) {
		ds := mustParse(t, "Year,Location,Latitude,Longitude,Main Cause,Duration,Human fatality,Human injured,Animal Fatality\n"+
			"2010.0,Assam,26.2,92.9,Heavy Rain,2.5,3.9,,1.0\n")
		rec := ds.Records[0]
		assert.Equal(t, 2010, rec.Year)
		assert.Equal(t, 2.5, rec.Duration)
		assert.Equal(t, int64(3), rec.HumanFatality, "fractional counts truncate")
		assert.Equal(t, int64(0), rec.HumanInjured, "empty counts read as zero")
		assert.Equal(t, int64(1), rec.AnimalFatality)
		assert.False(t, ds.HasDetails)
	})

	t.Run("header whitespace and BOM", func(t *testing.T) {
		ds := mustParse(t, "\ufeffYear, Location ,Latitude,Longitude,Main Cause,Duration,Human fatality,Human injured,Animal Fatality\n"+
			"2001,Kerala,10.8,76.2,Heavy Rain,1,0,0,0\n")
		assert.Equal(t, "Kerala", ds.Records[0].Location)
	})

	t.Run("short rows read missing cells as empty", func(t *testing.T) {
		ds := mustParse(t, "Year,Location,Latitude,Longitude,Main Cause,Duration,Human fatality,Human injured,Animal Fatality,Details\n"+
			"2001,Kerala,10.8,76.2,Heavy Rain,1,0\n")
		rec := ds.Records[0]
		assert.Equal(t, int64(0), rec.HumanInjured)
		assert.Empty(t, rec.Details)
	})

	t.Run("header only is an empty dataset", func(t *testing.T) {
		ds := mustParse(t, strings.Join(RequiredColumns, ",")+"\n")
		assert.Equal(t, 0, ds.Len())
		assert.NotNil(t, ds.Records)
	})
}

func TestParseCSV_Errors(t *testing.T) {
	header := strings.Join(RequiredColumns, ",") + "\n"
	detailsHeader := strings.Join(RequiredColumns, ",") + "," + ColDetails + "\n"

	tests := []struct {
		name       string
		data       string
		wantLine   int
		wantColumn string
	}{
		{name: "empty file", data: ""},
		{name: "bad year", data: header + "20x0,A,1,2,Rain,1,0,0,0\n", wantLine: 2, wantColumn: ColYear},
		{name: "missing latitude", data: header + "2010,A,1,2,Rain,1,0,0,0\n2011,B,,2,Rain,1,0,0,0\n", wantLine: 3, wantColumn: ColLatitude},
		{name: "bad longitude", data: header + "2010,A,1,east,Rain,1,0,0,0\n", wantLine: 2, wantColumn: ColLongitude},
		{name: "bad count", data: header + "2010,A,1,2,Rain,1,many,0,0\n", wantLine: 2, wantColumn: ColHumanFatality},
		{name: "bad duration", data: header + "2010,A,1,2,Rain,long,0,0,0\n", wantLine: 2, wantColumn: ColDuration},
		{name: "infinite duration", data: header + "2010,A,1,2,Rain,inf,0,0,0\n", wantLine: 2, wantColumn: ColDuration},
		{name: "negative infinite duration", data: header + "2010,A,1,2,Rain,-Inf,0,0,0\n", wantLine: 2, wantColumn: ColDuration},
		{name: "count beyond int64", data: header + "2010,A,1,2,Rain,1,0,1e30,0\n", wantLine: 2, wantColumn: ColHumanInjured},
		{
			name: "line after multi-line details",
			data: detailsHeader +
				"2010,A,1,2,Rain,1,0,0,0,\"first line\nsecond line\nthird line\"\n" +
				"2011,B,1,east,Rain,1,0,0,0,ok\n",
			wantLine:   5,
			wantColumn: ColLongitude,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := ParseCSV("bad.csv", strings.NewReader(tt.data))
			require.Error(t, err)
			assert.Nil(t, ds, "no partial dataset on error")

			var dle *DataLoadError
			require.True(t, errors.As(err, &dle))
			assert.Equal(t, "bad.csv", dle.Source)
			assert.Equal(t, tt.wantLine, dle.Line)
			assert.Equal(t, tt.wantColumn, dle.Column)
		})
	}
}

func TestParseCSV_MissingRequiredColumn(t *testing.T) {
	_, err := ParseCSV("x.csv", strings.NewReader("Year,Location,Latitude,Longitude,Duration\n2010,A,1,2,3\n"))
	require.Error(t, err)

	var dle *DataLoadError
	require.True(t, errors.As(err, &dle))
	assert.True(t, IsMissingColumn(err, ColMainCause))
	assert.Contains(t, err.Error(), `missing column "Main Cause"`)
}

func TestParseCount_Range(t *testing.T) {
	n, err := parseCount("9.2e18")
	require.NoError(t, err)
	assert.Equal(t, int64(9.2e18), n)

	_, err = parseCount("9.3e18")
	require.Error(t, err)
	_, err = parseCount("-1e19")
	require.Error(t, err)
}

func TestParseTable_LinesFromRowIndex(t *testing.T) {
	rows := [][]string{
		{"2010", "A", "1", "2", "Rain", "1", "0", "0", "0"},
		{"2011", "B", "north", "2", "Rain", "1", "0", "0", "0"},
	}
	_, err := ParseTable("floods", RequiredColumns, rows)

	var dle *DataLoadError
	require.True(t, errors.As(err, &dle))
	assert.Equal(t, 3, dle.Line)
	assert.Equal(t, ColLatitude, dle.Column)
}

func TestGenerateID(t *testing.T) {
	a := FloodRecord{Year: 2010, Location: "Chennai", Latitude: 13.08, Longitude: 80.27, MainCause: "Heavy Rain"}
	b := a
	b.Location = "CHENNAI"
	c := a
	c.Year = 2011

	assert.Equal(t, GenerateID(a), GenerateID(b), "location case does not change the ID")
	assert.NotEqual(t, GenerateID(a), GenerateID(c))
}
