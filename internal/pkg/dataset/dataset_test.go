package dataset

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fredbi/launchdash/internal/pkg/config"
	"github.com/fredbi/launchdash/internal/pkg/model"

	"github.com/go-openapi/testify/v2/assert"
	"github.com/go-openapi/testify/v2/require"
)

func TestLoadLaunches(t *testing.T) {
	ds, err := Load(testdataPath("launches.csv"))
	require.NoError(t, err)

	assert.Equal(t, testdataPath("launches.csv"), ds.File)
	assert.Equal(t, 56, ds.Len())
	assert.InDelta(t, 0, ds.MinPayload(), 1e-9)
	assert.InDelta(t, 9600, ds.MaxPayload(), 1e-9)
	assert.Equal(t, model.PayloadRange{Low: 0, High: 9600}, ds.PayloadBounds())

	assert.Equal(t,
		[]model.Site{model.AllSites, "CCAFS LC-40", "VAFB SLC-4E", "KSC LC-39A", "CCAFS SLC-40"},
		ds.Sites(),
	)
	assert.Equal(t,
		[]model.Site{"CCAFS LC-40", "VAFB SLC-4E", "KSC LC-39A", "CCAFS SLC-40"},
		ds.LaunchSites(),
	)
	assert.Equal(t, []string{"v1.0", "v1.1", "FT", "B4", "B5"}, ds.BoosterCategories())

	first := ds.Records()[0]
	assert.Equal(t, model.LaunchRecord{
		FlightNumber:    1,
		Site:            "CCAFS LC-40",
		PayloadMass:     0,
		Class:           model.OutcomeFailure,
		BoosterVersion:  "F9 v1.0  B0003",
		BoosterCategory: "v1.0",
	}, first)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		file    string
		wantErr string
	}{
		{"missing_column.csv", `required column "class" not found`},
		{"bad_payload.csv", `line 2: invalid "Payload Mass (kg)"`},
		{"bad_nan_payload.csv", `line 2: invalid "Payload Mass (kg)": not a finite number`},
		{"bad_inf_payload.csv", `line 3: invalid "Payload Mass (kg)": not a finite number`},
		{"negative_payload.csv", `line 3: invalid "Payload Mass (kg)": negative mass`},
		{"bad_class.csv", "expected 0 or 1"},
		{"header_only.csv", "no launch record found"},
		{"not_a_table.png", "expected a CSV text file"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			_, err := Load(testdataPath(tt.file))
			require.Error(t, err)
			require.ErrorIs(t, err, ErrMalformed)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	t.Run("non-finite payloads never load", func(t *testing.T) {
		for _, value := range []string{"NaN", "nan", "Inf", "+Inf", "-Inf", "infinity"} {
			input := "Launch Site,Payload Mass (kg),class,Booster Version Category\n" +
				"CCAFS," + value + ",1,v1.0\n" +
				"CCAFS,3000,0,v1.0\n" +
				"KSC,4000,1,v1.1\n"

			ds, err := Parse(strings.NewReader(input))
			require.ErrorIs(t, err, ErrMalformed, "payload %q", value)
			assert.Nil(t, ds)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nowhere.csv"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrMalformed)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := Parse(strings.NewReader(""))
		require.Error(t, err)
		require.ErrorIs(t, err, ErrMalformed)
	})
}

func TestParseWithColumns(t *testing.T) {
	const input = "site,mass,outcome,booster\nKSC,100,1,FT\nKSC,200.5,0,B5\n"

	ds, err := Parse(strings.NewReader(input), WithColumns(config.Columns{
		Site:    "site",
		Payload: "mass",
		Class:   "outcome",
		Booster: "booster",
	}))
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Len())
	assert.InDelta(t, 200.5, ds.MaxPayload(), 1e-9)
	assert.Equal(t, "site", ds.Columns().Site)
	assert.Equal(t, DefaultColumns.FlightNumber, ds.Columns().FlightNumber, "unset columns retain their default")
}

func TestParseByteOrderMark(t *testing.T) {
	const input = "\xef\xbb\xbfLaunch Site,Payload Mass (kg),class,Booster Version Category\nKSC,100,1,FT\n"

	ds, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []model.Site{"KSC"}, ds.LaunchSites())
}

func TestFilter(t *testing.T) {
	ds := mustLoad(t, "three.csv")

	t.Run("all sites within range", func(t *testing.T) {
		records := ds.Filter(model.AllSites, model.PayloadRange{Low: 3000, High: 5000})
		assert.Len(t, records, 3)
	})

	t.Run("bounds are inclusive", func(t *testing.T) {
		records := ds.FilterPayload(model.PayloadRange{Low: 4000, High: 5000})
		require.Len(t, records, 2)
		assert.InDelta(t, 5000, records[0].PayloadMass, 1e-9)
		assert.InDelta(t, 4000, records[1].PayloadMass, 1e-9)
	})

	t.Run("site outside range", func(t *testing.T) {
		assert.Empty(t, ds.Filter("KSC", model.PayloadRange{Low: 0, High: 3500}))
	})

	t.Run("reversed range is normalized", func(t *testing.T) {
		assert.Len(t, ds.Filter(model.AllSites, model.PayloadRange{Low: 5000, High: 3000}), 3)
	})

	t.Run("unknown site", func(t *testing.T) {
		assert.Empty(t, ds.FilterSite("Boca Chica"))
		assert.False(t, ds.HasSite("Boca Chica"))
		assert.True(t, ds.HasSite("KSC"))
		assert.True(t, ds.HasSite(model.AllSites))
	})

	t.Run("site filter equals all sites filtered by site", func(t *testing.T) {
		full := ds.PayloadBounds()
		var expected []model.LaunchRecord
		for _, record := range ds.Filter(model.AllSites, full) {
			if record.Site == "CCAFS" {
				expected = append(expected, record)
			}
		}

		assert.Equal(t, expected, ds.Filter("CCAFS", full))
	})
}

func TestViewsDoNotMutate(t *testing.T) {
	ds := mustLoad(t, "three.csv")

	records := ds.Records()
	records[0].Site = "tampered"

	filtered := ds.FilterSite(model.AllSites)
	filtered[1].PayloadMass = -1

	sites := ds.Sites()
	sites[1] = "tampered"

	assert.Equal(t, model.Site("CCAFS"), ds.Records()[0].Site)
	assert.InDelta(t, 3000, ds.Records()[1].PayloadMass, 1e-9)
	assert.Equal(t, []model.Site{model.AllSites, "CCAFS", "KSC"}, ds.Sites())
}

func TestAggregations(t *testing.T) {
	ds := mustLoad(t, "three.csv")

	assert.Equal(t, []model.SiteCount{
		{Site: "CCAFS", Value: 1},
		{Site: "KSC", Value: 1},
	}, ds.SumClassBySite())

	assert.Equal(t, []model.ClassCount{
		{Class: model.OutcomeFailure, Count: 1},
		{Class: model.OutcomeSuccess, Count: 1},
	}, ds.CountByClass("CCAFS"))

	assert.Equal(t, []model.ClassCount{
		{Class: model.OutcomeSuccess, Count: 1},
	}, ds.CountByClass("KSC"))

	assert.Empty(t, ds.CountByClass("Boca Chica"))
}

func TestReport(t *testing.T) {
	ds := mustLoad(t, "launches.csv")

	r := ds.Report()
	assert.Equal(t, 56, r.Records)
	assert.Equal(t, 22, r.Successes)
	assert.Equal(t, MinMaxRange{Min: 0, Max: 9600}, r.Payload)
	require.Len(t, r.Sites, 4)

	assert.Equal(t, SiteSummary{
		Site:      "KSC LC-39A",
		Launches:  11,
		Successes: 9,
		Payload:   MinMaxRange{Min: 2205, Max: 9600},
	}, r.Sites[2])

	buf, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(buf), `"launch_sites"`)
}

// helpers

func mustLoad(t *testing.T, name string) *Dataset {
	t.Helper()

	ds, err := Load(testdataPath(name))
	require.NoError(t, err)

	return ds
}

func testdataPath(name string) string {
	return filepath.Join("testdata", name)
}
