package risk

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `City,State,Population,Murder,Rape,Robbery,Assault,Burglary,Larceny,Vehicle_Theft,Crime_Rate
Springfield,IL,100000,5,20,300,800,900,4000,600,66.25
Shelbyville,IL,50000,1,5,40,100,200,700,100,22.92
Ogdenville,OR,200000,20,100,1200,3000,3000,9000,2000,91.6
North Haverbrook,OR,80000,2,10,120,300,500,2000,300,40.41
Capital City,CA,300000,10,60,500,1500,2000,8000,1500,45.2
`

func newSample(t *testing.T) *Facade {
	t.Helper()
	rows, err := ParseDataset(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	f, err := New(rows, ForestOptions{Trees: 15, MaxDepth: 3, Seed: 42})
	require.NoError(t, err)
	return f
}

func TestLevelForRate(t *testing.T) {
	cases := map[float64]Level{
		0:     Low,
		24.99: Low,
		25:    Medium,
		49.99: Medium,
		50:    High,
		74.99: High,
		75:    Critical,
		300:   Critical,
	}
	for rate, want := range cases {
		assert.Equal(t, want, LevelForRate(rate), "rate %v", rate)
	}
}

func TestParseDataset_Derived(t *testing.T) {
	rows, err := ParseDataset(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "Springfield", rows[0].City)
	assert.Equal(t, 5+20+300+800, rows[0].ViolentCrime())
	assert.Equal(t, 900+4000+600, rows[0].PropertyCrime())
}

func TestParseDataset_Errors(t *testing.T) {
	cases := map[string]string{
		"missing column": "city,state,population\nA,B,1\n",
		"bad number":     "city,state,population,murder,rape,robbery,assault,burglary,larceny,vehicle_theft,crime_rate\nA,B,x,1,1,1,1,1,1,1,1\n",
		"negative":       "city,state,population,murder,rape,robbery,assault,burglary,larceny,vehicle_theft,crime_rate\nA,B,10,-1,1,1,1,1,1,1,1\n",
		"bad rate":       "city,state,population,murder,rape,robbery,assault,burglary,larceny,vehicle_theft,crime_rate\nA,B,10,1,1,1,1,1,1,1,high\n",
		"empty city":     "city,state,population,murder,rape,robbery,assault,burglary,larceny,vehicle_theft,crime_rate\n,B,10,1,1,1,1,1,1,1,1\n",
		"short row":      "city,state,population,murder,rape,robbery,assault,burglary,larceny,vehicle_theft,crime_rate\nA,B,10\n",
		"empty":          "",
		"nan rate":       "city,state,population,murder,rape,robbery,assault,burglary,larceny,vehicle_theft,crime_rate\nA,B,10,1,1,1,1,1,1,1,NaN\n",
		"inf rate":       "city,state,population,murder,rape,robbery,assault,burglary,larceny,vehicle_theft,crime_rate\nA,B,10,1,1,1,1,1,1,1,Inf\n",
		"negative rate":  "city,state,population,murder,rape,robbery,assault,burglary,larceny,vehicle_theft,crime_rate\nA,B,10,1,1,1,1,1,1,1,-12.5\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDataset(strings.NewReader(in))
			assert.Error(t, err)
		})
	}

	_, err := ParseDataset(strings.NewReader(strings.SplitN(sampleCSV, "\n", 2)[0] + "\n"))
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestNew_RejectsBadRate(t *testing.T) {
	for _, rate := range []float64{math.NaN(), math.Inf(1), -12.5} {
		_, err := New([]City{{City: "A", CrimeRate: rate}}, ForestOptions{Seed: 1})
		assert.Error(t, err, "rate %v", rate)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), ForestOptions{})
	assert.Error(t, err)
}

func TestLoad_FromFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cities.csv")
	require.NoError(t, os.WriteFile(p, []byte(sampleCSV), 0o600))
	f, err := Load(p, ForestOptions{Seed: 1})
	require.NoError(t, err)
	assert.Len(t, f.AllPredictions(), 5)
}

func TestAllPredictions_SortedDescending(t *testing.T) {
	all := newSample(t).AllPredictions()
	require.Len(t, all, 5)
	for i := 1; i < len(all); i++ {
		assert.GreaterOrEqual(t, all[i-1].CrimeRate, all[i].CrimeRate)
	}
	assert.Equal(t, "Ogdenville", all[0].City)
	assert.Equal(t, Critical, all[0].RiskLevel)
}

func TestTopRiskCities(t *testing.T) {
	f := newSample(t)
	top := f.TopRiskCities(3)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"Ogdenville", "Springfield", "Capital City"}, []string{top[0].City, top[1].City, top[2].City})
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].CrimeRate, top[i].CrimeRate)
	}

	assert.Len(t, f.TopRiskCities(100), 5)
	assert.Empty(t, f.TopRiskCities(0))

	// результат не делит память с фасадом
	top[0].City = "mutated"
	assert.Equal(t, "Ogdenville", f.TopRiskCities(1)[0].City)
}

func TestCityPrediction(t *testing.T) {
	f := newSample(t)
	p, ok := f.CityPrediction("  north HAVERBROOK ")
	require.True(t, ok)
	assert.Equal(t, "OR", p.State)
	assert.Equal(t, Medium, p.RiskLevel)

	_, ok = f.CityPrediction("Atlantis")
	assert.False(t, ok)
}

func TestCrimeDistribution(t *testing.T) {
	dist := newSample(t).CrimeDistribution()
	got := map[Level]int{}
	total := 0
	for _, b := range dist {
		got[b.RiskLevel] = b.Count
		assert.Len(t, b.Cities, b.Count)
		total += b.Count
	}
	assert.Equal(t, 5, total)
	assert.Equal(t, map[Level]int{Low: 1, Medium: 2, High: 1, Critical: 1}, got)
	assert.Equal(t, Low, dist[0].RiskLevel)
}

func TestStatistics(t *testing.T) {
	s := newSample(t).Statistics()
	assert.Equal(t, 5, s.TotalCities)
	// (66.25 + 22.92 + 91.6 + 40.41 + 45.2) / 5 = 53.276
	assert.Equal(t, 53.28, s.AverageCrimeRate)
	assert.Equal(t, "Shelbyville", s.Lowest.City)
	assert.Equal(t, "Ogdenville", s.Highest.City)
	assert.GreaterOrEqual(t, s.ModelAgreement, 0.0)
	assert.LessOrEqual(t, s.ModelAgreement, 1.0)
}

func TestModelLevel(t *testing.T) {
	f := newSample(t)
	l, ok := f.ModelLevel("springfield")
	require.True(t, ok)
	assert.Contains(t, Levels, l)

	_, ok = f.ModelLevel("nowhere")
	assert.False(t, ok)
}
