// Package risk отдаёт прогноз уровня преступности по городам из статичного набора данных.
//
// Уровень риска определяется порогами по crime_rate. Ансамбль деревьев
// обучается на тех же данных при загрузке; его согласие с порогами
// доступно через ModelAgreement, но на уровень риска он не влияет.
package risk

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Level уровень риска.
type Level string

const (
	Low      Level = "Low"
	Medium   Level = "Medium"
	High     Level = "High"
	Critical Level = "Critical"
)

// Levels в порядке возрастания.
var Levels = []Level{Low, Medium, High, Critical}

// Пороги crime_rate на 1000 жителей.
const (
	MediumThreshold   = 25.0
	HighThreshold     = 50.0
	CriticalThreshold = 75.0
)

// ErrNotReady набор данных не загружен.
var ErrNotReady = errors.New("risk dataset is not loaded")

// LevelForRate уровень по порогам.
func LevelForRate(rate float64) Level {
	switch {
	case rate >= CriticalThreshold:
		return Critical
	case rate >= HighThreshold:
		return High
	case rate >= MediumThreshold:
		return Medium
	}
	return Low
}

func levelIndex(l Level) int {
	for i, v := range Levels {
		if v == l {
			return i
		}
	}
	return 0
}

// Prediction проекция строки для API.
type Prediction struct {
	City          string  `json:"city"`
	State         string  `json:"state"`
	CrimeRate     float64 `json:"crimeRate"`
	RiskLevel     Level   `json:"riskLevel"`
	ViolentCrime  int     `json:"violentCrime"`
	PropertyCrime int     `json:"propertyCrime"`
}

// Bucket города одного уровня риска.
type Bucket struct {
	RiskLevel Level    `json:"riskLevel"`
	Count     int      `json:"count"`
	Cities    []string `json:"cities"`
}

// Summary сводка по набору данных.
type Summary struct {
	TotalCities      int        `json:"totalCities"`
	AverageCrimeRate float64    `json:"averageCrimeRate"`
	Lowest           Prediction `json:"lowest"`
	Highest          Prediction `json:"highest"`
	ModelAgreement   float64    `json:"modelAgreement"`
}

// Facade неизменяемое представление набора данных. Безопасен для конкурентного чтения.
type Facade struct {
	sorted    []Prediction // по убыванию crimeRate
	features  [][]float64  // в порядке sorted
	forest    *Forest
	agreement float64
	average   float64
}

// Load читает набор данных и обучает ансамбль.
func Load(path string, opts ForestOptions) (*Facade, error) {
	rows, err := LoadDataset(path)
	if err != nil {
		return nil, err
	}
	return New(rows, opts)
}

// New строит фасад по уже прочитанным строкам.
func New(rows []City, opts ForestOptions) (*Facade, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}
	for _, r := range rows {
		if err := checkRate(r.CrimeRate); err != nil {
			return nil, fmt.Errorf("%s crime_rate: %w", r.City, err)
		}
	}
	rows = append([]City(nil), rows...)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].CrimeRate > rows[j].CrimeRate })

	f := &Facade{
		sorted:   make([]Prediction, len(rows)),
		features: make([][]float64, len(rows)),
	}
	labels := make([]int, len(rows))
	sum := decimal.Zero
	for i, r := range rows {
		level := LevelForRate(r.CrimeRate)
		f.sorted[i] = Prediction{
			City:          r.City,
			State:         r.State,
			CrimeRate:     r.CrimeRate,
			RiskLevel:     level,
			ViolentCrime:  r.ViolentCrime(),
			PropertyCrime: r.PropertyCrime(),
		}
		f.features[i] = featureVector(r)
		labels[i] = levelIndex(level)
		sum = sum.Add(decimal.NewFromFloat(r.CrimeRate))
	}
	f.average = sum.Div(decimal.NewFromInt(int64(len(rows)))).Round(2).InexactFloat64()

	f.forest = FitForest(f.features, labels, len(Levels), opts)
	agree := 0
	for i, x := range f.features {
		if f.forest.Predict(x) == labels[i] {
			agree++
		}
	}
	f.agreement = decimal.NewFromInt(int64(agree)).
		Div(decimal.NewFromInt(int64(len(rows)))).Round(4).InexactFloat64()
	return f, nil
}

// featureVector: насильственные и имущественные на 1000 жителей, log10 населения.
func featureVector(c City) []float64 {
	pop := math.Max(float64(c.Population), 1)
	return []float64{
		float64(c.ViolentCrime()) / pop * 1000,
		float64(c.PropertyCrime()) / pop * 1000,
		math.Log10(pop),
	}
}

// AllPredictions все города по убыванию crimeRate.
func (f *Facade) AllPredictions() []Prediction {
	return append([]Prediction(nil), f.sorted...)
}

// TopRiskCities первые limit городов по убыванию crimeRate.
func (f *Facade) TopRiskCities(limit int) []Prediction {
	if limit <= 0 {
		return []Prediction{}
	}
	if limit > len(f.sorted) {
		limit = len(f.sorted)
	}
	return append([]Prediction(nil), f.sorted[:limit]...)
}

// CityPrediction поиск города без учёта регистра.
func (f *Facade) CityPrediction(name string) (Prediction, bool) {
	name = strings.TrimSpace(name)
	for _, p := range f.sorted {
		if strings.EqualFold(p.City, name) {
			return p, true
		}
	}
	return Prediction{}, false
}

// CrimeDistribution группы по уровню риска от Low к Critical; пустые уровни опускаются.
func (f *Facade) CrimeDistribution() []Bucket {
	groups := make(map[Level][]string, len(Levels))
	for _, p := range f.sorted {
		groups[p.RiskLevel] = append(groups[p.RiskLevel], p.City)
	}
	out := make([]Bucket, 0, len(groups))
	for _, l := range Levels {
		if cities, ok := groups[l]; ok {
			out = append(out, Bucket{RiskLevel: l, Count: len(cities), Cities: cities})
		}
	}
	return out
}

// Statistics сводка: количество, средний crimeRate, минимум и максимум.
func (f *Facade) Statistics() Summary {
	return Summary{
		TotalCities:      len(f.sorted),
		AverageCrimeRate: f.average,
		Lowest:           f.sorted[len(f.sorted)-1],
		Highest:          f.sorted[0],
		ModelAgreement:   f.agreement,
	}
}

// ModelAgreement доля городов, где голос ансамбля совпал с пороговым уровнем.
func (f *Facade) ModelAgreement() float64 { return f.agreement }

// ModelLevel уровень, предсказанный ансамблем для города.
func (f *Facade) ModelLevel(name string) (Level, bool) {
	name = strings.TrimSpace(name)
	for i, p := range f.sorted {
		if strings.EqualFold(p.City, name) {
			return Levels[f.forest.Predict(f.features[i])], true
		}
	}
	return "", false
}
