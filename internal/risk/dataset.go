package risk

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// City строка набора данных по городу.
type City struct {
	City         string
	State        string
	Population   int
	Murder       int
	Rape         int
	Robbery      int
	Assault      int
	Burglary     int
	Larceny      int
	VehicleTheft int
	CrimeRate    float64
}

// ViolentCrime насильственные преступления.
func (c City) ViolentCrime() int { return c.Murder + c.Rape + c.Robbery + c.Assault }

// PropertyCrime имущественные преступления.
func (c City) PropertyCrime() int { return c.Burglary + c.Larceny + c.VehicleTheft }

var columns = []string{
	"city", "state", "population", "murder", "rape", "robbery", "assault",
	"burglary", "larceny", "vehicle_theft", "crime_rate",
}

// ErrEmptyDataset в файле нет ни одной строки данных.
var ErrEmptyDataset = errors.New("dataset has no rows")

// LoadDataset читает CSV с фиксированной схемой.
func LoadDataset(path string) ([]City, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return ParseDataset(f)
}

// ParseDataset разбирает CSV. Порядок колонок произвольный, заголовок без учёта регистра.
func ParseDataset(r io.Reader) ([]City, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, c := range columns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	var rows []City
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		c, err := parseRow(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, c)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}
	return rows, nil
}

func parseRow(rec []string, idx map[string]int) (City, error) {
	get := func(col string) string { return strings.TrimSpace(rec[idx[col]]) }
	var c City
	c.City = get("city")
	c.State = get("state")
	if c.City == "" {
		return c, errors.New("empty city")
	}

	ints := []struct {
		col string
		dst *int
	}{
		{"population", &c.Population},
		{"murder", &c.Murder},
		{"rape", &c.Rape},
		{"robbery", &c.Robbery},
		{"assault", &c.Assault},
		{"burglary", &c.Burglary},
		{"larceny", &c.Larceny},
		{"vehicle_theft", &c.VehicleTheft},
	}
	for _, f := range ints {
		v, err := strconv.Atoi(get(f.col))
		if err != nil {
			return c, fmt.Errorf("%s: %w", f.col, err)
		}
		if v < 0 {
			return c, fmt.Errorf("%s: negative value %d", f.col, v)
		}
		*f.dst = v
	}

	rate, err := strconv.ParseFloat(get("crime_rate"), 64)
	if err != nil {
		return c, fmt.Errorf("crime_rate: %w", err)
	}
	if err := checkRate(rate); err != nil {
		return c, fmt.Errorf("crime_rate: %w", err)
	}
	c.CrimeRate = rate
	return c, nil
}

// checkRate допускает только конечные неотрицательные значения.
func checkRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return fmt.Errorf("non-finite value %v", rate)
	}
	if rate < 0 {
		return fmt.Errorf("negative value %v", rate)
	}
	return nil
}
