package commands

import (
	"CaseKeeper/internal/cli/api"
	"CaseKeeper/internal/config"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

type predictionRow struct {
	City           string  `json:"city"`
	State          string  `json:"state"`
	CrimeRate      float64 `json:"crimeRate"`
	RiskLevel      string  `json:"riskLevel"`
	ModelRiskLevel string  `json:"modelRiskLevel,omitempty"`
}

type bucketRow struct {
	RiskLevel string   `json:"riskLevel"`
	Count     int      `json:"count"`
	Cities    []string `json:"cities"`
}

// predictCmd запросы к прогнозу по городам.
type predictCmd struct{}

func (predictCmd) Name() string        { return "predict" }
func (predictCmd) Description() string { return "Query city crime risk predictions" }
func (predictCmd) Usage() string {
	return "predict top [N] | predict city <name> | predict distribution"
}

func (predictCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	token, err := authToken()
	if err != nil {
		return err
	}

	switch args[0] {
	case "top":
		if len(args) > 2 {
			return ErrUsage
		}
		u := endpoint(cfg, "/api/predictions/top")
		if len(args) == 2 {
			if _, err := strconv.Atoi(args[1]); err != nil {
				return ErrUsage
			}
			u += "?limit=" + args[1]
		}
		var list []predictionRow
		if err := api.GetJSON(ctx, u, token, &list); err != nil {
			return err
		}
		for i, p := range list {
			fmt.Fprintf(Out, "%2d. %s, %s  %.2f  %s\n", i+1, p.City, p.State, p.CrimeRate, p.RiskLevel)
		}
	case "city":
		if len(args) < 2 {
			return ErrUsage
		}
		name := strings.Join(args[1:], " ")
		var p predictionRow
		if err := api.GetJSON(ctx, endpoint(cfg, "/api/predictions/city/"+url.PathEscape(name)), token, &p); err != nil {
			return err
		}
		fmt.Fprintf(Out, "city:      %s, %s\n", p.City, p.State)
		fmt.Fprintf(Out, "rate:      %.2f\n", p.CrimeRate)
		fmt.Fprintf(Out, "risk:      %s\n", p.RiskLevel)
		fmt.Fprintf(Out, "model:     %s\n", p.ModelRiskLevel)
	case "distribution":
		if len(args) != 1 {
			return ErrUsage
		}
		var buckets []bucketRow
		if err := api.GetJSON(ctx, endpoint(cfg, "/api/predictions/distribution"), token, &buckets); err != nil {
			return err
		}
		for _, b := range buckets {
			fmt.Fprintf(Out, "%-9s %d  %s\n", b.RiskLevel, b.Count, strings.Join(b.Cities, ", "))
		}
	default:
		return ErrUsage
	}
	return nil
}

func init() { RegisterCmd(predictCmd{}) }
