package commands

import (
	"CaseKeeper/internal/cli/api"
	"CaseKeeper/internal/config"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

type criminalRow struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Age       int     `json:"age"`
	CrimeType string  `json:"crimeType"`
	Status    string  `json:"status"`
	FirNumber *string `json:"firNumber"`
}

type crimeTypeRow struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type statsResponse struct {
	TotalCriminals        int            `json:"totalCriminals"`
	ActiveFirs            int            `json:"activeFirs"`
	SolvedCases           int            `json:"solvedCases"`
	PendingCases          int            `json:"pendingCases"`
	CrimeTypeDistribution []crimeTypeRow `json:"crimeTypeDistribution"`
}

func authToken() (string, error) {
	token, err := tokens.Load()
	if err != nil {
		return "", errors.New("not logged in")
	}
	return token, nil
}

// criminalsCmd поиск по карточкам: свободный текст и фильтры key=value.
type criminalsCmd struct{}

func (criminalsCmd) Name() string        { return "criminals" }
func (criminalsCmd) Description() string { return "Search criminal records" }
func (criminalsCmd) Usage() string {
	return "criminals [text] [status=open|pending|closed] [gender=...] [crimeType=...]"
}

func (criminalsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	q := url.Values{}
	var text []string
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok {
			text = append(text, a)
			continue
		}
		switch k {
		case "status", "gender", "crimeType":
			q.Set(k, v)
		default:
			return ErrUsage
		}
	}
	if len(text) > 0 {
		q.Set("q", strings.Join(text, " "))
	}
	token, err := authToken()
	if err != nil {
		return err
	}

	u := endpoint(cfg, "/api/criminals")
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	var list []criminalRow
	if err := api.GetJSON(ctx, u, token, &list); err != nil {
		return err
	}
	if len(list) == 0 {
		fmt.Fprintln(Out, "Нет записей")
		return nil
	}
	for _, c := range list {
		fir := "-"
		if c.FirNumber != nil {
			fir = *c.FirNumber
		}
		fmt.Fprintf(Out, "- %s  %s (%d)  %s  %s  %s\n", c.ID, c.Name, c.Age, c.CrimeType, c.Status, fir)
	}
	fmt.Fprintf(Out, "Всего: %d\n", len(list))
	return nil
}

type statsCmd struct{}

func (statsCmd) Name() string        { return "stats" }
func (statsCmd) Description() string { return "Show record statistics" }
func (statsCmd) Usage() string       { return "stats" }

func (statsCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	token, err := authToken()
	if err != nil {
		return err
	}
	var st statsResponse
	if err := api.GetJSON(ctx, endpoint(cfg, "/api/stats"), token, &st); err != nil {
		return err
	}
	fmt.Fprintf(Out, "criminals: %d\n", st.TotalCriminals)
	fmt.Fprintf(Out, "firs:      %d\n", st.ActiveFirs)
	fmt.Fprintf(Out, "solved:    %d\n", st.SolvedCases)
	fmt.Fprintf(Out, "pending:   %d\n", st.PendingCases)
	for _, g := range st.CrimeTypeDistribution {
		fmt.Fprintf(Out, "  %-20s %d\n", g.Type, g.Count)
	}
	return nil
}

func init() {
	RegisterCmd(criminalsCmd{})
	RegisterCmd(statsCmd{})
}
