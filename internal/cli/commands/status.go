package commands

import (
	"CaseKeeper/internal/cli/api"
	"CaseKeeper/internal/config"
	"context"
	"errors"
	"fmt"
)

type meResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Name     string `json:"name"`
}

type statusCmd struct{}

func (statusCmd) Name() string        { return "status" }
func (statusCmd) Description() string { return "Show the logged in user" }
func (statusCmd) Usage() string       { return "status" }

func (statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	token, err := tokens.Load()
	if err != nil {
		return errors.New("not logged in")
	}
	var me meResponse
	if err := api.GetJSON(ctx, endpoint(cfg, "/api/auth/me"), token, &me); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Status: %s (%s)\n", me.Username, me.Role)
	return nil
}

func init() { RegisterCmd(statusCmd{}) }
