package commands

import (
	"CaseKeeper/internal/config"
	"context"
	"errors"
	"fmt"
	"net/http"

	"CaseKeeper/internal/cli/api"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Login and store auth cookie" }
func (loginCmd) Usage() string       { return "login <username> <password>" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	username, password := args[0], args[1]
	resp, body, err := api.PostJSON(ctx, endpoint(cfg, "/api/auth/login"), LoginRequest{Username: username, Password: password}, "")
	if err != nil {
		return err
	}
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return errors.New("invalid username or password")
	case http.StatusForbidden:
		return errors.New("account is disabled")
	default:
		return api.StatusError(resp.StatusCode, body)
	}

	if err := api.PersistAuthFromResponse(resp, tokens); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}
	if err := tokens.SaveLogin(username); err != nil {
		return fmt.Errorf("saving login: %w", err)
	}
	fmt.Fprintln(Out, "Logged in successfully")
	return nil
}

type logoutCmd struct{}

func (logoutCmd) Name() string        { return "logout" }
func (logoutCmd) Description() string { return "Forget stored auth cookie" }
func (logoutCmd) Usage() string       { return "logout" }

func (logoutCmd) Run(_ context.Context, _ *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	if err := tokens.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Logged out")
	return nil
}

func init() {
	RegisterCmd(loginCmd{})
	RegisterCmd(logoutCmd{})
}
