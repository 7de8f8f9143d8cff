package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/orbitflow/internal/cli"
	"github.com/julianstephens/orbitflow/internal/keyring"
)

type AccountCmd struct {
	Register RegisterCmd `cmd:"" help:"Create an account."`
	Login    LoginCmd    `cmd:"" help:"Log in and save the session token in the OS keyring."`
	Logout   LogoutCmd   `cmd:"" help:"Forget the saved session token."`
	Whoami   WhoamiCmd   `cmd:"" help:"Show the logged-in account."`
}

// Credentials holds the flags shared by register and login. The password
// is prompted for when not given.
type Credentials struct {
	Email    string `arg:"" help:"Account email."`
	Password string `help:"Password (prompted when omitted)." env:"ORBITFLOW_PASSWORD"`
}

func (c *Credentials) password() (string, error) {
	if c.Password != "" {
		return c.Password, nil
	}
	var pw string
	err := huh.NewInput().
		Title("Password").
		EchoMode(huh.EchoModePassword).
		Value(&pw).
		Run()
	if err != nil {
		return "", fmt.Errorf("password prompt failed: %w", err)
	}
	return pw, nil
}

func requireAccounts(ctx *cli.Context) error {
	if ctx.Accounts == nil {
		return errors.New("accounts need a signing secret: set ORBITFLOW_JWT_SECRET or enable the OS keyring")
	}
	return nil
}

type RegisterCmd struct {
	Credentials `embed:""`
}

func (c *RegisterCmd) Run(ctx *cli.Context) error {
	if err := requireAccounts(ctx); err != nil {
		return err
	}
	pw, err := c.password()
	if err != nil {
		return err
	}
	owner, err := ctx.Accounts.Register(context.Background(), c.Email, pw)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Registered %s\n", owner.Email)
	fmt.Println("  Run 'orbitflow account login' to start a session.")
	return nil
}

type LoginCmd struct {
	Credentials `embed:""`
	Print       bool `help:"Print the token instead of saving it (for ORBITFLOW_TOKEN)."`
}

func (c *LoginCmd) Run(ctx *cli.Context) error {
	if err := requireAccounts(ctx); err != nil {
		return err
	}
	pw, err := c.password()
	if err != nil {
		return err
	}
	tok, err := ctx.Accounts.Login(context.Background(), c.Email, pw)
	if err != nil {
		return err
	}

	if c.Print {
		fmt.Println(tok.Token)
		return nil
	}
	if err := keyring.SetSessionToken(tok.Token); err != nil {
		return fmt.Errorf("failed to save session (use --print and ORBITFLOW_TOKEN instead): %w", err)
	}
	fmt.Printf("✓ Logged in as %s until %s\n", tok.Session.Email, tok.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteSessionToken(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			fmt.Println("Not logged in.")
			return nil
		}
		return err
	}
	fmt.Println("✓ Logged out")
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *cli.Context) error {
	sess, err := ctx.Session(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", sess.Email, sess.OwnerID)
	fmt.Printf("Session expires %s\n", sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}
