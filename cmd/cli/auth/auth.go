package auth

import (
	"errors"
	"fmt"

	"github.com/crucial707/blog/cmd/cli/client"
	"github.com/crucial707/blog/cmd/cli/config"
	"github.com/spf13/cobra"
)

type user struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type session struct {
	User  user   `json:"user"`
	Token string `json:"token"`
}

// InitAuth registers login, register, logout and whoami on the root command.
func InitAuth(rootCmd *cobra.Command) {
	rootCmd.AddCommand(loginCmd(), registerCmd(), logoutCmd(), whoamiCmd())
}

// loginCmd logs in with email and password and stores the token locally.
func loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the blog API",
		Long:  "Authenticate with the blog API and store the session token for subsequent CLI commands.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return errors.New("--email is required")
			}
			if password == "" {
				fmt.Print("Password: ")
				fmt.Scanln(&password)
			}

			var s session
			if _, err := client.CallInto("POST", "/auth/login",
				map[string]string{"email": email, "password": password}, false, &s); err != nil {
				return fmt.Errorf("failed to login: %w", err)
			}
			if s.Token == "" {
				return errors.New("login succeeded but no token returned")
			}
			if err := config.SaveToken(s.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			fmt.Printf("Logged in as %s (%s). Token stored locally.\n", s.User.Username, s.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	return cmd
}

func registerCmd() *cobra.Command {
	var in struct {
		Username  string `json:"username"`
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			var s session
			if _, err := client.CallInto("POST", "/auth/register", in, false, &s); err != nil {
				return fmt.Errorf("failed to register: %w", err)
			}
			if err := config.SaveToken(s.Token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}
			fmt.Printf("Registered %s. Token stored locally.\n", s.User.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Username, "username", "", "Username (letters and digits)")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "Password (min 8 characters)")
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "Last name")
	for _, f := range []string{"username", "email", "password", "first-name", "last-name"} {
		cmd.MarkFlagRequired(f)
	}
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.ReadToken(); err == nil {
				// Best effort: the server keeps no session state.
				client.Call("POST", "/auth/logout", nil, true)
			}
			if err := config.ClearToken(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out struct {
				User user `json:"user"`
			}
			if _, err := client.CallInto("GET", "/auth/me", nil, true, &out); err != nil {
				return err
			}
			fmt.Printf("%s %s <%s> (@%s, id %d)\n",
				out.User.FirstName, out.User.LastName, out.User.Email, out.User.Username, out.User.ID)
			return nil
		},
	}
}
