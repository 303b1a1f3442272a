package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/krishichetan/kchetan/internal/controller"
	"github.com/krishichetan/kchetan/internal/models"
)

// readSecret returns flagValue or, when empty, the first line of in.
func readSecret(cmd *cobra.Command, flagValue, prompt string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("password is required")
	}
	return line, nil
}

func newLoginCmd(c *cli) *cobra.Command {
	var phone, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readSecret(cmd, password, "Password: ")
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), c.opts, c.log.Log)
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.ctl.Login(cmd.Context(), phone, pw)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", s.Name, s.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&phone, "phone", "p", "", "registered phone number")
	cmd.Flags().StringVar(&password, "password", "", "password (read from stdin when omitted)")
	_ = cmd.MarkFlagRequired("phone")
	return cmd
}

func newRegisterCmd(c *cli) *cobra.Command {
	var reg models.Registration
	var role string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a farmer or officer account",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readSecret(cmd, reg.Password, "Password: ")
			if err != nil {
				return err
			}
			reg.Password = pw
			reg.Role = models.ParseRole(role)
			if reg.Name == "" {
				reg.Name = models.DefaultName
			}

			a, err := newApp(cmd.Context(), c.opts, c.log.Log)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.ctl.Register(cmd.Context(), reg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s as %s. Run kchetan login next.\n", reg.Phone, reg.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&reg.Phone, "phone", "p", "", "phone number")
	cmd.Flags().StringVar(&reg.Password, "password", "", "password (read from stdin when omitted)")
	cmd.Flags().StringVarP(&reg.Name, "name", "n", "", "display name")
	cmd.Flags().StringVar(&role, "role", string(models.RoleFarmer), "farmer | officer")
	_ = cmd.MarkFlagRequired("phone")
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), c.opts, c.log.Log)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.ctl.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context(), c.opts, c.log.Log)
			if err != nil {
				return err
			}
			defer a.Close()

			err = a.ctl.Initialize(cmd.Context())
			if errors.Is(err, controller.ErrUnauthenticated) {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			if err != nil {
				return err
			}
			s, _ := a.ctl.Session()
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) phone %s, start module %s\n", s.Name, s.Role, s.Phone, a.ctl.Active())
			return nil
		},
	}
}
