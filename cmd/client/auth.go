package main

import (
	"fmt"

	"github.com/Rodrigo-Tecuatl/notas-prueba-tecnica/client/api"

	"github.com/spf13/cobra"
)

var (
	registerName     string
	registerEmail    string
	registerPassword string
	loginEmail       string
	loginPassword    string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := api.New(serverURL)
		res, err := client.Register(cmd.Context(), registerName, registerEmail, registerPassword)
		if err != nil {
			return err
		}

		if err := saveSession(&session{
			UserID: res.User.ID,
			Name:   res.User.Name,
			Email:  res.User.Email,
			Token:  res.Token,
		}); err != nil {
			return err
		}

		fmt.Printf("registered and logged in as %s <%s>\n", res.User.Name, res.User.Email)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the notes server",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := api.New(serverURL)
		res, err := client.Login(cmd.Context(), loginEmail, loginPassword)
		if err != nil {
			return err
		}

		if err := saveSession(&session{
			UserID: res.User.ID,
			Name:   res.User.Name,
			Email:  res.User.Email,
			Token:  res.Token,
		}); err != nil {
			return err
		}

		fmt.Printf("logged in as %s <%s>\n", res.User.Name, res.User.Email)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and forget the cached session",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv()
		if err != nil {
			return err
		}

		// Best effort: the server may be unreachable, the local session
		// goes away either way.
		if err := e.api.Logout(cmd.Context()); err != nil {
			fmt.Printf("server logout failed (%v), clearing local session anyway\n", err)
		}

		if err := clearSession(); err != nil {
			return err
		}
		fmt.Println("logged out")
		return nil
	},
}

func init() {
	registerCmd.Flags().StringVar(&registerName, "name", "", "display name")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "email address")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "password")
	registerCmd.MarkFlagRequired("name")
	registerCmd.MarkFlagRequired("email")
	registerCmd.MarkFlagRequired("password")

	loginCmd.Flags().StringVar(&loginEmail, "email", "", "email address")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "password")
	loginCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd)
}
