package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/redmonkez12/recipe-api/cmd/recipectl/ui"
	"github.com/redmonkez12/recipe-api/internal/config"
	"github.com/redmonkez12/recipe-api/internal/database"
	"github.com/redmonkez12/recipe-api/internal/user"
	"github.com/redmonkez12/recipe-api/internal/validation"
)

func newCreateSuperuserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create an active staff user with superuser rights",
		Long:  "Create a superuser. Missing fields are prompted for interactively unless --no-input is set.",
		RunE:  runCreateSuperuser,
	}

	cmd.Flags().String("email", "", "Email address")
	cmd.Flags().String("name", "", "Display name")
	cmd.Flags().String("password", "", "Password")
	cmd.Flags().Bool("no-input", false, "Fail instead of prompting for missing fields")

	return cmd
}

func runCreateSuperuser(cmd *cobra.Command, _ []string) error {
	var answers ui.Superuser
	answers.Email, _ = cmd.Flags().GetString("email")
	answers.Name, _ = cmd.Flags().GetString("name")
	answers.Password, _ = cmd.Flags().GetString("password")
	noInput, _ := cmd.Flags().GetBool("no-input")

	if noInput {
		if answers.Email == "" || answers.Password == "" {
			return errors.New("--email and --password are required with --no-input")
		}
	} else {
		ui.PrintTitle("Create superuser")
		if err := ui.RunSuperuserForm(&answers); err != nil {
			return fmt.Errorf("form cancelled: %w", err)
		}
	}

	ctx := cmd.Context()
	db, err := database.Open(ctx, config.LoadDatabase())
	if err != nil {
		return err
	}
	defer db.Close()

	users := user.NewService(
		user.NewRepository(db),
		user.NewArgon2Hasher(user.DefaultArgon2Params),
		validation.NewValidator(),
	)

	u, err := users.CreateSuperuser(ctx, user.CreateParams{
		Email:    answers.Email,
		Password: answers.Password,
		Name:     answers.Name,
	})
	if err != nil {
		return err
	}

	ui.PrintSuccess("Superuser created successfully.")
	ui.PrintInfo(fmt.Sprintf("id: %d  email: %s", u.ID, u.Email))
	return nil
}

func printError(err error) {
	ui.PrintError(err.Error())
}
