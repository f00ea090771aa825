package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// Superuser holds the answers of the createsuperuser prompt.
type Superuser struct {
	Email    string
	Name     string
	Password string
}

// RunSuperuserForm asks for any field not already set in s.
func RunSuperuserForm(s *Superuser) error {
	var fields []huh.Field

	if s.Email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Placeholder("admin@example.com").
			Value(&s.Email).
			Validate(required("email")))
	}

	if s.Name == "" {
		fields = append(fields, huh.NewInput().
			Title("Name").
			Description("Optional").
			Value(&s.Name))
	}

	if s.Password == "" {
		var confirm string
		fields = append(fields,
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&s.Password).
				Validate(required("password")),
			huh.NewInput().
				Title("Password (again)").
				EchoMode(huh.EchoModePassword).
				Value(&confirm).
				Validate(func(v string) error {
					if v != s.Password {
						return errors.New("passwords do not match")
					}
					return nil
				}),
		)
	}

	if len(fields) == 0 {
		return nil
	}

	return huh.NewForm(huh.NewGroup(fields...)).
		WithTheme(huh.ThemeCatppuccin()).
		Run()
}

func required(name string) func(string) error {
	return func(v string) error {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}
