package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/easygenerator/auth-api/internal/core/domain"
	"github.com/easygenerator/auth-api/internal/core/ports"
)

// NewCreateAdminCmd bootstraps an ADMIN account. Self-registration only
// ever creates USERs.
//
//	authapi create-admin --name "Root" --email root@example.com --password 'S3cure!pass'
func NewCreateAdminCmd(app *App) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a user with the ADMIN role",
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := app.build(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close(context.Background())

			user, err := createAdmin(cmd.Context(), deps.users, name, email, password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin created: %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name of the admin")
	cmd.Flags().StringVar(&email, "email", "", "login email of the admin")
	cmd.Flags().StringVar(&password, "password", "", "initial password (min 8 characters)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func createAdmin(ctx context.Context, users ports.UserService, name, email, password string) (*domain.User, error) {
	if len(password) < 8 {
		return nil, domain.ValidationError([]domain.FieldError{{Field: "password", Message: "PASSWORD_MIN_LENGTH"}})
	}
	return users.Create(ctx, ports.CreateUserInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     domain.RoleAdmin,
	})
}
