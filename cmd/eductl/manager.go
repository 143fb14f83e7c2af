package main

import (
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	appRepos "github.com/yigit/edulearn/internal/app/repositories"
	"github.com/yigit/edulearn/internal/seed"
)

// managerPasswordEnv lets scripts avoid putting the password on the command line.
const managerPasswordEnv = "EDULEARN_MANAGER_PASSWORD"

var managerInput seed.ManagerInput

var createManagerCmd = &cobra.Command{
	Use:   "create-manager",
	Short: "create an active, verified manager account",
	Long: `Managers cannot self-register. The password is taken from --password or,
when omitted, from the ` + managerPasswordEnv + ` environment variable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if managerInput.Password == "" {
			managerInput.Password = os.Getenv(managerPasswordEnv)
		}
		if managerInput.Password == "" {
			return fmt.Errorf("password is required (--password or %s)", managerPasswordEnv)
		}

		return withPool(cmd.Context(), func(rt *runtime, pool *pgxpool.Pool) error {
			user, err := seed.CreateManager(cmd.Context(), appRepos.NewUserRepository(pool), managerInput, rt.logger)
			if err != nil {
				return fmt.Errorf("could not create manager: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created manager %s (id %d)\n", user.Email, user.ID)
			return nil
		})
	},
}

func init() {
	f := createManagerCmd.Flags()
	f.StringVarP(&managerInput.Email, "email", "e", "", "login email of the manager")
	f.StringVarP(&managerInput.Password, "password", "p", "", "initial password")
	f.StringVar(&managerInput.FirstName, "first-name", "", "first name")
	f.StringVar(&managerInput.LastName, "last-name", "", "last name")
	f.StringVar(&managerInput.Phone, "phone", "", "contact phone")
	_ = createManagerCmd.MarkFlagRequired("email")
	_ = createManagerCmd.MarkFlagRequired("first-name")
	rootCmd.AddCommand(createManagerCmd)
}
