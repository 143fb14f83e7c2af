package main

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	appRepos "github.com/yigit/edulearn/internal/app/repositories"
	"github.com/yigit/edulearn/internal/seed"
)

var cleanupTokensCmd = &cobra.Command{
	Use:   "cleanup-tokens",
	Short: "delete expired refresh, verification and password reset tokens",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPool(cmd.Context(), func(rt *runtime, pool *pgxpool.Pool) error {
			ctx := cmd.Context()
			refresh, err := appRepos.NewTokenRepository(pool).CleanupExpiredTokens(ctx)
			if err != nil {
				return err
			}
			verification, err := appRepos.NewVerificationTokenRepository(pool).CleanupExpired(ctx)
			if err != nil {
				return err
			}
			reset, err := appRepos.NewPasswordResetTokenRepository(pool).CleanupExpired(ctx)
			if err != nil {
				return err
			}
			rt.logger.Info().
				Int64("refresh", refresh).
				Int64("verification", verification).
				Int64("passwordReset", reset).
				Msg("Expired tokens removed")
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d refresh, %d verification, %d reset tokens\n", refresh, verification, reset)
			return nil
		})
	},
}

var seedFAQCmd = &cobra.Command{
	Use:   "seed-faq",
	Short: "load the default FAQ tree into an empty FAQ",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPool(cmd.Context(), func(rt *runtime, pool *pgxpool.Pool) error {
			n, err := seed.SeedFAQ(cmd.Context(), appRepos.NewFAQRepository(pool), rt.logger)
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "FAQ already has categories, nothing to do")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d FAQ categories\n", n)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(cleanupTokensCmd, seedFAQCmd)
}
