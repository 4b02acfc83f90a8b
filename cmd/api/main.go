package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/focusflow/core/cmd/api/commands"
)

// @title FocusFlow API
// @version 1.0
// @description Productivity backend with priority-matrix tasks, visual routine boards, and gentle notifications
// @termsOfService https://github.com/focusflow/core/blob/main/LICENSE

// @contact.name FocusFlow Support
// @contact.url https://github.com/focusflow/core
// @contact.email support@focusflow.dev

// @license.name MIT
// @license.url https://github.com/focusflow/core/blob/main/LICENSE

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	rootCmd := &cobra.Command{
		Use:   "focusflow",
		Short: "FocusFlow API Server",
		Long:  `FocusFlow is a productivity backend built around an Eisenhower priority matrix, step-by-step routine boards, and notifications that respect quiet hours.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
