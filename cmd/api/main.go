package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/recipebox/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "recipebox",
		Short: "RecipeBox API Server",
		Long:  `RecipeBox serves a single collection of recipes over HTTP, kept in one JSON file on disk.`,
	}

	rootCmd.PersistentFlags().String("config", "", "Path to a config file (yaml, toml or json)")

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewRecipesCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
