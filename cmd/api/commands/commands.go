package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/recipebox/core/internal/adapters/repository"
	"github.com/recipebox/core/internal/domain/entities"
	"github.com/recipebox/core/internal/infrastructure/config"
	"github.com/recipebox/core/internal/infrastructure/logger"
	"github.com/recipebox/core/internal/infrastructure/server"
)

// Build information, set with -ldflags
var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "development"
)

const shutdownTimeout = 10 * time.Second

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the RecipeBox API server",
		Long:  "Start the RecipeBox API server with the recipe routes, static assets and middleware",
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			return runServer(cmd.Context(), configFile)
		},
	}
}

// NewRecipesCommand creates the recipes command with subcommands
func NewRecipesCommand() *cobra.Command {
	recipesCmd := &cobra.Command{
		Use:   "recipes",
		Short: "Recipe collection commands",
		Long:  "Inspect the recipe collection stored on disk",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print the stored recipe collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile, _ := cmd.Flags().GetString("config")
			format, _ := cmd.Flags().GetString("format")

			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			return listRecipes(cmd.Context(), cmd.OutOrStdout(), cfg.Store.Path, format)
		},
	}
	listCmd.Flags().String("format", "json", "Output format (json, yaml)")

	recipesCmd.AddCommand(listCmd)
	return recipesCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print RecipeBox version",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "RecipeBox %s\n", Version)
			fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
			fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
		},
	}
}

func runServer(ctx context.Context, configFile string) error {
	loader := config.NewLoader(configFile)
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	loader.OnChange(func(updated *config.Config) {
		if updated.Logger.Level == appLogger.Level() {
			return
		}
		if err := appLogger.SetLevel(updated.Logger.Level); err != nil {
			appLogger.Warnw("Ignoring log level change", "error", err)
			return
		}
		appLogger.Infow("Log level changed", "level", updated.Logger.Level)
	}, func(err error) {
		appLogger.Warnw("Ignoring invalid configuration change", "error", err)
	})

	srv, err := server.New(cfg, appLogger)
	if err != nil {
		appLogger.Errorw("Failed to initialize server", "error", err)
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		appLogger.Infow("Starting RecipeBox API server",
			"port", cfg.Server.Port,
			"environment", cfg.App.Environment,
			"store", cfg.Store.Path,
			"strict", cfg.Store.Strict,
		)
		errCh <- srv.Start(cfg.Server.Address())
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Errorw("Server failed to start", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	appLogger.Infow("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorw("Server forced to shutdown", "error", err)
		return err
	}

	appLogger.Infow("Server exited gracefully")
	return nil
}

func listRecipes(ctx context.Context, out io.Writer, storePath, format string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	repo := repository.NewRecipeRepository(repository.NewFileStore(storePath))

	data, err := repo.List(ctx)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		_, err = fmt.Fprintln(out, string(data))
		return err
	case "yaml":
		coll, err := entities.DecodeCollection(data)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", storePath, err)
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(collectionNode(coll)); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format: %q (supported: json, yaml)", format)
	}
}

// collectionNode renders the collection as a YAML sequence, keeping the key
// order of every record
func collectionNode(coll entities.Collection) *yaml.Node {
	node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, r := range coll {
		node.Content = append(node.Content, yamlNode(gjson.ParseBytes(r)))
	}
	if len(node.Content) == 0 {
		node.Style = yaml.FlowStyle
	}
	return node
}

func yamlNode(v gjson.Result) *yaml.Node {
	switch {
	case v.IsObject():
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		v.ForEach(func(key, value gjson.Result) bool {
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key.String()},
				yamlNode(value),
			)
			return true
		})
		if len(node.Content) == 0 {
			node.Style = yaml.FlowStyle
		}
		return node
	case v.IsArray():
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		v.ForEach(func(_, value gjson.Result) bool {
			node.Content = append(node.Content, yamlNode(value))
			return true
		})
		if len(node.Content) == 0 {
			node.Style = yaml.FlowStyle
		}
		return node
	}

	switch v.Type {
	case gjson.String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.Str}
	case gjson.Number:
		if _, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: v.Raw}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: v.Raw}
	case gjson.True, gjson.False:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: v.Raw}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}
