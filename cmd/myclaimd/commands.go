package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"myclaim/internal/app"
	"myclaim/internal/claims"
	"myclaim/internal/documents"
	"myclaim/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			return a.Serve(ctx)
		})
	},
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Score queued claims and store the outcome",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			w, err := a.Worker()
			if err != nil {
				return err
			}
			return w.Run(ctx)
		})
	},
}

var migrateDown bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations, or revert the latest with --down",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Database.DSN == "" {
			return fmt.Errorf("database.dsn (or MC_DB_DSN) is required")
		}
		st, err := store.Open(cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer st.Close()
		ctx, cancel := signalContext(cmd.Context())
		defer cancel()
		apply := store.Migrate
		if migrateDown {
			apply = store.Rollback
		}
		if err := apply(ctx, st.DB()); err != nil {
			return err
		}
		version, err := store.SchemaVersion(ctx, st.DB())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
		return nil
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score <claim.json|->",
	Short: "Score one claim read from a JSON file or stdin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		var payload map[string]any
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("decode claim: %w", err)
		}
		features, err := claims.Normalize(payload)
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			res, err := a.Scorer.Score(ctx, features)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		})
	},
}

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a policy question from the indexed documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			return fmt.Errorf("question is required")
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			ans := a.RAG.Answer(ctx, query)
			return printJSON(cmd.OutOrStdout(), map[string]string{"answer": ans.Text, "source": ans.Source})
		})
	},
}

var extractKind string

var extractCmd = &cobra.Command{
	Use:   "extract <image|->",
	Short: "Extract claim fields from a document image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, ok := documents.Lookup(extractKind)
		if !ok {
			return fmt.Errorf("unknown kind %q", extractKind)
		}
		data, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			out, err := a.Documents.Analyze(ctx, kind, data, http.DetectContentType(data))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		})
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "revert the most recent migration")

	names := make([]string, 0, len(documents.Kinds()))
	for _, k := range documents.Kinds() {
		names = append(names, k.Name)
	}
	extractCmd.Flags().StringVar(&extractKind, "kind", documents.Damage.Name, "document kind: "+strings.Join(names, ", "))
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
