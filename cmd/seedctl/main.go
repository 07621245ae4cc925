// Command seedctl drives the seeding pipeline without the popup: list an
// entity's forms, or create synthetic records headless from CI or a shell.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"dynaseed/internal/config"
	"dynaseed/internal/dynamics"
	"dynaseed/internal/engine"
	"dynaseed/internal/metadata"
)

var (
	environmentURL string
	entityName     string
)

func main() {
	// Same convention as the server: .env is optional sugar for local runs.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "seedctl",
		Short: "Seed synthetic records into a Dynamics CRM environment",
		Long: `seedctl creates test records in a Dynamics CRM environment through its
OData Web API. Field values are synthesized from the entity's own attribute
metadata: strings from logical names, picklists and lookups from live data.

Quick start:
  seedctl forms --entity contact
  seedctl seed --entity contact --quantity 5 --required-only
  seedctl seed --entity account --fields name,telephone1 --quantity 2

The environment URL comes from --url, the DYNAMICS_URL environment variable,
or app.yaml; the bearer token from DYNAMICS_TOKEN.`,
	}
	rootCmd.PersistentFlags().StringVar(&environmentURL, "url", "", "environment URL (default from config)")
	rootCmd.PersistentFlags().StringVar(&entityName, "entity", "", "entity logical name, e.g. contact")

	rootCmd.AddCommand(formsCmd(), seedCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func formsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forms",
		Short: "List an entity's main forms and their data-bound fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			seeder, _, err := buildSeeder()
			if err != nil {
				return err
			}

			forms, err := seeder.Forms(cmd.Context(), entityName)
			if err != nil {
				return err
			}
			if len(forms) == 0 {
				fmt.Printf("No main forms for %s\n", entityName)
				return nil
			}
			for _, form := range forms {
				fmt.Printf("%s (%s)\n", form.Name, form.ID)
				for _, field := range form.Fields {
					fmt.Printf("  %s\n", field)
				}
			}
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var (
		quantity     int
		requiredOnly bool
		fields       string
		formName     string
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create synthetic records",
		RunE: func(cmd *cobra.Command, args []string) error {
			seeder, cfg, err := buildSeeder()
			if err != nil {
				return err
			}
			if quantity > cfg.Seeder.MaxQuantity {
				return fmt.Errorf("quantity %d exceeds the configured maximum of %d", quantity, cfg.Seeder.MaxQuantity)
			}

			policy, err := resolvePolicy(cmd.Context(), seeder, requiredOnly, fields, formName)
			if err != nil {
				return err
			}

			req := engine.Request{
				Entity:   entityName,
				Quantity: quantity,
				Policy:   policy,
			}
			failed := 0
			err = seeder.Run(cmd.Context(), req, func(r engine.RecordResult) {
				if r.Err != nil {
					failed++
				}
				fmt.Printf("record %d/%d: %s\n", r.Index, quantity, r.Response())
			})
			if err != nil {
				return err
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d record(s) failed", failed, quantity)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&quantity, "quantity", 1, "number of records to create")
	cmd.Flags().BoolVar(&requiredOnly, "required-only", false, "populate only application-required fields")
	cmd.Flags().StringVar(&fields, "fields", "", "comma-separated field logical names to populate")
	cmd.Flags().StringVar(&formName, "form", "", "populate the fields of this named form")
	return cmd
}

// resolvePolicy maps the flag combination to a selection policy. --form is
// resolved to its extracted field list before the pipeline starts.
func resolvePolicy(ctx context.Context, seeder *engine.Seeder, requiredOnly bool, fields, formName string) (metadata.SelectionPolicy, error) {
	switch {
	case requiredOnly:
		return metadata.RequiredOnlyPolicy(), nil
	case fields != "":
		return metadata.FormFieldsPolicy(fields), nil
	case formName != "":
		forms, err := seeder.Forms(ctx, entityName)
		if err != nil {
			return metadata.SelectionPolicy{}, err
		}
		for _, form := range forms {
			if strings.EqualFold(form.Name, formName) {
				return metadata.SelectionPolicy{FormFields: form.Fields}, nil
			}
		}
		return metadata.SelectionPolicy{}, fmt.Errorf("no form named %q on %s", formName, entityName)
	default:
		return metadata.SelectionPolicy{}, errors.New("pick one of --required-only, --fields or --form")
	}
}

func buildSeeder() (*engine.Seeder, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	if environmentURL == "" {
		environmentURL = cfg.Dynamics.URL
	}
	if environmentURL == "" {
		return nil, nil, errors.New("no environment URL: pass --url or set dynamics.url")
	}
	if entityName == "" {
		return nil, nil, errors.New("--entity is required")
	}

	gw := dynamics.NewClient(environmentURL, cfg.Dynamics.APIPath, cfg.Dynamics.Token,
		&http.Client{Timeout: cfg.HTTP.Timeout()})
	return engine.NewSeeder(gw), cfg, nil
}
