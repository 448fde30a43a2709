package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/javaDevJT/auth-hooker/internal/adapters/reaper"
	"github.com/javaDevJT/auth-hooker/internal/bootstrap"
	"github.com/javaDevJT/auth-hooker/internal/data"
	"github.com/javaDevJT/auth-hooker/internal/data/cryptoutil"
	domainauth "github.com/javaDevJT/auth-hooker/internal/domain/auth"
	"github.com/javaDevJT/auth-hooker/internal/service"
)

func runGenerateKey(cmdCtx *commandContext, _ []string) error {
	key, err := cryptoutil.GenerateKey()
	if err != nil {
		return err
	}
	writef(cmdCtx.Out, "%s\n", key)
	return nil
}

func runMigrations(cmdCtx *commandContext, _ []string) error {
	return withDB(cmdCtx, func(ctx context.Context, db *sql.DB) error {
		return bootstrap.RunMigrations(ctx, db, cmdCtx.Logger)
	})
}

type createProviderOptions struct {
	Request data.CreateProviderRequest
}

func parseCreateProviderFlags(args []string) (createProviderOptions, error) {
	fs := flag.NewFlagSet("create-provider", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	tenant := fs.String("tenant", "", "tenant ID")
	typ := fs.String("type", "", "provider type (google, github, microsoft, discord, custom)")
	name := fs.String("name", "", "display name, unique per tenant")
	clientID := fs.String("client-id", "", "OAuth client ID")
	clientSecret := fs.String("client-secret", "", "OAuth client secret (stored encrypted)")
	rawConfig := fs.String("config", "{}", "provider config JSON (endpoints, issuer, scopes)")
	if err := fs.Parse(args); err != nil {
		return createProviderOptions{}, err
	}

	var cfg map[string]any
	if err := json.Unmarshal([]byte(*rawConfig), &cfg); err != nil {
		return createProviderOptions{}, fmt.Errorf("parse -config: %w", err)
	}
	return createProviderOptions{Request: data.CreateProviderRequest{
		TenantID:     *tenant,
		Type:         domainauth.ProviderType(*typ),
		Name:         *name,
		ClientID:     *clientID,
		ClientSecret: *clientSecret,
		Config:       cfg,
	}}, nil
}

func runCreateProvider(cmdCtx *commandContext, args []string) error {
	opts, err := parseCreateProviderFlags(args)
	if err != nil {
		return err
	}
	enc, err := bootstrap.CreateEncryptor(cmdCtx.Config.SecretsEncryptionKey)
	if err != nil {
		return err
	}
	return withDB(cmdCtx, func(ctx context.Context, db *sql.DB) error {
		p, err := data.NewProviderRepo(db, enc).Create(ctx, opts.Request)
		if err != nil {
			return err
		}
		writef(cmdCtx.Out, "%s\n", p.ID)
		return nil
	})
}

type addMappingOptions struct {
	ProviderID string
	Request    domainauth.ClaimMappingRequest
}

func parseAddMappingFlags(args []string) (addMappingOptions, error) {
	fs := flag.NewFlagSet("add-mapping", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	provider := fs.String("provider", "", "provider ID")
	name := fs.String("name", "", "mapping name")
	description := fs.String("description", "", "mapping description")
	source := fs.String("source", "", "source claim path (dot notation, [n] indexes)")
	target := fs.String("target", "", "target field")
	priority := fs.Int("priority", 0, "higher runs first and wins per target")
	rawTransform := fs.String("transform", "", "transform JSON, e.g. {\"toLowerCase\":true}")
	if err := fs.Parse(args); err != nil {
		return addMappingOptions{}, err
	}
	if strings.TrimSpace(*provider) == "" {
		return addMappingOptions{}, errors.New("-provider is required")
	}

	req := domainauth.ClaimMappingRequest{
		Name:        name,
		Description: description,
		SourcePath:  source,
		TargetField: target,
		Priority:    priority,
	}
	if *rawTransform != "" {
		var tr domainauth.Transform
		if err := json.Unmarshal([]byte(*rawTransform), &tr); err != nil {
			return addMappingOptions{}, fmt.Errorf("parse -transform: %w", err)
		}
		req.Transform = &tr
	}
	return addMappingOptions{ProviderID: *provider, Request: req}, nil
}

func newMappingService(db *sql.DB, cmdCtx *commandContext) (*service.ClaimMappingService, error) {
	return service.NewClaimMappingService(service.ClaimMappingServiceOptions{
		Repo:   data.NewClaimMappingRepo(db),
		Logger: cmdCtx.Logger,
	})
}

func runAddMapping(cmdCtx *commandContext, args []string) error {
	opts, err := parseAddMappingFlags(args)
	if err != nil {
		return err
	}
	return withDB(cmdCtx, func(ctx context.Context, db *sql.DB) error {
		svc, err := newMappingService(db, cmdCtx)
		if err != nil {
			return err
		}
		m, err := svc.Create(ctx, opts.ProviderID, opts.Request)
		if err != nil {
			return err
		}
		writef(cmdCtx.Out, "%s\n", m.ID)
		return nil
	})
}

func parseIDFlag(name, flagName string, args []string) (string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	id := fs.String(flagName, "", flagName+" ID")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if strings.TrimSpace(*id) == "" {
		return "", fmt.Errorf("-%s is required", flagName)
	}
	return *id, nil
}

func runListMappings(cmdCtx *commandContext, args []string) error {
	providerID, err := parseIDFlag("list-mappings", "provider", args)
	if err != nil {
		return err
	}
	return withDB(cmdCtx, func(ctx context.Context, db *sql.DB) error {
		svc, err := newMappingService(db, cmdCtx)
		if err != nil {
			return err
		}
		list, err := svc.List(ctx, providerID)
		if err != nil {
			return err
		}
		return printMappings(cmdCtx.Out, list)
	})
}

func printMappings(w io.Writer, list []domainauth.ClaimMapping) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	writef(tw, "ID\tPRIORITY\tACTIVE\tSOURCE\tTARGET\tNAME\n")
	for _, m := range list {
		writef(tw, "%s\t%d\t%t\t%s\t%s\t%s\n", m.ID, m.Priority, m.IsActive, m.SourcePath, m.TargetField, m.Name)
	}
	return tw.Flush()
}

func runDeleteMapping(cmdCtx *commandContext, args []string) error {
	id, err := parseIDFlag("delete-mapping", "id", args)
	if err != nil {
		return err
	}
	return withDB(cmdCtx, func(ctx context.Context, db *sql.DB) error {
		svc, err := newMappingService(db, cmdCtx)
		if err != nil {
			return err
		}
		return svc.Delete(ctx, id)
	})
}

func runSweep(cmdCtx *commandContext, _ []string) error {
	return withDB(cmdCtx, func(ctx context.Context, db *sql.DB) error {
		runner, err := reaper.NewRunner(reaper.RunnerOptions{
			Sessions: data.NewSessionRepo(db),
			Config:   cmdCtx.Config,
			Logger:   cmdCtx.Logger,
		})
		if err != nil {
			return err
		}
		return runner.RunOnce(ctx)
	})
}
