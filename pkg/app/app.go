// Package app wires configuration into stores, services and the HTTP API.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/de-tools/grc-admin/pkg/archive"
	"github.com/de-tools/grc-admin/pkg/auth"
	"github.com/de-tools/grc-admin/pkg/auth/policy"
	"github.com/de-tools/grc-admin/pkg/config"
	"github.com/de-tools/grc-admin/pkg/events"
	"github.com/de-tools/grc-admin/pkg/metrics"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	"github.com/de-tools/grc-admin/pkg/scheduler"
	"github.com/de-tools/grc-admin/pkg/server"
	"github.com/de-tools/grc-admin/pkg/services/assetcontrol"
	"github.com/de-tools/grc-admin/pkg/services/audit"
	"github.com/de-tools/grc-admin/pkg/services/bulkdata"
	"github.com/de-tools/grc-admin/pkg/services/controls"
	"github.com/de-tools/grc-admin/pkg/services/domains"
	"github.com/de-tools/grc-admin/pkg/services/exceptions"
	"github.com/de-tools/grc-admin/pkg/services/frameworks"
	"github.com/de-tools/grc-admin/pkg/services/obligations"
	"github.com/de-tools/grc-admin/pkg/services/policies"
	"github.com/de-tools/grc-admin/pkg/services/reports"
	"github.com/de-tools/grc-admin/pkg/services/sops"
	"github.com/de-tools/grc-admin/pkg/services/workflow"
	"github.com/de-tools/grc-admin/pkg/store/sqldb"
	assetcontrolstore "github.com/de-tools/grc-admin/pkg/store/sqldb/assetcontrol"
	auditstore "github.com/de-tools/grc-admin/pkg/store/sqldb/audit"
	controlstore "github.com/de-tools/grc-admin/pkg/store/sqldb/controls"
	domainstore "github.com/de-tools/grc-admin/pkg/store/sqldb/domains"
	exceptionstore "github.com/de-tools/grc-admin/pkg/store/sqldb/exceptions"
	frameworkstore "github.com/de-tools/grc-admin/pkg/store/sqldb/frameworks"
	obligationstore "github.com/de-tools/grc-admin/pkg/store/sqldb/obligations"
	policystore "github.com/de-tools/grc-admin/pkg/store/sqldb/policies"
	reportstore "github.com/de-tools/grc-admin/pkg/store/sqldb/reports"
	sopstore "github.com/de-tools/grc-admin/pkg/store/sqldb/sops"
	workflowstore "github.com/de-tools/grc-admin/pkg/store/sqldb/workflow"
)

// App holds every long-lived component of one process.
type App struct {
	Config    *config.Config
	DB        *sqldb.DB
	Metrics   *metrics.Metrics
	Publisher events.Publisher
	Tokens    *auth.Tokens
	Policy    *policy.Engine

	Audit        audit.Service
	Controls     controls.Service
	AssetControl assetcontrol.Service
	Frameworks   frameworks.Service
	Domains      domains.Service
	SOPs         sops.Service
	Policies     policies.Service
	Exceptions   exceptions.Service
	Obligations  obligations.Service
	Reports      reports.Service
	BulkData     bulkdata.Service
	Workflow     *workflow.DefaultController
}

type stores struct {
	audit        auditstore.Store
	controls     controlstore.Store
	assetControl assetcontrolstore.Store
	frameworks   frameworkstore.Store
	domains      domainstore.Store
	sops         sopstore.Store
	policies     policystore.Store
	exceptions   exceptionstore.Store
	obligations  obligationstore.Store
	reports      reportstore.Store
	workflow     workflowstore.Store
}

func newStores(db *sqldb.DB) (*stores, error) {
	var (
		s   stores
		err error
	)
	if s.audit, err = auditstore.NewStore(db); err != nil {
		return nil, fmt.Errorf("failed to create audit store: %w", err)
	}
	if s.controls, err = controlstore.NewStore(db); err != nil {
		return nil, fmt.Errorf("failed to create control store: %w", err)
	}
	if s.assetControl, err = assetcontrolstore.NewStore(db); err != nil {
		return nil, fmt.Errorf("failed to create asset control store: %w", err)
	}
	if s.frameworks, err = frameworkstore.NewStore(db); err != nil {
		return nil, fmt.Errorf("failed to create framework store: %w", err)
	}
	if s.domains, err = domainstore.NewStore(db); err != nil {
		return nil, fmt.Errorf("failed to create domain store: %w", err)
	}
	if s.sops, err = sopstore.NewStore(db); err != nil {
		return nil, fmt.Errorf("failed to create sop store: %w", err)
	}
	if s.policies, err = policystore.NewStore(db); err != nil {
		return nil, fmt.Errorf("failed to create policy store: %w", err)
	}
	if s.exceptions, err = exceptionstore.NewStore(db); err != nil {
		return nil, fmt.Errorf("failed to create exception store: %w", err)
	}
	if s.obligations, err = obligationstore.NewStore(db); err != nil {
		return nil, fmt.Errorf("failed to create obligation store: %w", err)
	}
	if s.reports, err = reportstore.NewStore(db); err != nil {
		return nil, fmt.Errorf("failed to create report store: %w", err)
	}
	if s.workflow, err = workflowstore.NewStore(db); err != nil {
		return nil, fmt.Errorf("failed to create workflow store: %w", err)
	}
	return &s, nil
}

// New opens the database, applies migrations and builds every service.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := sqldb.NewDB(ctx, sqldb.Settings{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a, err := build(ctx, cfg, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func build(ctx context.Context, cfg *config.Config, db *sqldb.DB) (*App, error) {
	s, err := newStores(db)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}
	var custom string
	if cfg.Auth.PolicyFile != "" {
		raw, err := os.ReadFile(cfg.Auth.PolicyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read policy file: %w", err)
		}
		custom = string(raw)
	}
	engine, err := policy.NewEngine(ctx, custom)
	if err != nil {
		return nil, err
	}

	publisher, err := events.NewPublisher(events.Settings{URL: cfg.Audit.NATS.URL, Name: cfg.Telemetry.ServiceName})
	if err != nil {
		return nil, err
	}
	archiver, err := archive.New(ctx, archive.Settings{
		Bucket:  cfg.Audit.Archive.Bucket,
		Prefix:  cfg.Audit.Archive.Prefix,
		Region:  cfg.Audit.Archive.Region,
		Profile: cfg.Audit.Archive.Profile,
	})
	if err != nil {
		publisher.Close()
		return nil, err
	}

	m := metrics.New()
	ctrl := workflow.NewController(s.workflow, db, publisher, m)
	ctrl.Register(domain.EntitySOP, s.sops)
	ctrl.Register(domain.EntityPolicy, s.policies)
	ctrl.Register(domain.EntityPolicyException, s.exceptions)
	ctrl.Register(domain.EntityControl, s.controls)
	ctrl.Register(domain.EntityObligation, s.obligations)

	controlService := controls.NewService(s.controls, ctrl)
	domainService := domains.NewService(s.domains)
	obligationService := obligations.NewService(s.obligations, ctrl)

	return &App{
		Config:    cfg,
		DB:        db,
		Metrics:   m,
		Publisher: publisher,
		Tokens:    tokens,
		Policy:    engine,

		Audit:        audit.NewService(s.audit, publisher, archiver, m),
		Controls:     controlService,
		AssetControl: assetcontrol.NewService(s.assetControl, s.controls, db),
		Frameworks:   frameworks.NewService(s.frameworks, s.controls),
		Domains:      domainService,
		SOPs:         sops.NewService(s.sops, db, ctrl),
		Policies:     policies.NewService(s.policies, ctrl),
		Exceptions:   exceptions.NewService(s.exceptions, ctrl),
		Obligations:  obligationService,
		Reports:      reports.NewService(s.reports, publisher, m),
		BulkData:     bulkdata.NewService(controlService, s.controls, domainService, obligationService, s.obligations),
		Workflow:     ctrl,
	}, nil
}

// ServerConfig describes the HTTP API for a.
func (a *App) ServerConfig() server.Config {
	return server.Config{
		Addr:            a.Config.Server.Addr(),
		ShutdownTimeout: a.Config.Server.ShutdownTimeout,
		ReadTimeout:     a.Config.Server.ReadTimeout,
		WriteTimeout:    a.Config.Server.WriteTimeout,
		Dependencies: server.Dependencies{
			DB:           a.DB,
			Tokens:       a.Tokens,
			Authorizer:   auth.NewAuthorizer(a.Policy),
			Metrics:      a.Metrics,
			Audit:        a.Audit,
			Controls:     a.Controls,
			AssetControl: a.AssetControl,
			Frameworks:   a.Frameworks,
			Domains:      a.Domains,
			SOPs:         a.SOPs,
			Policies:     a.Policies,
			Exceptions:   a.Exceptions,
			Obligations:  a.Obligations,
			Reports:      a.Reports,
			BulkData:     a.BulkData,
			Workflow:     a.Workflow,
		},
	}
}

// Scheduler builds the maintenance scheduler; jobs are added but not started.
func (a *App) Scheduler(logger zerolog.Logger) (*scheduler.Scheduler, error) {
	s := scheduler.New(logger, a.Metrics)
	jobs := scheduler.Jobs(scheduler.Settings{
		AuditRetentionDays:   a.Config.Audit.RetentionDays,
		AuditCleanupSchedule: a.Config.Audit.CleanupSchedule,
		ReportSchedule:       a.Config.Reports.Schedule,
		ReportPeriod:         domain.ReportPeriod(a.Config.Reports.Period),
		SweepSchedule:        a.Config.Scheduler.SweepSchedule,
	}, scheduler.Dependencies{
		Audit:      a.Audit,
		Reports:    a.Reports,
		SOPs:       a.SOPs,
		Exceptions: a.Exceptions,
	})
	for _, job := range jobs {
		if err := s.Add(job); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (a *App) Close() error {
	return errors.Join(a.Publisher.Close(), a.DB.Close())
}
