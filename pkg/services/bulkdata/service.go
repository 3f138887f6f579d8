// Package bulkdata moves governance reference data in and out as JSON, YAML
// or, for controls, CSV.
package bulkdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/de-tools/grc-admin/pkg/adapters"
	"github.com/de-tools/grc-admin/pkg/models/api"
	"github.com/de-tools/grc-admin/pkg/models/domain"
	controlsvc "github.com/de-tools/grc-admin/pkg/services/controls"
	domainsvc "github.com/de-tools/grc-admin/pkg/services/domains"
	obligationsvc "github.com/de-tools/grc-admin/pkg/services/obligations"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/controls"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/obligations"
)

type Resource string

const (
	ResourceControls    Resource = "controls"
	ResourceDomains     Resource = "domains"
	ResourceObligations Resource = "obligations"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

func ParseResource(s string) (Resource, error) {
	switch r := Resource(s); r {
	case ResourceControls, ResourceDomains, ResourceObligations:
		return r, nil
	}
	return "", domain.NewValidation("resource", "must be one of: controls domains obligations")
}

// ParseFormat defaults to JSON.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return FormatJSON, nil
	case "yml":
		return FormatYAML, nil
	case FormatJSON, FormatYAML, FormatCSV:
		return f, nil
	}
	return "", domain.NewValidation("format", "must be one of: json yaml csv")
}

// ContentType is the media type written for f.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatCSV:
		return "text/csv"
	default:
		return "application/json"
	}
}

// domainRecord refers to its parent by code so exports load into an empty database.
type domainRecord struct {
	api.CreateDomainRequest `yaml:",inline"`
	ParentCode string `json:"parent_code,omitempty" yaml:"parent_code,omitempty"`
}

type Service interface {
	Export(ctx context.Context, resource Resource, format Format, w io.Writer) error
	Import(ctx context.Context, resource Resource, format Format, r io.Reader, createdBy string) (domain.ImportResult, error)
}

type service struct {
	controls        controlsvc.Service
	controlStore    controls.Store
	domains         domainsvc.Service
	obligations     obligationsvc.Service
	obligationStore obligations.Store
}

func NewService(
	controlService controlsvc.Service,
	controlStore controls.Store,
	domainService domainsvc.Service,
	obligationService obligationsvc.Service,
	obligationStore obligations.Store,
) Service {
	return &service{
		controls:        controlService,
		controlStore:    controlStore,
		domains:         domainService,
		obligations:     obligationService,
		obligationStore: obligationStore,
	}
}

func (s *service) Export(ctx context.Context, resource Resource, format Format, w io.Writer) error {
	if format == FormatCSV {
		if resource != ResourceControls {
			return domain.NewValidation("format", "csv export is only available for controls")
		}
		return s.controls.ExportCSV(ctx, domain.ControlFilter{}, w)
	}

	var records any
	switch resource {
	case ResourceControls:
		items, err := s.controlStore.ListAll(ctx, domain.ControlFilter{})
		if err != nil {
			return err
		}
		out := make([]api.CreateControlRequest, 0, len(items))
		for _, c := range items {
			out = append(out, adapters.MapDomainControlToCreate(c))
		}
		records = out
	case ResourceDomains:
		tree, err := s.domains.Tree(ctx)
		if err != nil {
			return err
		}
		records = flatten(tree, "", []domainRecord{})
	case ResourceObligations:
		items, err := s.obligationStore.ListAll(ctx)
		if err != nil {
			return err
		}
		out := make([]api.CreateObligationRequest, 0, len(items))
		for _, o := range items {
			out = append(out, adapters.MapDomainObligationToCreate(o))
		}
		records = out
	default:
		return domain.NewValidation("resource", fmt.Sprintf("unsupported resource %q", resource))
	}
	return encode(w, format, records)
}

// flatten walks the tree parents first.
func flatten(nodes []*domain.DomainNode, parentCode string, out []domainRecord) []domainRecord {
	for _, n := range nodes {
		rec := domainRecord{CreateDomainRequest: adapters.MapDomainControlDomainToCreate(n.Domain), ParentCode: parentCode}
		rec.ParentID = ""
		out = append(out, rec)
		out = flatten(n.Children, n.Domain.Code, out)
	}
	return out
}

func encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}

func decode(r io.Reader, format Format, v any) error {
	var err error
	switch format {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(v)
	case FormatJSON:
		err = json.NewDecoder(r).Decode(v)
	default:
		return domain.NewValidation("format", "import accepts json or yaml")
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return domain.NewValidation("body", "malformed "+string(format)+": "+err.Error())
	}
	return nil
}

// Import creates each record whose natural key is new. Records with an
// existing identifier or code are skipped; invalid records are reported by
// their 1-based position.
func (s *service) Import(ctx context.Context, resource Resource, format Format, r io.Reader, createdBy string) (domain.ImportResult, error) {
	var (
		result domain.ImportResult
		err    error
	)
	switch resource {
	case ResourceControls:
		result, err = s.importControls(ctx, format, r, createdBy)
	case ResourceDomains:
		result, err = s.importDomains(ctx, format, r, createdBy)
	case ResourceObligations:
		result, err = s.importObligations(ctx, format, r, createdBy)
	default:
		return domain.ImportResult{}, domain.NewValidation("resource", fmt.Sprintf("unsupported resource %q", resource))
	}
	if err != nil {
		return result, err
	}

	zerolog.Ctx(ctx).Info().
		Str("resource", string(resource)).
		Str("format", string(format)).
		Int("created", result.Created).
		Int("skipped", result.Skipped).
		Int("errors", len(result.Errors)).
		Msg("bulk import finished")
	return result, nil
}

func (s *service) importControls(ctx context.Context, format Format, r io.Reader, createdBy string) (domain.ImportResult, error) {
	var records []api.CreateControlRequest
	if err := decode(r, format, &records); err != nil {
		return domain.ImportResult{}, err
	}

	invalid := []domain.ImportRowError{}
	rows := make([]domain.UnifiedControl, 0, len(records))
	positions := make([]int, 0, len(records))
	for i, rec := range records {
		if err := api.Validate(rec); err != nil {
			invalid = append(invalid, domain.ImportRowError{Row: i + 1, Error: err.Error()})
			continue
		}
		rows = append(rows, adapters.MapCreateControlToDomain(rec))
		positions = append(positions, i+1)
	}

	result, err := s.controls.Import(ctx, rows, createdBy)
	if err != nil {
		return result, err
	}
	for i := range result.Errors {
		result.Errors[i].Row = positions[result.Errors[i].Row-1]
	}
	result.Errors = append(invalid, result.Errors...)
	sort.Slice(result.Errors, func(i, j int) bool { return result.Errors[i].Row < result.Errors[j].Row })
	return result, nil
}

func (s *service) importDomains(ctx context.Context, format Format, r io.Reader, createdBy string) (domain.ImportResult, error) {
	var records []domainRecord
	if err := decode(r, format, &records); err != nil {
		return domain.ImportResult{}, err
	}
	existing, err := s.domains.List(ctx, false)
	if err != nil {
		return domain.ImportResult{}, err
	}
	byCode := make(map[string]string, len(existing))
	for _, d := range existing {
		byCode[d.Code] = d.ID
	}

	result := domain.ImportResult{Errors: []domain.ImportRowError{}}
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := api.Validate(rec.CreateDomainRequest); err != nil {
			result.Errors = append(result.Errors, domain.ImportRowError{Row: i + 1, Error: err.Error()})
			continue
		}
		if _, ok := byCode[rec.Code]; ok {
			result.Skipped++
			continue
		}
		d := adapters.MapCreateDomainToDomain(rec.CreateDomainRequest)
		if rec.ParentCode != "" {
			parentID, ok := byCode[rec.ParentCode]
			if !ok {
				result.Errors = append(result.Errors, domain.ImportRowError{
					Row:   i + 1,
					Error: fmt.Sprintf("unknown parent_code %q", rec.ParentCode),
				})
				continue
			}
			d.ParentID = parentID
		}
		d.CreatedBy = createdBy
		created, err := s.domains.Create(ctx, &d)
		switch {
		case errors.Is(err, domain.ErrConflict):
			result.Skipped++
		case err != nil:
			result.Errors = append(result.Errors, domain.ImportRowError{Row: i + 1, Error: err.Error()})
		default:
			byCode[created.Code] = created.ID
			result.Created++
		}
	}
	return result, nil
}

func (s *service) importObligations(ctx context.Context, format Format, r io.Reader, createdBy string) (domain.ImportResult, error) {
	var records []api.CreateObligationRequest
	if err := decode(r, format, &records); err != nil {
		return domain.ImportResult{}, err
	}

	result := domain.ImportResult{Errors: []domain.ImportRowError{}}
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := api.Validate(rec); err != nil {
			result.Errors = append(result.Errors, domain.ImportRowError{Row: i + 1, Error: err.Error()})
			continue
		}
		o := adapters.MapCreateObligationToDomain(rec)
		o.CreatedBy = createdBy
		_, err := s.obligations.Create(ctx, &o)
		switch {
		case errors.Is(err, domain.ErrConflict):
			result.Skipped++
		case err != nil:
			result.Errors = append(result.Errors, domain.ImportRowError{Row: i + 1, Error: err.Error()})
		default:
			result.Created++
		}
	}
	return result, nil
}
