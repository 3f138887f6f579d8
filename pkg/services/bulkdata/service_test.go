package bulkdata

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/de-tools/grc-admin/pkg/models/domain"
	controlsvc "github.com/de-tools/grc-admin/pkg/services/controls"
	domainsvc "github.com/de-tools/grc-admin/pkg/services/domains"
	obligationsvc "github.com/de-tools/grc-admin/pkg/services/obligations"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/controls"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/domains"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/obligations"
	"github.com/de-tools/grc-admin/pkg/store/sqldb/sqldbtest"
)

func setupService(t *testing.T) Service {
	db := sqldbtest.NewDB(t)
	controlStore, err := controls.NewStore(db)
	require.NoError(t, err)
	domainStore, err := domains.NewStore(db)
	require.NoError(t, err)
	obligationStore, err := obligations.NewStore(db)
	require.NoError(t, err)

	return NewService(
		controlsvc.NewService(controlStore, nil),
		controlStore,
		domainsvc.NewService(domainStore),
		obligationsvc.NewService(obligationStore, nil),
		obligationStore,
	)
}

const domainsYAML = `
- name: Access Control
  code: AC
  display_order: 1
- name: Identity
  code: AC-ID
  parent_code: AC
- name: Orphan
  code: OR
  parent_code: MISSING
- name: ""
  code: EMPTY
`

func TestService_ImportDomains(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	result, err := svc.Import(ctx, ResourceDomains, FormatYAML, strings.NewReader(domainsYAML), "importer")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Zero(t, result.Skipped)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Error, "MISSING")
	assert.Equal(t, 4, result.Errors[1].Row)

	again, err := svc.Import(ctx, ResourceDomains, FormatYAML, strings.NewReader(domainsYAML), "importer")
	require.NoError(t, err)
	assert.Zero(t, again.Created)
	assert.Equal(t, 2, again.Skipped)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, ResourceDomains, FormatJSON, &buf))
	var exported []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &exported))
	require.Len(t, exported, 2)
	assert.Equal(t, "AC", exported[0]["code"])
	assert.Equal(t, "AC", exported[1]["parent_code"])
	assert.Empty(t, exported[1]["parent_id"])
}

func TestService_ImportControls(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	body := `[
		{"control_identifier": "CTL-1", "title": "MFA for admins", "control_type": "preventive"},
		{"control_identifier": "CTL-2"},
		{"control_identifier": "CTL-1", "title": "duplicate"},
		{"control_identifier": "CTL-3", "title": "Log review", "control_type": "sometimes"},
		{"control_identifier": "CTL-4", "title": "Backups", "tags": ["dr"]}
	]`
	result, err := svc.Import(ctx, ResourceControls, FormatJSON, strings.NewReader(body), "importer")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Equal(t, 4, result.Errors[1].Row)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, ResourceControls, FormatCSV, &buf))
	assert.Contains(t, buf.String(), `"CTL-4"`)

	buf.Reset()
	require.NoError(t, svc.Export(ctx, ResourceControls, FormatYAML, &buf))
	var exported []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &exported))
	assert.Len(t, exported, 2)
}

func TestService_ImportObligations(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	body := `
- obligation_identifier: OBL-1
  title: Breach notification within 72h
  source: GDPR
  priority: high
  due_date: 2025-01-31T00:00:00Z
- obligation_identifier: OBL-2
  title: Bad priority
  priority: urgent
`
	result, err := svc.Import(ctx, ResourceObligations, FormatYAML, strings.NewReader(body), "importer")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].Row)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, ResourceObligations, FormatJSON, &buf))
	assert.Contains(t, buf.String(), `"obligation_identifier": "OBL-1"`)
	assert.Contains(t, buf.String(), `"priority": "high"`)
}

func TestService_Errors(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	err := svc.Export(ctx, ResourceDomains, FormatCSV, &bytes.Buffer{})
	assert.ErrorIs(t, err, domain.ErrInvalid)

	_, err = svc.Import(ctx, ResourceControls, FormatJSON, strings.NewReader("{not json"), "importer")
	assert.ErrorIs(t, err, domain.ErrInvalid)

	_, err = svc.Import(ctx, ResourceControls, FormatCSV, strings.NewReader(""), "importer")
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestParse(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("yml")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, domain.ErrInvalid)

	r, err := ParseResource("obligations")
	require.NoError(t, err)
	assert.Equal(t, ResourceObligations, r)

	_, err = ParseResource("users")
	assert.ErrorIs(t, err, domain.ErrInvalid)
}
