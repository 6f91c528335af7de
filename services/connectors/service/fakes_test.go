package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/intellsys-io/intellsys-engine/services/connectors/model"
	"github.com/intellsys-io/intellsys-engine/services/connectors/repository"
	"github.com/intellsys-io/intellsys-engine/services/connectors/tenant"
)

type fakeRegistry struct {
	mu         sync.Mutex
	connectors map[uuid.UUID]*model.Connector
	subs       map[uuid.UUID][]model.SubConnector

	getErr      error
	beginErr    error
	createErr   error
	commitErr   error
	deleteErr   error
	deleteCalls int
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		connectors: make(map[uuid.UUID]*model.Connector),
		subs:       make(map[uuid.UUID][]model.SubConnector),
	}
}

func (f *fakeRegistry) Get(_ context.Context, id uuid.UUID) (*model.Connector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, f.getErr
	}
	c, ok := f.connectors[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	cp.SubConnectors = f.subs[id]
	return &cp, nil
}

func (f *fakeRegistry) AccountExists(_ context.Context, t model.ConnectorType, accountKey string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.connectors {
		if c.ConnectorType == t && c.AccountKey == accountKey {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRegistry) ListByIDs(_ context.Context, ids []uuid.UUID) ([]model.Connector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []model.Connector
	for _, id := range ids {
		if c, ok := f.connectors[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeRegistry) Begin(_ context.Context) (repository.RegistryTx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return &fakeRegistryTx{r: f}, nil
}

func (f *fakeRegistry) DeleteConnector(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleteCalls++
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.connectors, id)
	delete(f.subs, id)
	return nil
}

func (f *fakeRegistry) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.connectors)
}

type fakeRegistryTx struct {
	r       *fakeRegistry
	pending *model.Connector
	subs    []model.SubConnector
}

func (t *fakeRegistryTx) LockConnector(uuid.UUID) error {
	return nil
}

func (t *fakeRegistryTx) CreateConnector(c *model.Connector) error {
	if t.r.createErr != nil {
		return t.r.createErr
	}

	t.r.mu.Lock()
	defer t.r.mu.Unlock()
	for _, existing := range t.r.connectors {
		if existing.ConnectorType == c.ConnectorType && existing.AccountKey == c.AccountKey {
			return repository.ErrDuplicateAccount
		}
	}

	t.pending = c
	return nil
}

func (t *fakeRegistryTx) CreateSubConnector(sc *model.SubConnector) error {
	t.subs = append(t.subs, *sc)
	return nil
}

func (t *fakeRegistryTx) DeleteConnector(id uuid.UUID) error {
	t.r.mu.Lock()
	defer t.r.mu.Unlock()

	delete(t.r.connectors, id)
	delete(t.r.subs, id)
	return nil
}

func (t *fakeRegistryTx) Commit() error {
	if t.r.commitErr != nil {
		return t.r.commitErr
	}

	t.r.mu.Lock()
	defer t.r.mu.Unlock()
	if t.pending != nil {
		t.r.connectors[t.pending.ID] = t.pending
		t.r.subs[t.pending.ID] = t.subs
	}
	return nil
}

func (t *fakeRegistryTx) Rollback() error {
	t.pending = nil
	t.subs = nil
	return nil
}

type fakeMapping struct {
	mu           sync.Mutex
	destinations map[uuid.UUID]uuid.UUID
	rows         map[uuid.UUID]model.CompanyConnectorMapping

	getDestErr error
	beginErr   error
	createErr  error
	commitErr  error
	deleteErr  error
}

func newFakeMapping() *fakeMapping {
	return &fakeMapping{
		destinations: make(map[uuid.UUID]uuid.UUID),
		rows:         make(map[uuid.UUID]model.CompanyConnectorMapping),
	}
}

func (f *fakeMapping) GetDestinationCredentialID(_ context.Context, companyID uuid.UUID) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getDestErr != nil {
		return uuid.Nil, f.getDestErr
	}
	id, ok := f.destinations[companyID]
	if !ok {
		return uuid.Nil, gorm.ErrRecordNotFound
	}
	return id, nil
}

func (f *fakeMapping) SetDestination(_ context.Context, m *model.CompanyDestinationMapping) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.destinations[m.CompanyID] = m.DestinationCredentialID
	return nil
}

func (f *fakeMapping) GetDestination(_ context.Context, companyID uuid.UUID) (*model.CompanyDestinationMapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id, ok := f.destinations[companyID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &model.CompanyDestinationMapping{CompanyID: companyID, DestinationCredentialID: id}, nil
}

func (f *fakeMapping) ListCompanyConnectors(_ context.Context, companyID uuid.UUID) ([]model.CompanyConnectorMapping, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []model.CompanyConnectorMapping
	for _, m := range f.rows {
		if m.CompanyID == companyID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMapping) Begin(_ context.Context) (repository.MappingTx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return &fakeMappingTx{m: f}, nil
}

func (f *fakeMapping) DeleteMapping(_ context.Context, connectorID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.rows, connectorID)
	return nil
}

func (f *fakeMapping) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeMappingTx struct {
	m       *fakeMapping
	pending *model.CompanyConnectorMapping
}

func (t *fakeMappingTx) CreateMapping(m *model.CompanyConnectorMapping) error {
	if t.m.createErr != nil {
		return t.m.createErr
	}
	t.pending = m
	return nil
}

func (t *fakeMappingTx) Commit() error {
	if t.m.commitErr != nil {
		return t.m.commitErr
	}

	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	if t.pending != nil {
		t.m.rows[t.pending.ConnectorID] = *t.pending
	}
	return nil
}

func (t *fakeMappingTx) Rollback() error {
	t.pending = nil
	return nil
}

type fakeGateway struct {
	db         *fakeTenantDB
	connectErr error

	mu              sync.Mutex
	lastCredentials []uuid.UUID
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{db: newFakeTenantDB()}
}

func (g *fakeGateway) Connect(_ context.Context, credentialID uuid.UUID) (tenant.Database, error) {
	g.mu.Lock()
	g.lastCredentials = append(g.lastCredentials, credentialID)
	g.mu.Unlock()

	if g.connectErr != nil {
		return nil, g.connectErr
	}
	return g.db, nil
}

type fakeTenantDB struct {
	mu     sync.Mutex
	tables map[string]bool

	existsErr error
	createErr error
	dropErr   error
}

func newFakeTenantDB() *fakeTenantDB {
	return &fakeTenantDB{tables: make(map[string]bool)}
}

func (db *fakeTenantDB) TableExists(_ context.Context, name string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.existsErr != nil {
		return false, db.existsErr
	}
	return db.tables[name], nil
}

func (db *fakeTenantDB) CreateIngestionTable(_ context.Context, name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.createErr != nil {
		return db.createErr
	}
	db.tables[name] = true
	return nil
}

func (db *fakeTenantDB) DropTable(_ context.Context, name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.dropErr != nil {
		return db.dropErr
	}
	delete(db.tables, name)
	return nil
}

type ingestCall struct {
	connectorType model.ConnectorType
	connectorID   uuid.UUID
	durationDays  int
}

type fakeIngest struct {
	mu    sync.Mutex
	err   error
	calls []ingestCall
}

func (f *fakeIngest) TriggerHistorical(_ context.Context, t model.ConnectorType, connectorID uuid.UUID, durationDays int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, ingestCall{connectorType: t, connectorID: connectorID, durationDays: durationDays})
	return f.err
}

type fakeEvents struct {
	mu       sync.Mutex
	err      error
	subjects []string
}

func (f *fakeEvents) Produce(subject string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.subjects = append(f.subjects, subject)
	return f.err
}
