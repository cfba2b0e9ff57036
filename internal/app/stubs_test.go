package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/qmshub/api/pkg/domain/finding"
	"github.com/qmshub/api/pkg/domain/organization"
	"github.com/qmshub/api/pkg/domain/shared"
	"github.com/qmshub/api/pkg/logger"
	"github.com/qmshub/api/pkg/pagination"
)

// journal is the staged-write surface txStub drives: writes made inside a
// unit of work become visible on commit and vanish on rollback.
type journal interface {
	commit()
	discard()
}

// txStub runs the unit of work without a database but keeps its transactional
// shape: the registered journals promote their staged writes only when the
// unit commits. When commitErr is set the unit fails after the function ran,
// as a commit failure would, and nothing is promoted.
type txStub struct {
	commitErr error
	journals  []journal
}

func newTxStub(js ...journal) *txStub {
	return &txStub{journals: js}
}

func (t *txStub) Transaction(_ context.Context, fn func(tx *sql.Tx) error) error {
	if err := fn(nil); err != nil {
		t.rollback()
		return err
	}
	if t.commitErr != nil {
		t.rollback()
		return t.commitErr
	}
	for _, j := range t.journals {
		j.commit()
	}
	return nil
}

func (t *txStub) rollback() {
	for _, j := range t.journals {
		j.discard()
	}
}

type storedFinding struct {
	orgID  shared.ID
	f      *finding.Finding
	estado finding.Estado
}

// snapshot returns a detached copy so callers cannot mutate committed state
// in place. The stub's estado column is authoritative, like the database's.
func (s storedFinding) snapshot() *finding.Finding {
	f := s.f
	return finding.Reconstitute(
		f.ID(), f.OrganizationID(), f.Numero(), f.Titulo(), f.Descripcion(),
		f.Origen(), f.Categoria(), f.Requisito(), f.Prioridad(), f.Responsable(),
		f.FechaRegistro(), s.estado, f.AccionInmediata(), f.CreatedAt(), f.UpdatedAt(),
	)
}

type estadoWrite struct {
	id   string
	next finding.Estado
}

// findingRepoStub keeps findings in memory and mimics the repository's tenant
// scoping and write discipline: a foreign organization reads as absent,
// writes stay invisible until their unit of work commits, and the estado
// write is a compare-and-swap against the committed estado.
type findingRepoStub struct {
	byID         map[string]storedFinding
	staged       []storedFinding
	stagedEstado []estadoWrite
	createErr    error
	estadoWrites int

	// beforeEstadoWrite runs once at the start of the next estado write,
	// standing in for a competing writer that commits between this caller's
	// read and its write.
	beforeEstadoWrite func()
}

func newFindingRepoStub() *findingRepoStub {
	return &findingRepoStub{byID: make(map[string]storedFinding)}
}

func (r *findingRepoStub) CreateInTx(_ context.Context, _ *sql.Tx, f *finding.Finding) error {
	if r.createErr != nil {
		return r.createErr
	}
	for _, s := range r.byID {
		if s.orgID.Equals(f.OrganizationID()) && s.f.Numero() == f.Numero() {
			return finding.NewNumeroExistsError(f.Numero())
		}
	}
	for _, s := range r.staged {
		if s.orgID.Equals(f.OrganizationID()) && s.f.Numero() == f.Numero() {
			return finding.NewNumeroExistsError(f.Numero())
		}
	}
	r.staged = append(r.staged, storedFinding{orgID: f.OrganizationID(), f: f, estado: f.Estado()})
	return nil
}

func (r *findingRepoStub) GetByID(_ context.Context, orgID, id shared.ID) (*finding.Finding, error) {
	s, ok := r.byID[id.String()]
	if !ok || !s.orgID.Equals(orgID) {
		return nil, finding.NewFindingNotFoundError(id.String())
	}
	return s.snapshot(), nil
}

func (r *findingRepoStub) List(_ context.Context, orgID shared.ID, _ finding.Filter, _ finding.ListOptions, page pagination.Pagination) (pagination.Result[*finding.Finding], error) {
	var data []*finding.Finding
	for _, s := range r.byID {
		if s.orgID.Equals(orgID) {
			data = append(data, s.snapshot())
		}
	}
	return pagination.NewResult(data, int64(len(data)), page), nil
}

func (r *findingRepoStub) Update(_ context.Context, f *finding.Finding) error {
	s, ok := r.byID[f.ID().String()]
	if !ok || !s.orgID.Equals(f.OrganizationID()) {
		return finding.NewFindingNotFoundError(f.ID().String())
	}
	s.f = f
	r.byID[f.ID().String()] = s
	return nil
}

func (r *findingRepoStub) UpdateEstadoInTx(_ context.Context, _ *sql.Tx, orgID, id shared.ID, expected, next finding.Estado, _ time.Time) error {
	if r.beforeEstadoWrite != nil {
		hook := r.beforeEstadoWrite
		r.beforeEstadoWrite = nil
		hook()
	}
	s, ok := r.byID[id.String()]
	if !ok || !s.orgID.Equals(orgID) {
		return finding.NewFindingNotFoundError(id.String())
	}
	if s.estado != expected {
		return fmt.Errorf("%w: finding estado changed since read", shared.ErrConflict)
	}
	r.estadoWrites++
	r.stagedEstado = append(r.stagedEstado, estadoWrite{id: id.String(), next: next})
	return nil
}

func (r *findingRepoStub) commit() {
	for _, s := range r.staged {
		r.byID[s.f.ID().String()] = s
	}
	r.staged = nil
	for _, w := range r.stagedEstado {
		s := r.byID[w.id]
		s.estado = w.next
		r.byID[w.id] = s
	}
	r.stagedEstado = nil
}

func (r *findingRepoStub) discard() {
	r.staged = nil
	r.stagedEstado = nil
}

// historyRepoStub records appended entries in order, assigning sequence
// numbers the way the BIGSERIAL column would: consumed at write time and not
// reissued after a rollback.
type historyRepoStub struct {
	entries   []*finding.HistoryEntry
	staged    []*finding.HistoryEntry
	appendErr error
	nextSeq   int64
}

func (r *historyRepoStub) AppendInTx(_ context.Context, _ *sql.Tx, _ shared.ID, entry *finding.HistoryEntry) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	r.nextSeq++
	r.staged = append(r.staged, finding.ReconstituteHistoryEntry(
		entry.ID(), r.nextSeq, entry.FindingID(), entry.Tipo(), entry.Descripcion(), entry.Fecha(), entry.Usuario(),
	))
	return nil
}

func (r *historyRepoStub) ListByFinding(_ context.Context, _ shared.ID, findingID shared.ID) ([]*finding.HistoryEntry, error) {
	var out []*finding.HistoryEntry
	for _, e := range r.entries {
		if e.FindingID().Equals(findingID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *historyRepoStub) commit() {
	r.entries = append(r.entries, r.staged...)
	r.staged = nil
}

func (r *historyRepoStub) discard() {
	r.staged = nil
}

type tagRepoStub struct {
	tags      []finding.Tag
	staged    []finding.Tag
	createErr error
}

func (r *tagRepoStub) CreateInTx(_ context.Context, _ *sql.Tx, tag finding.Tag) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.staged = append(r.staged, tag)
	return nil
}

func (r *tagRepoStub) ListByFinding(_ context.Context, _ shared.ID, findingID shared.ID) ([]finding.Tag, error) {
	var out []finding.Tag
	for _, t := range r.tags {
		if t.FindingID.Equals(findingID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *tagRepoStub) commit() {
	r.tags = append(r.tags, r.staged...)
	r.staged = nil
}

func (r *tagRepoStub) discard() {
	r.staged = nil
}

type storedAction struct {
	orgID shared.ID
	a     *finding.Action
}

type actionRepoStub struct {
	byID      map[string]storedAction
	staged    []storedAction
	createErr error
}

func newActionRepoStub() *actionRepoStub {
	return &actionRepoStub{byID: make(map[string]storedAction)}
}

func (r *actionRepoStub) CreateInTx(_ context.Context, _ *sql.Tx, orgID shared.ID, a *finding.Action) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.staged = append(r.staged, storedAction{orgID: orgID, a: a})
	return nil
}

func (r *actionRepoStub) GetByID(_ context.Context, orgID, id shared.ID) (*finding.Action, error) {
	s, ok := r.byID[id.String()]
	if !ok || !s.orgID.Equals(orgID) {
		return nil, finding.NewActionNotFoundError(id.String())
	}
	return s.a, nil
}

func (r *actionRepoStub) ListByFinding(_ context.Context, orgID, findingID shared.ID) ([]*finding.Action, error) {
	var out []*finding.Action
	for _, s := range r.byID {
		if s.orgID.Equals(orgID) && s.a.FindingID().Equals(findingID) {
			out = append(out, s.a)
		}
	}
	return out, nil
}

func (r *actionRepoStub) UpdateEstado(_ context.Context, orgID shared.ID, a *finding.Action) error {
	s, ok := r.byID[a.ID().String()]
	if !ok || !s.orgID.Equals(orgID) {
		return finding.NewActionNotFoundError(a.ID().String())
	}
	s.a = a
	r.byID[a.ID().String()] = s
	return nil
}

func (r *actionRepoStub) commit() {
	for _, s := range r.staged {
		r.byID[s.a.ID().String()] = s
	}
	r.staged = nil
}

func (r *actionRepoStub) discard() {
	r.staged = nil
}

type orgRepoStub struct {
	byID map[string]*organization.Organization
}

func newOrgRepoStub() *orgRepoStub {
	return &orgRepoStub{byID: make(map[string]*organization.Organization)}
}

func (r *orgRepoStub) Create(_ context.Context, org *organization.Organization) error {
	r.byID[org.ID().String()] = org
	return nil
}

func (r *orgRepoStub) GetByID(_ context.Context, id shared.ID) (*organization.Organization, error) {
	org, ok := r.byID[id.String()]
	if !ok {
		return nil, fmt.Errorf("%w: organization %s", shared.ErrNotFound, id)
	}
	return org, nil
}

func (r *orgRepoStub) List(_ context.Context) ([]*organization.Organization, error) {
	var out []*organization.Organization
	for _, org := range r.byID {
		out = append(out, org)
	}
	return out, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "text"})
}
