package handlers

import (
	"context"
	"errors"
	"sync"

	"github.com/Werneck0live/mm-store/internal/address"
	"github.com/Werneck0live/mm-store/internal/models"
)

type repoMock struct {
	ListFn   func(ctx context.Context, f models.StoreFilter) ([]models.Store, error)
	GetFn    func(ctx context.Context, id int64) (*models.Store, error)
	CreateFn func(ctx context.Context, s *models.Store) (*models.Store, error)
	UpdateFn func(ctx context.Context, id int64, p models.StorePatch) (*models.Store, error)
	DeleteFn func(ctx context.Context, id int64) error
	PingFn   func(ctx context.Context) error
}

func (m *repoMock) List(ctx context.Context, f models.StoreFilter) ([]models.Store, error) {
	if m.ListFn == nil {
		return nil, errors.New("ListFn not set")
	}
	return m.ListFn(ctx, f)
}
func (m *repoMock) Get(ctx context.Context, id int64) (*models.Store, error) {
	if m.GetFn == nil {
		return nil, errors.New("GetFn not set")
	}
	return m.GetFn(ctx, id)
}
func (m *repoMock) Create(ctx context.Context, s *models.Store) (*models.Store, error) {
	if m.CreateFn == nil {
		return nil, errors.New("CreateFn not set")
	}
	return m.CreateFn(ctx, s)
}
func (m *repoMock) Update(ctx context.Context, id int64, p models.StorePatch) (*models.Store, error) {
	if m.UpdateFn == nil {
		return nil, errors.New("UpdateFn not set")
	}
	return m.UpdateFn(ctx, id, p)
}
func (m *repoMock) Delete(ctx context.Context, id int64) error {
	if m.DeleteFn == nil {
		return errors.New("DeleteFn not set")
	}
	return m.DeleteFn(ctx, id)
}
func (m *repoMock) Ping(ctx context.Context) error {
	if m.PingFn == nil {
		return nil
	}
	return m.PingFn(ctx)
}

type addrMock struct {
	CreateFn func(ctx context.Context, in address.Input) (models.RefID, error)
	UpdateFn func(ctx context.Context, id models.RefID, in address.Input) error
	FindFn   func(ctx context.Context, city string) ([]models.RefID, error)
}

func (m *addrMock) CreateAddress(ctx context.Context, in address.Input) (models.RefID, error) {
	if m.CreateFn == nil {
		return "", errors.New("CreateFn not set")
	}
	return m.CreateFn(ctx, in)
}
func (m *addrMock) UpdateAddress(ctx context.Context, id models.RefID, in address.Input) error {
	if m.UpdateFn == nil {
		return errors.New("UpdateFn not set")
	}
	return m.UpdateFn(ctx, id, in)
}
func (m *addrMock) FindAddressesByCity(ctx context.Context, city string) ([]models.RefID, error) {
	if m.FindFn == nil {
		return nil, errors.New("FindFn not set")
	}
	return m.FindFn(ctx, city)
}

type pubMock struct {
	PublishFn func(ctx context.Context, ev models.StoreEvent) error
	CloseFn   func() error

	mu     sync.Mutex
	events []models.StoreEvent
}

func (p *pubMock) PublishEvent(ctx context.Context, ev models.StoreEvent) error {
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
	if p.PublishFn == nil {
		return nil
	}
	return p.PublishFn(ctx, ev)
}
func (p *pubMock) Close() error {
	if p.CloseFn == nil {
		return nil
	}
	return p.CloseFn()
}

func (p *pubMock) Events() []models.StoreEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.StoreEvent(nil), p.events...)
}
