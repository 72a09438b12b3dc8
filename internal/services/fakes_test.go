package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"service-route/internal/dto"
	"service-route/internal/entities"
	"service-route/internal/repositories"
	"service-route/pkg/constants"
	apperrors "service-route/pkg/errors"
	"service-route/pkg/keylock"
	"service-route/pkg/types"
)

// fakeTx выполняет функцию с nil-транзакцией. Ошибка откатывает снимки хранилищ.
type fakeTx struct {
	store *fakeStore
}

func (f *fakeTx) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	snapshot := f.store.snapshot()
	if err := fn(nil); err != nil {
		f.store.restore(snapshot)
		return err
	}
	return nil
}

type storeSnapshot struct {
	requests map[uint64]entities.Request
	reserves map[uint64]entities.ReservePart
	history  int
}

// fakeStore - общее in-memory хранилище для всех фейковых репозиториев.
type fakeStore struct {
	mu        sync.Mutex
	requests  map[uint64]entities.Request
	reserves  map[uint64]entities.ReservePart
	history   []entities.RequestHistory
	users     map[uint64]entities.User
	customers map[uint64]entities.Customer
	parts     map[uint64]entities.Part
	services  map[uint64]entities.ServiceItem
	eqTypes   map[uint64]entities.EquipmentType
	nextID    uint64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests:  map[uint64]entities.Request{},
		reserves:  map[uint64]entities.ReservePart{},
		users:     map[uint64]entities.User{},
		customers: map[uint64]entities.Customer{},
		parts:     map[uint64]entities.Part{},
		services:  map[uint64]entities.ServiceItem{},
		eqTypes:   map[uint64]entities.EquipmentType{},
		nextID:    100,
	}
}

func (s *fakeStore) snapshot() storeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := storeSnapshot{
		requests: map[uint64]entities.Request{},
		reserves: map[uint64]entities.ReservePart{},
		history:  len(s.history),
	}
	for k, v := range s.requests {
		snap.requests[k] = v
	}
	for k, v := range s.reserves {
		snap.reserves[k] = v
	}
	return snap
}

func (s *fakeStore) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = snap.requests
	s.reserves = snap.reserves
	s.history = s.history[:snap.history]
}

func (s *fakeStore) id() uint64 {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) request(id uint64) entities.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[id]
}

func (s *fakeStore) putRequest(r entities.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests[r.ID] = r
}

func (s *fakeStore) reserve(id uint64) (entities.ReservePart, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rp, ok := s.reserves[id]
	return rp, ok
}

func (s *fakeStore) historyEvents(requestID uint64) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var events []string
	for _, h := range s.history {
		if h.RequestID == requestID {
			events = append(events, h.EventType)
		}
	}
	return events
}

// --- requests ---

type fakeRequestRepo struct{ s *fakeStore }

func (r *fakeRequestRepo) CreateInTx(_ context.Context, _ pgx.Tx, request *entities.Request) (*entities.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	created := *request
	created.ID = r.s.id()
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	r.s.requests[created.ID] = created
	return &created, nil
}

func (r *fakeRequestRepo) details(req entities.Request) *entities.RequestDetails {
	d := &entities.RequestDetails{Request: req}
	if req.EngineerID != nil {
		if u, ok := r.s.users[*req.EngineerID]; ok {
			name := u.FullName
			d.EngineerName = &name
		}
	}
	if req.EquipmentTypeID != nil {
		if et, ok := r.s.eqTypes[*req.EquipmentTypeID]; ok {
			name := et.Name
			d.EquipmentTypeName = &name
			d.EquipmentTypeIsOther = et.IsOther
		}
	}
	return d
}

func (r *fakeRequestRepo) FindDetailsByID(_ context.Context, id uint64) (*entities.RequestDetails, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.requests[id]
	if !ok {
		return nil, fmt.Errorf("заявка %d: %w", id, apperrors.ErrNotFound)
	}
	return r.details(req), nil
}

func (r *fakeRequestRepo) FindForUpdateInTx(_ context.Context, _ pgx.Tx, id uint64) (*entities.Request, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	req, ok := r.s.requests[id]
	if !ok {
		return nil, fmt.Errorf("заявка %d: %w", id, apperrors.ErrNotFound)
	}
	return &req, nil
}

func (r *fakeRequestRepo) UpdateInTx(_ context.Context, _ pgx.Tx, request *entities.Request) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.requests[request.ID]; !ok {
		return apperrors.ErrNotFound
	}
	request.UpdatedAt = time.Now()
	r.s.requests[request.ID] = *request
	return nil
}

func (r *fakeRequestRepo) List(_ context.Context, filter types.Filter) ([]entities.RequestDetails, uint64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]entities.RequestDetails, 0, len(r.s.requests))
	for _, req := range r.s.requests {
		if status, ok := filter.Filter["status"].(string); ok && status != req.Status.String() {
			continue
		}
		list = append(list, *r.details(req))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, uint64(len(list)), nil
}

// --- reservations ---

type fakeReserveRepo struct{ s *fakeStore }

func (r *fakeReserveRepo) CreateInTx(_ context.Context, _ pgx.Tx, reserve *entities.ReservePart) (*entities.ReservePart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	created := *reserve
	created.ID = r.s.id()
	created.Status = constants.ReserveStatusActive
	created.CreatedAt = time.Now()
	r.s.reserves[created.ID] = created
	return &created, nil
}

func (r *fakeReserveRepo) FindForUpdateInTx(_ context.Context, _ pgx.Tx, id uint64) (*entities.ReservePart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rp, ok := r.s.reserves[id]
	if !ok {
		return nil, fmt.Errorf("резерв %d: %w", id, apperrors.ErrNotFound)
	}
	return &rp, nil
}

func (r *fakeReserveRepo) UpdateUsedQuantityInTx(_ context.Context, _ pgx.Tx, id uint64, usedQuantity int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rp, ok := r.s.reserves[id]
	if !ok || !rp.IsActive() {
		return apperrors.ErrNotFound
	}
	rp.UsedQuantity = usedQuantity
	r.s.reserves[id] = rp
	return nil
}

func (r *fakeReserveRepo) DeleteInTx(_ context.Context, _ pgx.Tx, id uint64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reserves[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.s.reserves, id)
	return nil
}

func (r *fakeReserveRepo) CloseByRequestInTx(_ context.Context, _ pgx.Tx, requestID uint64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var closed int64
	for id, rp := range r.s.reserves {
		if rp.RequestID == requestID && rp.IsActive() {
			rp.Status = constants.ReserveStatusClosed
			r.s.reserves[id] = rp
			closed++
		}
	}
	return closed, nil
}

func (r *fakeReserveRepo) ListByRequest(_ context.Context, _ pgx.Tx, requestID uint64, activeOnly bool) ([]entities.ReservePartDetails, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	list := make([]entities.ReservePartDetails, 0)
	for _, rp := range r.s.reserves {
		if rp.RequestID != requestID || (activeOnly && !rp.IsActive()) {
			continue
		}
		part := r.s.parts[rp.PartID]
		list = append(list, entities.ReservePartDetails{
			ReservePart:    rp,
			PartName:       part.Name,
			PartUnit:       part.Unit,
			PartPrice:      part.Price,
			NomenclatureID: part.NomenclatureID,
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *fakeReserveRepo) SumActiveReservedByPart(_ context.Context, _ pgx.Tx, partID uint64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := 0
	for _, rp := range r.s.reserves {
		if rp.PartID == partID && rp.IsActive() {
			total += rp.Quantity
		}
	}
	return total, nil
}

// --- history, users, catalog, customers ---

type fakeHistoryRepo struct{ s *fakeStore }

func (r *fakeHistoryRepo) CreateInTx(_ context.Context, _ pgx.Tx, history *entities.RequestHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	h := *history
	h.ID = r.s.id()
	h.CreatedAt = time.Now()
	r.s.history = append(r.s.history, h)
	return nil
}

func (r *fakeHistoryRepo) FindByRequestID(_ context.Context, requestID uint64) ([]repositories.RequestHistoryItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var items []repositories.RequestHistoryItem
	for _, h := range r.s.history {
		if h.RequestID == requestID {
			items = append(items, repositories.RequestHistoryItem{RequestHistory: h})
		}
	}
	return items, nil
}

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) FindUserByID(_ context.Context, id uint64) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("пользователь %d: %w", id, apperrors.ErrNotFound)
	}
	return &u, nil
}

func (r *fakeUserRepo) FindByRole(_ context.Context, role string) ([]entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	users := make([]entities.User, 0)
	for _, u := range r.s.users {
		if u.Role == role {
			users = append(users, u)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].FullName < users[j].FullName })
	return users, nil
}

type fakeCatalogRepo struct{ s *fakeStore }

func (r *fakeCatalogRepo) ListParts(context.Context) ([]entities.Part, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	parts := make([]entities.Part, 0, len(r.s.parts))
	for _, p := range r.s.parts {
		parts = append(parts, p)
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].ID < parts[j].ID })
	return parts, nil
}

func (r *fakeCatalogRepo) ListServices(context.Context) ([]entities.ServiceItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := make([]entities.ServiceItem, 0, len(r.s.services))
	for _, svc := range r.s.services {
		items = append(items, svc)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (r *fakeCatalogRepo) FindPart(_ context.Context, id uint64) (*entities.Part, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.parts[id]
	if !ok {
		return nil, fmt.Errorf("запчасть %d: %w", id, apperrors.ErrNotFound)
	}
	return &p, nil
}

func (r *fakeCatalogRepo) FindService(_ context.Context, id uint64) (*entities.ServiceItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	svc, ok := r.s.services[id]
	if !ok {
		return nil, fmt.Errorf("услуга %d: %w", id, apperrors.ErrNotFound)
	}
	return &svc, nil
}

func (r *fakeCatalogRepo) FindEquipmentType(_ context.Context, id uint64) (*entities.EquipmentType, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	et, ok := r.s.eqTypes[id]
	if !ok {
		return nil, fmt.Errorf("тип оборудования %d: %w", id, apperrors.ErrNotFound)
	}
	return &et, nil
}

type fakeCustomerRepo struct{ s *fakeStore }

func (r *fakeCustomerRepo) FindByPhone(_ context.Context, phone string) (*entities.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.customers {
		if c.PhoneNumber == phone {
			return &c, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeCustomerRepo) FindByID(_ context.Context, id uint64) (*entities.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &c, nil
}

// --- 1С ---

type fakeGateway struct {
	mu sync.Mutex

	sendErr   error
	doc       dto.LedgerDocumentDTO
	sent      []dto.CompletedOrderPayloadDTO
	statusErr error
	status    dto.PaymentStatusDTO
	cashErr   error
	cashCalls []string
	onSend    func()
}

func (g *fakeGateway) GetNomenclature(context.Context) ([]dto.NomenclatureDTO, error) {
	return []dto.NomenclatureDTO{{ID: "N-1", Name: "Диагностика", Type: "service"}}, nil
}

func (g *fakeGateway) SendCompletedOrder(_ context.Context, payload dto.CompletedOrderPayloadDTO) (*dto.LedgerDocumentDTO, error) {
	g.mu.Lock()
	g.sent = append(g.sent, payload)
	onSend := g.onSend
	g.mu.Unlock()
	if onSend != nil {
		onSend()
	}
	if g.sendErr != nil {
		return nil, g.sendErr
	}
	doc := g.doc
	return &doc, nil
}

func (g *fakeGateway) PaymentStatus(_ context.Context, documentID string) (*dto.PaymentStatusDTO, error) {
	if g.statusErr != nil {
		return nil, g.statusErr
	}
	status := g.status
	status.DocumentID = documentID
	return &status, nil
}

func (g *fakeGateway) ConfirmCashPayment(_ context.Context, documentID string) (*dto.PaymentStatusDTO, error) {
	g.mu.Lock()
	g.cashCalls = append(g.cashCalls, documentID)
	g.mu.Unlock()
	if g.cashErr != nil {
		return nil, g.cashErr
	}
	paid := true
	return &dto.PaymentStatusDTO{DocumentID: documentID, IsPaid: &paid}, nil
}

// --- сборка сервисов ---

type testEnv struct {
	store      *fakeStore
	gateway    *fakeGateway
	assembler  *OrderAssembler
	requests   RequestServiceInterface
	reserves   ReservationServiceInterface
	completion CompletionServiceInterface
	payments   PaymentServiceInterface
	history    RequestHistoryServiceInterface
	catalog    CatalogServiceInterface
}

var fixedNow = time.Date(2026, 10, 17, 14, 30, 0, 0, time.Local)

func newTestEnv(enforceStock bool) *testEnv {
	store := newFakeStore()
	logger := zap.NewNop()
	locks := keylock.New()
	tx := &fakeTx{store: store}

	requestRepo := &fakeRequestRepo{s: store}
	reserveRepo := &fakeReserveRepo{s: store}
	historyRepo := &fakeHistoryRepo{s: store}
	catalog := &fakeCatalogRepo{s: store}
	gateway := &fakeGateway{doc: dto.LedgerDocumentDTO{Document1cID: "DOC-1", Document1cNumber: "0000-17"}}

	ledger := NewPartsLedger(reserveRepo, catalog, enforceStock, logger)
	assembler := NewOrderAssembler(catalog, &fakeCustomerRepo{s: store}, gateway, time.Second, logger)
	assembler.now = func() time.Time { return fixedNow }

	store.users[1] = entities.User{ID: 1, FullName: "Петров Иван", Role: constants.RoleEngineer}
	store.users[2] = entities.User{ID: 2, FullName: "Сидорова Анна", Role: constants.RoleManager}
	store.customers[7] = entities.Customer{ID: 7, FullName: "ООО Ромашка", PhoneNumber: "79005550000"}
	store.customers[8] = entities.Customer{ID: 8, FullName: "Иванов", PhoneNumber: "79001111111"}
	store.eqTypes[1] = entities.EquipmentType{ID: 1, Name: "Другое", IsOther: true}
	store.parts[1] = entities.Part{ID: 1, Name: "Фильтр", Unit: "шт", Price: ptr(250.0), Quantity: 10, NomenclatureID: ptr("MAT-1")}
	store.parts[2] = entities.Part{ID: 2, Name: "Прокладка", Unit: "шт", Quantity: 10}
	store.services[1] = entities.ServiceItem{ID: 1, Name: "Диагностика", Unit: "усл", Price: ptr(1000.10), NomenclatureID: ptr("SRV-1")}
	store.services[2] = entities.ServiceItem{ID: 2, Name: "Выезд", Unit: "усл", NomenclatureID: ptr("SRV-2")}
	store.services[3] = entities.ServiceItem{ID: 3, Name: "Чистка", Unit: "усл", Price: ptr(500.0)}

	return &testEnv{
		store:      store,
		gateway:    gateway,
		assembler:  assembler,
		requests:   NewRequestService(tx, requestRepo, reserveRepo, historyRepo, &fakeUserRepo{s: store}, catalog, locks, logger),
		reserves:   NewReservationService(tx, requestRepo, reserveRepo, historyRepo, ledger, locks, logger),
		completion: NewCompletionService(tx, requestRepo, historyRepo, ledger, assembler, locks, logger),
		payments:   NewPaymentService(tx, requestRepo, historyRepo, gateway, time.Second, locks, logger),
		history:    NewRequestHistoryService(historyRepo, logger),
		catalog:    NewCatalogService(&fakeUserRepo{s: store}, catalog, logger),
	}
}

func ptr[T any](v T) *T { return &v }

// seedRequest кладёт заявку в нужном статусе напрямую в хранилище.
func (e *testEnv) seedRequest(status constants.RequestStatus, mutate ...func(*entities.Request)) uint64 {
	e.store.mu.Lock()
	id := e.store.id()
	e.store.mu.Unlock()

	req := entities.Request{ID: id, CustomerRef: "79001111111", Address: "Main St 1", Status: status}
	if status != constants.RequestStatusNew {
		req.EngineerID = ptr(uint64(1))
	}
	for _, m := range mutate {
		m(&req)
	}
	e.store.putRequest(req)
	return id
}
