package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"menuely/internal/blob"
	"menuely/internal/model"
	"menuely/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

// MockUnitOfWork hands out a single MockTx.
type MockUnitOfWork struct {
	mock.Mock
	tx *MockTx
}

func (m *MockUnitOfWork) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUnitOfWork) Reader() repository.Querier { return m.tx }

// newCommittingUoW returns a unit of work whose transaction commits or
// rolls back without error.
func newCommittingUoW() (*MockUnitOfWork, *MockTx) {
	tx := new(MockTx)
	tx.On("Commit", mock.Anything).Return(nil).Maybe()
	tx.On("Rollback", mock.Anything).Return(nil).Maybe()
	uow := &MockUnitOfWork{tx: tx}
	uow.On("BeginTx", mock.Anything).Return(tx, nil).Maybe()
	return uow, tx
}

// MockRestaurantRepository is a mock implementation of RestaurantRepository.
type MockRestaurantRepository struct {
	mock.Mock
}

func (m *MockRestaurantRepository) Create(ctx context.Context, q repository.Querier, restaurant *model.Restaurant) error {
	return m.Called(ctx, q, restaurant).Error(0)
}

func (m *MockRestaurantRepository) GetByID(ctx context.Context, q repository.Querier, id int64) (*model.Restaurant, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Restaurant), args.Error(1)
}

func (m *MockRestaurantRepository) LockByID(ctx context.Context, tx pgx.Tx, id int64) (*model.Restaurant, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Restaurant), args.Error(1)
}

func (m *MockRestaurantRepository) SetActiveMenu(ctx context.Context, q repository.Querier, restaurantID int64, menuID *int64) error {
	return m.Called(ctx, q, restaurantID, menuID).Error(0)
}

// MockMenuRepository is a mock implementation of MenuRepository.
type MockMenuRepository struct {
	mock.Mock
}

func (m *MockMenuRepository) Create(ctx context.Context, q repository.Querier, menu *model.Menu) error {
	return m.Called(ctx, q, menu).Error(0)
}

func (m *MockMenuRepository) GetByID(ctx context.Context, q repository.Querier, id int64) (*model.Menu, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Menu), args.Error(1)
}

func (m *MockMenuRepository) ListByRestaurant(ctx context.Context, q repository.Querier, restaurantID int64) ([]model.Menu, error) {
	args := m.Called(ctx, q, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Menu), args.Error(1)
}

func (m *MockMenuRepository) Update(ctx context.Context, q repository.Querier, menu *model.Menu) error {
	return m.Called(ctx, q, menu).Error(0)
}

func (m *MockMenuRepository) SetActive(ctx context.Context, q repository.Querier, id int64, active bool) error {
	return m.Called(ctx, q, id, active).Error(0)
}

func (m *MockMenuRepository) DeactivateOthers(ctx context.Context, q repository.Querier, restaurantID, keepID int64) (int64, error) {
	args := m.Called(ctx, q, restaurantID, keepID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMenuRepository) Delete(ctx context.Context, q repository.Querier, id int64) error {
	return m.Called(ctx, q, id).Error(0)
}

// MockImageRepository is a mock implementation of ImageRepository.
type MockImageRepository struct {
	mock.Mock
}

func (m *MockImageRepository) Create(ctx context.Context, q repository.Querier, image *model.Image) error {
	return m.Called(ctx, q, image).Error(0)
}

func (m *MockImageRepository) CreateBatch(ctx context.Context, q repository.Querier, images []model.Image) error {
	return m.Called(ctx, q, images).Error(0)
}

func (m *MockImageRepository) GetByID(ctx context.Context, q repository.Querier, id int64) (*model.Image, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Image), args.Error(1)
}

func (m *MockImageRepository) ListByMenu(ctx context.Context, q repository.Querier, menuID int64) ([]model.Image, error) {
	args := m.Called(ctx, q, menuID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Image), args.Error(1)
}

func (m *MockImageRepository) Delete(ctx context.Context, q repository.Querier, id int64) error {
	return m.Called(ctx, q, id).Error(0)
}

func (m *MockImageRepository) DeleteByMenu(ctx context.Context, q repository.Querier, menuID int64) (int64, error) {
	args := m.Called(ctx, q, menuID)
	return args.Get(0).(int64), args.Error(1)
}

// MockCategoryRepository is a mock implementation of CategoryRepository.
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, q repository.Querier, category *model.Category) error {
	return m.Called(ctx, q, category).Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, q repository.Querier, id int64) (*model.Category, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryRepository) ListByMenu(ctx context.Context, q repository.Querier, menuID int64) ([]model.Category, error) {
	args := m.Called(ctx, q, menuID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, q repository.Querier, category *model.Category) error {
	return m.Called(ctx, q, category).Error(0)
}

func (m *MockCategoryRepository) UpdateAll(ctx context.Context, q repository.Querier, categories []model.Category) error {
	return m.Called(ctx, q, categories).Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, q repository.Querier, id int64) error {
	return m.Called(ctx, q, id).Error(0)
}

// MockProductRepository is a mock implementation of ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, q repository.Querier, product *model.Product) error {
	return m.Called(ctx, q, product).Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, q repository.Querier, id int64) (*model.Product, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByIDs(ctx context.Context, q repository.Querier, ids []int64) ([]model.Product, error) {
	args := m.Called(ctx, q, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) ListByCategory(ctx context.Context, q repository.Querier, categoryID int64) ([]model.Product, error) {
	args := m.Called(ctx, q, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, q repository.Querier, product *model.Product) error {
	return m.Called(ctx, q, product).Error(0)
}

func (m *MockProductRepository) UpdateAll(ctx context.Context, q repository.Querier, products []model.Product) error {
	return m.Called(ctx, q, products).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, q repository.Querier, id int64) error {
	return m.Called(ctx, q, id).Error(0)
}

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, q repository.Querier, order *model.Order) error {
	return m.Called(ctx, q, order).Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, q repository.Querier, id int64) (*model.Order, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, q repository.Querier, userID int64) ([]model.Order, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByRestaurant(ctx context.Context, q repository.Querier, restaurantID int64) ([]model.Order, error) {
	args := m.Called(ctx, q, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) Accept(ctx context.Context, q repository.Querier, id int64, employeeName string, acceptedAt time.Time) error {
	return m.Called(ctx, q, id, employeeName, acceptedAt).Error(0)
}

// fakeStore is an in-memory blob.Store. failOn makes the n-th upload
// (1-based) fail.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	uploads int
	deleted []string
	failOn  int
	failErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (s *fakeStore) Upload(ctx context.Context, name, mimeType string, data []byte) (blob.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads++
	if s.failOn > 0 && s.uploads == s.failOn {
		if s.failErr == nil {
			s.failErr = errors.New("blob store unavailable")
		}
		return blob.Object{}, s.failErr
	}
	key := fmt.Sprintf("%d-%s", s.uploads, name)
	s.objects[key] = data
	return blob.Object{Key: key, URL: "https://blobs.test/" + key}, nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStore) live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func (s *fakeStore) uploadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploads
}

// fakeEncoder returns the payload as the image bytes.
type fakeEncoder struct{}

func (fakeEncoder) Encode(payload string, size int) ([]byte, error) {
	return []byte(payload), nil
}

// fakeNotifier records notifications.
type fakeNotifier struct {
	mu     sync.Mutex
	qr     [][]model.TableURL
	orders []model.OrderSummary
}

func (n *fakeNotifier) QRCodesReady(ctx context.Context, restaurant model.Restaurant, menuName string, tables []model.TableURL) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.qr = append(n.qr, tables)
}

func (n *fakeNotifier) OrderCreated(ctx context.Context, restaurantID int64, summary model.OrderSummary) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.orders = append(n.orders, summary)
}

// catalogFixture wires the catalog services to mocks.
type catalogFixture struct {
	uow         *MockUnitOfWork
	tx          *MockTx
	restaurants *MockRestaurantRepository
	menus       *MockMenuRepository
	images      *MockImageRepository
	categories  *MockCategoryRepository
	products    *MockProductRepository
	store       *fakeStore
	notifier    *fakeNotifier
}

func newCatalogFixture() *catalogFixture {
	uow, tx := newCommittingUoW()
	return &catalogFixture{
		uow:         uow,
		tx:          tx,
		restaurants: new(MockRestaurantRepository),
		menus:       new(MockMenuRepository),
		images:      new(MockImageRepository),
		categories:  new(MockCategoryRepository),
		products:    new(MockProductRepository),
		store:       newFakeStore(),
		notifier:    &fakeNotifier{},
	}
}

func (f *catalogFixture) deps() CatalogDeps {
	return CatalogDeps{
		UnitOfWork:  f.uow,
		Restaurants: f.restaurants,
		Menus:       f.menus,
		Images:      f.images,
		Categories:  f.categories,
		Products:    f.products,
		Blobs:       f.store,
		Encoder:     fakeEncoder{},
		Notifier:    f.notifier,
		QR: QROptions{
			CallbackBaseURL: "https://menuely.test/menu",
			Size:            256,
			Concurrency:     4,
		},
	}
}

func (f *catalogFixture) menuService() MenuService {
	return NewMenuService(f.deps(), zerolog.Nop())
}

func (f *catalogFixture) categoryService() CategoryService {
	return NewCategoryService(f.deps(), zerolog.Nop())
}

func (f *catalogFixture) productService() ProductService {
	return NewProductService(f.deps(), zerolog.Nop())
}

func int64Ptr(v int64) *int64 { return &v }

func stringPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }

func pngFile(name string) *model.ImageFile {
	return &model.ImageFile{Name: name, MimeType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}
}
