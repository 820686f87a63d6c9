package handler

import (
	"context"
	"net/http"

	"menuely/internal/middleware"
	"menuely/internal/model"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/mock"
)

// MockMenuService is a mock implementation of MenuService.
type MockMenuService struct {
	mock.Mock
}

func (m *MockMenuService) CreateMenu(ctx context.Context, req *model.CreateMenuRequest, restaurant model.Restaurant) (*model.Menu, error) {
	args := m.Called(ctx, req, restaurant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Menu), args.Error(1)
}

func (m *MockMenuService) UpdateMenu(ctx context.Context, id int64, req *model.UpdateMenuRequest, restaurant model.Restaurant) error {
	return m.Called(ctx, id, req, restaurant).Error(0)
}

func (m *MockMenuService) DeleteMenu(ctx context.Context, id int64, restaurant model.Restaurant) error {
	return m.Called(ctx, id, restaurant).Error(0)
}

func (m *MockMenuService) GetMenu(ctx context.Context, id int64) (*model.Menu, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Menu), args.Error(1)
}

func (m *MockMenuService) ListMenus(ctx context.Context, restaurantID int64) ([]model.Menu, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Menu), args.Error(1)
}

// MockCategoryService is a mock implementation of CategoryService.
type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) CreateCategory(ctx context.Context, req *model.CreateCategoryRequest, restaurant model.Restaurant) (*model.Category, error) {
	args := m.Called(ctx, req, restaurant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryService) UpdateCategory(ctx context.Context, id int64, req *model.UpdateCategoryRequest, restaurant model.Restaurant) error {
	return m.Called(ctx, id, req, restaurant).Error(0)
}

func (m *MockCategoryService) DeleteCategory(ctx context.Context, id int64, restaurant model.Restaurant) error {
	return m.Called(ctx, id, restaurant).Error(0)
}

func (m *MockCategoryService) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

func (m *MockCategoryService) ListCategories(ctx context.Context, menuID int64) ([]model.Category, error) {
	args := m.Called(ctx, menuID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) CreateProduct(ctx context.Context, req *model.CreateProductRequest, restaurant model.Restaurant) (*model.Product, error) {
	args := m.Called(ctx, req, restaurant)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) UpdateProduct(ctx context.Context, id int64, req *model.UpdateProductRequest, restaurant model.Restaurant) error {
	return m.Called(ctx, id, req, restaurant).Error(0)
}

func (m *MockProductService) DeleteProduct(ctx context.Context, id int64, restaurant model.Restaurant) error {
	return m.Called(ctx, id, restaurant).Error(0)
}

func (m *MockProductService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) ListProducts(ctx context.Context, categoryID int64) ([]model.Product, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(ctx context.Context, req *model.CreateOrderRequest, user model.User) (*model.Order, error) {
	args := m.Called(ctx, req, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) AcceptOrder(ctx context.Context, id int64, employee model.User) error {
	return m.Called(ctx, id, employee).Error(0)
}

func (m *MockOrderService) GetUserOrder(ctx context.Context, id int64, user model.User) (*model.Order, error) {
	args := m.Called(ctx, id, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) ListUserOrders(ctx context.Context, user model.User) ([]model.Order, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) GetRestaurantOrder(ctx context.Context, id int64, employee model.User) (*model.Order, error) {
	args := m.Called(ctx, id, employee)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) ListRestaurantOrders(ctx context.Context, employee model.User) ([]model.Order, error) {
	args := m.Called(ctx, employee)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

var (
	testRestaurant = model.Restaurant{ID: 1, Name: "Bistro"}
	testUser       = model.User{ID: 5, Firstname: "Ada", Lastname: "Lovelace"}
)

// as attaches a principal and route variables to the request.
func as(r *http.Request, p model.Principal, vars map[string]string) *http.Request {
	if p != nil {
		r = r.WithContext(middleware.WithPrincipal(r.Context(), p))
	}
	if vars != nil {
		r = mux.SetURLVars(r, vars)
	}
	return r
}
