package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"menuely/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestWriteJSON_EncodeFailureIsLogged(t *testing.T) {
	var logs bytes.Buffer
	logger := zerolog.New(&logs)
	w := httptest.NewRecorder()

	writeJSON(w, http.StatusOK, map[string]any{"stream": make(chan int)}, logger)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Contains(t, logs.String(), "failed to encode response")
	assert.Contains(t, logs.String(), `"level":"error"`)
}

func TestWriteJSON(t *testing.T) {
	var logs bytes.Buffer
	w := httptest.NewRecorder()

	writeJSON(w, http.StatusCreated, model.Menu{ID: 4, Name: "Lunch"}, zerolog.New(&logs))

	assert.Equal(t, http.StatusCreated, w.Code)
	var got model.Menu
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, int64(4), got.ID)
	assert.Empty(t, logs.String())
}

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
		expectedMsg    string
	}{
		{name: "validation", err: model.ErrTooManyTables, expectedStatus: http.StatusBadRequest, expectedCode: model.ErrCodeTooManyTables},
		{name: "not found", err: model.ErrMenuNotFound, expectedStatus: http.StatusNotFound, expectedCode: model.ErrCodeMenuNotFound},
		{name: "forbidden", err: model.ErrForbidden, expectedStatus: http.StatusForbidden, expectedCode: model.ErrCodeForbidden},
		{name: "conflict", err: model.ErrLinePriceMismatch, expectedStatus: http.StatusConflict, expectedCode: model.ErrCodeLinePriceMismatch},
		{name: "unauthenticated", err: errUnauthenticated, expectedStatus: http.StatusUnauthorized, expectedCode: model.ErrCodeUnauthorised},
		{
			name:           "internal is opaque",
			err:            model.NewInternalError("failed to load menu", errors.New("dial tcp 10.0.0.1:5432")),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternalError,
			expectedMsg:    "internal server error",
		},
		{
			name:           "plain error",
			err:            errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternalError,
			expectedMsg:    "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/menus/1", nil)
			w := httptest.NewRecorder()

			writeError(w, req, tt.err, zerolog.Nop())

			assert.Equal(t, tt.expectedStatus, w.Code)
			var body model.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
			assert.Equal(t, tt.expectedCode, body.Error)
			if tt.expectedMsg != "" {
				assert.Equal(t, tt.expectedMsg, body.Message)
			}
		})
	}
}

func TestMenuHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		principal      model.Principal
		body           string
		mockReturn     *model.Menu
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			principal:      model.RestaurantPrincipal{Restaurant: testRestaurant},
			body:           `{"name":"Lunch","currency":"EUR","tableCount":3}`,
			mockReturn:     &model.Menu{ID: 7, Name: "Lunch"},
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name:           "Too many tables",
			principal:      model.RestaurantPrincipal{Restaurant: testRestaurant},
			body:           `{"name":"Lunch","currency":"EUR","tableCount":26}`,
			mockError:      model.ErrTooManyTables,
			expectedStatus: http.StatusBadRequest,
			expectService:  true,
		},
		{
			name:           "Invalid JSON",
			principal:      model.RestaurantPrincipal{Restaurant: testRestaurant},
			body:           `{"name":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "User cannot create menus",
			principal:      model.UserPrincipal{User: testUser},
			body:           `{"name":"Lunch","currency":"EUR"}`,
			expectedStatus: http.StatusForbidden,
		},
		{
			name:           "Anonymous",
			body:           `{"name":"Lunch","currency":"EUR"}`,
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockMenuService)
			if tt.expectService {
				svc.On("CreateMenu", mock.Anything, mock.AnythingOfType("*model.CreateMenuRequest"), testRestaurant).
					Return(tt.mockReturn, tt.mockError)
			}
			h := NewMenuHandler(svc, zerolog.Nop())

			req := as(httptest.NewRequest(http.MethodPost, "/api/menus", strings.NewReader(tt.body)), tt.principal, nil)
			w := httptest.NewRecorder()

			h.Create(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectService {
				svc.AssertExpectations(t)
			} else {
				svc.AssertNotCalled(t, "CreateMenu", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestMenuHandler_Update(t *testing.T) {
	svc := new(MockMenuService)
	svc.On("UpdateMenu", mock.Anything, int64(3), mock.MatchedBy(func(req *model.UpdateMenuRequest) bool {
		return req.IsActive != nil && *req.IsActive && req.Name == nil
	}), testRestaurant).Return(nil)
	h := NewMenuHandler(svc, zerolog.Nop())

	req := as(httptest.NewRequest(http.MethodPatch, "/api/menus/3", strings.NewReader(`{"isActive":true}`)),
		model.RestaurantPrincipal{Restaurant: testRestaurant}, map[string]string{"id": "3"})
	w := httptest.NewRecorder()

	h.Update(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	svc.AssertExpectations(t)
}

func TestMenuHandler_GetByID(t *testing.T) {
	tests := []struct {
		name           string
		id             string
		mockReturn     *model.Menu
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{name: "Success", id: "3", mockReturn: &model.Menu{ID: 3}, expectedStatus: http.StatusOK, expectService: true},
		{name: "Not found", id: "4", mockError: model.ErrMenuNotFound, expectedStatus: http.StatusNotFound, expectService: true},
		{name: "Invalid ID", id: "abc", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockMenuService)
			if tt.expectService {
				svc.On("GetMenu", mock.Anything, mock.AnythingOfType("int64")).Return(tt.mockReturn, tt.mockError)
			}
			h := NewMenuHandler(svc, zerolog.Nop())

			req := as(httptest.NewRequest(http.MethodGet, "/api/menus/"+tt.id, nil), nil, map[string]string{"id": tt.id})
			w := httptest.NewRecorder()

			h.GetByID(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestMenuHandler_List_RequiresRestaurantID(t *testing.T) {
	svc := new(MockMenuService)
	h := NewMenuHandler(svc, zerolog.Nop())

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/api/menus", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ListMenus", mock.Anything, mock.Anything)
}

// multipartBody builds a multipart form with the given fields and an
// optional PNG image part.
func multipartBody(t *testing.T, fields map[string]string, withImage bool) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if withImage {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", `form-data; name="image"; filename="soup.png"`)
		header.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestCategoryHandler_Create(t *testing.T) {
	svc := new(MockCategoryService)
	svc.On("CreateCategory", mock.Anything, mock.MatchedBy(func(req *model.CreateCategoryRequest) bool {
		return req.Name == "Starters" && req.MenuID == 3 &&
			req.Image != nil && req.Image.MimeType == "image/png" && req.Image.Name == "soup.png" && len(req.Image.Data) == 8
	}), testRestaurant).Return(&model.Category{ID: 10, Name: "Starters"}, nil)
	h := NewCategoryHandler(svc, zerolog.Nop())

	body, contentType := multipartBody(t, map[string]string{"name": "Starters", "menuId": "3"}, true)
	req := as(httptest.NewRequest(http.MethodPost, "/api/categories", body), model.RestaurantPrincipal{Restaurant: testRestaurant}, nil)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	h.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestCategoryHandler_Create_MissingMenuID(t *testing.T) {
	svc := new(MockCategoryService)
	h := NewCategoryHandler(svc, zerolog.Nop())

	body, contentType := multipartBody(t, map[string]string{"name": "Starters"}, true)
	req := as(httptest.NewRequest(http.MethodPost, "/api/categories", body), model.RestaurantPrincipal{Restaurant: testRestaurant}, nil)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	h.Create(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "CreateCategory", mock.Anything, mock.Anything, mock.Anything)
}

func TestCategoryHandler_Update_NameOnly(t *testing.T) {
	svc := new(MockCategoryService)
	svc.On("UpdateCategory", mock.Anything, int64(10), mock.MatchedBy(func(req *model.UpdateCategoryRequest) bool {
		return req.Name != nil && *req.Name == "Mains" && req.Image == nil
	}), testRestaurant).Return(nil)
	h := NewCategoryHandler(svc, zerolog.Nop())

	body, contentType := multipartBody(t, map[string]string{"name": "Mains"}, false)
	req := as(httptest.NewRequest(http.MethodPatch, "/api/categories/10", body),
		model.RestaurantPrincipal{Restaurant: testRestaurant}, map[string]string{"id": "10"})
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	h.Update(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	svc.AssertExpectations(t)
}

func TestProductHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		fields         map[string]string
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			fields:         map[string]string{"name": "Soup", "description": "Tomato", "price": "6.50", "categoryId": "10"},
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name:           "Invalid price",
			fields:         map[string]string{"name": "Soup", "price": "six", "categoryId": "10"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "Missing price",
			fields:         map[string]string{"name": "Soup", "categoryId": "10"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockProductService)
			if tt.expectService {
				svc.On("CreateProduct", mock.Anything, mock.MatchedBy(func(req *model.CreateProductRequest) bool {
					return req.Price.Equal(decimal.RequireFromString("6.5")) && req.CategoryID == 10 && req.Description == "Tomato"
				}), testRestaurant).Return(&model.Product{ID: 100}, nil)
			}
			h := NewProductHandler(svc, zerolog.Nop())

			body, contentType := multipartBody(t, tt.fields, true)
			req := as(httptest.NewRequest(http.MethodPost, "/api/products", body), model.RestaurantPrincipal{Restaurant: testRestaurant}, nil)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()

			h.Create(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if !tt.expectService {
				svc.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestOrderHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		principal      model.Principal
		body           string
		mockReturn     *model.Order
		mockError      error
		expectedStatus int
		expectService  bool
	}{
		{
			name:           "Success",
			principal:      model.UserPrincipal{User: testUser},
			body:           `{"restaurantId":1,"tableId":2,"totalPrice":"20.00","orderedProducts":[{"orderedProductId":100,"quantity":2,"price":10}]}`,
			mockReturn:     &model.Order{ID: 77},
			expectedStatus: http.StatusCreated,
			expectService:  true,
		},
		{
			name:           "Tampered price",
			principal:      model.UserPrincipal{User: testUser},
			body:           `{"restaurantId":1,"tableId":2,"totalPrice":9.99,"orderedProducts":[{"orderedProductId":100,"quantity":1,"price":9.99}]}`,
			mockError:      model.ErrLinePriceMismatch,
			expectedStatus: http.StatusConflict,
			expectService:  true,
		},
		{
			name:           "Restaurant cannot order",
			principal:      model.RestaurantPrincipal{Restaurant: testRestaurant},
			body:           `{}`,
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockOrderService)
			if tt.expectService {
				svc.On("CreateOrder", mock.Anything, mock.AnythingOfType("*model.CreateOrderRequest"), testUser).
					Return(tt.mockReturn, tt.mockError)
			}
			h := NewOrderHandler(svc, zerolog.Nop())

			req := as(httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(tt.body)), tt.principal, nil)
			w := httptest.NewRecorder()

			h.Create(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if !tt.expectService {
				svc.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestOrderHandler_CreateDecodesExactPrices(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req *model.CreateOrderRequest) bool {
		return req.TotalPrice.Equal(decimal.RequireFromString("0.3")) &&
			req.OrderedProducts[0].Price.Equal(decimal.RequireFromString("0.1"))
	}), testUser).Return(&model.Order{ID: 1}, nil)
	h := NewOrderHandler(svc, zerolog.Nop())

	body := `{"restaurantId":1,"tableId":1,"totalPrice":0.30,"orderedProducts":[{"orderedProductId":1,"quantity":3,"price":0.1}]}`
	req := as(httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader(body)), model.UserPrincipal{User: testUser}, nil)
	w := httptest.NewRecorder()

	h.Create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestOrderHandler_Accept(t *testing.T) {
	employee := model.User{ID: 6, EmployerID: func() *int64 { id := int64(1); return &id }()}

	tests := []struct {
		name           string
		mockError      error
		expectedStatus int
	}{
		{name: "Accepted", expectedStatus: http.StatusNoContent},
		{name: "Other restaurant", mockError: model.ErrForbidden, expectedStatus: http.StatusForbidden},
		{name: "Unknown order", mockError: model.ErrOrderNotFound, expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockOrderService)
			svc.On("AcceptOrder", mock.Anything, int64(77), employee).Return(tt.mockError)
			h := NewOrderHandler(svc, zerolog.Nop())

			req := as(httptest.NewRequest(http.MethodPost, "/api/orders/77/accept", nil),
				model.UserPrincipal{User: employee}, map[string]string{"id": "77"})
			w := httptest.NewRecorder()

			h.Accept(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestOrderHandler_ListUserOrders(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("ListUserOrders", mock.Anything, testUser).Return([]model.Order{{ID: 1}, {ID: 2}}, nil)
	h := NewOrderHandler(svc, zerolog.Nop())

	req := as(httptest.NewRequest(http.MethodGet, "/api/orders/user", nil), model.UserPrincipal{User: testUser}, nil)
	w := httptest.NewRecorder()

	h.ListUserOrders(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var orders []model.Order
	require.NoError(t, json.NewDecoder(w.Body).Decode(&orders))
	assert.Len(t, orders, 2)
}
