package handler

import (
	"net/http"

	"menuely/internal/middleware"
	"menuely/internal/model"
)

var (
	errUnauthenticated = model.NewDomainError(model.KindForbidden, model.ErrCodeUnauthorised, "Authentication required")
	errNotRestaurant   = model.NewDomainError(model.KindForbidden, model.ErrCodeForbidden, "Only restaurants can manage the catalog")
	errNotUser         = model.NewDomainError(model.KindForbidden, model.ErrCodeForbidden, "Only users can manage orders")
)

// requireRestaurant returns the calling restaurant.
func requireRestaurant(r *http.Request) (model.Restaurant, error) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return model.Restaurant{}, errUnauthenticated
	}
	switch p := p.(type) {
	case model.RestaurantPrincipal:
		return p.Restaurant, nil
	case model.UserPrincipal:
		return model.Restaurant{}, errNotRestaurant
	default:
		return model.Restaurant{}, errUnauthenticated
	}
}

// requireUser returns the calling user.
func requireUser(r *http.Request) (model.User, error) {
	p, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return model.User{}, errUnauthenticated
	}
	switch p := p.(type) {
	case model.UserPrincipal:
		return p.User, nil
	case model.RestaurantPrincipal:
		return model.User{}, errNotUser
	default:
		return model.User{}, errUnauthenticated
	}
}
