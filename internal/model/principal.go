package model

// Principal is the authenticated caller: exactly one of RestaurantPrincipal
// or UserPrincipal. The unexported method closes the set.
type Principal interface {
	principal()
}

// RestaurantPrincipal is a restaurant account acting on its own catalog.
type RestaurantPrincipal struct {
	Restaurant Restaurant
}

// UserPrincipal is a customer or an employee.
type UserPrincipal struct {
	User User
}

func (RestaurantPrincipal) principal() {}
func (UserPrincipal) principal()       {}
