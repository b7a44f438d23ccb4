package order

import "shop/persistence"

type OrderID string

type Order struct {
	ID  OrderID
	Row persistence.OrderRow
}

type OrderRepository interface {
	Save(o *Order) error
	FindByID(id OrderID) (*Order, error)
}

type OrderService struct {
	orders OrderRepository
}

func (s *OrderService) PlaceOrder(o *Order) error { return nil }
