package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

type Checkout interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, shippingAddress string) (*Order, error)
}

type Service interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, shippingAddress string) (*Order, error)
	GetUserOrder(ctx context.Context, userID, orderID uuid.UUID) (*Order, error)
	GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error)
	ListOrders(ctx context.Context, filter ListFilter) (*OrderPage, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, update StatusUpdate) (*Order, error)
}

type service struct {
	orderRepo Repository
	checkout  Checkout
}

func NewService(orderRepo Repository, checkout Checkout) Service {
	return &service{
		orderRepo: orderRepo,
		checkout:  checkout,
	}
}

func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID, shippingAddress string) (*Order, error) {
	return s.checkout.CreateOrder(ctx, userID, shippingAddress)
}

// GetUserOrder hides orders of other users behind ErrOrderNotFound.
func (s *service) GetUserOrder(ctx context.Context, userID, orderID uuid.UUID) (*Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Err(err).Stringer("order_id", orderID).Msg("service: order not found by id")
			return nil, ErrOrderNotFound
		}

		log.Error().Err(err).Msg("service: failed to fetch order by id in repository")
		return nil, fmt.Errorf("service: failed to fetch order by id: %w", err)
	}

	if order.UserID != userID {
		log.Warn().Stringer("order_id", orderID).Stringer("user_id", userID).Msg("service: order requested by another user")
		return nil, ErrOrderNotFound
	}

	return order, nil
}

func (s *service) GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orders, err := s.orderRepo.GetOrdersByUserID(ctx, userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("service: failed to fetch user orders in repository")
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}

	return orders, nil
}

func (s *service) ListOrders(ctx context.Context, filter ListFilter) (*OrderPage, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, filter.Status)
	}
	filter.Normalize()

	orders, total, err := s.orderRepo.ListOrders(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("service: failed to list orders in repository")
		return nil, fmt.Errorf("service: failed to list orders: %w", err)
	}

	return &OrderPage{
		Orders:  orders,
		Total:   total,
		Page:    filter.Page,
		PerPage: filter.PerPage,
		Pages:   (total + filter.PerPage - 1) / filter.PerPage,
	}, nil
}

func (s *service) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, update StatusUpdate) (*Order, error) {
	if update.Status != nil && !update.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, *update.Status)
	}
	if update.PaymentStatus != nil && !update.PaymentStatus.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPaymentStatus, *update.PaymentStatus)
	}

	currentOrder, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			log.Warn().Err(err).Stringer("order_id", orderID).Msg("service: order not found, cannot update status")
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("service: failed to get order for status update")
		return nil, fmt.Errorf("service: failed to get order for status update: %w", err)
	}

	newStatus := currentOrder.Status
	if update.Status != nil {
		newStatus = *update.Status
	}
	newPayment := currentOrder.PaymentStatus
	if update.PaymentStatus != nil {
		newPayment = *update.PaymentStatus
	}

	if newStatus == currentOrder.Status && newPayment == currentOrder.PaymentStatus {
		log.Info().Stringer("order_id", orderID).Stringer("status", newStatus).Msg("service: order status is already the same, no update needed")
		return currentOrder, nil
	}

	if newStatus != currentOrder.Status && !CanTransition(currentOrder.Status, newStatus) {
		log.Warn().
			Stringer("order_id", currentOrder.ID).
			Stringer("current_status", currentOrder.Status).
			Stringer("new_status", newStatus).
			Msg("service: invalid status transition attempt")
		return nil, fmt.Errorf("%w: from %s to %s", ErrInvalidStatusTransition, currentOrder.Status, newStatus)
	}

	if err := s.orderRepo.UpdateOrderStatus(ctx, orderID, newStatus, newPayment); err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		log.Error().Err(err).Stringer("order_id", orderID).Stringer("new_status", newStatus).Msg("service: failed to update order status in repository")
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}

	log.Info().
		Stringer("order_id", orderID).
		Stringer("old_status", currentOrder.Status).
		Stringer("new_status", newStatus).
		Stringer("payment_status", newPayment).
		Msg("service: order status updated successfully")

	currentOrder.Status = newStatus
	currentOrder.PaymentStatus = newPayment
	return currentOrder, nil
}
