package service

import (
	"context"
	"fmt"
	"time"

	"catercost/internal/costing"
	"catercost/internal/dto"
	"catercost/internal/model"
	"catercost/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// EventService manages catering events and the recipe orders they place.
type EventService interface {
	Create(ctx context.Context, req dto.CreateEventRequest) (*dto.EventResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.EventResponse, error)
	List(ctx context.Context, filter dto.EventFilter) (*dto.EventListResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateEventRequest) (*dto.EventResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddOrder(ctx context.Context, eventID uuid.UUID, req dto.AddOrderRequest) (*dto.EventResponse, error)
	RemoveOrder(ctx context.Context, eventID, orderID uuid.UUID) (*dto.EventResponse, error)
	Recalculate(ctx context.Context, eventID uuid.UUID) (*dto.EventResponse, error)
}

type eventService struct {
	repo    repository.EventRepository
	catalog CatalogService
}

func NewEventService(repo repository.EventRepository, catalog CatalogService) EventService {
	return &eventService{repo: repo, catalog: catalog}
}

func parseEventDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: event_date must be YYYY-MM-DD", ErrInvalidInput)
	}
	return t, nil
}

func (s *eventService) Create(ctx context.Context, req dto.CreateEventRequest) (*dto.EventResponse, error) {
	date, err := parseEventDate(req.EventDate)
	if err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = model.EventProspect
	}
	e := &model.Event{
		EventNumber: req.EventNumber,
		Name:        req.Name,
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		EventDate:   date,
		GuestCount:  req.GuestCount,
		VenueName:   req.VenueName,
		Status:      status,
		Notes:       req.Notes,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, conflict(err, "event number")
	}
	resp := eventToResponse(e)
	return &resp, nil
}

func (s *eventService) GetByID(ctx context.Context, id uuid.UUID) (*dto.EventResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "event not found")
	}
	resp := eventToResponse(e)
	return &resp, nil
}

func (s *eventService) List(ctx context.Context, filter dto.EventFilter) (*dto.EventListResponse, error) {
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.EventResponse, 0, len(rows))
	for i := range rows {
		data = append(data, eventToResponse(&rows[i]))
	}
	return &dto.EventListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: dto.Pages(total, filter.Limit),
	}, nil
}

func (s *eventService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateEventRequest) (*dto.EventResponse, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "event not found")
	}
	if req.Name != nil {
		e.Name = *req.Name
	}
	if req.ClientName != nil {
		e.ClientName = *req.ClientName
	}
	if req.ClientEmail != nil {
		e.ClientEmail = req.ClientEmail
	}
	if req.EventDate != nil {
		date, err := parseEventDate(*req.EventDate)
		if err != nil {
			return nil, err
		}
		e.EventDate = date
	}
	if req.GuestCount != nil {
		e.GuestCount = *req.GuestCount
	}
	if req.VenueName != nil {
		e.VenueName = req.VenueName
	}
	if req.Status != nil {
		e.Status = *req.Status
	}
	if req.Notes != nil {
		e.Notes = req.Notes
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	resp := eventToResponse(e)
	return &resp, nil
}

func (s *eventService) Delete(ctx context.Context, id uuid.UUID) error {
	return notFound(s.repo.Delete(ctx, id), "event not found")
}

// AddOrder freezes the recipe's suggested price (unless overridden) and its
// cost per portion on the new order.
func (s *eventService) AddOrder(ctx context.Context, eventID uuid.UUID, req dto.AddOrderRequest) (*dto.EventResponse, error) {
	recipeID, err := uuid.Parse(req.RecipeID)
	if err != nil {
		return nil, fmt.Errorf("%w: recipe_id is not a valid uuid", ErrInvalidInput)
	}
	if _, err := s.repo.FindByID(ctx, eventID); err != nil {
		return nil, notFound(err, "event not found")
	}

	g, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	b, err := costing.NewEvaluator(g).Breakdown(recipeID)
	if err != nil {
		return nil, err
	}

	price := b.SuggestedPrice
	if req.UnitPrice != nil {
		price = *req.UnitPrice
	}
	order := &model.EventOrder{
		EventID:         eventID,
		RecipeID:        recipeID,
		Quantity:        req.Quantity,
		UnitPriceFrozen: dto.Money(price),
		CostAtSale:      dto.Money(b.CostPerPortion),
		Notes:           req.Notes,
	}
	if err := s.repo.AddOrder(ctx, order); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, eventID)
}

func (s *eventService) RemoveOrder(ctx context.Context, eventID, orderID uuid.UUID) (*dto.EventResponse, error) {
	if err := s.repo.DeleteOrder(ctx, eventID, orderID); err != nil {
		return nil, notFound(err, "order not found")
	}
	return s.GetByID(ctx, eventID)
}

// Recalculate refreshes cost_at_sale of every order from the current catalog.
// Frozen prices are left untouched. Orders whose recipe no longer exists keep
// their cost.
func (s *eventService) Recalculate(ctx context.Context, eventID uuid.UUID) (*dto.EventResponse, error) {
	e, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return nil, notFound(err, "event not found")
	}
	g, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	ev := costing.NewEvaluator(g)

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		for _, o := range e.Orders {
			cpp, err := ev.CostPerPortion(o.RecipeID)
			if costing.IsNotFound(err) {
				log.Warn().Str("event", e.EventNumber).Str("recipe_id", o.RecipeID.String()).
					Msg("events: recipe missing during recalculation; keeping cost")
				continue
			}
			if err != nil {
				return err
			}
			if err := s.repo.UpdateOrderCostTx(tx, o.ID, dto.Money(cpp)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, eventID)
}
