package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stok/internal/model"
	"stok/internal/repository"
	"stok/internal/storage"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// summaryConcurrency bounds the summary queries run for one dealer page.
const summaryConcurrency = 8

// summaryTimeout bounds a shared summary query. Callers joining the query do
// not inherit the cancellation of the caller that started it.
const summaryTimeout = 10 * time.Second

// dealerService implements DealerService.
type dealerService struct {
	dealerRepo repository.DealerRepository
	orderRepo  repository.OrderRepository
	store      storage.Store
	summaries  singleflight.Group
	logger     zerolog.Logger
}

// NewDealerService creates a new dealer service.
func NewDealerService(
	dealerRepo repository.DealerRepository,
	orderRepo repository.OrderRepository,
	store storage.Store,
	logger zerolog.Logger,
) DealerService {
	return &dealerService{
		dealerRepo: dealerRepo,
		orderRepo:  orderRepo,
		store:      store,
		logger:     logger.With().Str("service", "dealer").Logger(),
	}
}

// List returns one page of dealers. Order summaries are attached
// concurrently when requested.
func (s *dealerService) List(ctx context.Context, filter model.DealerFilter) ([]model.Dealer, model.PageMeta, error) {
	dealers, total, err := s.dealerRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list dealers")
		return nil, model.PageMeta{}, fmt.Errorf("failed to list dealers: %w", err)
	}

	if filter.IncludeOrdersSummary && len(dealers) > 0 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(summaryConcurrency)
		for i := range dealers {
			d := &dealers[i]
			g.Go(func() error {
				summary, err := s.OrdersSummary(gctx, d.Code)
				if err != nil {
					return err
				}
				d.OrdersSummary = summary
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, model.PageMeta{}, fmt.Errorf("failed to list dealers: %w", err)
		}
	}

	return dealers, model.NewPageMeta(filter.Page, total), nil
}

// Get retrieves a dealer by ID or code.
func (s *dealerService) Get(ctx context.Context, identifier string, withSummary bool) (*model.Dealer, error) {
	dealer, err := s.find(ctx, identifier)
	if err != nil {
		return nil, err
	}

	if withSummary {
		summary, err := s.OrdersSummary(ctx, dealer.Code)
		if err != nil {
			return nil, fmt.Errorf("failed to get dealer: %w", err)
		}
		dealer.OrdersSummary = summary
	}
	return dealer, nil
}

// Create registers a dealer application. Status and activation in the
// request are ignored.
func (s *dealerService) Create(ctx context.Context, req *model.DealerRequest) (*model.Dealer, error) {
	if req == nil {
		return nil, model.NewValidationError("request body is required")
	}

	dealer, err := applyDealerRequest(req, &model.Dealer{})
	if err != nil {
		return nil, err
	}
	dealer.Status = model.DealerStatusPending
	dealer.IsActive = false

	exists, err := s.dealerRepo.CodeExists(ctx, dealer.Code, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create dealer: %w", err)
	}
	if exists {
		return nil, dealerCodeConflict()
	}

	if err := s.dealerRepo.Create(ctx, dealer); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, dealerCodeConflict()
		}
		return nil, fmt.Errorf("failed to create dealer: %w", err)
	}

	s.logger.Info().
		Int64("dealer_id", dealer.ID).
		Str("code", dealer.Code).
		Msg("dealer application received")

	return dealer, nil
}

// Update merges req into the stored dealer. A status outside pending,
// approved and rejected is ignored.
func (s *dealerService) Update(ctx context.Context, identifier string, req *model.DealerRequest) (*model.Dealer, error) {
	if req == nil {
		return nil, model.NewValidationError("request body is required")
	}

	existing, err := s.find(ctx, identifier)
	if err != nil {
		return nil, err
	}
	previousCode := existing.Code

	dealer, err := applyDealerRequest(req, existing)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		if status, ok := model.DealerStatus(*req.Status); ok {
			dealer.Status = status
		} else {
			s.logger.Debug().Str("status", *req.Status).Msg("ignoring unknown dealer status")
		}
	}
	if req.IsActive != nil {
		dealer.IsActive = *req.IsActive
	}

	if dealer.Code != previousCode {
		exists, err := s.dealerRepo.CodeExists(ctx, dealer.Code, dealer.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to update dealer: %w", err)
		}
		if exists {
			return nil, dealerCodeConflict()
		}
	}

	if err := s.dealerRepo.Update(ctx, dealer); err != nil {
		switch {
		case errors.Is(err, repository.ErrRowNotFound):
			return nil, model.NewNotFoundError("dealer not found")
		case errors.Is(err, repository.ErrDuplicateKey):
			return nil, dealerCodeConflict()
		}
		return nil, fmt.Errorf("failed to update dealer: %w", err)
	}

	s.logger.Info().
		Int64("dealer_id", dealer.ID).
		Str("code", dealer.Code).
		Str("status", dealer.Status).
		Bool("is_active", dealer.IsActive).
		Msg("dealer updated successfully")

	return dealer, nil
}

// Delete removes a dealer with no orders.
func (s *dealerService) Delete(ctx context.Context, identifier string) error {
	dealer, err := s.find(ctx, identifier)
	if err != nil {
		return err
	}

	orders, err := s.orderRepo.CountByDealerCode(ctx, dealer.Code)
	if err != nil {
		return fmt.Errorf("failed to delete dealer: %w", err)
	}
	if orders > 0 {
		return model.NewConflictError("dealer has orders",
			fmt.Sprintf("dealer '%s' is referenced by %d order(s)", dealer.Code, orders))
	}

	deleted, err := s.dealerRepo.Delete(ctx, dealer.ID)
	if err != nil {
		return fmt.Errorf("failed to delete dealer: %w", err)
	}
	if !deleted {
		return model.NewNotFoundError("dealer not found")
	}

	s.logger.Info().Int64("dealer_id", dealer.ID).Str("code", dealer.Code).Msg("dealer deleted")
	return nil
}

// UploadDocument stores a document and records its path in slot. The new
// file is removed if the row cannot be updated; the previous file is
// removed only after the row points at the new one.
func (s *dealerService) UploadDocument(ctx context.Context, identifier string, slot model.DocumentSlot, upload Upload) (*model.Dealer, error) {
	if !slot.Valid() {
		return nil, model.NewValidationError(fmt.Sprintf("unknown document type '%s'", slot))
	}

	dealer, err := s.find(ctx, identifier)
	if err != nil {
		return nil, err
	}
	previous := dealer.DocumentPath(slot)

	path, err := s.store.Save(ctx, "dealers/"+string(slot), upload.Filename, upload.ContentType, upload.Body)
	if err != nil {
		s.logger.Error().Err(err).Int64("dealer_id", dealer.ID).Str("slot", string(slot)).Msg("failed to store document")
		return nil, fmt.Errorf("failed to store document: %w", err)
	}

	updated, err := s.dealerRepo.UpdateDocumentPath(ctx, dealer.ID, slot, path)
	if err != nil || updated == nil {
		s.discard(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to record document: %w", err)
		}
		return nil, model.NewNotFoundError("dealer not found")
	}

	if previous != "" && previous != path {
		s.discard(ctx, previous)
	}

	s.logger.Info().
		Int64("dealer_id", updated.ID).
		Str("slot", string(slot)).
		Str("path", path).
		Int64("size", upload.Size).
		Msg("dealer document uploaded")

	return updated, nil
}

// OrdersSummary aggregates the orders of a dealer code. Concurrent calls
// for the same code share one query.
func (s *dealerService) OrdersSummary(ctx context.Context, dealerCode string) (*model.OrdersSummary, error) {
	v, err, _ := s.summaries.Do(dealerCode, func() (any, error) {
		queryCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), summaryTimeout)
		defer cancel()
		return s.orderRepo.SummaryByDealerCode(queryCtx, dealerCode)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to summarize orders: %w", err)
	}

	shared, ok := v.(*model.OrdersSummary)
	if !ok || shared == nil {
		return &model.OrdersSummary{}, nil
	}
	summary := *shared
	return &summary, nil
}

func (s *dealerService) find(ctx context.Context, identifier string) (*model.Dealer, error) {
	dealer, err := findByIdentifier(ctx, identifier, s.dealerRepo.GetByID, s.dealerRepo.GetByCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get dealer: %w", err)
	}
	if dealer == nil {
		return nil, model.NewNotFoundError("dealer not found")
	}
	return dealer, nil
}

func (s *dealerService) discard(ctx context.Context, path string) {
	if err := s.store.Delete(context.WithoutCancel(ctx), path); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("failed to remove document")
	}
}

// applyDealerRequest merges the plain fields of req into d and validates
// the result. Status and activation are left to the caller.
func applyDealerRequest(req *model.DealerRequest, d *model.Dealer) (*model.Dealer, error) {
	var details []string

	d.Code = model.Resolve(req.Code, d.Code)
	if d.Code == "" {
		details = append(details, "code is required")
	}
	d.Name = model.Resolve(req.Name, d.Name)
	if d.Name == "" {
		details = append(details, "name is required")
	}

	d.ContactName = model.Resolve(req.ContactName, d.ContactName)
	d.ContactEmail = strings.ToLower(model.Resolve(req.ContactEmail, d.ContactEmail))
	if d.ContactEmail != "" && !model.ValidEmail(d.ContactEmail) {
		details = append(details, "contactEmail must be a valid email address")
	}
	d.ContactPhone = model.Resolve(req.ContactPhone, d.ContactPhone)
	d.Address = model.Resolve(req.Address, d.Address)
	d.City = model.Resolve(req.City, d.City)
	d.District = model.Resolve(req.District, d.District)
	d.Country = model.Resolve(req.Country, d.Country)
	if d.Country == "" {
		d.Country = model.DefaultCountry
	}
	d.Website = model.Resolve(req.Website, d.Website)
	d.TaxNumber = model.Resolve(req.TaxNumber, d.TaxNumber)
	d.TaxOffice = model.Resolve(req.TaxOffice, d.TaxOffice)
	d.Notes = model.Resolve(req.Notes, d.Notes)

	if req.EstablishmentYear != nil && req.EstablishmentYear.IsSet() {
		if year, err := req.EstablishmentYear.Int(); err == nil {
			d.EstablishmentYear = &year
		}
	}
	if req.Metadata != nil {
		d.Metadata = normalizeMetadata(req.Metadata)
	}

	if len(details) > 0 {
		return nil, model.NewValidationError(details...)
	}
	return d, nil
}

func dealerCodeConflict() error {
	return model.NewConflictError("dealer code already in use", "code must be unique")
}
