package service

import (
	"context"
	"fmt"
	"strings"

	"tileledger/internal/dto"
	"tileledger/internal/model"

	"github.com/rs/zerolog/log"
)

const (
	defaultBillUnit     = "box"
	defaultBillMaterial = "Tiles"

	OutcomeSaved       = "saved"
	OutcomeDuplicate   = "duplicate"
	OutcomeCreatedOnly = "created_only"
	OutcomeSkipped     = "skipped"
)

// BillService saves a multi-line purchase or sale bill, creating missing
// products and the named party on the way.
type BillService interface {
	SaveBill(ctx context.Context, req dto.BillRequest) (*dto.BillResponse, error)
}

type billService struct {
	catalog CatalogService
	ledger  LedgerService
}

func NewBillService(catalog CatalogService, ledger LedgerService) BillService {
	return &billService{catalog: catalog, ledger: ledger}
}

func firstNonBlank(lines []dto.BillLine, field func(dto.BillLine) string, fallback string) string {
	for _, l := range lines {
		if v := strings.TrimSpace(field(l)); v != "" {
			return v
		}
	}
	return fallback
}

func orDefault(v, fallback string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return fallback
}

func (s *billService) SaveBill(ctx context.Context, req dto.BillRequest) (*dto.BillResponse, error) {
	kind := model.MoveKind(req.Kind)
	if !kind.Valid() {
		return nil, invalid("kind", "must be purchase or sale")
	}

	unitDefault := firstNonBlank(req.Lines, func(l dto.BillLine) string { return l.Unit }, defaultBillUnit)
	materialDefault := firstNonBlank(req.Lines, func(l dto.BillLine) string { return l.Material }, defaultBillMaterial)

	// Lines that would write something; everything else is skipped up front.
	usable := make([]bool, len(req.Lines))
	pending := 0
	for i, l := range req.Lines {
		if strings.TrimSpace(l.ProductName) == "" || strings.TrimSpace(l.Size) == "" {
			continue
		}
		if rate := l.Rate.NullDecimal(); rate.Valid && rate.Decimal.IsNegative() {
			return nil, invalid(fmt.Sprintf("lines[%d].rate", i), "must be >= 0")
		}
		if kind == model.MoveSale && !l.Qty.Decimal().IsPositive() {
			continue
		}
		usable[i] = true
		pending++
	}
	if pending == 0 {
		return nil, invalid("lines", "fill at least product, size and qty")
	}

	resp := &dto.BillResponse{Lines: make([]dto.BillLineResult, 0, len(req.Lines))}
	if name := strings.TrimSpace(req.PartyName); name != "" {
		partyReq := dto.PartyRequest{Name: name, Phone: req.PartyPhone, Address: req.PartyAddress}
		var party *dto.EnsureResponse
		var err error
		if kind == model.MoveSale {
			party, err = s.catalog.EnsureCustomerByName(ctx, partyReq)
		} else {
			party, err = s.catalog.EnsureSupplierByName(ctx, partyReq)
		}
		if err != nil {
			return nil, fmt.Errorf("ensure party: %w", err)
		}
		resp.PartyID = &party.ID
	}

	notes := ""
	if bill := strings.TrimSpace(req.BillNo); bill != "" {
		notes = "Bill " + bill
	}

	for i, l := range req.Lines {
		result := dto.BillLineResult{Line: i, Outcome: OutcomeSkipped}
		if !usable[i] {
			resp.Lines = append(resp.Lines, result)
			continue
		}

		product, err := s.catalog.EnsureProduct(ctx, dto.ProductRequest{
			Name:     strings.TrimSpace(l.ProductName),
			Material: orDefault(l.Material, materialDefault),
			Size:     strings.TrimSpace(l.Size),
			Unit:     orDefault(l.Unit, unitDefault),
		})
		if err != nil {
			return nil, fmt.Errorf("line %d: ensure product: %w", i, err)
		}
		result.ProductID = product.ID

		if !l.Qty.Decimal().IsPositive() {
			// Purchase lines without qty only register the product.
			result.Outcome = OutcomeCreatedOnly
			resp.CreatedOnly++
			resp.Lines = append(resp.Lines, result)
			continue
		}

		move, err := s.ledger.AddMove(ctx, dto.AddMoveRequest{
			Kind:      string(kind),
			ProductID: product.ID,
			Qty:       l.Qty,
			Price:     l.Rate,
			PartyID:   resp.PartyID,
			Notes:     notes,
		})
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		if move.Duplicate() {
			result.Outcome = OutcomeDuplicate
			resp.Duplicates++
		} else {
			result.Outcome = OutcomeSaved
			result.MoveID = move.ID
			resp.Saved++
		}
		resp.Lines = append(resp.Lines, result)
	}

	log.Info().Str("kind", string(kind)).Str("bill", notes).
		Int("saved", resp.Saved).Int("duplicates", resp.Duplicates).Int("created_only", resp.CreatedOnly).
		Msg("bill saved")
	return resp, nil
}
