package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/segyhp/installment-ledger/internal/domain"
	"github.com/segyhp/installment-ledger/internal/repository"
	customError "github.com/segyhp/installment-ledger/pkg/errors"
	"github.com/segyhp/installment-ledger/pkg/utils"
)

const receiptDateLayout = "02/01/2006"

// Receipt is the printable projection of one payment. Amounts are
// preformatted for display.
type Receipt struct {
	Number           string `json:"number"`
	Date             string `json:"date"`
	ClientName       string `json:"client_name"`
	ClientNationalID string `json:"client_national_id"`
	ClientAddress    string `json:"client_address"`
	RouteName        string `json:"route_name"`
	LoanID           string `json:"loan_id"`
	Principal        string `json:"principal"`
	Installment      string `json:"installment"`
	TotalDue         string `json:"total_due"`
	Week             int    `json:"week"`
	TermWeeks        int    `json:"term_weeks"`
	Amount           string `json:"amount"`
	ExtraAmount      string `json:"extra_amount"`
	TotalReceived    string `json:"total_received"`
	TotalPaid        string `json:"total_paid"`
	Outstanding      string `json:"outstanding"`
	Status           string `json:"status"`
}

// GetReceipt renders the receipt of a payment. It reads only.
func (s *LedgerService) GetReceipt(ctx context.Context, actorID string, paymentID uuid.UUID) (*Receipt, error) {
	payment, err := s.ownedPayment(ctx, actorID, paymentID)
	if err != nil {
		return nil, err
	}

	loan, err := s.repos.Loans.GetByID(ctx, payment.LoanID)
	if err != nil {
		return nil, loanErr(err, payment.LoanID)
	}

	client, err := s.repos.Clients.GetByID(ctx, loan.ClientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, customError.WrapClientNotFound(loan.ClientID.String())
		}
		return nil, dbErr(err)
	}

	routeName := ""
	route, err := s.repos.Routes.GetByID(ctx, client.RouteID)
	switch {
	case err == nil:
		routeName = route.Name
	case !errors.Is(err, repository.ErrNotFound):
		return nil, dbErr(err)
	}

	return buildReceipt(payment, loan, client, routeName), nil
}

// RouteReceipts is the day's batch of receipts for one route.
type RouteReceipts struct {
	RouteID   uuid.UUID  `json:"route_id"`
	RouteName string     `json:"route_name"`
	Date      string     `json:"date"`
	Count     int        `json:"count"`
	Total     string     `json:"total"`
	Receipts  []*Receipt `json:"receipts"`
}

// GetRouteReceipts renders a receipt for every payment collected on the
// route on day. A zero day means today. A route of another actor is
// reported as not found.
func (s *LedgerService) GetRouteReceipts(ctx context.Context, actorID string, routeID uuid.UUID, day time.Time) (*RouteReceipts, error) {
	route, err := s.repos.Routes.GetByID(ctx, routeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, customError.WrapRouteNotFound(routeID.String())
		}
		return nil, dbErr(err)
	}
	if route.UserID != actorID {
		return nil, customError.WrapRouteNotFound(routeID.String())
	}

	if day.IsZero() {
		day = s.now()
	}
	day = utils.DateOnly(day)

	payments, err := s.repos.Payments.ListByRouteAndDay(ctx, routeID, day)
	if err != nil {
		return nil, dbErr(err)
	}

	loans := make(map[uuid.UUID]*domain.Loan)
	clients := make(map[uuid.UUID]*domain.Client)
	receipts := make([]*Receipt, 0, len(payments))
	total := decimal.Zero
	for _, p := range payments {
		loan, ok := loans[p.LoanID]
		if !ok {
			if loan, err = s.repos.Loans.GetByID(ctx, p.LoanID); err != nil {
				return nil, loanErr(err, p.LoanID)
			}
			loans[p.LoanID] = loan
		}
		client, ok := clients[loan.ClientID]
		if !ok {
			if client, err = s.repos.Clients.GetByID(ctx, loan.ClientID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return nil, customError.WrapClientNotFound(loan.ClientID.String())
				}
				return nil, dbErr(err)
			}
			clients[loan.ClientID] = client
		}

		receipts = append(receipts, buildReceipt(p, loan, client, route.Name))
		total = total.Add(p.TotalReceived)
	}

	return &RouteReceipts{
		RouteID:   route.ID,
		RouteName: route.Name,
		Date:      day.Format(receiptDateLayout),
		Count:     len(receipts),
		Total:     formatMoney(total),
		Receipts:  receipts,
	}, nil
}

func buildReceipt(p *domain.Payment, l *domain.Loan, c *domain.Client, routeName string) *Receipt {
	return &Receipt{
		Number:           fmt.Sprintf("REC-%s", p.ID),
		Date:             p.Date.Format(receiptDateLayout),
		ClientName:       c.Name,
		ClientNationalID: c.NationalID,
		ClientAddress:    c.Address,
		RouteName:        routeName,
		LoanID:           l.ID.String(),
		Principal:        formatMoney(l.Principal),
		Installment:      formatMoney(l.Installment),
		TotalDue:         formatMoney(l.TotalDue),
		Week:             p.Week,
		TermWeeks:        l.TermWeeks,
		Amount:           formatMoney(p.Amount),
		ExtraAmount:      formatMoney(p.ExtraAmount),
		TotalReceived:    formatMoney(p.TotalReceived),
		TotalPaid:        formatMoney(l.TotalPaid),
		Outstanding:      formatMoney(l.OutstandingBalance()),
		Status:           string(p.Status),
	}
}

// formatMoney renders d with thousands separators and two decimals. The
// whole part goes through humanize on an integer, so no float is involved.
func formatMoney(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole := d.Truncate(0)
	cents := d.Sub(whole).Shift(2).IntPart()
	return fmt.Sprintf("%s%s.%02d", sign, humanize.Comma(whole.IntPart()), cents)
}
