package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"billpay/internal/core/domain"
	"billpay/internal/core/ports"
	"billpay/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const idempotencyTTL = 24 * time.Hour

// defaultRefundBackoff paces the refund retries after a failed provider
// call. The refund must eventually land: an unreleased reservation with a
// failed ledger row is the one state an operator has to reconcile by hand.
var defaultRefundBackoff = []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond}

// Coordinator implements ports.TransactionCoordinator: it prices a
// request, reserves funds, invokes the category's provider adapter,
// interprets the canonical outcome and reconciles the wallet and ledger.
type Coordinator struct {
	wallets    ports.WalletRepository
	ledger     ports.LedgerRepository
	idempRepo  ports.IdempotencyRepository
	idempCache ports.IdempotencyCache
	catalog    ports.CatalogRepository
	registry   ports.ProviderRegistry
	transactor ports.DBTransactor
	pricing    *PricingRules
	funding    *FundingSelector
	log        zerolog.Logger

	refundBackoff []time.Duration
}

// NewCoordinator creates a transaction coordinator.
func NewCoordinator(
	wallets ports.WalletRepository,
	ledger ports.LedgerRepository,
	idempRepo ports.IdempotencyRepository,
	idempCache ports.IdempotencyCache,
	catalog ports.CatalogRepository,
	registry ports.ProviderRegistry,
	transactor ports.DBTransactor,
	pricing *PricingRules,
	funding *FundingSelector,
	log zerolog.Logger,
) *Coordinator {
	return &Coordinator{
		wallets:       wallets,
		ledger:        ledger,
		idempRepo:     idempRepo,
		idempCache:    idempCache,
		catalog:       catalog,
		registry:      registry,
		transactor:    transactor,
		pricing:       pricing,
		funding:       funding,
		log:           log,
		refundBackoff: defaultRefundBackoff,
	}
}

// quotedOrder is the priced, provider-resolved form of a purchase request.
type quotedOrder struct {
	order      *domain.Order
	adapter    ports.ProviderAdapter
	title      string
	markup     decimal.Decimal // our own commission on top of vendor price
	needVerify bool
	verifyReq  ports.VerifyRequest
	planMeta   map[string]any
}

// Purchase runs one bill-payment transaction end to end. Once funds are
// reserved the transaction always runs to a terminal state; client
// cancellation is not honored past that point.
func (c *Coordinator) Purchase(ctx context.Context, req ports.PurchaseRequest) (*ports.PurchaseResult, error) {
	if req.RequestID == "" {
		return nil, apperror.Validation("Request ID is required")
	}
	if !req.Category.Valid() {
		return nil, apperror.Validation("Unknown service category")
	}
	if req.Recipient == "" {
		return nil, apperror.Validation("Recipient is required")
	}

	idempKey := domain.BuildIdempotencyKey(req.UserID, req.RequestID)

	// Layer 1: Redis idempotency check
	cached, err := c.idempCache.Get(ctx, idempKey)
	if err != nil {
		c.log.Warn().Err(err).Str("key", idempKey).Msg("redis idempotency check failed, falling through to DB")
	}
	if cached != nil {
		return c.unmarshalCachedResult(cached)
	}

	// Layer 2: DB idempotency check
	record, err := c.idempRepo.Get(ctx, idempKey)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("db idempotency check: %w", err))
	}
	if record != nil {
		return c.unmarshalCachedResult(record.ResponseJSON)
	}

	q, err := c.quote(ctx, &req)
	if err != nil {
		return nil, err
	}

	if err := c.funding.Approve(req.FundingSource, q.order.QuotedAmount); err != nil {
		return nil, err
	}

	// Pre-charge verification happens before reservation: a bad meter
	// number or profile id aborts with no funds moved.
	if q.needVerify {
		info, err := q.adapter.Verify(ctx, q.verifyReq)
		if err != nil {
			return nil, apperror.ErrMerchantVerification("Failed to verify " + q.verifyReq.MerchantRef + ", please check the details and try again")
		}
		if info.WrongBillersCode {
			return nil, apperror.ErrMerchantVerification("The number " + q.verifyReq.MerchantRef + " does not belong to " + q.verifyReq.ServiceID)
		}
	}

	// Reserve: one atomic conditional debit. Insufficient funds fail fast
	// with no provider call and no ledger row.
	walletAfter, err := c.wallets.Reserve(ctx, req.UserID, req.FundingSource, q.order.QuotedAmount)
	if err != nil {
		return nil, err
	}
	balanceBefore := walletAfter.BalanceFor(req.FundingSource).Add(q.order.QuotedAmount)

	outcome, err := q.adapter.Execute(ctx, q.order)
	if err != nil {
		// Transport-level failure the adapter could not classify.
		outcome = &domain.ProviderOutcome{
			Code:          domain.OutcomeFailed,
			FailureReason: domain.FailureProviderUnavailable,
			Message:       err.Error(),
		}
	}

	switch outcome.Code {
	case domain.OutcomeSuccess:
		return c.settleSuccess(ctx, &req, q, outcome, idempKey, balanceBefore)
	case domain.OutcomePending:
		return c.settlePending(ctx, &req, q, outcome, idempKey, balanceBefore)
	default:
		return c.settleFailed(ctx, &req, q, outcome, idempKey, balanceBefore)
	}
}

// quote resolves the category's plan, provider adapter and total price.
func (c *Coordinator) quote(ctx context.Context, req *ports.PurchaseRequest) (*quotedOrder, error) {
	q := &quotedOrder{
		order: &domain.Order{
			RequestID:     req.RequestID,
			UserID:        req.UserID,
			Category:      req.Category,
			FundingSource: req.FundingSource,
			Recipient:     req.Recipient,
			Quantity:      1,
			CreatedAt:     time.Now().UTC(),
		},
	}

	switch req.Category {
	case domain.CategoryAirtime:
		serviceID, err := airtimeServiceID(req.Network)
		if err != nil {
			return nil, err
		}
		total, err := c.pricing.QuoteAirtime(req.Amount)
		if err != nil {
			return nil, err
		}
		q.order.ServiceID = serviceID
		q.order.QuotedAmount = total
		q.title = "Airtime Subscription"
		adapter, err := c.registry.Adapter(domain.ProviderVTPass)
		if err != nil {
			return nil, apperror.InternalError(err)
		}
		q.adapter = adapter

	case domain.CategoryData:
		if req.PlanID == nil {
			return nil, apperror.Validation("Plan ID as plan_id is required")
		}
		plan, err := c.catalog.GetPlan(ctx, *req.PlanID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("load plan: %w", err))
		}
		if plan == nil {
			return nil, apperror.ErrNotFound("Data plan")
		}
		total, err := c.pricing.QuoteData(plan)
		if err != nil {
			return nil, err
		}
		q.order.ServiceID = plan.ServiceID
		q.order.Variation = plan.Code
		q.order.QuotedAmount = total
		q.order.Commission = plan.Commission
		q.markup = plan.Commission
		q.title = "Data Subscription"
		q.planMeta = map[string]any{
			"plan_id": plan.ID.String(),
			"network": plan.Network,
			"plan":    plan.Name,
		}
		adapter, err := c.registry.Adapter(plan.Provider)
		if err != nil {
			return nil, apperror.InternalError(err)
		}
		q.adapter = adapter

	case domain.CategoryElectricity:
		if req.PlanID == nil {
			return nil, apperror.Validation("Electricity service id is required")
		}
		if req.VariationCode != "prepaid" && req.VariationCode != "postpaid" {
			return nil, apperror.Validation("Invalid variation code. Must be 'prepaid' or 'postpaid'")
		}
		disco, err := c.catalog.GetElectricityService(ctx, *req.PlanID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("load electricity service: %w", err))
		}
		if disco == nil {
			return nil, apperror.ErrNotFound("Electricity service")
		}
		total, err := c.pricing.QuoteElectricity(req.Amount)
		if err != nil {
			return nil, err
		}
		q.order.ServiceID = disco.ServiceID
		q.order.Variation = req.VariationCode
		q.order.QuotedAmount = total
		q.markup = total.Sub(req.Amount)
		q.order.Commission = q.markup
		q.title = "Electricity Bill Payment"
		q.needVerify = true
		q.verifyReq = ports.VerifyRequest{
			ServiceID:   disco.ServiceID,
			MerchantRef: req.Recipient,
			Type:        req.VariationCode,
		}
		q.planMeta = map[string]any{
			"meter_number":   req.Recipient,
			"service":        disco.ServiceID,
			"variation_code": req.VariationCode,
		}
		adapter, err := c.registry.Adapter(domain.ProviderVTPass)
		if err != nil {
			return nil, apperror.InternalError(err)
		}
		q.adapter = adapter

	case domain.CategoryEducation:
		if req.ServiceType == "" {
			return nil, apperror.Validation("Service type is required (jamb, waec, or de)")
		}
		svc, err := c.catalog.GetEducationService(ctx, req.ServiceType, req.VariationCode)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("load education service: %w", err))
		}
		if svc == nil {
			return nil, apperror.ErrNotFound("Education service")
		}
		quantity := req.Quantity
		if quantity == 0 {
			quantity = 1
		}
		total, err := c.pricing.QuoteEducation(svc, quantity)
		if err != nil {
			return nil, err
		}
		q.order.ServiceID = svc.ServiceID
		q.order.Variation = svc.VariationCode
		q.order.Quantity = quantity
		q.order.QuotedAmount = total
		q.markup = total.Sub(svc.Price.Mul(decimal.NewFromInt(int64(quantity)))).Round(2)
		q.order.Commission = q.markup
		q.title = educationTitle(req.ServiceType)
		q.needVerify = svc.RequiresVerify
		q.verifyReq = ports.VerifyRequest{
			ServiceID:   svc.ServiceID,
			MerchantRef: req.Recipient,
			Type:        svc.VariationCode,
		}
		q.planMeta = map[string]any{
			"service_type":   req.ServiceType,
			"variation_code": svc.VariationCode,
			"quantity":       quantity,
		}
		adapter, err := c.registry.Adapter(domain.ProviderVTPass)
		if err != nil {
			return nil, apperror.InternalError(err)
		}
		q.adapter = adapter

	default:
		return nil, apperror.Validation("Unknown service category")
	}

	return q, nil
}

// settleSuccess writes the purchase row, credits the cashback bonus and
// records the idempotency outcome.
func (c *Coordinator) settleSuccess(
	ctx context.Context,
	req *ports.PurchaseRequest,
	q *quotedOrder,
	outcome *domain.ProviderOutcome,
	idempKey string,
	balanceBefore decimal.Decimal,
) (*ports.PurchaseResult, error) {
	now := time.Now().UTC()
	amount := q.order.QuotedAmount

	entry := &domain.LedgerEntry{
		ID:            uuid.New(),
		UserID:        req.UserID,
		RequestID:     req.RequestID,
		Kind:          domain.LedgerKindPurchase,
		Status:        domain.LedgerStatusSuccess,
		Title:         q.title,
		Description:   successDescription(req.Category, req.Recipient),
		Amount:        amount,
		Commission:    outcome.Commission.Add(q.markup),
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceBefore.Sub(amount),
		Provider:      q.adapter.Name(),
		Category:      req.Category,
		Metadata:      mergeMeta(q.planMeta, outcome.Artifacts),
		Source:        req.Source,
		CreatedAt:     now,
	}
	if outcome.Reference != "" {
		ref := outcome.Reference
		entry.ProviderRef = &ref
	}

	bonusAmount := c.pricing.CashbackBonus(amount)
	bonus := &domain.LedgerEntry{
		ID:            uuid.New(),
		UserID:        req.UserID,
		RequestID:     req.RequestID,
		Kind:          domain.LedgerKindBonus,
		Status:        domain.LedgerStatusSuccess,
		Title:         "Cashback",
		Description:   fmt.Sprintf("You have successfully received a cashback bonus of N %s.", bonusAmount.StringFixed(2)),
		Amount:        bonusAmount,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceBefore.Sub(amount),
		Provider:      q.adapter.Name(),
		Category:      req.Category,
		Source:        req.Source,
		CreatedAt:     now,
	}

	result := &ports.PurchaseResult{
		Entry:     entry,
		Bonus:     bonus,
		Artifacts: outcome.Artifacts,
	}

	if err := c.persistResult(ctx, idempKey, result, entry, bonus); err != nil {
		return nil, err
	}

	// Bonus credit is best-effort: a failure is logged and reconciled
	// later, the purchase itself stands.
	if _, err := c.wallets.CreditCashback(ctx, req.UserID, bonusAmount); err != nil {
		c.log.Error().Err(err).
			Str("user_id", req.UserID.String()).
			Str("request_id", req.RequestID).
			Str("bonus", bonusAmount.String()).
			Msg("cashback bonus credit failed, left for reconciliation")
	}

	c.log.Info().
		Str("request_id", req.RequestID).
		Str("user_id", req.UserID.String()).
		Str("category", string(req.Category)).
		Str("amount", amount.String()).
		Msg("purchase completed successfully")

	return result, nil
}

// settlePending records the pending row. The reservation is not released:
// funds stay committed until an out-of-band reconciliation job observes a
// terminal provider status.
func (c *Coordinator) settlePending(
	ctx context.Context,
	req *ports.PurchaseRequest,
	q *quotedOrder,
	outcome *domain.ProviderOutcome,
	idempKey string,
	balanceBefore decimal.Decimal,
) (*ports.PurchaseResult, error) {
	now := time.Now().UTC()
	amount := q.order.QuotedAmount

	entry := &domain.LedgerEntry{
		ID:            uuid.New(),
		UserID:        req.UserID,
		RequestID:     req.RequestID,
		Kind:          domain.LedgerKindPurchase,
		Status:        domain.LedgerStatusPending,
		Title:         q.title,
		Description:   "Transaction Pending.",
		Amount:        amount,
		Commission:    outcome.Commission.Add(q.markup),
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceBefore.Sub(amount),
		Provider:      q.adapter.Name(),
		Category:      req.Category,
		Metadata:      mergeMeta(q.planMeta, nil),
		Source:        req.Source,
		CreatedAt:     now,
	}
	if outcome.Reference != "" {
		ref := outcome.Reference
		entry.ProviderRef = &ref
	}

	result := &ports.PurchaseResult{Entry: entry, Pending: true}

	if err := c.persistResult(ctx, idempKey, result, entry); err != nil {
		return nil, err
	}

	c.log.Info().
		Str("request_id", req.RequestID).
		Str("user_id", req.UserID.String()).
		Msg("purchase pending, reservation held")

	return result, nil
}

// settleFailed refunds the reservation and records the failed purchase
// row plus the matching refund row.
func (c *Coordinator) settleFailed(
	ctx context.Context,
	req *ports.PurchaseRequest,
	q *quotedOrder,
	outcome *domain.ProviderOutcome,
	idempKey string,
	balanceBefore decimal.Decimal,
) (*ports.PurchaseResult, error) {
	now := time.Now().UTC()
	amount := q.order.QuotedAmount

	refundErr := c.releaseWithRetry(ctx, req.UserID, req.FundingSource, amount)

	entry := &domain.LedgerEntry{
		ID:            uuid.New(),
		UserID:        req.UserID,
		RequestID:     req.RequestID,
		Kind:          domain.LedgerKindPurchase,
		Status:        domain.LedgerStatusFailed,
		Title:         q.title,
		Description:   failureDescription(outcome),
		Amount:        amount,
		Commission:    decimal.Zero,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceBefore,
		Provider:      q.adapter.Name(),
		Category:      req.Category,
		Metadata:      mergeMeta(q.planMeta, nil),
		Source:        req.Source,
		CreatedAt:     now,
	}

	if refundErr != nil {
		// The dangerous case: funds debited, provider failed, refund not
		// yet landed. The failed row without a refund row is the
		// operator's reconciliation signal.
		if err := c.ledger.AppendOne(ctx, entry); err != nil {
			c.log.Error().Err(err).Str("request_id", req.RequestID).Msg("failed to record unrefunded failure")
		}
		c.log.Error().Err(refundErr).
			Str("user_id", req.UserID.String()).
			Str("request_id", req.RequestID).
			Str("amount", amount.String()).
			Msg("refund failed after provider failure, escalating")
		return nil, apperror.ErrRefundFailure(refundErr)
	}

	refund := &domain.LedgerEntry{
		ID:            uuid.New(),
		UserID:        req.UserID,
		RequestID:     req.RequestID,
		Kind:          domain.LedgerKindRefund,
		Status:        domain.LedgerStatusSuccess,
		Title:         "Refund",
		Description:   fmt.Sprintf("Refund of N %s for a failed %s purchase.", amount.StringFixed(2), req.Category),
		Amount:        amount,
		BalanceBefore: balanceBefore.Sub(amount),
		BalanceAfter:  balanceBefore,
		Provider:      q.adapter.Name(),
		Category:      req.Category,
		Source:        req.Source,
		CreatedAt:     now,
	}

	result := &ports.PurchaseResult{Entry: entry}

	if err := c.persistResult(ctx, idempKey, result, entry, refund); err != nil {
		return nil, err
	}

	c.log.Info().
		Str("request_id", req.RequestID).
		Str("user_id", req.UserID.String()).
		Str("reason", string(outcome.FailureReason)).
		Msg("purchase failed, reservation refunded")

	if outcome.FailureReason == domain.FailureProviderUnavailable {
		return result, apperror.ErrProviderUnavailable(fmt.Errorf("%s", outcome.Message))
	}
	return result, apperror.ErrProviderRejected(failureDescription(outcome))
}

// persistResult writes the ledger rows and the idempotency record in one
// database transaction, then populates the Redis fast path best-effort.
func (c *Coordinator) persistResult(ctx context.Context, idempKey string, result *ports.PurchaseResult, entries ...*domain.LedgerEntry) error {
	respJSON, err := json.Marshal(result)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("marshal result: %w", err))
	}

	dbTx, err := c.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	for _, e := range entries {
		if err := c.ledger.Append(ctx, dbTx, e); err != nil {
			return apperror.InternalError(fmt.Errorf("append ledger entry: %w", err))
		}
	}

	record := &ports.IdempotencyRecord{
		Key:          idempKey,
		LedgerID:     result.Entry.ID,
		ResponseJSON: respJSON,
		CreatedAt:    time.Now().UTC(),
	}
	if err := c.idempRepo.Create(ctx, dbTx, record); err != nil {
		return apperror.InternalError(fmt.Errorf("save idempotency record: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	if err := c.idempCache.Set(ctx, idempKey, respJSON, idempotencyTTL); err != nil {
		c.log.Warn().Err(err).Str("key", idempKey).Msg("failed to cache idempotency record in redis")
	}
	return nil
}

// releaseWithRetry refunds the reserved amount, retrying with backoff.
func (c *Coordinator) releaseWithRetry(ctx context.Context, userID uuid.UUID, source domain.FundingSource, amount decimal.Decimal) error {
	var lastErr error
	for attempt := 0; ; attempt++ {
		if _, lastErr = c.wallets.Release(ctx, userID, source, amount); lastErr == nil {
			return nil
		}
		if attempt >= len(c.refundBackoff) {
			return lastErr
		}
		c.log.Warn().Err(lastErr).
			Str("user_id", userID.String()).
			Int("attempt", attempt+1).
			Msg("refund attempt failed, retrying")
		select {
		case <-ctx.Done():
			return fmt.Errorf("refund interrupted: %w", ctx.Err())
		case <-time.After(c.refundBackoff[attempt]):
		}
	}
}

// VerifyMerchant proxies the pre-charge meter/profile verification so
// clients can validate a reference before submitting a purchase.
func (c *Coordinator) VerifyMerchant(ctx context.Context, category domain.Category, req ports.VerifyRequest) (*domain.MerchantInfo, error) {
	if category != domain.CategoryElectricity && category != domain.CategoryEducation {
		return nil, apperror.Validation("Verification is only available for electricity and education")
	}
	adapter, err := c.registry.Adapter(domain.ProviderVTPass)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	info, err := adapter.Verify(ctx, req)
	if err != nil {
		return nil, apperror.ErrMerchantVerification("Failed to verify " + req.MerchantRef + ", please check the details and try again")
	}
	return info, nil
}

func (c *Coordinator) unmarshalCachedResult(data []byte) (*ports.PurchaseResult, error) {
	result := &ports.PurchaseResult{}
	if err := json.Unmarshal(data, result); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal cached result: %w", err))
	}
	result.Replayed = true
	return result, nil
}

// airtimeServiceID maps the client's network name to the vendor service
// id. 9mobile is still "etisalat" on the vendor side.
func airtimeServiceID(network string) (string, error) {
	switch network {
	case "mtn", "glo", "airtel", "etisalat":
		return network, nil
	case "9mobile":
		return "etisalat", nil
	case "":
		return "", apperror.Validation("Network is required")
	default:
		return "", apperror.Validation("Unknown network selected")
	}
}

func educationTitle(serviceType string) string {
	switch serviceType {
	case "jamb":
		return "JAMB PIN Purchase"
	case "waec":
		return "WAEC Result Checker"
	case "de":
		return "Direct Entry PIN Purchase"
	default:
		return "Education Service"
	}
}

func successDescription(category domain.Category, recipient string) string {
	switch category {
	case domain.CategoryAirtime:
		return fmt.Sprintf("Airtime topped up successfully for %s", recipient)
	case domain.CategoryData:
		return fmt.Sprintf("Data topped up successfully for %s.", recipient)
	case domain.CategoryElectricity:
		return fmt.Sprintf("Electricity bill paid successfully for meter %s", recipient)
	case domain.CategoryEducation:
		return fmt.Sprintf("Education service for %s completed successfully", recipient)
	default:
		return "Purchase completed successfully"
	}
}

func failureDescription(outcome *domain.ProviderOutcome) string {
	if outcome.Message != "" {
		return outcome.Message
	}
	if outcome.FailureReason == domain.FailureProviderUnavailable {
		return "Service provider is currently unavailable, please try again later"
	}
	return "Transaction failed, please verify your details and try again"
}

func mergeMeta(planMeta, artifacts map[string]any) map[string]any {
	if planMeta == nil && artifacts == nil {
		return nil
	}
	merged := make(map[string]any, len(planMeta)+len(artifacts))
	for k, v := range planMeta {
		merged[k] = v
	}
	for k, v := range artifacts {
		merged[k] = v
	}
	return merged
}
