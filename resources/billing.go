package resources

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-cms-client/apiclient"
	"github.com/jrsteele09/go-cms-client/apistate"
	"github.com/jrsteele09/go-cms-client/cmsmodel"
	"github.com/jrsteele09/go-cms-client/notify"
	"github.com/jrsteele09/go-cms-client/tenants"
)

const defaultInvoiceLimit = 20

// Billing is the subscription and payment surface of one account.
type Billing struct {
	base
	Subscription *apistate.State[cmsmodel.SubscriptionStatus]
	Invoices     *apistate.State[[]cmsmodel.Invoice]
}

func NewBilling(c *apiclient.Client, n notify.Notifier) *Billing {
	b := newBase(c, n)
	return &Billing{
		base:         b,
		Subscription: apistate.New[cmsmodel.SubscriptionStatus](b.notifier),
		Invoices:     apistate.New[[]cmsmodel.Invoice](b.notifier),
	}
}

func accountPath(accountID, action string) string {
	return "/accounts/" + seg(accountID) + "/" + action + "/"
}

type planChange struct {
	PlanID      string               `json:"plan_id"`
	BillingType cmsmodel.BillingType `json:"billing_type"`
}

func (b *Billing) Plans(ctx context.Context) ([]tenants.SubscriptionPlan, error) {
	return once(ctx, b.base, get[[]tenants.SubscriptionPlan](b.client, "/subscription-plans/", nil))
}

func (b *Billing) SubscriptionStatus(ctx context.Context, accountID string) (cmsmodel.SubscriptionStatus, error) {
	return b.Subscription.Execute(ctx, get[cmsmodel.SubscriptionStatus](b.client, accountPath(accountID, "subscription_status"), nil))
}

func (b *Billing) BillingInfo(ctx context.Context, accountID string) (cmsmodel.BillingInfo, error) {
	return once(ctx, b.base, get[cmsmodel.BillingInfo](b.client, accountPath(accountID, "billing_info"), nil))
}

func (b *Billing) UpgradePlan(ctx context.Context, accountID, planID string, billingType cmsmodel.BillingType) (cmsmodel.BillingResult, error) {
	if billingType == "" {
		billingType = cmsmodel.BillingMonthly
	}
	body := planChange{PlanID: planID, BillingType: billingType}
	return once(ctx, b.base, post[cmsmodel.BillingResult](b.client, accountPath(accountID, "upgrade_plan"), body))
}

func (b *Billing) CancelSubscription(ctx context.Context, accountID string, immediately bool) (cmsmodel.BillingResult, error) {
	body := map[string]bool{"cancel_immediately": immediately}
	return once(ctx, b.base, post[cmsmodel.BillingResult](b.client, accountPath(accountID, "cancel_subscription"), body))
}

func (b *Billing) ReactivateSubscription(ctx context.Context, accountID string) (cmsmodel.BillingResult, error) {
	return once(ctx, b.base, post[cmsmodel.BillingResult](b.client, accountPath(accountID, "reactivate_subscription"), nil))
}

func (b *Billing) PauseSubscription(ctx context.Context, accountID, reason string) (cmsmodel.BillingResult, error) {
	body := map[string]string{}
	if reason != "" {
		body["reason"] = reason
	}
	return once(ctx, b.base, post[cmsmodel.BillingResult](b.client, accountPath(accountID, "pause_subscription"), body))
}

func (b *Billing) ResumeSubscription(ctx context.Context, accountID string) (cmsmodel.BillingResult, error) {
	return once(ctx, b.base, post[cmsmodel.BillingResult](b.client, accountPath(accountID, "resume_subscription"), nil))
}

// ListInvoices returns up to limit invoices; limit <= 0 means the default of 20.
func (b *Billing) ListInvoices(ctx context.Context, accountID string, limit int) ([]cmsmodel.Invoice, error) {
	if limit <= 0 {
		limit = defaultInvoiceLimit
	}
	params := url.Values{"limit": {strconv.Itoa(limit)}}
	return b.Invoices.Execute(ctx, get[[]cmsmodel.Invoice](b.client, accountPath(accountID, "invoices"), params))
}

// RefreshInvoices reloads as many invoices as are currently held.
func (b *Billing) RefreshInvoices(ctx context.Context, accountID string) ([]cmsmodel.Invoice, error) {
	current, _ := b.Invoices.Data()
	return b.ListInvoices(ctx, accountID, len(current))
}

func (b *Billing) Analytics(ctx context.Context, accountID string) (Raw, error) {
	return once(ctx, b.base, get[Raw](b.client, accountPath(accountID, "billing_analytics"), nil))
}

func (b *Billing) Alerts(ctx context.Context, accountID string) (Raw, error) {
	return once(ctx, b.base, get[Raw](b.client, accountPath(accountID, "billing_alerts"), nil))
}

func (b *Billing) PaymentMethods(ctx context.Context, accountID string) ([]cmsmodel.PaymentMethod, error) {
	return once(ctx, b.base, get[[]cmsmodel.PaymentMethod](b.client, accountPath(accountID, "payment_methods"), nil))
}

func (b *Billing) CalculateProration(ctx context.Context, accountID, planID string, billingType cmsmodel.BillingType) (cmsmodel.ProrationCalculation, error) {
	if billingType == "" {
		billingType = cmsmodel.BillingMonthly
	}
	body := planChange{PlanID: planID, BillingType: billingType}
	return once(ctx, b.base, post[cmsmodel.ProrationCalculation](b.client, accountPath(accountID, "calculate_proration"), body))
}

// ApplyCoupon normalises the code to trimmed upper case before sending it.
func (b *Billing) ApplyCoupon(ctx context.Context, accountID, code string) (cmsmodel.CouponValidation, error) {
	body := map[string]string{"coupon_code": strings.ToUpper(strings.TrimSpace(code))}
	return once(ctx, b.base, post[cmsmodel.CouponValidation](b.client, accountPath(accountID, "apply_coupon"), body))
}

func (b *Billing) ExtendTrial(ctx context.Context, accountID string, days int, reason string) (cmsmodel.BillingResult, error) {
	body := map[string]any{"days": days}
	if reason != "" {
		body["reason"] = reason
	}
	return once(ctx, b.base, post[cmsmodel.BillingResult](b.client, accountPath(accountID, "extend_trial"), body))
}
