package model

// SettingTypeLending names the persisted lending-policy setting.
const SettingTypeLending = "lending"

// SystemSetting is one named settings document, stored as JSON.
type SystemSetting struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// LendingSettings is the admin-editable part of the lending rules. When
// persisted it overrides the static config defaults on the next start, and
// updates through the engine apply immediately.
type LendingSettings struct {
	LoanPeriodDays             int  `json:"loan_period_days" validate:"min=1,max=365"`
	MaxRenewals                int  `json:"max_renewals" validate:"min=0,max=12"`
	MaxActiveLoans             int  `json:"max_active_loans" validate:"min=1,max=100"`
	MaxActiveReservations      int  `json:"max_active_reservations" validate:"min=1,max=100"`
	ReservationExpiryDays      int  `json:"reservation_expiry_days" validate:"min=1,max=365"`
	AllowRenewal               bool `json:"allow_renewal"`
	SelfReturn                 bool `json:"self_return"`
	SelfRenew                  bool `json:"self_renew"`
	ReserveOnlyWhenUnavailable bool `json:"reserve_only_when_unavailable"`
}
