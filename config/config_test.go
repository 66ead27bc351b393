package config

import (
	"testing"
)

func TestDefaultOptions(t *testing.T) {
	opts := GetDefaultOptions()

	if opts.Port != defaultPort {
		t.Errorf("Port not set")
	}
	if opts.LoanPeriodDays != 14 {
		t.Errorf("Loan period not set")
	}
	if opts.MaxActiveLoans != 5 {
		t.Errorf("Loan limit not set")
	}
	if opts.MaxActiveReservations != 3 {
		t.Errorf("Reservation limit not set")
	}
	if opts.ReservationExpiryDays != 7 {
		t.Errorf("Reservation expiry not set")
	}
	if !opts.AllowRenewal || !opts.SelfReturn || !opts.SelfRenew {
		t.Errorf("Workflow flags should default to enabled")
	}
	if opts.ReserveOnlyWhenUnavailable {
		t.Errorf("Reservations should be open by default")
	}
}

func TestLoadConfigFile(t *testing.T) {
	GetDefaultOptions()
	opts, err := ParseFile("config_test.toml")
	if err != nil {
		t.Fatalf("Error loading config: %s", err)
	}

	if opts.Host != "127.0.0.1" {
		t.Errorf("Host not set")
	}
	if opts.Port != 2333 {
		t.Errorf("Port not set")
	}
	if opts.LogLevel != "debug" {
		t.Errorf("LogLevel not set")
	}
	if opts.LogFile != "test.log" {
		t.Errorf("LogFile not set")
	}
	if opts.LoanPeriodDays != 21 {
		t.Errorf("LoanPeriodDays not set")
	}
	if opts.MaxRenewals != 1 {
		t.Errorf("MaxRenewals not set")
	}
	if opts.SelfReturn {
		t.Errorf("SelfReturn should be disabled by the file")
	}
	// Untouched keys keep their defaults.
	if opts.MaxActiveLoans != 5 {
		t.Errorf("MaxActiveLoans should keep its default")
	}
}
