package models

import (
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "customer", want: RoleCustomer},
		{in: " ADMIN ", want: RoleAdmin},
		{in: "superuser", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRoleIsAdmin(t *testing.T) {
	if !RoleAdmin.IsAdmin() {
		t.Fatal("admin role should be admin")
	}
	if RoleCustomer.IsAdmin() {
		t.Fatal("customer role should not be admin")
	}
	if Role("Admin").IsAdmin() {
		t.Fatal("unparsed role strings must not pass the admin check")
	}
}

func TestOTPChallengeLive(t *testing.T) {
	now := time.Now()
	consumed := now.Add(-time.Minute)

	tests := []struct {
		name      string
		challenge OTPChallenge
		want      bool
	}{
		{"fresh", OTPChallenge{ExpiresAt: now.Add(time.Minute)}, true},
		{"expired", OTPChallenge{ExpiresAt: now.Add(-time.Second)}, false},
		{"consumed", OTPChallenge{ExpiresAt: now.Add(time.Minute), ConsumedAt: &consumed}, false},
		{"attempts exhausted", OTPChallenge{ExpiresAt: now.Add(time.Minute), Attempts: 5}, false},
		{"attempts left", OTPChallenge{ExpiresAt: now.Add(time.Minute), Attempts: 4}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.challenge.Live(now, 5); got != tt.want {
				t.Fatalf("Live() = %v, want %v", got, tt.want)
			}
		})
	}
}
