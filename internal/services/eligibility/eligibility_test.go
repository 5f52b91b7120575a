package eligibility_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"lightbox/internal/services/eligibility"
)

func TestVerificationStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/accounts/account-1/verification" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"verified":true}`))
	}))
	defer server.Close()

	client := eligibility.New(server.URL, "token", server.Client())
	verified, err := client.VerificationStatus(context.Background(), "account-1")
	if err != nil {
		t.Fatalf("VerificationStatus: %v", err)
	}
	if !verified {
		t.Error("expected verified = true")
	}
}

func TestMembershipStatusInactive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/accounts/account-1/membership" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"active":false}`))
	}))
	defer server.Close()

	client := eligibility.New(server.URL, "token", server.Client())
	active, err := client.MembershipStatus(context.Background(), "account-1")
	if err != nil {
		t.Fatalf("MembershipStatus: %v", err)
	}
	if active {
		t.Error("expected active = false")
	}
}

func TestStatusSurfacesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "account unknown", http.StatusNotFound)
	}))
	defer server.Close()

	client := eligibility.New(server.URL, "", server.Client())
	_, err := client.VerificationStatus(context.Background(), "ghost")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestUnconfiguredBaseURL(t *testing.T) {
	client := eligibility.New("", "", http.DefaultClient)
	if _, err := client.VerificationStatus(context.Background(), "account-1"); err == nil {
		t.Fatal("expected configuration error")
	}
}
