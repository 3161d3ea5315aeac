package ratelimit

import "testing"

func TestClassifyRoute(t *testing.T) {
	cases := []struct {
		path string
		want RateLimitType
	}{
		{"/health", RateLimitTypeHealth},
		{"/ping", RateLimitTypeHealth},
		{"/api/v1/admin/shows", RateLimitTypeAdmin},
		{"/api/v1/book", RateLimitTypeBooking},
		{"/api/v1/shows", RateLimitTypePublic},
		{"/api/v1/shows/abc-123", RateLimitTypePublic},
		{"/api/v1/bookings/abc-123", RateLimitTypePublic},
		{"/api/v1/something-else", RateLimitTypeDefault},
	}

	for _, c := range cases {
		if got := classifyRoute(c.path); got != c.want {
			t.Fatalf("classifyRoute(%q) = %s, want %s", c.path, got, c.want)
		}
	}
}

func TestGetLimitPerClass(t *testing.T) {
	limiter := NewRateLimiter(nil, &Config{
		DefaultRequests: 60,
		PublicRequests:  100,
		BookingRequests: 20,
		AdminRequests:   200,
		HealthRequests:  120,
	})

	cases := []struct {
		limitType RateLimitType
		want      int
	}{
		{RateLimitTypeDefault, 60},
		{RateLimitTypePublic, 100},
		{RateLimitTypeBooking, 20},
		{RateLimitTypeAdmin, 200},
		{RateLimitTypeHealth, 120},
		{RateLimitType("unknown"), 60},
	}

	for _, c := range cases {
		if got := limiter.getLimit(c.limitType); got != c.want {
			t.Fatalf("getLimit(%s) = %d, want %d", c.limitType, got, c.want)
		}
	}
}
