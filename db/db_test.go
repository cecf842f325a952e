package db

import (
	"testing"
	"time"
)

func TestTimeFormat(t *testing.T) {
	tt := time.Date(2024, 3, 7, 15, 4, 5, 0, time.FixedZone("CET", 3600))
	expected := "2024-03-07T14:04:05Z"
	if got := TimeFormat(tt); got != expected {
		t.Errorf("TimeFormat() = %v, want %v", got, expected)
	}
}

func TestTimeParse(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "valid utc",
			input: "2024-03-07T15:04:05Z",
			want:  time.Date(2024, 3, 7, 15, 4, 5, 0, time.UTC),
		},
		{
			name:    "empty string",
			input:   "",
			wantErr: true,
		},
		{
			name:    "not a timestamp",
			input:   "yesterday",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := TimeParse(tc.input)
			if (err != nil) != tc.wantErr {
				t.Fatalf("TimeParse() error = %v, wantErr %v", err, tc.wantErr)
			}
			if !tc.wantErr && !got.Equal(tc.want) {
				t.Errorf("TimeParse() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"pending", "verified", "revoked"} {
		if _, err := ParseStatus(valid); err != nil {
			t.Errorf("ParseStatus(%q) unexpected error: %v", valid, err)
		}
	}
	if _, err := ParseStatus("banned"); err == nil {
		t.Error("ParseStatus accepted unknown status")
	}
}

func TestIdentityHasLiveCode(t *testing.T) {
	now := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name string
		id   Identity
		want bool
	}{
		{
			name: "no code",
			id:   Identity{},
			want: false,
		},
		{
			name: "code with future expiry",
			id:   Identity{PendingCode: "123456", CodeExpiresAt: now.Add(5 * time.Minute)},
			want: true,
		},
		{
			name: "code with past expiry",
			id:   Identity{PendingCode: "123456", CodeExpiresAt: now.Add(-time.Minute)},
			want: false,
		},
		{
			name: "code expiring exactly now",
			id:   Identity{PendingCode: "123456", CodeExpiresAt: now},
			want: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.id.HasLiveCode(now); got != tc.want {
				t.Errorf("HasLiveCode() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestIdentitySessionExpired(t *testing.T) {
	now := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	ttl := 30 * 24 * time.Hour

	testCases := []struct {
		name         string
		lastActivity time.Time
		want         bool
	}{
		{name: "never active", lastActivity: time.Time{}, want: true},
		{name: "active yesterday", lastActivity: now.Add(-24 * time.Hour), want: false},
		{name: "active 31 days ago", lastActivity: now.Add(-31 * 24 * time.Hour), want: true},
		{name: "exactly at ttl", lastActivity: now.Add(-ttl), want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id := Identity{LastActivityAt: tc.lastActivity}
			if got := id.SessionExpired(now, ttl); got != tc.want {
				t.Errorf("SessionExpired() = %v, want %v", got, tc.want)
			}
		})
	}
}
