package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rippleeffect/charity-service/internal/domain"
)

func TestVerify(t *testing.T) {
	tests := []struct {
		name      string
		reply     string
		llmErr    error
		want      domain.VerdictStatus
		canonical string
		wantErr   error
	}{
		{
			name:      "valid",
			reply:     "STATUS: YES | OFFICIAL_NAME: American Red Cross | DESCRIPTION: Disaster relief | LOCATION: Washington, DC, USA",
			want:      domain.VerdictValid,
			canonical: "American Red Cross",
		},
		{
			name:  "invalid",
			reply: "STATUS: NO | OFFICIAL_NAME: Feeding America, City Harvest",
			want:  domain.VerdictInvalid,
		},
		{
			name:  "unparseable",
			reply: "I'm not sure what you mean.",
			want:  domain.VerdictUnparseable,
		},
		{
			name:    "service down",
			llmErr:  errors.New("connection refused"),
			wantErr: domain.ErrServiceUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.llm.EXPECT().Generate(gomock.Any(), gomock.Any()).
				DoAndReturn(func(ctx context.Context, prompt string) (string, error) {
					assert.Contains(t, prompt, `"red cross"`)
					assert.Contains(t, prompt, "STATUS: YES or NO")
					_, ok := ctx.Deadline()
					assert.True(t, ok, "model call must carry a deadline")
					return tt.reply, tt.llmErr
				})

			v, err := f.svc.Verify(context.Background(), "  red cross ")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.Status)
			assert.Equal(t, tt.canonical, v.CanonicalName)
		})
	}
}

func TestVerifyEmptyNameSkipsModel(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := f.svc.Verify(context.Background(), name)
		assert.ErrorIs(t, err, domain.ErrEmptyName)
	}
}

func TestVerifyTimeout(t *testing.T) {
	f := newFixture(t)
	f.llm.EXPECT().Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := f.svc.Verify(ctx, "ASPCA")
	assert.ErrorIs(t, err, domain.ErrServiceUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// Scenario E: nearby suggestions come back as fenced JSON.
func TestFindNearby(t *testing.T) {
	f := newFixture(t)
	reply := "```json\n" + `[
		{"name": "Austin Pets Alive!", "description": "No-kill shelter", "category": "Animal Welfare"},
		{"name": "Central Texas Food Bank", "description": "Hunger relief", "category": "Social Services"},
		{"name": "Austin Symphony", "description": "Orchestra", "category": "Arts"},
		{"name": "Habitat for Humanity Austin", "description": "Housing"},
		{"name": "Hill Country Conservancy", "description": "Land trust", "category": "Environment"}
	]` + "\n```"
	f.llm.EXPECT().Generate(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, prompt string) (string, error) {
			assert.Contains(t, prompt, "Austin, TX, USA")
			assert.Contains(t, prompt, "Animal Welfare")
			assert.True(t, strings.Contains(prompt, "JSON array"))
			return reply, nil
		})

	got, err := f.svc.FindNearby(context.Background(), "Austin", "TX", "USA")
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, domain.CategoryAnimalWelfare, got[0].Category)
	assert.Equal(t, domain.CategoryCommunity, got[3].Category)
}

func TestFindNearbyGarbageIsEmpty(t *testing.T) {
	f := newFixture(t)
	f.llm.EXPECT().Generate(gomock.Any(), gomock.Any()).Return("```\n```", nil)

	got, err := f.svc.FindNearby(context.Background(), "Austin", "", "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFindNearbyRequiresLocation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.FindNearby(context.Background(), " ", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestModelCallsAreBounded(t *testing.T) {
	f := newFixture(t)
	release := make(chan struct{})
	inFlight := make(chan struct{}, 10)
	f.llm.EXPECT().Generate(gomock.Any(), gomock.Any()).Times(4).
		DoAndReturn(func(ctx context.Context, _ string) (string, error) {
			inFlight <- struct{}{}
			<-release
			return "STATUS: NO | OFFICIAL_NAME: x", nil
		})

	done := make(chan error, 4)
	for i := 0; i < 4; i++ {
		go func() {
			_, err := f.svc.Verify(context.Background(), "ASPCA")
			done <- err
		}()
	}

	// Three slots by default; the fourth caller waits.
	for i := 0; i < 3; i++ {
		<-inFlight
	}
	select {
	case <-inFlight:
		t.Fatal("more than three concurrent model calls")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)
	<-inFlight
	for i := 0; i < 4; i++ {
		assert.NoError(t, <-done)
	}
}
