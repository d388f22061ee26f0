package generate

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGeneratorChains(t *testing.T) {
	mock := &MockChat{}
	gen := NewGenerator(mock)
	ctx := context.Background()

	t.Run("daily summary passes transcript through", func(t *testing.T) {
		out, err := gen.DailySummary(ctx, "I had a long day", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != "I had a long day" {
			t.Errorf("expected echo, got %q", out)
		}
		if mock.LastCall().System != promptDailySummary {
			t.Error("wrong system prompt for daily summary")
		}
	})

	t.Run("injected context included verbatim", func(t *testing.T) {
		injected := "user felt lonely last week"
		if _, err := gen.DailySummary(ctx, "today was better", injected); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(mock.LastCall().User, injected) {
			t.Errorf("injected context missing from payload: %q", mock.LastCall().User)
		}
		if !strings.Contains(mock.LastCall().User, "today was better") {
			t.Error("transcript missing from payload")
		}
	})

	t.Run("forget ack includes injected context", func(t *testing.T) {
		if _, err := gen.ForgetAck(ctx, "we talked about dinner", "prior memory"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(mock.LastCall().User, "prior memory") {
			t.Error("injected context missing from forget ack payload")
		}
	})

	t.Run("closing line trims whitespace", func(t *testing.T) {
		mock.CompleteFunc = func(ctx context.Context, system, user string) (string, error) {
			return "  a quiet day, kept.\n", nil
		}
		out, err := gen.ClosingLine(ctx, "full summary text")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out != "a quiet day, kept." {
			t.Errorf("expected trimmed line, got %q", out)
		}
	})

	t.Run("errors surface", func(t *testing.T) {
		wantErr := errors.New("backend down")
		mock.CompleteFunc = func(ctx context.Context, system, user string) (string, error) {
			return "", wantErr
		}
		if _, err := gen.DailySummary(ctx, "x", ""); !errors.Is(err, wantErr) {
			t.Errorf("expected wrapped backend error, got %v", err)
		}
	})
}
