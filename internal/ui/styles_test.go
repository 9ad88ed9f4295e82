package ui

import "testing"

func TestShouldUseColor_Env(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("CLICOLOR_FORCE", "1")
	if ShouldUseColor() {
		t.Error("ShouldUseColor() = true with NO_COLOR set")
	}

	t.Setenv("NO_COLOR", "")
	if !ShouldUseColor() {
		t.Error("ShouldUseColor() = false with CLICOLOR_FORCE set")
	}
}

func TestRender_PlainWhenDisabled(t *testing.T) {
	DisableColor()
	for _, render := range []func(string) string{
		RenderAccent, RenderPass, RenderWarn, RenderFail, RenderMuted,
	} {
		if got := render("✓ done"); got != "✓ done" {
			t.Errorf("render() = %q, want unstyled text", got)
		}
	}
}

func TestTerminalWidth_Fallback(t *testing.T) {
	// go test never runs with stdout on a terminal.
	if IsTerminal() {
		t.Skip("stdout is a terminal")
	}
	if got := TerminalWidth(100); got != 100 {
		t.Errorf("TerminalWidth(100) = %d", got)
	}
}
